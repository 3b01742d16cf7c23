package cft

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/cftops/cftctl/internal/outcome"
	"github.com/cftops/cftctl/internal/params"
)

const logsURI = "/logs"

var dateTimePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}Z$`)

// LogFilter selects log records.
type LogFilter struct {
	Severity    string `json:"severity"`
	Limit       int    `json:"limit"`
	DateTimeMin string `json:"datetimemin"`
	DateTimeMax string `json:"datetimemax"`
	Pattern     string `json:"pattern"`
}

// Validate checks the filter before it is sent.
func (f LogFilter) Validate() error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Severity, validation.In("F", "E", "W", "I")),
		validation.Field(&f.Limit, validation.Min(0)),
		validation.Field(&f.DateTimeMin, validation.Match(dateTimePattern).Error("must be formatted as YYYY-MM-DDThh:mm:ssZ")),
		validation.Field(&f.DateTimeMax, validation.Match(dateTimePattern).Error("must be formatted as YYYY-MM-DDThh:mm:ssZ")),
		validation.Field(&f.Pattern, validation.Length(0, 63)),
	)
	if err != nil {
		return &outcome.ValidationError{Err: err}
	}
	return nil
}

// LogRecord is a single server log line.
type LogRecord struct {
	Date     string `json:"date"`
	Node     string `json:"node"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Line renders the record as "[date] node severity code message".
func (r LogRecord) Line() string {
	return fmt.Sprintf("[%s] %s %s %s %s", r.Date, r.Node, r.Severity, r.Code, r.Message)
}

// Logs fetches the log records matching filter.
func (c *Client) Logs(ctx context.Context, filter LogFilter) ([]LogRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	query := params.New().
		Add("severity", filter.Severity).
		Add("limit", filter.Limit).
		Add("datetimemin", filter.DateTimeMin).
		Add("datetimemax", filter.DateTimeMax).
		Add("pattern", filter.Pattern).
		Query()
	out, err := c.do(ctx, http.MethodGet, withQuery(logsURI, query), nil, outcome.Read)
	if err != nil {
		return nil, err
	}
	var body struct {
		Logs []LogRecord `json:"logs"`
	}
	if err := remarshal(out.Body, &body); err != nil {
		return nil, fmt.Errorf("decoding logs: %w", err)
	}
	return body.Logs, nil
}

// remarshal converts a decoded JSON value into dst.
func remarshal(src any, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
