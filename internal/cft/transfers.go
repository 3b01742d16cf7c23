package cft

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/cftops/cftctl/internal/outcome"
	"github.com/cftops/cftctl/internal/params"
)

const transfersURI = "/transfers"

// Transfer is a transfer record as reported by the server. Apart from the
// identifiers, its fields are server defined and treated as opaque.
type Transfer map[string]any

// IDTU returns the server assigned transfer identifier.
func (t Transfer) IDTU() string { return t.str("idtu") }

// IDA returns the client assigned local identifier.
func (t Transfer) IDA() string { return t.str("ida") }

func (t Transfer) str(key string) string {
	v, ok := t[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Direction selects the kind of file transfer request.
type Direction string

const (
	DirectionSend    Direction = "SEND"
	DirectionReceive Direction = "RECEIVE"
)

// DefaultFields is the field list requested when listing transfers.
var DefaultFields = []string{
	"PART", "DIRECT", "TYPE", "COMPATSTATE", "ACK", "STATE", "PHASE", "PHASESTEP", "IDF", "IDT",
	"IDTU", "PIDTU", "NREC", "FREC", "MSG", "DIAGI", "DIAGP", "REQUSER", "REQGROUP", "IDA",
}

// TransferFilter selects transfers from the catalog. Zero values are left
// out of the request.
type TransferFilter struct {
	IDA       string   `json:"ida"`
	IDTU      string   `json:"idtu"`
	IDT       string   `json:"idt"`
	NIDT      string   `json:"nidt"`
	Part      string   `json:"part"`
	IDF       string   `json:"idf"`
	Phase     string   `json:"phase"`
	PhaseStep string   `json:"phasestep"`
	Fields    []string `json:"fields"`
	Offset    int      `json:"offset"`
	Limit     int      `json:"limit"`
}

// Validate checks the filter before it is sent.
func (f TransferFilter) Validate() error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Phase, validation.In("A", "T", "Y", "Z", "X")),
		validation.Field(&f.PhaseStep, validation.In("D", "C", "E", "K", "H", "X")),
		validation.Field(&f.Offset, validation.Min(0)),
		validation.Field(&f.Limit, validation.Min(0)),
	)
	if err != nil {
		return &outcome.ValidationError{Err: err}
	}
	return nil
}

func (f TransferFilter) params() params.Params {
	return params.New().
		Add("ida", f.IDA).
		Add("idtu", f.IDTU).
		Add("idt", f.IDT).
		Add("nidt", f.NIDT).
		Add("part", f.Part).
		Add("idf", f.IDF).
		Add("phase", f.Phase).
		Add("phasestep", f.PhaseStep).
		Add("fields", f.Fields).
		Add("offset", f.Offset).
		Add("limit", f.Limit)
}

// FileRequest describes a new file transfer.
type FileRequest struct {
	Direction  Direction
	Partner    string
	IDF        string
	APITimeout int
	IDA        string
	Filename   string
	Parm       string
}

// MessageRequest describes a new message transfer.
type MessageRequest struct {
	Partner    string
	IDM        string
	Message    string
	APITimeout int
	IDA        string
}

// Transfer fetches a single transfer by identifier.
func (c *Client) Transfer(ctx context.Context, idtu string) (Transfer, error) {
	out, err := c.do(ctx, http.MethodGet, transferPath(idtu), nil, outcome.Read)
	if err != nil {
		return nil, err
	}
	if out.Body == nil {
		return nil, nil
	}
	tr := asTransfer(out.Body)
	if tr == nil {
		return nil, fmt.Errorf("decoding transfer %s: unexpected body of type %T", idtu, out.Body)
	}
	return tr, nil
}

// Transfers lists the transfers matching filter.
func (c *Client) Transfers(ctx context.Context, filter TransferFilter) ([]Transfer, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	path := withQuery(transfersURI, filter.params().Query())
	out, err := c.do(ctx, http.MethodGet, path, nil, outcome.Read)
	if err != nil {
		return nil, err
	}
	body, _ := out.Body.(map[string]any)
	raw, _ := body["transfers"].([]any)
	transfers := make([]Transfer, 0, len(raw))
	for _, r := range raw {
		transfers = append(transfers, asTransfer(r))
	}
	return transfers, nil
}

// CreateFileTransfer posts a send or receive file transfer request.
func (c *Client) CreateFileTransfer(ctx context.Context, req FileRequest) (outcome.Outcome, error) {
	var path string
	switch req.Direction {
	case DirectionSend:
		path = transfersURI + "/files/outgoings"
	case DirectionReceive:
		path = transfersURI + "/files/incomings"
	default:
		return outcome.Outcome{}, &outcome.ValidationError{Err: fmt.Errorf("unknown direction %q", req.Direction)}
	}
	query := params.New().
		Add("part", req.Partner).
		Add("idf", req.IDF).
		Add("apitimeout", req.APITimeout).
		Query()
	payload := params.New().
		Add("ida", req.IDA).
		Add("fname", req.Filename).
		Add("parm", req.Parm).
		Payload()
	return c.do(ctx, http.MethodPost, withQuery(path, query), payload, outcome.Create)
}

// CreateMessageTransfer posts a message transfer request.
func (c *Client) CreateMessageTransfer(ctx context.Context, req MessageRequest) (outcome.Outcome, error) {
	query := params.New().
		Add("part", req.Partner).
		Add("idm", req.IDM).
		Add("apitimeout", req.APITimeout).
		Query()
	payload := params.New().
		Add("ida", req.IDA).
		Add("msg", req.Message).
		Payload()
	return c.do(ctx, http.MethodPost, withQuery(transfersURI+"/messages", query), payload, outcome.Create)
}

// Delete removes a transfer from the catalog.
func (c *Client) Delete(ctx context.Context, idtu string) (outcome.Outcome, error) {
	return c.do(ctx, http.MethodDelete, transferPath(idtu), nil, outcome.Mutate)
}

// Halt interrupts a transfer.
func (c *Client) Halt(ctx context.Context, idtu string) (outcome.Outcome, error) {
	return c.action(ctx, idtu, "halt")
}

// Keep suspends a transfer.
func (c *Client) Keep(ctx context.Context, idtu string) (outcome.Outcome, error) {
	return c.action(ctx, idtu, "keep")
}

// Start restarts a transfer.
func (c *Client) Start(ctx context.Context, idtu string) (outcome.Outcome, error) {
	return c.action(ctx, idtu, "start")
}

// Resume resumes a transfer.
func (c *Client) Resume(ctx context.Context, idtu string) (outcome.Outcome, error) {
	return c.action(ctx, idtu, "resume")
}

// Submit submits the processing procedure of a transfer. The server exposes
// it on the same path as Resume.
func (c *Client) Submit(ctx context.Context, idtu string) (outcome.Outcome, error) {
	return c.action(ctx, idtu, "resume")
}

// Ack acknowledges a transfer.
func (c *Client) Ack(ctx context.Context, idtu, idm, msg string) (outcome.Outcome, error) {
	return c.acknowledge(ctx, idtu, "ack", idm, msg)
}

// Nack negatively acknowledges a transfer.
func (c *Client) Nack(ctx context.Context, idtu, idm, msg string) (outcome.Outcome, error) {
	return c.acknowledge(ctx, idtu, "nack", idm, msg)
}

// End ends a transfer.
func (c *Client) End(ctx context.Context, idtu string) (outcome.Outcome, error) {
	return c.action(ctx, idtu, "end")
}

func (c *Client) action(ctx context.Context, idtu, verb string) (outcome.Outcome, error) {
	return c.do(ctx, http.MethodPut, transferPath(idtu)+"/"+verb, nil, outcome.Mutate)
}

func (c *Client) acknowledge(ctx context.Context, idtu, verb, idm, msg string) (outcome.Outcome, error) {
	path := withQuery(transferPath(idtu)+"/"+verb, params.New().Add("idm", idm).Query())
	payload := params.New().Add("msg", msg).Payload()
	return c.do(ctx, http.MethodPut, path, payload, outcome.Mutate)
}

func transferPath(idtu string) string {
	return transfersURI + "/" + url.PathEscape(strings.TrimSpace(idtu))
}

func asTransfer(v any) Transfer {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return Transfer(m)
}
