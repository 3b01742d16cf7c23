// Package cft is a client for the Axway Transfer CFT REST API. Every
// operation builds a fixed path, encodes its parameters, sends a single
// request and classifies the answer; none of them retries.
package cft

import (
	"context"
	"fmt"

	"github.com/cftops/cftctl/internal/conn"
	"github.com/cftops/cftctl/internal/logger"
	"github.com/cftops/cftctl/internal/outcome"
	"go.uber.org/zap"
)

// Client drives a Transfer CFT server over a Conn.
type Client struct {
	conn conn.Conn
}

// New returns a client sending its requests through c.
func New(c conn.Conn) *Client {
	return &Client{conn: c}
}

// do sends one request and classifies the response against t.
func (c *Client) do(ctx context.Context, method, path string, payload any, t outcome.Table) (outcome.Outcome, error) {
	lgr := logger.FromContext(ctx)
	lgr.Debug("calling path", zap.String("method", method), zap.String("path", path))
	if payload != nil {
		lgr.Debug("payload content", zap.Any("payload", payload))
	}
	resp, err := c.conn.Send(ctx, method, path, payload)
	if err != nil {
		return outcome.Outcome{}, fmt.Errorf("sending %s %s: %w", method, path, err)
	}
	out, err := outcome.Classify(resp, t)
	if err != nil {
		lgr.Debug("request failed", zap.Int("code", resp.Code))
		return outcome.Outcome{}, err
	}
	return out, nil
}

// withQuery joins a path and an encoded query. The separator is always
// written, even for an empty query.
func withQuery(path, query string) string {
	return path + "?" + query
}
