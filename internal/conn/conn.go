package conn

import (
	"context"
	"net/http"
)

// Conn is an interface that wraps a connection to the Transfer CFT REST API.
// Implementations own sessions, authentication, timeouts and retries; callers
// only see the status code and the decoded body.
type Conn interface {
	Send(ctx context.Context, method, path string, payload any) (Response, error)
}

// Response is the result of a single call on a Conn.
type Response struct {
	Code     int
	Contents any
}

// Get is a helper for the common body-less GET.
func Get(ctx context.Context, c Conn, path string) (Response, error) {
	return c.Send(ctx, http.MethodGet, path, nil)
}
