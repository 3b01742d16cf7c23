// Package conntest provides a scripted Conn for tests.
package conntest

import (
	"context"
	"fmt"
	"sync"

	"github.com/cftops/cftctl/internal/conn"
)

// Call records a single request made through a Fake.
type Call struct {
	Method  string
	Path    string
	Payload any
}

// Reply is a scripted answer to a request.
type Reply struct {
	Code     int
	Contents any
	Err      error
}

// Fake answers requests from a route table keyed by "METHOD path" and records
// every call it receives. A request without a route returns an error.
type Fake struct {
	mu     sync.Mutex
	routes map[string][]Reply
	calls  []Call
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{routes: map[string][]Reply{}}
}

// On queues replies for method and path. Replies are consumed in order and
// the last one is repeated once the queue is drained.
func (f *Fake) On(method, path string, replies ...Reply) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.routes[key] = append(f.routes[key], replies...)
	return f
}

// Send implements conn.Conn.
func (f *Fake) Send(_ context.Context, method, path string, payload any) (conn.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: method, Path: path, Payload: payload})
	key := method + " " + path
	queue, ok := f.routes[key]
	if !ok || len(queue) == 0 {
		return conn.Response{}, fmt.Errorf("conntest: no reply for %q", key)
	}
	reply := queue[0]
	if len(queue) > 1 {
		f.routes[key] = queue[1:]
	}
	return conn.Response{Code: reply.Code, Contents: reply.Contents}, reply.Err
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Count returns how many recorded calls used method.
func (f *Fake) Count(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}
