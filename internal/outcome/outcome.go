// Package outcome classifies transport results into successes and typed
// failures.
package outcome

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cftops/cftctl/internal/conn"
	"golang.org/x/exp/slices"
)

// Service names the remote server in error messages.
const Service = "Axway Transfer CFT"

var ErrNotFound = errors.New("resource not found")

// Outcome is a successful result. Changed is derived from the status code
// returned by the server, never guessed.
type Outcome struct {
	Changed bool `json:"changed"`
	Body    any  `json:"body,omitempty"`
}

// Table lists the status codes an operation accepts. Success codes report
// an unchanged (synchronous) result, Changed codes an accepted change.
type Table struct {
	Success []int
	Changed []int
}

var (
	// Read is used by every GET.
	Read = Table{Success: []int{http.StatusOK}}
	// Mutate is used by DELETE and the PUT lifecycle actions, which the server
	// may either apply immediately or queue.
	Mutate = Table{Success: []int{http.StatusOK}, Changed: []int{http.StatusAccepted}}
	// Create is used by the POST transfer requests.
	Create = Table{Success: []int{http.StatusCreated}, Changed: []int{http.StatusAccepted}}
)

// Classify interprets resp against t.
func Classify(resp conn.Response, t Table) (Outcome, error) {
	switch {
	case slices.Contains(t.Changed, resp.Code):
		return Outcome{Changed: true, Body: resp.Contents}, nil
	case slices.Contains(t.Success, resp.Code):
		return Outcome{Changed: false, Body: resp.Contents}, nil
	default:
		return Outcome{}, &RemoteOperationError{Status: resp.Code, Body: resp.Contents}
	}
}

// RemoteOperationError is returned when the server answers with a status
// outside of the operation's table.
type RemoteOperationError struct {
	Status int
	Body   any
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s returned error %d with message %s", Service, e.Status, render(e.Body))
}

// Is makes a 404 failure match ErrNotFound.
func (e *RemoteOperationError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// ValidationError reports inputs that are missing or conflict with each
// other. It is always returned before any request is sent.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameters: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func render(body any) string {
	switch b := body.(type) {
	case nil:
		return ""
	case string:
		return b
	}
	out, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprint(body)
	}
	return string(out)
}
