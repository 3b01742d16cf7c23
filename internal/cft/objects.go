package cft

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cftops/cftctl/internal/outcome"
	"github.com/cftops/cftctl/internal/params"
	"golang.org/x/exp/slices"
)

const objectsURI = "/objects"

// ObjectType is a flow configuration object type.
type ObjectType string

const (
	ObjectSend ObjectType = "CFTSEND"
	ObjectRecv ObjectType = "CFTRECV"
	ObjectPart ObjectType = "CFTPART"
	ObjectDest ObjectType = "CFTDEST"
)

var ObjectTypes = []ObjectType{ObjectSend, ObjectRecv, ObjectPart, ObjectDest}

// ParseObjectType accepts an object type in any case.
func ParseObjectType(s string) (ObjectType, error) {
	t := ObjectType(strings.ToUpper(s))
	if !slices.Contains(ObjectTypes, t) {
		return "", fmt.Errorf("unknown object type %q", s)
	}
	return t, nil
}

// Key is the lower case name used both in the path and in results.
func (t ObjectType) Key() string {
	return strings.ToLower(string(t))
}

// Objects lists the configuration objects of type t. A zero limit leaves the
// page size to the server.
func (c *Client) Objects(ctx context.Context, t ObjectType, offset, limit int) (any, error) {
	query := params.New().Add("offset", offset).Add("limit", limit).Query()
	path := withQuery(fmt.Sprintf("%s/%s", objectsURI, t.Key()), query)
	out, err := c.do(ctx, http.MethodGet, path, nil, outcome.Read)
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
