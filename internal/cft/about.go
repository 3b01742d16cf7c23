package cft

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cftops/cftctl/internal/outcome"
	"github.com/cftops/cftctl/internal/semver"
	"golang.org/x/exp/slices"
)

const aboutURI = "/about"

// About describes the Transfer CFT server.
type About struct {
	Version          string `json:"version"`
	Level            string `json:"level"`
	System           string `json:"system"`
	ServerTime       string `json:"server_time"`
	ServerUTC        string `json:"server_utc"`
	MultinodeEnabled bool   `json:"multinode_enabled"`
	CGEnabled        bool   `json:"cg_enabled"`
	InstanceID       string `json:"instance_id"`
}

// ParsedVersion parses the reported product version.
func (a About) ParsedVersion() (semver.Version, error) {
	return semver.Parse(a.Version)
}

// About fetches the server description.
func (c *Client) About(ctx context.Context) (About, error) {
	out, err := c.do(ctx, http.MethodGet, aboutURI, nil, outcome.Read)
	if err != nil {
		return About{}, err
	}
	body, _ := out.Body.(map[string]any)
	str := func(key string) string {
		v, ok := body[key]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	return About{
		Version:          str("version"),
		Level:            str("level"),
		System:           str("system"),
		ServerTime:       str("server_time"),
		ServerUTC:        str("server_utc"),
		MultinodeEnabled: FlattenBool(body["multinode_enabled"]),
		CGEnabled:        FlattenBool(body["cg_enabled"]),
		InstanceID:       str("instance_id"),
	}, nil
}

var truthy = []string{"y", "yes", "on", "1", "true", "t", "enabled", "True", "YES", "Yes", "ON", "On", "TRUE", "Y", "T"}

// FlattenBool interprets the loosely typed flags reported by the server.
// Anything not recognised as true is false.
func FlattenBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b == 1
	case string:
		return slices.Contains(truthy, b)
	}
	return false
}
