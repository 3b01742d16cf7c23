// Package params encodes sparse, optional request parameters into query strings
// and request payloads. Only entries holding a truthy value are kept, and the
// order in which entries were added is the order in which they are emitted.
package params

import (
	"fmt"
	"reflect"
	"strings"
)

// Param is a single named parameter.
type Param struct {
	Name  string
	Value any
}

// Params is an insertion-ordered set of parameters.
type Params []Param

// New returns an empty parameter set.
func New() Params {
	return Params{}
}

// Add appends the named parameter and returns the extended set. Falsy values
// are kept here and filtered out when encoding.
func (p Params) Add(name string, value any) Params {
	return append(p, Param{Name: name, Value: value})
}

// Query encodes the truthy parameters as name=value pairs joined by '&'.
// Values are not escaped; escaping belongs to the transport.
func (p Params) Query() string {
	var builder strings.Builder
	for _, param := range p {
		if !Truthy(param.Value) {
			continue
		}
		builder.WriteRune('&')
		builder.WriteString(param.Name)
		builder.WriteRune('=')
		builder.WriteString(format(param.Value))
	}
	return strings.TrimPrefix(builder.String(), "&")
}

// Payload returns the truthy parameters as a request body object.
func (p Params) Payload() map[string]any {
	m := map[string]any{}
	for _, param := range p {
		if !Truthy(param.Value) {
			continue
		}
		m[param.Name] = deref(param.Value)
	}
	return m
}

// Parse decodes a query produced by Query back into a parameter set. All
// values are returned as strings.
func Parse(query string) Params {
	p := New()
	if query == "" {
		return p
	}
	for _, pair := range strings.Split(query, "&") {
		name, value, _ := strings.Cut(pair, "=")
		p = p.Add(name, value)
	}
	return p
}

// Truthy reports whether v should be serialized. Nil, empty strings, zero
// numbers, false and empty collections are all falsy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return Truthy(rv.Elem().Interface())
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	default:
		return !rv.IsZero()
	}
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Interface()
}

// format renders a value for a query string. String slices are joined with
// commas, which is how the server expects field lists.
func format(v any) string {
	v = deref(v)
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case fmt.Stringer:
		return val.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts = append(parts, fmt.Sprint(rv.Index(i).Interface()))
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}
