// Package validation carries field-level input errors back to callers so a
// form can be re-displayed with every failing field at once.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Errors maps a field name to the reasons it was rejected.
type Errors struct {
	Fields map[string][]string `json:"fieldErrors"`
}

// New returns an empty error set.
func New() *Errors {
	return &Errors{Fields: map[string][]string{}}
}

// Add records a failure for field.
func (e *Errors) Add(field, format string, args ...any) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], fmt.Sprintf(format, args...))
}

// Has reports whether field already failed.
func (e *Errors) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Empty reports whether no field failed.
func (e *Errors) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Err returns e as an error, or nil when nothing failed.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
