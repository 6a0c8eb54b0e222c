// Package store defines the document container contract the migrator runs
// against. Documents are open maps: a handful of named fields get inspected
// or rewritten, everything else is opaque payload that must survive a
// mutation untouched.
package store

import (
	"github.com/snikjou/usagemig/internal/constants"
)

// Document is the unit of record: a dynamic field-name-to-value mapping.
// Values follow JSON conventions (string, float64, bool, nil,
// map[string]any, []any).
type Document map[string]any

// ID returns the document's id field, or "" when absent.
func (d Document) ID() string {
	return d.GetString(constants.FieldID)
}

// GetString returns the named field as a string, or "" when the field is
// absent or not a string.
func (d Document) GetString(field string) string {
	if v, ok := d[field].(string); ok {
		return v
	}
	return ""
}

// Has reports whether the named field is defined on the document.
// A field explicitly set to nil still counts as defined.
func (d Document) Has(field string) bool {
	_, ok := d[field]
	return ok
}

// Usage returns the usage sub-object, if defined.
func (d Document) Usage() (map[string]any, bool) {
	v, ok := d[constants.FieldUsage]
	if !ok {
		return nil, false
	}
	m, _ := v.(map[string]any)
	return m, true
}

// Clone returns a deep copy of the document. Mutation and verification
// both work on clones so the caller's view of the pre-mutation state stays
// intact.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneMap(d))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Document:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// NullUsage returns the usage sub-object the forward migration installs:
// all token counters present but null.
func NullUsage() map[string]any {
	return map[string]any{
		constants.UsageCompletionTokens: nil,
		constants.UsagePromptTokens:     nil,
		constants.UsageTotalTokens:      nil,
	}
}
