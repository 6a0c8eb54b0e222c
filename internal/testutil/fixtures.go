// Package testutil provides shared testing utilities and helpers.
package testutil

import (
	"io"
	"log/slog"

	"github.com/snikjou/usagemig/internal/store"
)

// SilentLogger creates a logger that discards all output.
func SilentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// DocumentBuilder provides a fluent interface for building test documents.
type DocumentBuilder struct {
	doc store.Document
}

// NewDocumentBuilder creates a DocumentBuilder with sensible defaults: an
// assistant message document without a usage field.
func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{
		doc: store.Document{
			"id":             "msg-test-123",
			"type":           "message",
			"role":           "assistant",
			"userId":         "user-test-1",
			"conversationId": "conv-test-1",
			"content":        "the assistant says hello",
			"feedback":       nil,
			"createdAt":      "2024-03-01T10:00:00.000000Z",
		},
	}
}

// WithID sets the document id.
func (b *DocumentBuilder) WithID(id string) *DocumentBuilder {
	b.doc["id"] = id
	return b
}

// WithType sets the type classification field.
func (b *DocumentBuilder) WithType(docType string) *DocumentBuilder {
	b.doc["type"] = docType
	return b
}

// WithRole sets the role classification field.
func (b *DocumentBuilder) WithRole(role string) *DocumentBuilder {
	b.doc["role"] = role
	return b
}

// WithNullUsage adds the all-null usage sub-object.
func (b *DocumentBuilder) WithNullUsage() *DocumentBuilder {
	b.doc["usage"] = store.NullUsage()
	return b
}

// WithUsage sets a populated usage sub-object.
func (b *DocumentBuilder) WithUsage(completion, prompt, total float64) *DocumentBuilder {
	b.doc["usage"] = map[string]any{
		"completion_tokens": completion,
		"prompt_tokens":     prompt,
		"total_tokens":      total,
	}
	return b
}

// WithUpdatedBy sets the provenance marker.
func (b *DocumentBuilder) WithUpdatedBy(runID string) *DocumentBuilder {
	b.doc["updatedBy"] = runID
	return b
}

// WithField sets an arbitrary payload field.
func (b *DocumentBuilder) WithField(name string, value any) *DocumentBuilder {
	b.doc[name] = value
	return b
}

// Build returns the constructed document.
func (b *DocumentBuilder) Build() store.Document {
	return b.doc.Clone()
}
