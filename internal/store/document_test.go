package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_ID(t *testing.T) {
	assert.Equal(t, "msg-1", Document{"id": "msg-1"}.ID())
	assert.Equal(t, "", Document{}.ID())
	assert.Equal(t, "", Document{"id": 42}.ID())
}

func TestDocument_Has(t *testing.T) {
	doc := Document{"usage": nil, "content": "hello"}

	assert.True(t, doc.Has("usage"), "nil value still counts as defined")
	assert.True(t, doc.Has("content"))
	assert.False(t, doc.Has("feedback"))
}

func TestDocument_Usage(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		_, ok := Document{}.Usage()
		assert.False(t, ok)
	})

	t.Run("present", func(t *testing.T) {
		doc := Document{"usage": map[string]any{"total_tokens": float64(12)}}
		usage, ok := doc.Usage()
		require.True(t, ok)
		assert.Equal(t, float64(12), usage["total_tokens"])
	})
}

func TestDocument_Clone(t *testing.T) {
	doc := Document{
		"id":      "msg-1",
		"usage":   map[string]any{"total_tokens": nil},
		"history": []any{map[string]any{"rev": float64(1)}},
		"content": "hello",
	}

	clone := doc.Clone()
	require.Equal(t, doc, clone)

	// Mutating the clone must not leak into the original.
	clone["content"] = "changed"
	clone["usage"].(map[string]any)["total_tokens"] = float64(99)
	clone["history"].([]any)[0].(map[string]any)["rev"] = float64(2)

	assert.Equal(t, "hello", doc["content"])
	assert.Nil(t, doc["usage"].(map[string]any)["total_tokens"])
	assert.Equal(t, float64(1), doc["history"].([]any)[0].(map[string]any)["rev"])
}

func TestNullUsage(t *testing.T) {
	usage := NullUsage()

	require.Len(t, usage, 3)
	for _, field := range []string{"completion_tokens", "prompt_tokens", "total_tokens"} {
		v, ok := usage[field]
		assert.True(t, ok, field)
		assert.Nil(t, v, field)
	}
}

func TestUsageDefined(t *testing.T) {
	require.NotNil(t, UsageDefined(true))
	assert.True(t, *UsageDefined(true))
	assert.False(t, *UsageDefined(false))
}
