package dynamodb

import (
	stderrors "errors"
	"testing"

	apperrors "github.com/snikjou/usagemig/internal/errors"
	"github.com/snikjou/usagemig/internal/store"
	"github.com/snikjou/usagemig/internal/testutil"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	// Repository can be created with a nil client; actual DynamoDB
	// operations would fail, but creation should not.
	c := New(nil, "conversations", "type-id-index", testutil.SilentLogger())

	require.NotNil(t, c)
	var _ store.Container = c
}

func TestIsResponseTooLarge(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "header too long",
			err:      stderrors.New("https response: Header value is too long"),
			expected: true,
		},
		{
			name:     "line too long",
			err:      stderrors.New("read error: LineTooLong"),
			expected: true,
		},
		{
			name:     "response size exceeded",
			err:      stderrors.New("Response size exceeded the maximum allowed size"),
			expected: true,
		},
		{
			name:     "unrelated error",
			err:      stderrors.New("connection refused"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isResponseTooLarge(tt.err))
		})
	}
}

func TestMapError(t *testing.T) {
	c := New(nil, "conversations", "type-id-index", testutil.SilentLogger())

	tests := []struct {
		name         string
		err          error
		expectedCode string
	}{
		{
			name:         "transport limit",
			err:          stderrors.New("Header value is too long"),
			expectedCode: apperrors.ErrCodeResponseTooLarge,
		},
		{
			name:         "resource not found",
			err:          &types.ResourceNotFoundException{},
			expectedCode: apperrors.ErrCodeNotFound,
		},
		{
			name:         "generic failure",
			err:          stderrors.New("throttled"),
			expectedCode: apperrors.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := c.mapError("query documents", tt.err)
			assert.Equal(t, tt.expectedCode, apperrors.GetErrorCode(mapped))
			assert.ErrorIs(t, mapped, tt.err)
		})
	}
}

func TestDocumentItemRoundTrip(t *testing.T) {
	doc := store.Document{
		"id":             "msg-1",
		"type":           "message",
		"role":           "assistant",
		"content":        "hello",
		"feedback":       nil,
		"score":          float64(3),
		"usage":          store.NullUsage(),
		"conversationId": "conv-9",
	}

	item, err := toItem(doc)
	require.NoError(t, err)

	back, err := fromItem(item)
	require.NoError(t, err)

	assert.Equal(t, "msg-1", back.ID())
	assert.Equal(t, "message", back.GetString("type"))
	assert.Equal(t, float64(3), back["score"])
	assert.True(t, back.Has("feedback"), "explicit null survives the round trip")
	assert.Nil(t, back["feedback"])

	usage, ok := back.Usage()
	require.True(t, ok)
	assert.Nil(t, usage["completion_tokens"])
	assert.Nil(t, usage["prompt_tokens"])
	assert.Nil(t, usage["total_tokens"])
}

func TestBuildQueryExpression(t *testing.T) {
	t.Run("type only", func(t *testing.T) {
		expr, err := buildQueryExpression(store.Query{DocType: "message"})
		require.NoError(t, err)

		assert.NotNil(t, expr.KeyCondition())
		assert.Nil(t, expr.Filter())
	})

	t.Run("full predicate", func(t *testing.T) {
		expr, err := buildQueryExpression(store.Query{
			DocType:      "message",
			Role:         "assistant",
			UsageDefined: store.UsageDefined(false),
			UpdatedBy:    "121",
		})
		require.NoError(t, err)

		require.NotNil(t, expr.Filter())
		assert.Contains(t, *expr.Filter(), "attribute_not_exists")

		values := expr.Values()
		assert.Len(t, values, 3) // type key value, role, updatedBy
	})

	t.Run("usage defined", func(t *testing.T) {
		expr, err := buildQueryExpression(store.Query{
			DocType:      "message",
			UsageDefined: store.UsageDefined(true),
		})
		require.NoError(t, err)

		require.NotNil(t, expr.Filter())
		assert.Contains(t, *expr.Filter(), "attribute_exists")
	})
}
