package constants

// Migration defaults. These are the knobs of the batch migration procedure
// and can all be overridden through configuration.
const (
	// DefaultBatchSize is the number of documents dispatched per batch.
	DefaultBatchSize = 50
	// DefaultConcurrency bounds in-flight writes within a batch.
	DefaultConcurrency = 10
	// DefaultPageSize is the starting page size for discovery queries.
	DefaultPageSize = 1000
	// MinPageSize is the floor the discovery page size shrinks to before
	// the skip-oversized policy (or a fatal error) kicks in.
	MinPageSize = 100
	// DefaultSpotCheckSize is how many mutated documents get re-read and
	// verified after a live run.
	DefaultSpotCheckSize = 5
	// DryRunPreviewSize is how many candidate documents a dry run prints.
	DryRunPreviewSize = 3
	// DefaultStripLimit caps how many documents a strip run touches.
	DefaultStripLimit = 1000
)

// Document field names the migrator inspects or rewrites. Everything else
// in a document is opaque payload and must survive a mutation unchanged.
const (
	FieldID             = "id"
	FieldType           = "type"
	FieldRole           = "role"
	FieldUserID         = "userId"
	FieldConversationID = "conversationId"
	FieldContent        = "content"
	FieldFeedback       = "feedback"
	FieldCreatedAt      = "createdAt"
	FieldUsage          = "usage"
	FieldUpdatedAt      = "updatedAt"
	FieldUpdatedBy      = "updatedBy"
)

// Usage sub-object field names.
const (
	UsageCompletionTokens = "completion_tokens"
	UsagePromptTokens     = "prompt_tokens"
	UsageTotalTokens      = "total_tokens"
)

// RevertedBy is the updatedBy sentinel stamped on documents whose usage
// field was removed by a revert or strip run.
const RevertedBy = "reverted"

// Default discovery predicate values and table layout.
const (
	DefaultDocType   = "message"
	DefaultDocRole   = "assistant"
	DefaultIndexName = "type-id-index"
)

// UpdatedAtFormat renders updatedAt stamps as ISO-8601 UTC with a Z suffix
// and fixed six-digit microseconds, matching the byte shape of the
// timestamps already present in the chat-history documents.
const UpdatedAtFormat = "2006-01-02T15:04:05.000000Z07:00"
