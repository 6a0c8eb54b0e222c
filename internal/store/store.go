package store

import (
	"context"
)

// Query describes a discovery predicate over the container. Zero-valued
// fields are not applied.
type Query struct {
	// DocType filters on the type field (GSI partition on DynamoDB).
	DocType string
	// Role filters on the role field.
	Role string
	// UsageDefined, when set, filters on presence or absence of the usage
	// field.
	UsageDefined *bool
	// UpdatedBy, when non-empty, filters on the updatedBy provenance marker.
	UpdatedBy string
}

// Container is the subset of the document store the migrator consumes.
// This abstraction allows for different implementations (DynamoDB, an
// in-memory fake for tests) without changing the migration logic.
type Container interface {
	// QueryPage returns up to limit documents matching q, in deterministic
	// id order, skipping the first offset matches. A page shorter than
	// limit marks end-of-results. A transport-limit failure surfaces as an
	// error satisfying errors.IsResponseTooLarge.
	QueryPage(ctx context.Context, q Query, offset, limit int) ([]Document, error)

	// ReadByID fetches a single document. Returns a NOT_FOUND error when
	// no document has this id.
	ReadByID(ctx context.Context, id string) (Document, error)

	// Upsert overwrites the document keyed by its id (last-write-wins) and
	// returns the stored document. The operation is idempotent.
	Upsert(ctx context.Context, doc Document) (Document, error)
}

// UsageDefined builds the optional presence filter for a Query.
func UsageDefined(defined bool) *bool {
	return &defined
}
