// Package migrate implements the batch field migration procedure: discover
// matching documents, decide which ones need the change, apply the patch in
// bounded-concurrency batches, and spot-check a sample afterwards.
package migrate

import (
	"time"

	"github.com/snikjou/usagemig/internal/constants"
	"github.com/snikjou/usagemig/internal/store"
)

// Direction selects which patch a run applies.
type Direction int

const (
	// Forward adds the usage field with null token counters.
	Forward Direction = iota
	// Reverse removes the usage field from documents this run id added it to.
	Reverse
	// Strip removes the usage field regardless of attribution.
	Strip
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case Strip:
		return "strip"
	default:
		return "unknown"
	}
}

// Migration parameterizes one run: the discovery predicate, the direction,
// and the run identifier stamped as provenance.
type Migration struct {
	// DocType and Role scope discovery to candidate documents.
	DocType string
	Role    string
	// RunID is the updatedBy provenance marker for forward runs and the
	// attribution filter for reverse runs.
	RunID string
	// Direction selects the patch.
	Direction Direction
}

// Query returns the discovery predicate for the migration. Forward and
// reverse runs fetch all candidate documents and classify them in memory;
// strip runs narrow discovery to documents that have a usage field at all.
func (m *Migration) Query() store.Query {
	q := store.Query{DocType: m.DocType}
	switch m.Direction {
	case Strip:
		q.UsageDefined = store.UsageDefined(true)
	default:
		q.Role = m.Role
	}
	return q
}

// NeedsChange reports whether a discovered document is still waiting for
// this migration's patch. Pure and side-effect-free.
func (m *Migration) NeedsChange(doc store.Document) bool {
	switch m.Direction {
	case Forward:
		return !doc.Has(constants.FieldUsage)
	case Reverse:
		// Never touch documents this run did not originally modify. An
		// empty run id matches nothing rather than every document whose
		// updatedBy is absent.
		return m.RunID != "" &&
			doc.Has(constants.FieldUsage) &&
			doc.GetString(constants.FieldUpdatedBy) == m.RunID
	case Strip:
		return doc.Has(constants.FieldUsage)
	default:
		return false
	}
}

// Partition classifies discovered documents into those needing the patch
// and those already in the target state.
func (m *Migration) Partition(docs []store.Document) (toMigrate, alreadyDone []store.Document) {
	for _, doc := range docs {
		if m.NeedsChange(doc) {
			toMigrate = append(toMigrate, doc)
		} else {
			alreadyDone = append(alreadyDone, doc)
		}
	}
	return toMigrate, alreadyDone
}

// ApplyPatch mutates the document in place: the direction's field-level
// change plus the provenance stamps. Only usage, updatedAt, and updatedBy
// may differ afterwards.
func (m *Migration) ApplyPatch(doc store.Document, now time.Time) {
	switch m.Direction {
	case Forward:
		doc[constants.FieldUsage] = store.NullUsage()
		doc[constants.FieldUpdatedBy] = m.RunID
	case Reverse:
		if m.NeedsChange(doc) {
			delete(doc, constants.FieldUsage)
		}
		doc[constants.FieldUpdatedBy] = constants.RevertedBy
	case Strip:
		delete(doc, constants.FieldUsage)
		doc[constants.FieldUpdatedBy] = constants.RevertedBy
	}
	doc[constants.FieldUpdatedAt] = now.UTC().Format(constants.UpdatedAtFormat)
}

// ExpectedUpdatedBy is the provenance marker a mutated document must carry
// after this migration, used by the spot check.
func (m *Migration) ExpectedUpdatedBy() string {
	if m.Direction == Forward {
		return m.RunID
	}
	return constants.RevertedBy
}
