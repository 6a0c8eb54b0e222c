package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/snikjou/usagemig/internal/errors"
	"github.com/snikjou/usagemig/internal/store"
)

// MemContainer is an in-memory store.Container for tests. It serves
// id-ordered query pages from its document set and can inject failures:
// transport-limit errors above a configurable page size, and per-document
// upsert errors.
type MemContainer struct {
	mu   sync.Mutex
	docs map[string]store.Document

	// FailPageSizeAbove injects a transport-limit error whenever a query
	// asks for a page larger than this. Zero disables the injection.
	FailPageSizeAbove int
	// FailOffsets injects a transport-limit error for queries starting at
	// the listed offsets, emulating an oversized record in that range.
	FailOffsets map[int]bool
	// FailUpsertIDs lists document ids whose upserts fail.
	FailUpsertIDs map[string]bool

	queryCalls  int
	upsertCalls int
}

// NewMemContainer creates a container holding clones of the given documents.
func NewMemContainer(docs ...store.Document) *MemContainer {
	m := &MemContainer{docs: make(map[string]store.Document, len(docs))}
	for _, doc := range docs {
		m.docs[doc.ID()] = doc.Clone()
	}
	return m
}

// QueryPage implements store.Container.
func (m *MemContainer) QueryPage(_ context.Context, q store.Query, offset, limit int) ([]store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queryCalls++

	if m.FailPageSizeAbove > 0 && limit > m.FailPageSizeAbove {
		return nil, apperrors.ErrResponseTooLarge("response header too large", nil)
	}
	if m.FailOffsets[offset] {
		return nil, apperrors.ErrResponseTooLarge("response header too large", nil)
	}

	ids := make([]string, 0, len(m.docs))
	for id, doc := range m.docs {
		if matches(q, doc) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if len(ids) > limit {
		ids = ids[:limit]
	}

	page := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		page = append(page, m.docs[id].Clone())
	}
	return page, nil
}

// ReadByID implements store.Container.
func (m *MemContainer) ReadByID(_ context.Context, id string) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, apperrors.ErrNotFound(fmt.Sprintf("document not found: %s", id), nil)
	}
	return doc.Clone(), nil
}

// Upsert implements store.Container.
func (m *MemContainer) Upsert(_ context.Context, doc store.Document) (store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.upsertCalls++

	if m.FailUpsertIDs[doc.ID()] {
		return nil, apperrors.ErrDatabaseError("injected upsert failure", nil)
	}

	m.docs[doc.ID()] = doc.Clone()
	return doc, nil
}

// Get returns a clone of the stored document, or nil when absent.
func (m *MemContainer) Get(id string) store.Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil
	}
	return doc.Clone()
}

// Put stores a clone of the document directly, bypassing failure injection.
func (m *MemContainer) Put(doc store.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID()] = doc.Clone()
}

// Len returns the number of stored documents.
func (m *MemContainer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// QueryCalls returns how many query pages were requested.
func (m *MemContainer) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

// UpsertCalls returns how many upserts were attempted.
func (m *MemContainer) UpsertCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertCalls
}

func matches(q store.Query, doc store.Document) bool {
	if q.DocType != "" && doc.GetString("type") != q.DocType {
		return false
	}
	if q.Role != "" && doc.GetString("role") != q.Role {
		return false
	}
	if q.UsageDefined != nil && doc.Has("usage") != *q.UsageDefined {
		return false
	}
	if q.UpdatedBy != "" && doc.GetString("updatedBy") != q.UpdatedBy {
		return false
	}
	return true
}
