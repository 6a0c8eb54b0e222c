package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/snikjou/usagemig/internal/store"
)

// MockContainer mocks the store.Container interface.
type MockContainer struct {
	mock.Mock
}

// NewMockContainer creates a MockContainer.
func NewMockContainer(_ *testing.T) *MockContainer {
	return &MockContainer{}
}

// QueryPage implements store.Container.
func (m *MockContainer) QueryPage(ctx context.Context, q store.Query, offset, limit int) ([]store.Document, error) {
	args := m.Called(ctx, q, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Document), args.Error(1)
}

// ReadByID implements store.Container.
func (m *MockContainer) ReadByID(ctx context.Context, id string) (store.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(store.Document), args.Error(1)
}

// Upsert implements store.Container.
func (m *MockContainer) Upsert(ctx context.Context, doc store.Document) (store.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(store.Document), args.Error(1)
}
