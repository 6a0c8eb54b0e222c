package migrate

import (
	stderrors "errors"
	"fmt"
	"testing"

	apperrors "github.com/snikjou/usagemig/internal/errors"
	"github.com/snikjou/usagemig/internal/store"
	"github.com/snikjou/usagemig/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedDocuments(n int) []store.Document {
	docs := make([]store.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, testutil.NewDocumentBuilder().WithID(fmt.Sprintf("msg-%04d", i)).Build())
	}
	return docs
}

func messageQuery() store.Query {
	return store.Query{DocType: "message", Role: "assistant"}
}

func TestDiscover_SinglePage(t *testing.T) {
	mem := testutil.NewMemContainer(seedDocuments(12)...)

	docs, err := Discover(t.Context(), mem, messageQuery(), DiscoveryOptions{}, testutil.SilentLogger())

	require.NoError(t, err)
	assert.Len(t, docs, 12)
}

func TestDiscover_MultiplePages(t *testing.T) {
	mem := testutil.NewMemContainer(seedDocuments(25)...)

	docs, err := Discover(t.Context(), mem, messageQuery(), DiscoveryOptions{PageSize: 10, MinPageSize: 5}, testutil.SilentLogger())

	require.NoError(t, err)
	require.Len(t, docs, 25)

	// Deterministic id order, no duplicates.
	seen := map[string]bool{}
	var prev string
	for _, doc := range docs {
		id := doc.ID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestDiscover_ExactPageBoundary(t *testing.T) {
	// 20 documents at page size 10: the second page is full, the third is
	// empty and terminates discovery.
	mem := testutil.NewMemContainer(seedDocuments(20)...)

	docs, err := Discover(t.Context(), mem, messageQuery(), DiscoveryOptions{PageSize: 10, MinPageSize: 5}, testutil.SilentLogger())

	require.NoError(t, err)
	assert.Len(t, docs, 20)
}

func TestDiscover_ShrinksAndRestartsOnOversizedResponse(t *testing.T) {
	// Pages of 1000 and 500 overflow the transport limit; 250 fits. The
	// shrink-and-restart pass must still return the exact document set.
	mem := testutil.NewMemContainer(seedDocuments(300)...)
	mem.FailPageSizeAbove = 250

	docs, err := Discover(t.Context(), mem, messageQuery(), DiscoveryOptions{PageSize: 1000, MinPageSize: 100}, testutil.SilentLogger())

	require.NoError(t, err)
	require.Len(t, docs, 300)

	seen := map[string]bool{}
	for _, doc := range docs {
		assert.False(t, seen[doc.ID()])
		seen[doc.ID()] = true
	}
}

func TestDiscover_FatalAtFloorWithoutSkipPolicy(t *testing.T) {
	mem := testutil.NewMemContainer(seedDocuments(10)...)
	mem.FailPageSizeAbove = 50 // below the floor, so shrinking never helps

	_, err := Discover(t.Context(), mem, messageQuery(), DiscoveryOptions{PageSize: 400, MinPageSize: 100}, testutil.SilentLogger())

	require.Error(t, err)
	assert.True(t, apperrors.IsResponseTooLarge(err))
}

func TestDiscover_SkipOversizedRange(t *testing.T) {
	// An oversized record sits in the [100,200) range and the page size is
	// already at the floor. With the opt-in policy discovery skips that
	// range and carries on; its 100 documents stay undiscovered.
	mem := testutil.NewMemContainer(seedDocuments(300)...)
	mem.FailOffsets = map[int]bool{100: true}

	docs, err := Discover(t.Context(), mem, messageQuery(), DiscoveryOptions{
		PageSize:      100,
		MinPageSize:   100,
		SkipOversized: true,
	}, testutil.SilentLogger())

	require.NoError(t, err)
	assert.Len(t, docs, 200)
	for _, doc := range docs {
		assert.NotEqual(t, "msg-0150", doc.ID(), "skipped range must stay undiscovered")
	}
}

func TestDiscover_OversizedRangeFatalWithoutOptIn(t *testing.T) {
	mem := testutil.NewMemContainer(seedDocuments(300)...)
	mem.FailOffsets = map[int]bool{100: true}

	_, err := Discover(t.Context(), mem, messageQuery(), DiscoveryOptions{
		PageSize:    100,
		MinPageSize: 100,
	}, testutil.SilentLogger())

	require.Error(t, err)
	assert.True(t, apperrors.IsResponseTooLarge(err))
}

func TestDiscover_NonSizeErrorIsFatal(t *testing.T) {
	mc := testutil.NewMockContainer(t)
	boom := apperrors.ErrDatabaseError("query failed", stderrors.New("throttled"))
	mc.On("QueryPage", mock.Anything, mock.Anything, 0, mock.Anything).Return(nil, boom)

	_, err := Discover(t.Context(), mc, messageQuery(), DiscoveryOptions{}, testutil.SilentLogger())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	mc.AssertExpectations(t)
}

func TestDiscover_MaxDocumentsCap(t *testing.T) {
	mem := testutil.NewMemContainer(seedDocuments(50)...)

	docs, err := Discover(t.Context(), mem, messageQuery(), DiscoveryOptions{PageSize: 20, MinPageSize: 10, MaxDocuments: 25}, testutil.SilentLogger())

	require.NoError(t, err)
	assert.Len(t, docs, 25)
}
