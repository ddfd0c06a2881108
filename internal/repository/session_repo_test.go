package repository

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchforge/searchforge/internal/domain"
)

func newTestStore(t *testing.T, maxHistoryLen int) *SessionStore {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db, maxHistoryLen)
}

func TestGetMissingKey(t *testing.T) {
	store := newTestStore(t, 10)

	_, err := store.Get("nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPutOverwrites(t *testing.T) {
	store := newTestStore(t, 10)

	require.NoError(t, store.Put("k", "first"))
	require.NoError(t, store.Put("k", "second"))

	v, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}

func TestRecordRoundTrip(t *testing.T) {
	store := newTestStore(t, 10)

	require.NoError(t, store.PutRecord("abc", &domain.SessionRecord{
		Query: "What is X?",
		Txt:   "full transcript",
	}))

	rec, err := store.GetRecord("abc")
	require.NoError(t, err)
	assert.Equal(t, domain.SchemaVersion, rec.Schema)
	assert.Equal(t, "What is X?", rec.Query)
	assert.Equal(t, "full transcript", rec.Txt)
}

func TestLegacyRecordTreatedAsMiss(t *testing.T) {
	store := newTestStore(t, 10)

	// Pre-versioning deployments stored the bare transcript string.
	require.NoError(t, store.Put("old", "just a raw transcript"))

	_, err := store.GetRecord("old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUnversionedJSONTreatedAsMiss(t *testing.T) {
	store := newTestStore(t, 10)

	require.NoError(t, store.Put("old", `{"query":"q","txt":"t"}`))

	_, err := store.GetRecord("old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryEmptyByDefault(t *testing.T) {
	store := newTestStore(t, 10)

	turns, err := store.GetHistory("sid")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestAppendTurnKeepsOrder(t *testing.T) {
	store := newTestStore(t, 10)

	for i := 0; i < 3; i++ {
		resp := fmt.Sprintf("answer %d", i)
		require.NoError(t, store.AppendTurn("sid", domain.Turn{
			Query:       fmt.Sprintf("query %d", i),
			LLMResponse: &resp,
		}))
	}

	turns, err := store.GetHistory("sid")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "query 0", turns[0].Query)
	assert.Equal(t, "query 2", turns[2].Query)
}

func TestAppendTurnEvictsOldest(t *testing.T) {
	const maxLen = 4
	store := newTestStore(t, maxLen)

	for i := 0; i < maxLen+3; i++ {
		require.NoError(t, store.AppendTurn("sid", domain.Turn{
			Query: fmt.Sprintf("query %d", i),
		}))
	}

	turns, err := store.GetHistory("sid")
	require.NoError(t, err)
	require.Len(t, turns, maxLen)
	// Most recent turns survive, oldest first within the window.
	assert.Equal(t, "query 3", turns[0].Query)
	assert.Equal(t, "query 6", turns[maxLen-1].Query)
}

func TestHistoryIsolatedFromFlatRecord(t *testing.T) {
	store := newTestStore(t, 10)

	require.NoError(t, store.PutRecord("sid", &domain.SessionRecord{Query: "q", Txt: "t"}))
	require.NoError(t, store.AppendTurn("sid", domain.Turn{Query: "q"}))

	rec, err := store.GetRecord("sid")
	require.NoError(t, err)
	assert.Equal(t, "t", rec.Txt)

	turns, err := store.GetHistory("sid")
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}
