package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntry(attemptID, quizID int64, completedAt time.Time) *Entry {
	return &Entry{
		AttemptID:    attemptID,
		QuizID:       quizID,
		QuizTitle:    "Go Basics",
		ScorePercent: 80,
		Grade:        "B+",
		NumCorrect:   4,
		NumAnswered:  5,
		Duration:     "3 min",
		CompletedAt:  completedAt,
	}
}

func TestSaveAssignsID(t *testing.T) {
	store := openTestStore(t)

	entry := sampleEntry(10, 1, time.Now())
	require.NoError(t, store.Save(entry))
	assert.NotZero(t, entry.ID)

	second := sampleEntry(11, 1, time.Now())
	require.NoError(t, store.Save(second))
	assert.Greater(t, second.ID, entry.ID)
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := int64(0); i < 3; i++ {
		require.NoError(t, store.Save(sampleEntry(100+i, 1, base.Add(time.Duration(i)*time.Hour))))
	}

	entries, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(102), entries[0].AttemptID)
	assert.Equal(t, int64(100), entries[2].AttemptID)

	limited, err := store.List(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(102), limited[0].AttemptID)
}

func TestListTiesBreakOnInsertionOrder(t *testing.T) {
	store := openTestStore(t)

	same := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(sampleEntry(1, 1, same)))
	require.NoError(t, store.Save(sampleEntry(2, 1, same)))

	entries, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].AttemptID)
}

func TestByQuizFilters(t *testing.T) {
	store := openTestStore(t)

	now := time.Now()
	require.NoError(t, store.Save(sampleEntry(1, 7, now)))
	require.NoError(t, store.Save(sampleEntry(2, 8, now.Add(time.Minute))))
	require.NoError(t, store.Save(sampleEntry(3, 7, now.Add(2*time.Minute))))

	entries, err := store.ByQuiz(7)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(3), entries[0].AttemptID)
	assert.Equal(t, int64(1), entries[1].AttemptID)

	none, err := store.ByQuiz(99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLast(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Last()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(sampleEntry(5, 1, time.Now())))
	last, err := store.Last()
	require.NoError(t, err)
	assert.Equal(t, int64(5), last.AttemptID)
}

func TestRoundTripPreservesFields(t *testing.T) {
	store := openTestStore(t)

	completed := time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)
	saved := sampleEntry(42, 3, completed)
	require.NoError(t, store.Save(saved))

	entries, err := store.List(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, saved.AttemptID, got.AttemptID)
	assert.Equal(t, saved.QuizID, got.QuizID)
	assert.Equal(t, saved.QuizTitle, got.QuizTitle)
	assert.Equal(t, saved.ScorePercent, got.ScorePercent)
	assert.Equal(t, saved.Grade, got.Grade)
	assert.Equal(t, saved.NumCorrect, got.NumCorrect)
	assert.Equal(t, saved.NumAnswered, got.NumAnswered)
	assert.Equal(t, saved.Duration, got.Duration)
	assert.True(t, got.CompletedAt.Equal(completed))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(sampleEntry(1, 1, time.Now())))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List(0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
