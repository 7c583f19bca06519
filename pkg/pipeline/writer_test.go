package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/mailscope/pkg/domain"
	"github.com/umputun/mailscope/pkg/pipeline/mocks"
	"github.com/umputun/mailscope/pkg/repository"
)

func storyDocs(parentID string, n int) []domain.Document {
	res := make([]domain.Document, 0, n)
	for i := range n {
		res = append(res, domain.Document{ID: domain.StoryID(parentID, i), Title: "story", Summary: "Rule: NewsBrief\n\nbody",
			Ordinal: i + 1})
	}
	return res
}

func TestWriter_PersistSplit(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	_, err := store.CreateIfMissing(ctx, item("p1", "Reuters <r@reuters.com>", "Daily", analysisText, "", baseTime), "Reuters")
	require.NoError(t, err)
	w := NewWriter(store)

	changed, err := w.PersistSplit(ctx, "p1", "newsbrief_english", storyDocs("p1", 3))
	require.NoError(t, err)
	assert.Equal(t, 3, changed)

	changed, err = w.PersistSplit(ctx, "p1", "newsbrief_english", storyDocs("p1", 3))
	require.NoError(t, err)
	assert.Equal(t, 0, changed, "same stories written twice change nothing")

	changed, err = w.PersistSplit(ctx, "p1", "newsbrief_english", storyDocs("p1", 2))
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
	stories, err := store.Scan(ctx, domain.DocumentFilter{ParentID: "p1"})
	require.NoError(t, err)
	assert.Len(t, stories, 2, "stale story removed")

	parent, err := store.Lookup(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.SplitSummary(2), parent.Summary)

	t.Run("missing parent", func(t *testing.T) {
		_, err := w.PersistSplit(ctx, "nope", "newsbrief_english", storyDocs("nope", 1))
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestWriter_PersistSplitValidation(t *testing.T) {
	store := &mocks.StoreMock{}
	w := NewWriter(store)

	_, err := w.PersistSplit(context.Background(), "p1", "h", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stories")

	docs := storyDocs("p1", 2)
	docs[1].ID = "p1_story_5"
	_, err = w.PersistSplit(context.Background(), "p1", "h", docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected "p1_story_1"`)
	assert.Empty(t, store.ReplaceStoriesCalls())
}

func TestWriter_PersistSingle(t *testing.T) {
	store := &mocks.StoreMock{
		UpdateEnrichmentFunc: func(ctx context.Context, id string, res domain.EnrichmentResult) error {
			if id == "missing" {
				return repository.ErrNotFound
			}
			return nil
		},
	}
	w := NewWriter(store)
	res := domain.EnrichmentResult{Summary: "Rule: Joe\n\ntext", Handler: "joe"}

	require.NoError(t, w.PersistSingle(context.Background(), "id1", res))
	require.Len(t, store.UpdateEnrichmentCalls(), 1)
	assert.Equal(t, res, store.UpdateEnrichmentCalls()[0].Res)

	err := w.PersistSingle(context.Background(), "missing", res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.Contains(t, err.Error(), "persist result of missing")
}
