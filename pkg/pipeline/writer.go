package pipeline

import (
	"context"
	"fmt"

	"github.com/umputun/mailscope/pkg/domain"
)

// Writer persists enrichment results. Single mode updates the parent row in place,
// split mode replaces story rows of the parent and marks the parent as split.
type Writer struct {
	store Store
}

// NewWriter makes a writer over the store
func NewWriter(store Store) *Writer {
	return &Writer{store: store}
}

// PersistSingle stores the result on the existing row, it never creates a row
func (w *Writer) PersistSingle(ctx context.Context, id string, res domain.EnrichmentResult) error {
	if err := w.store.UpdateEnrichment(ctx, id, res); err != nil {
		return fmt.Errorf("persist result of %s: %w", id, err)
	}
	return nil
}

// PersistSplit upserts story rows with ids {parent}_story_{i}, removes stale stories of the
// parent and sets the parent summary to the split sentinel. Returns the number of story rows
// inserted or changed, writing the same stories again changes nothing.
func (w *Writer) PersistSplit(ctx context.Context, parentID, handler string, stories []domain.Document) (int, error) {
	if len(stories) == 0 {
		return 0, fmt.Errorf("persist stories of %s: no stories", parentID)
	}
	for i := range stories {
		if want := domain.StoryID(parentID, i); stories[i].ID != want {
			return 0, fmt.Errorf("persist stories of %s: story %d has id %q, expected %q", parentID, i, stories[i].ID, want)
		}
	}
	changed, err := w.store.ReplaceStories(ctx, parentID, domain.SplitSummary(len(stories)), handler, stories)
	if err != nil {
		return 0, fmt.Errorf("persist stories of %s: %w", parentID, err)
	}
	return changed, nil
}
