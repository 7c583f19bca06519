// Package pipeline runs the batch loop: fetch, classify, route, dispatch, split and persist.
// Items are processed one at a time in the given order, a failure of one item never stops
// the batch.
package pipeline

import (
	"context"

	"github.com/umputun/mailscope/pkg/digest"
	"github.com/umputun/mailscope/pkg/domain"
	"github.com/umputun/mailscope/pkg/enrich"
)

//go:generate moq -out mocks/source.go -pkg mocks -skip-ensure -fmt goimports . Source
//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// Source yields inbound items
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.InboundItem, error)
}

// Store is the result store
type Store interface {
	CreateIfMissing(ctx context.Context, item domain.InboundItem, tag string) (bool, error)
	Lookup(ctx context.Context, id string) (*domain.Document, error)
	UpdateEnrichment(ctx context.Context, id string, res domain.EnrichmentResult) error
	ReplaceStories(ctx context.Context, parentID, parentSummary, handler string, stories []domain.Document) (int, error)
	Scan(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
}

// Classifier makes tagging and ingest decisions
type Classifier interface {
	Resolve(item domain.InboundItem) (tag string, ok bool)
}

// Router maps sender tags to handler names
type Router interface {
	Route(tag string) string
}

// Dispatcher runs enrichment handlers
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, env enrich.Envelope) domain.EnrichmentResult
	Lookup(name string) enrich.Handler
	ErrorResult(handler string, err error) domain.EnrichmentResult
}

// Splitter breaks digest output into stories
type Splitter interface {
	Split(rawSummary, originalHTML string, lang digest.Lang) []domain.Story
}

// Keywords extracts short keyword lists used as actors
type Keywords interface {
	Extract(ctx context.Context, title, content string, portuguese bool) []string
}

// RunStats holds counters of a batch run
type RunStats struct {
	Fetched   int `json:"fetched"`   // items returned by sources
	Filtered  int `json:"filtered"`  // items dropped by allow and block lists
	Created   int `json:"created"`   // new rows
	Processed int `json:"processed"` // items passed to a handler
	Skipped   int `json:"skipped"`   // already enriched
	Failed    int `json:"failed"`    // items stored with an error result or not stored at all
	Split     int `json:"split"`     // parents split into stories
	Stories   int `json:"stories"`   // story rows inserted or changed
}

// Add sums counters of another run into s
func (s *RunStats) Add(o RunStats) {
	s.Fetched += o.Fetched
	s.Filtered += o.Filtered
	s.Created += o.Created
	s.Processed += o.Processed
	s.Skipped += o.Skipped
	s.Failed += o.Failed
	s.Split += o.Split
	s.Stories += o.Stories
}
