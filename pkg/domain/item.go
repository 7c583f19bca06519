package domain

import "time"

// SourceType identifies where an inbound item was fetched from
type SourceType string

const (
	SourceEmail SourceType = "email"
	SourceDrive SourceType = "drive"
	SourceVideo SourceType = "video"
	SourceFeed  SourceType = "feed"
)

// InboundItem is one fetched unit of content, immutable after fetch
type InboundItem struct {
	ID          string
	SourceType  SourceType
	SenderRaw   string // free-text From header, e.g. "Bloomberg <noreply@news.bloomberg.com>"
	Title       string
	ContentText string
	ContentHTML string
	CreatedAt   time.Time
}

// HasContent reports whether at least one of the content fields is non-blank
func (i InboundItem) HasContent() bool {
	return i.ContentText != "" || i.ContentHTML != ""
}

// EnrichmentResult is the canonical output of any enrichment handler.
// Summary always starts with the "Rule: <Label>" provenance line, Handler carries
// the same information as a structured field.
type EnrichmentResult struct {
	Summary        string
	Actors         []string
	Themes         []string
	Category       string
	RelevanceScore float64
	Handler        string
}

// Story is one sub-item extracted from a digest summary
type Story struct {
	Ordinal         int // 1-based position in the digest
	Title           string
	Body            string
	MatchedLink     string // empty when no candidate passed the threshold
	MatchConfidence float64
}

// Document is a persisted row, either a parent item or a story split out of it
type Document struct {
	ID              string
	ParentID        string
	SourceType      SourceType
	SenderRaw       string
	SenderTag       string
	Title           string
	ContentText     string
	ContentHTML     string
	Summary         string
	Handler         string
	Actors          []string
	Themes          []string
	Category        string
	RelevanceScore  float64
	Link            string
	MatchConfidence float64
	Ordinal         int
	CreatedAt       time.Time
	EnrichedAt      *time.Time
	UpdatedAt       time.Time
}

// IsStory reports whether the document was produced by splitting a digest
func (d Document) IsStory() bool {
	return d.ParentID != ""
}

// Item returns inbound item view of the document, used when re-enriching stored rows
func (d Document) Item() InboundItem {
	return InboundItem{
		ID:          d.ID,
		SourceType:  d.SourceType,
		SenderRaw:   d.SenderRaw,
		Title:       d.Title,
		ContentText: d.ContentText,
		ContentHTML: d.ContentHTML,
		CreatedAt:   d.CreatedAt,
	}
}

// DocumentFilter represents scan criteria for documents
type DocumentFilter struct {
	Unenriched   bool // empty summary, plus split sentinel when IncludeSplit is set
	IncludeSplit bool
	ParentsOnly  bool
	ParentID     string
	SenderTag    string
	MinScore     float64
	Limit        int
}
