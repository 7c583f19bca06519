package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/mailscope/pkg/digest"
	"github.com/umputun/mailscope/pkg/domain"
	"github.com/umputun/mailscope/pkg/enrich"
)

const (
	storyScore     = 8.0
	storyCategory  = "NEWS_BRIEF"
	storyTagSuffix = " - NewsBrief"
)

// Params holds runner dependencies and settings
type Params struct {
	Store      Store
	Sources    []Source
	Classifier Classifier
	Router     Router
	Dispatcher Dispatcher
	Splitter   Splitter
	Keywords   Keywords // optional, nil disables keyword actors

	PortugueseTags    []string // tags of portuguese-language sources
	FallbackSearchURL string   // link template for stories without matched link, %s is the escaped title
}

// Runner runs the batch loop in its different modes
type Runner struct {
	Params
	writer     *Writer
	portuguese map[string]bool
}

// NewRunner makes a runner
func NewRunner(p Params) *Runner {
	if p.FallbackSearchURL == "" {
		p.FallbackSearchURL = "https://news.google.com/search?q=%s"
	}
	res := &Runner{Params: p, writer: NewWriter(p.Store), portuguese: map[string]bool{}}
	for _, t := range p.PortugueseTags {
		res.portuguese[t] = true
	}
	return res
}

// Ingest fetches items from all sources, creates rows for the new ones and enriches them.
// A failing source is logged and skipped.
func (r *Runner) Ingest(ctx context.Context) (RunStats, error) {
	var stats RunStats
	var created []domain.Document
	for _, src := range r.Sources {
		items, err := src.Fetch(ctx)
		if err != nil {
			lgr.Printf("[WARN] fetch from %s failed, %v", src.Name(), err)
		}
		stats.Fetched += len(items)
		for _, item := range items {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			tag, ok := r.Classifier.Resolve(item)
			if !ok {
				lgr.Printf("[DEBUG] filtered %s from %q", item.ID, item.SenderRaw)
				stats.Filtered++
				continue
			}
			isNew, err := r.Store.CreateIfMissing(ctx, item, tag)
			if err != nil {
				lgr.Printf("[ERROR] failed to store item %s, %v", item.ID, err)
				stats.Failed++
				continue
			}
			if !isNew {
				continue
			}
			stats.Created++
			created = append(created, documentOf(item, tag))
		}
	}
	lgr.Printf("[INFO] fetched %d items, %d new, %d filtered", stats.Fetched, stats.Created, stats.Filtered)

	stats.Add(r.processAll(ctx, created, false))
	return stats, ctx.Err()
}

// EnrichBacklog enriches parent rows with empty summary, newest first. With includeSplit the
// rows already split into stories are processed again. Limit 0 means no limit.
func (r *Runner) EnrichBacklog(ctx context.Context, includeSplit bool, limit int) (RunStats, error) {
	docs, err := r.Store.Scan(ctx, domain.DocumentFilter{Unenriched: true, IncludeSplit: includeSplit,
		ParentsOnly: true, Limit: limit})
	if err != nil {
		return RunStats{}, fmt.Errorf("scan backlog: %w", err)
	}
	lgr.Printf("[INFO] backlog has %d items", len(docs))
	stats := r.processAll(ctx, docs, false)
	return stats, ctx.Err()
}

// Reenrich forces enrichment of the lastN newest parent rows
func (r *Runner) Reenrich(ctx context.Context, lastN int) (RunStats, error) {
	if lastN <= 0 {
		return RunStats{}, fmt.Errorf("reenrich: last must be positive, got %d", lastN)
	}
	docs, err := r.Store.Scan(ctx, domain.DocumentFilter{ParentsOnly: true, Limit: lastN})
	if err != nil {
		return RunStats{}, fmt.Errorf("scan last %d: %w", lastN, err)
	}
	stats := r.processAll(ctx, docs, true)
	return stats, ctx.Err()
}

// EnrichID forces enrichment of one parent row
func (r *Runner) EnrichID(ctx context.Context, id string) (RunStats, error) {
	doc, err := r.Store.Lookup(ctx, id)
	if err != nil {
		return RunStats{}, fmt.Errorf("lookup %s: %w", id, err)
	}
	if doc.IsStory() {
		return RunStats{}, fmt.Errorf("document %s is a story of %s, enrich the parent instead", id, doc.ParentID)
	}
	return r.processAll(ctx, []domain.Document{*doc}, true), nil
}

// processAll runs items sequentially in the given order
func (r *Runner) processAll(ctx context.Context, docs []domain.Document, force bool) RunStats {
	var stats RunStats
	st := time.Now()
	for _, doc := range docs {
		if ctx.Err() != nil {
			lgr.Printf("[WARN] batch interrupted, %v", ctx.Err())
			break
		}
		stats.Add(r.processSafe(ctx, doc, force))
	}
	if len(docs) > 0 {
		lgr.Printf("[INFO] processed %d, skipped %d, failed %d, split %d into %d stories in %v",
			stats.Processed, stats.Skipped, stats.Failed, stats.Split, stats.Stories, time.Since(st).Round(time.Millisecond))
	}
	return stats
}

// processSafe contains unexpected panics to the one item
func (r *Runner) processSafe(ctx context.Context, doc domain.Document, force bool) (stats RunStats) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("pipeline panic: %v", rec)
			lgr.Printf("[ERROR] processing of %s failed, %v", doc.ID, err)
			stats.Failed++
			r.persistFailure(ctx, doc.ID, "", err)
		}
	}()
	return r.process(ctx, doc, force)
}

// process runs one item through route, dispatch, optional split and persist
func (r *Runner) process(ctx context.Context, doc domain.Document, force bool) RunStats {
	var stats RunStats
	if !force && domain.IsEnriched(doc.Summary) {
		lgr.Printf("[DEBUG] skip %s, already enriched", doc.ID)
		stats.Skipped++
		return stats
	}

	tag := doc.SenderTag
	if tag == "" {
		tag, _ = r.Classifier.Resolve(doc.Item())
	}
	name := r.Router.Route(tag)
	h := r.Dispatcher.Lookup(name)
	stats.Processed++

	res := r.Dispatcher.Dispatch(ctx, name, enrich.Envelope{
		ID:    doc.ID,
		Tag:   tag,
		Title: doc.Title,
		Text:  doc.ContentText,
		HTML:  doc.ContentHTML,
	})
	failed := enrich.Failed(res)
	portuguese := h.Portuguese || r.portuguese[tag]

	if h.Kind == enrich.KindDigest && !failed {
		lang := digest.English
		if portuguese {
			lang = digest.Portuguese
		}
		stories := r.Splitter.Split(res.Summary, doc.ContentHTML, lang)
		docs := r.storyDocuments(ctx, doc, tag, h, stories, portuguese)
		if len(docs) == 0 {
			err := fmt.Errorf("digest of %s has no story with content", doc.ID)
			lgr.Printf("[WARN] %v", err)
			stats.Failed++
			r.persistFailure(ctx, doc.ID, h.Name, err)
			return stats
		}
		changed, err := r.writer.PersistSplit(ctx, doc.ID, h.Name, docs)
		if err != nil {
			lgr.Printf("[ERROR] %v", err)
			stats.Failed++
			r.persistFailure(ctx, doc.ID, h.Name, err)
			return stats
		}
		lgr.Printf("[DEBUG] split %s into %d stories, %d changed", doc.ID, len(docs), changed)
		stats.Split++
		stats.Stories += changed
		return stats
	}

	// structured handlers return actors picked by the model, keep them
	if !failed && r.Keywords != nil && h.Kind != enrich.KindJSON {
		res.Actors = r.Keywords.Extract(ctx, doc.Title, doc.ContentText, portuguese)
	}
	if failed {
		stats.Failed++
	}
	if err := r.writer.PersistSingle(ctx, doc.ID, res); err != nil {
		lgr.Printf("[ERROR] %v", err)
		if !failed {
			stats.Failed++
		}
	}
	return stats
}

// storyDocuments converts split stories into story rows of the parent. A story without body
// uses its title as body, a story with neither is dropped. Ids stay contiguous.
func (r *Runner) storyDocuments(ctx context.Context, parent domain.Document, tag string, h enrich.Handler,
	stories []domain.Story, portuguese bool) []domain.Document {
	res := make([]domain.Document, 0, len(stories))
	for _, s := range stories {
		body := s.Body
		if body == "" {
			body = s.Title
		}
		if body == "" {
			lgr.Printf("[DEBUG] drop empty story %d of %s", s.Ordinal, parent.ID)
			continue
		}
		actors := []string{}
		if r.Keywords != nil {
			actors = r.Keywords.Extract(ctx, s.Title, body, portuguese)
		}
		link, confidence := s.MatchedLink, s.MatchConfidence
		if link == "" {
			link, confidence = r.fallbackLink(s.Title), 0
		}
		res = append(res, domain.Document{
			ID:              domain.StoryID(parent.ID, len(res)),
			ParentID:        parent.ID,
			SourceType:      parent.SourceType,
			SenderRaw:       parent.SenderRaw,
			SenderTag:       tag + storyTagSuffix,
			Title:           s.Title,
			ContentText:     body,
			Summary:         domain.Provenance(h.Label) + "\n\n" + body,
			Handler:         h.Name,
			Actors:          actors,
			Themes:          []string{},
			Category:        storyCategory,
			RelevanceScore:  storyScore,
			Link:            link,
			MatchConfidence: confidence,
			Ordinal:         s.Ordinal,
			CreatedAt:       parent.CreatedAt,
		})
	}
	return res
}

// fallbackLink makes a search link for a story without matched link
func (r *Runner) fallbackLink(title string) string {
	if !strings.Contains(r.FallbackSearchURL, "%s") {
		return r.FallbackSearchURL
	}
	return fmt.Sprintf(r.FallbackSearchURL, url.QueryEscape(title))
}

// persistFailure stores an error result so the row does not look unprocessed
func (r *Runner) persistFailure(ctx context.Context, id, handler string, cause error) {
	res := r.Dispatcher.ErrorResult(handler, cause)
	if err := r.writer.PersistSingle(ctx, id, res); err != nil && !errors.Is(err, context.Canceled) {
		lgr.Printf("[ERROR] failed to store error result, %v", err)
	}
}

// documentOf makes the document view of a just created row
func documentOf(item domain.InboundItem, tag string) domain.Document {
	return domain.Document{
		ID:          item.ID,
		SourceType:  item.SourceType,
		SenderRaw:   item.SenderRaw,
		SenderTag:   tag,
		Title:       item.Title,
		ContentText: item.ContentText,
		ContentHTML: item.ContentHTML,
		CreatedAt:   item.CreatedAt,
	}
}
