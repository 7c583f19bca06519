package enrich

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/mailscope/pkg/domain"
)

const (
	maxListLen      = 7
	maxErrorLen     = 200
	errorLabel      = "Error"
	errorCategory   = "ERROR"
	noContentCat    = "INSUFFICIENT_CONTENT"
	noContentScore  = 0.0
	defaultCategory = "ANALYSIS"
)

// DispatcherConfig holds dependencies and settings of the dispatcher
type DispatcherConfig struct {
	Completer Completer
	Extractor TextExtractor
	Images    ImageSource // optional, vision handlers fall back to text without it
	Tagger    *Tagger     // optional, handlers using the tagger skip it when nil

	MinContentLength int     // runes of cleaned text required to call a handler
	MaxInputChars    int     // content passed to prompts is cut to this many runes
	MaxImages        int     // images per vision call
	ErrorScore       float64 // score of failed enrichments
	DefaultHandler   string  // used for unknown handler names
}

// Dispatcher invokes handlers by name and normalizes their results
type Dispatcher struct {
	DispatcherConfig
	handlers map[string]Handler
}

// NewDispatcher makes a dispatcher with all registered handlers
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.MinContentLength == 0 {
		cfg.MinContentLength = 100
	}
	if cfg.MaxInputChars == 0 {
		cfg.MaxInputChars = 15000
	}
	if cfg.MaxImages == 0 {
		cfg.MaxImages = 10
	}
	if cfg.ErrorScore == 0 {
		cfg.ErrorScore = 5.0
	}
	if cfg.DefaultHandler == "" {
		cfg.DefaultHandler = DefaultHandler
	}

	res := &Dispatcher{DispatcherConfig: cfg, handlers: make(map[string]Handler, len(registry))}
	for _, h := range registry {
		res.handlers[h.Name] = h
	}
	if _, ok := res.handlers[cfg.DefaultHandler]; !ok {
		lgr.Printf("[WARN] default handler %q is not registered, using %s", cfg.DefaultHandler, DefaultHandler)
		res.DefaultHandler = DefaultHandler
	}
	return res
}

// Lookup returns the handler used for the name, resolving unknown names to the default handler
func (d *Dispatcher) Lookup(name string) Handler {
	if h, ok := d.handlers[name]; ok {
		return h
	}
	return d.handlers[d.DefaultHandler]
}

// Dispatch runs the named handler on the envelope. It never fails: content that is too short,
// handler errors and handler panics all produce a labeled result with a readable summary.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, env Envelope) (res domain.EnrichmentResult) {
	h, ok := d.handlers[name]
	if !ok {
		lgr.Printf("[WARN] unknown handler %q for %s, using %s", name, env.ID, d.DefaultHandler)
		h = d.handlers[d.DefaultHandler]
	}

	env.Text = d.contentText(env)
	if n := utf8.RuneCountInString(env.Text); n < d.MinContentLength {
		lgr.Printf("[WARN] insufficient content for %s, %d chars, handler %s", env.ID, n, h.Name)
		return insufficientResult(h.Name, n)
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("handler panic: %v", r)
			lgr.Printf("[ERROR] enrichment of %s with %s failed, %s", env.ID, h.Name, truncate(err.Error(), maxErrorLen))
			res = d.ErrorResult(h.Name, err)
		}
	}()

	raw, err := d.invoke(ctx, h, env)
	if err != nil {
		lgr.Printf("[ERROR] enrichment of %s with %s failed, %s", env.ID, h.Name, truncate(err.Error(), maxErrorLen))
		return d.ErrorResult(h.Name, err)
	}
	res, err = d.normalize(h, raw, env.Text)
	if err != nil {
		lgr.Printf("[ERROR] enrichment of %s with %s failed, %s", env.ID, h.Name, truncate(err.Error(), maxErrorLen))
		return d.ErrorResult(h.Name, err)
	}
	lgr.Printf("[DEBUG] enriched %s with %s, %d chars, score %.1f", env.ID, h.Name, len(res.Summary), res.RelevanceScore)
	return res
}

// invoke adapts the envelope to the typed input of the handler kind
func (d *Dispatcher) invoke(ctx context.Context, h Handler, env Envelope) (domain.EnrichmentResult, error) {
	switch h.Kind {
	case KindTitleOnly:
		return d.runTitleOnly(h, titleInput{Title: env.Title})
	case KindHeadlines:
		return d.runHeadlines(h, headlinesInput{Title: env.Title, Text: env.Text, HTML: env.HTML})
	case KindText:
		return d.runText(ctx, h, textInput{Tag: env.Tag, Title: env.Title, Content: d.textContent(h, env)})
	case KindJSON:
		return d.runJSON(ctx, h, textInput{Tag: env.Tag, Title: env.Title, Content: d.cut(env.Text)})
	case KindVision:
		return d.runVision(ctx, h, visionInput{Title: env.Title, Content: d.cut(env.Text), HTML: env.HTML})
	case KindDigest:
		return d.runDigest(ctx, h, digestInput{Tag: env.Tag, Title: env.Title, Content: env.Text})
	}
	return domain.EnrichmentResult{}, fmt.Errorf("unsupported handler kind %s", h.Kind)
}

// contentText returns content text, or html converted to text when the text is missing or too short
func (d *Dispatcher) contentText(env Envelope) string {
	text := strings.TrimSpace(env.Text)
	if utf8.RuneCountInString(text) >= d.MinContentLength || env.HTML == "" || d.Extractor == nil {
		return text
	}
	if fromHTML := strings.TrimSpace(d.Extractor.Text(env.HTML)); utf8.RuneCountInString(fromHTML) > utf8.RuneCountInString(text) {
		return fromHTML
	}
	return text
}

// textContent prepares the prompt content of a text handler
func (d *Dispatcher) textContent(h Handler, env Envelope) string {
	content := env.Text
	if h.Article && env.HTML != "" && d.Extractor != nil {
		if article := strings.TrimSpace(d.Extractor.Article(env.HTML)); utf8.RuneCountInString(article) >= d.MinContentLength {
			content = article
		}
	}
	if h.Transcript {
		content = cleanTranscript(content)
	}
	return d.cut(content)
}

func (d *Dispatcher) cut(s string) string {
	return truncate(s, d.MaxInputChars)
}

// normalize enforces the canonical result shape: provenance line, bounded lists, clamped score
func (d *Dispatcher) normalize(h Handler, res domain.EnrichmentResult, content string) (domain.EnrichmentResult, error) {
	body := stripProvenance(res.Summary)
	if body == "" {
		return domain.EnrichmentResult{}, fmt.Errorf("handler %s produced an empty summary", h.Name)
	}
	res.Summary = domain.Provenance(h.Label) + "\n\n" + body

	if h.UseTagger && d.Tagger != nil && (len(res.Actors) == 0 || len(res.Themes) == 0) {
		actors, themes := d.Tagger.Tag(content)
		if len(res.Actors) == 0 {
			res.Actors = actors
		}
		if len(res.Themes) == 0 {
			res.Themes = themes
		}
	}
	if len(res.Actors) == 0 {
		res.Actors = h.Actors
	}
	if len(res.Themes) == 0 {
		res.Themes = h.Themes
	}
	res.Actors = limitList(res.Actors)
	res.Themes = limitList(res.Themes)

	if res.Category == "" {
		res.Category = h.Category
	}
	if res.Category == "" {
		res.Category = defaultCategory
	}
	res.RelevanceScore = clampScore(res.RelevanceScore, h.Score)
	res.Handler = h.Name
	return res, nil
}

// ErrorResult makes the labeled result stored when enrichment of an item failed
func (d *Dispatcher) ErrorResult(handler string, err error) domain.EnrichmentResult {
	return domain.EnrichmentResult{
		Summary:        domain.Provenance(errorLabel) + "\n\n❌ Enrichment failed: " + truncate(err.Error(), maxErrorLen),
		Actors:         []string{},
		Themes:         []string{},
		Category:       errorCategory,
		RelevanceScore: d.ErrorScore,
		Handler:        handler,
	}
}

func insufficientResult(handler string, chars int) domain.EnrichmentResult {
	return domain.EnrichmentResult{
		Summary: domain.Provenance(errorLabel) +
			fmt.Sprintf("\n\n❌ Cannot enrich: insufficient content (%d characters after HTML fallback)", chars),
		Actors:         []string{},
		Themes:         []string{},
		Category:       noContentCat,
		RelevanceScore: noContentScore,
		Handler:        handler,
	}
}

// Failed reports whether the result came from the error or insufficient content path
func Failed(res domain.EnrichmentResult) bool {
	return res.Category == errorCategory || res.Category == noContentCat
}

// stripProvenance drops a leading "Rule:" line written by the model
func stripProvenance(summary string) string {
	summary = strings.TrimSpace(summary)
	if !strings.HasPrefix(summary, domain.ProvenancePrefix) {
		return summary
	}
	if idx := strings.IndexByte(summary, '\n'); idx != -1 {
		return strings.TrimSpace(summary[idx+1:])
	}
	return ""
}

// limitList drops blank entries and keeps at most maxListLen items in order
func limitList(list []string) []string {
	res := make([]string, 0, min(len(list), maxListLen))
	for _, s := range list {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		res = append(res, s)
		if len(res) == maxListLen {
			break
		}
	}
	return res
}

func clampScore(score, base float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		score = base
	}
	return math.Max(0, math.Min(10, score))
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
