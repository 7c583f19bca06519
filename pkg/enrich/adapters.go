package enrich

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/mailscope/pkg/domain"
	"github.com/umputun/mailscope/pkg/llm"
)

const (
	digestInputChars = 12000
	minFormatted     = 200
	headlineMin      = 40
	headlineMax      = 200
	separator        = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
)

var (
	subjectPrefixes = []string{"fw:", "fwd:", "opinion:", "breaking news:", "breaking:"}
	headlineNoise   = []string{
		"download the full", "your daily headlines", "you are receiving", "notification", "follow us",
		"next event", "webcast", "unsubscribe", "update your", "phone:", "all rights reserved",
	}

	timestampRe   = regexp.MustCompile(`\[\d{1,2}:\d{2}(:\d{2})?\]`)
	stageRe       = regexp.MustCompile(`\[[^\]]+\]`)
	spacesRe      = regexp.MustCompile(`[ \t]+`)
	manyNewlineRe = regexp.MustCompile(`\n{3,}`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// runTitleOnly formats the cleaned subject line, no model call
func (d *Dispatcher) runTitleOnly(h Handler, in titleInput) (domain.EnrichmentResult, error) {
	title := cleanSubject(in.Title)
	if title == "" {
		return domain.EnrichmentResult{}, errors.New("empty title")
	}
	return domain.EnrichmentResult{
		Summary:        fmt.Sprintf("📰 %s: %s", h.Label, title),
		RelevanceScore: h.Score,
	}, nil
}

// runHeadlines lists every headline-length line of the body, no model call
func (d *Dispatcher) runHeadlines(h Handler, in headlinesInput) (domain.EnrichmentResult, error) {
	text := in.Text
	if in.HTML != "" && d.Extractor != nil {
		text = d.Extractor.Text(in.HTML)
	}

	var headlines []string
	seen := map[string]bool{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if n := utf8.RuneCountInString(line); n <= headlineMin || n >= headlineMax {
			continue
		}
		if seen[line] || containsAnyFold(line, headlineNoise) {
			continue
		}
		seen[line] = true
		headlines = append(headlines, line)
	}
	if len(headlines) == 0 {
		return domain.EnrichmentResult{}, errors.New("no headlines found")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📰 %s - %s\n", strings.ToUpper(h.Label), cleanSubject(in.Title)))
	sb.WriteString(separator + "\n\n📋 YOUR DAILY HEADLINES:\n\n")
	for _, hl := range headlines {
		sb.WriteString("   • " + hl + "\n")
	}
	sb.WriteString("\n" + separator + "\n📄 Full reports available via download links")
	return domain.EnrichmentResult{Summary: sb.String(), RelevanceScore: h.Score}, nil
}

// runText makes one prompt and uses the model output as summary
func (d *Dispatcher) runText(ctx context.Context, h Handler, in textInput) (domain.EnrichmentResult, error) {
	prompt := buildPrompt(h.Instructions, promptData{Label: h.Label, Tag: in.Tag, Title: in.Title, Content: in.Content, PT: h.Portuguese})
	resp, err := d.Completer.Complete(ctx, llm.Request{System: systemPrompt, Prompt: prompt, MaxTokens: h.MaxTokens})
	if err != nil {
		return domain.EnrichmentResult{}, err
	}
	return domain.EnrichmentResult{Summary: resp, RelevanceScore: h.Score}, nil
}

// runJSON asks for a json object with formatted content and entities
func (d *Dispatcher) runJSON(ctx context.Context, h Handler, in textInput) (domain.EnrichmentResult, error) {
	prompt := buildPrompt(h.Instructions, promptData{Label: h.Label, Tag: in.Tag, Title: in.Title, Content: in.Content, JSON: true})
	resp, err := d.Completer.Complete(ctx, llm.Request{System: systemPrompt, Prompt: prompt, MaxTokens: h.MaxTokens, JSON: true})
	if err != nil {
		return domain.EnrichmentResult{}, err
	}

	var out struct {
		FormattedContent string   `json:"formatted_content"`
		Actors           []string `json:"actors"`
		Themes           []string `json:"themes"`
	}
	if err := llm.DecodeJSONObject(resp, &out); err != nil {
		return domain.EnrichmentResult{}, err
	}
	formatted := strings.TrimSpace(out.FormattedContent)
	if utf8.RuneCountInString(formatted) < minFormatted {
		return domain.EnrichmentResult{}, fmt.Errorf("formatted content too short, %d chars", utf8.RuneCountInString(formatted))
	}
	return domain.EnrichmentResult{
		Summary:        fmt.Sprintf("# 🏦 %s: %s\n\n%s", h.Label, in.Title, formatted),
		Actors:         out.Actors,
		Themes:         out.Themes,
		RelevanceScore: h.Score,
	}, nil
}

// runVision sends downloaded images with the text, or the text alone when no image is usable
func (d *Dispatcher) runVision(ctx context.Context, h Handler, in visionInput) (domain.EnrichmentResult, error) {
	var images []string
	if d.Images != nil && in.HTML != "" {
		for _, u := range d.Images.ImageURLs(in.HTML, d.MaxImages) {
			img, err := d.Images.Fetch(ctx, u)
			if err != nil {
				lgr.Printf("[WARN] skip image %s, %v", u, err)
				continue
			}
			images = append(images, img)
		}
	}

	score := h.Score
	if len(images) == 0 {
		lgr.Printf("[DEBUG] no usable images for %q, text only", in.Title)
		score = h.NoImageScore
	}
	prompt := buildPrompt(h.Instructions, promptData{Label: h.Label, Title: in.Title, Content: in.Content, Images: len(images)})
	resp, err := d.Completer.Complete(ctx, llm.Request{System: systemPrompt, Prompt: prompt, Images: images, MaxTokens: h.MaxTokens})
	if err != nil {
		return domain.EnrichmentResult{}, err
	}
	return domain.EnrichmentResult{Summary: resp, RelevanceScore: score}, nil
}

// runDigest asks for numbered story blocks, the caller splits them into stories
func (d *Dispatcher) runDigest(ctx context.Context, h Handler, in digestInput) (domain.EnrichmentResult, error) {
	content := truncate(strings.TrimSpace(whitespaceRe.ReplaceAllString(in.Content, " ")), digestInputChars)
	prompt := buildPrompt(h.Instructions, promptData{Label: h.Label, Tag: in.Tag, Title: in.Title, Content: content, PT: h.Portuguese})
	resp, err := d.Completer.Complete(ctx, llm.Request{System: systemPrompt, Prompt: prompt, MaxTokens: h.MaxTokens})
	if err != nil {
		return domain.EnrichmentResult{}, err
	}
	return domain.EnrichmentResult{Summary: manyNewlineRe.ReplaceAllString(resp, "\n\n"), RelevanceScore: h.Score}, nil
}

// cleanSubject strips forwarding and section prefixes from a subject line
func cleanSubject(title string) string {
	title = strings.TrimSpace(title)
	for changed := true; changed; {
		changed = false
		for _, p := range subjectPrefixes {
			if len(title) >= len(p) && strings.EqualFold(title[:len(p)], p) {
				title = strings.TrimSpace(title[len(p):])
				changed = true
			}
		}
	}
	return title
}

// cleanTranscript removes timestamps and stage directions like [Music] from a transcript
func cleanTranscript(text string) string {
	text = timestampRe.ReplaceAllString(text, "")
	text = stageRe.ReplaceAllString(text, "")
	text = spacesRe.ReplaceAllString(text, " ")
	text = strings.NewReplacer(" ,", ",", " .", ".").Replace(text)
	lines := strings.Split(text, "\n")
	res := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			res = append(res, l)
		}
	}
	return strings.Join(res, "\n")
}

func containsAnyFold(s string, subs []string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
