// Package digest splits multi-story digest summaries into stories and matches
// each story to a hyperlink of the original newsletter.
package digest

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/mailscope/pkg/domain"
)

// Lang selects language specific link filtering
type Lang int

const (
	English Lang = iota
	Portuguese
)

// Options for the splitter
type Options struct {
	Threshold     float64  // minimum blended score to accept a link
	MinLinkText   int      // anchors with text not longer than this are ignored
	MinLinkTextPT int      // same for portuguese sources, link text there is shorter
	SkipPatterns  []string // additional denylist patterns
}

// Splitter parses "<strong>N. Title</strong> body" blocks out of digest summaries
type Splitter struct {
	opts   Options
	policy *bluemonday.Policy
}

var (
	storyMarkerRe = regexp.MustCompile(`(?is)<strong[^>]*>\s*(\d+)\.(.*?)</strong>`)
	lineBreakRe   = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</li>|</h[1-6]>`)
	manyBreaksRe  = regexp.MustCompile(`\n{3,}`)
)

// New makes a splitter
func New(opts Options) *Splitter {
	if opts.Threshold == 0 {
		opts.Threshold = 0.25
	}
	return &Splitter{opts: opts, policy: bluemonday.StrictPolicy()}
}

// Split breaks raw summary into stories. Each marker starts a story that runs until the next
// marker or the end of text, the text before the first marker is dropped. If there are no
// markers the whole text becomes one story. The result depends only on the inputs.
func (s *Splitter) Split(rawSummary, originalHTML string, lang Lang) []domain.Story {
	minText := s.opts.MinLinkText
	if lang == Portuguese {
		minText = s.opts.MinLinkTextPT
	}
	links := ExtractLinks(originalHTML, minText, s.opts.SkipPatterns)

	matches := storyMarkerRe.FindAllStringSubmatchIndex(rawSummary, -1)
	if len(matches) == 0 {
		body := s.cleanText(dropProvenance(rawSummary))
		story := domain.Story{Ordinal: 1, Title: firstLine(body), Body: body}
		story.MatchedLink, story.MatchConfidence = FindBestLink(story.Title, links, s.opts.Threshold)
		return []domain.Story{story}
	}

	res := make([]domain.Story, 0, len(matches))
	for i, m := range matches {
		end := len(rawSummary)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		ordinal, err := strconv.Atoi(rawSummary[m[2]:m[3]])
		if err != nil {
			ordinal = i + 1
		}
		story := domain.Story{
			Ordinal: ordinal,
			Title:   s.cleanInline(rawSummary[m[4]:m[5]]),
			Body:    s.cleanText(rawSummary[m[1]:end]),
		}
		story.MatchedLink, story.MatchConfidence = FindBestLink(story.Title, links, s.opts.Threshold)
		res = append(res, story)
	}
	return res
}

// cleanText strips tags keeping line structure
func (s *Splitter) cleanText(text string) string {
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = html.UnescapeString(s.policy.Sanitize(text))
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = manyBreaksRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}

// cleanInline strips tags and collapses whitespace to a single line
func (s *Splitter) cleanInline(text string) string {
	text = html.UnescapeString(s.policy.Sanitize(text))
	return strings.TrimSpace(blankRe.ReplaceAllString(text, " "))
}

// dropProvenance removes the leading "Rule: ..." line
func dropProvenance(text string) string {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(trimmed, domain.ProvenancePrefix) {
		return text
	}
	if nl := strings.IndexByte(trimmed, '\n'); nl != -1 {
		return trimmed[nl+1:]
	}
	return ""
}

func firstLine(text string) string {
	if nl := strings.IndexByte(text, '\n'); nl != -1 {
		return strings.TrimSpace(text[:nl])
	}
	return strings.TrimSpace(text)
}
