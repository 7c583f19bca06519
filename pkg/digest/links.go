package digest

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pmezard/go-difflib/difflib"
)

// Link is a candidate hyperlink taken from the original html
type Link struct {
	URL  string
	Text string
}

// defaultSkipPatterns drop navigational, social and unsubscribe links
var defaultSkipPatterns = []string{
	"unsubscribe", "preference", "settings", "manage",
	"facebook.com", "twitter.com", "linkedin.com", "instagram.com", "mailto:",
	"view it in", "ver no navegador", "acesse este link",
}

// stopwords are removed before computing word overlap, english and portuguese
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "of": true, "is": true,
	"o": true, "os": true, "as": true, "de": true, "da": true, "do": true, "das": true, "dos": true,
	"e": true, "em": true, "para": true,
}

var (
	wordRe  = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	blankRe = regexp.MustCompile(`\s+`)
)

// ExtractLinks collects anchors with absolute href and visible text longer than minText runes,
// skipping anchors whose href or text contains any of the skip patterns. Document order is kept.
func ExtractLinks(htmlContent string, minText int, skip []string) []Link {
	if strings.TrimSpace(htmlContent) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	patterns := make([]string, 0, len(defaultSkipPatterns)+len(skip))
	patterns = append(patterns, defaultSkipPatterns...)
	for _, p := range skip {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}

	var res []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if !strings.HasPrefix(href, "http") {
			return
		}
		text := strings.TrimSpace(blankRe.ReplaceAllString(s.Text(), " "))
		if len([]rune(text)) <= minText {
			return
		}
		lhref, ltext := strings.ToLower(href), strings.ToLower(text)
		for _, p := range patterns {
			if strings.Contains(lhref, p) || strings.Contains(ltext, p) {
				return
			}
		}
		res = append(res, Link{URL: href, Text: text})
	})
	return res
}

// FindBestLink picks the link whose text is most similar to the title.
// Score is 0.6*sequence similarity + 0.4*jaccard of words without stopwords, or the
// sequence similarity alone if either side has no words left. Only a score strictly
// above threshold is accepted; on ties the earlier link wins.
func FindBestLink(title string, links []Link, threshold float64) (url string, confidence float64) {
	clean := cleanTitle(title)
	if clean == "" {
		return "", 0
	}
	titleWords := wordSet(clean)

	best, bestURL := 0.0, ""
	for _, l := range links {
		score := Similarity(clean, titleWords, strings.ToLower(l.Text))
		if score > best {
			best, bestURL = score, l.URL
		}
	}
	if best > threshold {
		return bestURL, best
	}
	return "", 0
}

// Similarity returns blended score of already cleaned title against a lowercased link text
func Similarity(title string, titleWords map[string]bool, text string) float64 {
	seq := sequenceRatio(title, text)
	textWords := wordSet(text)
	if len(titleWords) == 0 || len(textWords) == 0 {
		return seq
	}
	return 0.6*seq + 0.4*jaccard(titleWords, textWords)
}

// sequenceRatio is difflib's ratio over characters, 2*M/T
func sequenceRatio(a, b string) float64 {
	return difflib.NewMatcher(runeStrings(a), runeStrings(b)).Ratio()
}

func runeStrings(s string) []string {
	res := make([]string, 0, len(s))
	for _, r := range s {
		res = append(res, string(r))
	}
	return res
}

func wordSet(s string) map[string]bool {
	res := map[string]bool{}
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		if !stopwords[w] {
			res[w] = true
		}
	}
	return res
}

func jaccard(a, b map[string]bool) float64 {
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.TrimPrefix(title, "📰")
	return strings.ToLower(strings.TrimSpace(title))
}
