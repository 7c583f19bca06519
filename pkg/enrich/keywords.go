package enrich

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/mailscope/pkg/config"
	"github.com/umputun/mailscope/pkg/llm"
)

const (
	keywordSep         = " • "
	maxKeywords        = 6
	keywordSampleChars = 2000
	fallbackKeywordEN  = "Financial News"
	fallbackKeywordPT  = "Notícias Financeiras"
)

var (
	genericPhraseRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(breaking|latest|top|key)\s+(news|updates?|headlines?)\b`),
		regexp.MustCompile(`(?i)\bmarket\s+(updates?|news|highlights?|roundup)\b`),
		regexp.MustCompile(`(?i)\b(daily|weekly|monthly)\s+(brief|report|summary)\b`),
		regexp.MustCompile(`(?i)\b(today'?s?|this\s+week'?s?)\s+\w+\b`),
	}
	defaultExclusions = []string{
		"Breaking News", "Market Updates", "Analysis", "News", "Report", "Markets", "Trading",
		"Investors", "Today", "Updates", "Highlights", "Coverage", "Outlook",
		"Notícias", "Análise", "Mercado", "Resumo",
	}
)

// KeywordExtractor asks the model for a few specific keywords of a story
type KeywordExtractor struct {
	completer  Completer
	maxTokens  int
	exclusions []string
}

// NewKeywordExtractor makes an extractor, configured exclusions extend the built-in list
func NewKeywordExtractor(completer Completer, cfg config.KeywordsConfig) *KeywordExtractor {
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 100
	}
	exclusions := make([]string, 0, len(defaultExclusions)+len(cfg.Exclusions))
	exclusions = append(exclusions, defaultExclusions...)
	exclusions = append(exclusions, cfg.Exclusions...)
	return &KeywordExtractor{completer: completer, maxTokens: maxTokens, exclusions: exclusions}
}

// Extract returns up to six keywords. Failures and empty answers give a generic fallback keyword.
func (k *KeywordExtractor) Extract(ctx context.Context, title, content string, portuguese bool) []string {
	fallback := []string{fallbackKeywordEN}
	if portuguese {
		fallback = []string{fallbackKeywordPT}
	}

	var sb strings.Builder
	sb.WriteString(keywordsPrompt)
	if portuguese {
		sb.WriteString("\nThis is Portuguese content, extract keywords in Portuguese.")
	}
	sb.WriteString(fmt.Sprintf("\n\nStory:\nTitle: %s\n\nContent: %s\n\nKeywords:",
		prefilter(title), prefilter(truncate(content, keywordSampleChars))))

	resp, err := k.completer.Complete(ctx, llm.Request{Prompt: sb.String(), MaxTokens: k.maxTokens})
	if err != nil {
		lgr.Printf("[WARN] keyword extraction failed for %q, %v", title, err)
		return fallback
	}
	res := k.filter(resp)
	if len(res) == 0 {
		return fallback
	}
	return res
}

// filter splits the answer into keywords and drops excluded and duplicate ones
func (k *KeywordExtractor) filter(resp string) []string {
	resp = strings.ReplaceAll(strings.TrimSpace(resp), "\n", "•")
	var res []string
	seen := map[string]bool{}
	for _, kw := range strings.Split(resp, "•") {
		kw = strings.TrimSpace(strings.Trim(strings.TrimSpace(kw), `-*"'.,`))
		key := strings.ToLower(kw)
		if kw == "" || seen[key] || k.excluded(key) {
			continue
		}
		seen[key] = true
		res = append(res, kw)
		if len(res) == maxKeywords {
			break
		}
	}
	return res
}

// excluded matches single-word exclusions exactly and multi-word ones as substrings either way
func (k *KeywordExtractor) excluded(kw string) bool {
	for _, excl := range k.exclusions {
		excl = strings.ToLower(excl)
		if excl == kw {
			return true
		}
		if strings.Contains(excl, " ") && (strings.Contains(kw, excl) || strings.Contains(excl, kw)) {
			return true
		}
	}
	return false
}

// JoinKeywords renders keywords the way they are displayed
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, keywordSep)
}

func prefilter(text string) string {
	for _, re := range genericPhraseRes {
		text = re.ReplaceAllString(text, "")
	}
	return text
}
