package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Extractor turns email HTML into plain text
type Extractor struct{}

// NewExtractor creates a new content extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// blockElements start a new line in the extracted text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "section": true, "article": true, "header": true, "footer": true,
	"blockquote": true, "ul": true, "ol": true, "hr": true,
}

var spacesRe = regexp.MustCompile(`[ \t\p{Zs}\x{200b}\x{200c}\x{feff}]+`)

// Text returns cleaned plain text of the whole document with script and style stripped,
// one line per block element and no blank lines.
func (e *Extractor) Text(htmlContent string) string {
	if strings.TrimSpace(htmlContent) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		lgr.Printf("[WARN] can't parse html, %v", err)
		return ""
	}
	doc.Find("script, style, noscript, head, title").Remove()

	var sb strings.Builder
	for _, n := range doc.Nodes {
		walkText(n, &sb)
	}
	return normalizeLines(sb.String())
}

// Article returns the main article text using trafilatura, falls back to Text
// when nothing usable is extracted. Used for long-form newsletters with heavy footers.
func (e *Extractor) Article(htmlContent string) string {
	if strings.TrimSpace(htmlContent) == "" {
		return ""
	}
	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   false,
		IncludeImages:   false,
		IncludeLinks:    false,
		Deduplicate:     true,
	}
	result, err := trafilatura.Extract(strings.NewReader(htmlContent), opts)
	if err != nil || result == nil || strings.TrimSpace(result.ContentText) == "" {
		lgr.Printf("[DEBUG] trafilatura extraction failed, falling back to plain text, %v", err)
		return e.Text(htmlContent)
	}
	return normalizeLines(result.ContentText)
}

func walkText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if blockElements[n.Data] {
			sb.WriteByte('\n')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, sb)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		sb.WriteByte('\n')
	}
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	res := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(spacesRe.ReplaceAllString(l, " "))
		if l != "" {
			res = append(res, l)
		}
	}
	return strings.Join(res, "\n")
}
