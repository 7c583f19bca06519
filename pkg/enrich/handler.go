// Package enrich routes sender tags to enrichment handlers and runs them.
// Handlers are a registry of tagged variants: every entry declares its Kind and the
// dispatcher adapts the common envelope to the typed input of that kind.
package enrich

import (
	"context"

	"github.com/umputun/mailscope/pkg/llm"
)

//go:generate moq -out mocks/completer.go -pkg mocks -skip-ensure -fmt goimports . Completer
//go:generate moq -out mocks/text_extractor.go -pkg mocks -skip-ensure -fmt goimports . TextExtractor
//go:generate moq -out mocks/image_source.go -pkg mocks -skip-ensure -fmt goimports . ImageSource

// Completer calls the generative model
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// TextExtractor turns newsletter html into plain text
type TextExtractor interface {
	Text(html string) string
	Article(html string) string
}

// ImageSource finds and downloads images referenced by html
type ImageSource interface {
	ImageURLs(html string, limit int) []string
	Fetch(ctx context.Context, url string) (string, error)
}

// Kind is the calling convention of a handler
type Kind int

// handler kinds
const (
	KindTitleOnly Kind = iota // formats the subject line, no model call
	KindHeadlines             // collects headline-length lines of the body, no model call
	KindText                  // one text prompt, summary is the model output
	KindJSON                  // one prompt answered with a json object carrying summary and entities
	KindVision                // text plus downloaded images
	KindDigest                // multi-story output later split into story rows
)

func (k Kind) String() string {
	switch k {
	case KindTitleOnly:
		return "title-only"
	case KindHeadlines:
		return "headlines"
	case KindText:
		return "text"
	case KindJSON:
		return "json"
	case KindVision:
		return "vision"
	case KindDigest:
		return "digest"
	default:
		return "unknown"
	}
}

// Handler is one registered enrichment strategy
type Handler struct {
	Name         string   // registry key, e.g. gold_standard_enhanced
	Label        string   // provenance label written as "Rule: <Label>"
	Kind         Kind     // selects the adapter
	Category     string   // category stored with the result
	Score        float64  // base relevance score
	NoImageScore float64  // vision handlers only, score when no image could be used
	Actors       []string // defaults when nothing else produced actors
	Themes       []string // defaults when nothing else produced themes
	UseTagger    bool     // fill empty actors/themes from the shared entity tagger
	Article      bool     // prefer main-article extraction of the html over plain text
	Transcript   bool     // strip transcript artifacts before prompting
	Portuguese   bool     // content and output are in portuguese
	MaxTokens    int      // 0 uses the client default
	Instructions string   // prompt instructions, unused by title-only and headlines kinds
}

// Envelope is the uniform input of every handler
type Envelope struct {
	ID    string // item id, used for logging only
	Tag   string
	Title string
	Text  string
	HTML  string
}

// typed inputs of the handler kinds

type titleInput struct {
	Title string
}

type headlinesInput struct {
	Title string
	Text  string
	HTML  string
}

type textInput struct {
	Tag     string
	Title   string
	Content string
}

type visionInput struct {
	Title   string
	Content string
	HTML    string
}

type digestInput struct {
	Tag     string
	Title   string
	Content string
}
