package enrich

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/mailscope/pkg/config"
	"github.com/umputun/mailscope/pkg/domain"
	"github.com/umputun/mailscope/pkg/enrich/mocks"
	"github.com/umputun/mailscope/pkg/llm"
)

var longText = strings.Repeat("The Fed held rates steady while inflation cooled. ", 5)

func newTestDispatcher(completer Completer) (*Dispatcher, *mocks.TextExtractorMock, *mocks.ImageSourceMock) {
	extractor := &mocks.TextExtractorMock{
		TextFunc:    func(html string) string { return "text from html: " + html },
		ArticleFunc: func(html string) string { return "" },
	}
	images := &mocks.ImageSourceMock{
		ImageURLsFunc: func(html string, limit int) []string { return nil },
		FetchFunc:     func(ctx context.Context, url string) (string, error) { return "", errors.New("no fetch") },
	}
	d := NewDispatcher(DispatcherConfig{
		Completer: completer,
		Extractor: extractor,
		Images:    images,
		Tagger:    NewTagger(config.TaggerConfig{}),
	})
	return d, extractor, images
}

func TestDispatcher_UnknownHandlerUsesDefault(t *testing.T) {
	completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
		return "# 📊 Deep dive\n• point one", nil
	}}
	d, _, _ := newTestDispatcher(completer)

	res := d.Dispatch(context.Background(), "no_such_handler", Envelope{ID: "id1", Title: "t", Text: longText})
	assert.Equal(t, DefaultHandler, res.Handler)
	assert.Equal(t, "Rule: Gold Standard Enhanced\n\n# 📊 Deep dive\n• point one", res.Summary)
	assert.InDelta(t, 9.0, res.RelevanceScore, 0.001)
	assert.Equal(t, "THEMATIC_ANALYSIS", res.Category)
	assert.Equal(t, []string{"Federal Reserve"}, res.Actors)
	assert.Equal(t, []string{"Inflation", "Interest Rates"}, res.Themes)
	require.Len(t, completer.CompleteCalls(), 1)
	assert.Contains(t, completer.CompleteCalls()[0].Req.Prompt, longText[:40])
	assert.Equal(t, systemPrompt, completer.CompleteCalls()[0].Req.System)
	assert.Equal(t, 8192, completer.CompleteCalls()[0].Req.MaxTokens)
}

func TestDispatcher_InsufficientContent(t *testing.T) {
	completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
		return "should not be called", nil
	}}
	d, extractor, _ := newTestDispatcher(completer)

	for _, name := range []string{"gold_standard_enhanced", "newsbrief_english", "wsj_opinion", "itau_daily", "unknown"} {
		t.Run(name, func(t *testing.T) {
			res := d.Dispatch(context.Background(), name, Envelope{ID: "id1", Title: "Empty one"})
			assert.True(t, strings.HasPrefix(res.Summary, "Rule: Error"), res.Summary)
			assert.Contains(t, res.Summary, "insufficient content (0 characters after HTML fallback)")
			assert.InDelta(t, 0.0, res.RelevanceScore, 0.001)
			assert.Equal(t, "INSUFFICIENT_CONTENT", res.Category)
			assert.Empty(t, res.Actors)
			assert.Empty(t, res.Themes)
		})
	}
	assert.Empty(t, completer.CompleteCalls())
	assert.Empty(t, extractor.TextCalls(), "no html, no extraction")

	// short text with short html still fails the gate
	res := d.Dispatch(context.Background(), "joe", Envelope{Text: "short", HTML: "<p>x</p>"})
	assert.Contains(t, res.Summary, "insufficient content")
	assert.Equal(t, "joe", res.Handler)
	assert.Empty(t, completer.CompleteCalls())
}

func TestDispatcher_HTMLFallback(t *testing.T) {
	completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
		return "summary", nil
	}}
	d, extractor, _ := newTestDispatcher(completer)

	html := "<p>" + longText + "</p>"
	res := d.Dispatch(context.Background(), "joe", Envelope{Title: "t", HTML: html})
	assert.Equal(t, "Rule: Joe\n\nsummary", res.Summary)
	require.Len(t, extractor.TextCalls(), 1)
	assert.Equal(t, html, extractor.TextCalls()[0].HTML)
	assert.Contains(t, completer.CompleteCalls()[0].Req.Prompt, "text from html: <p>The Fed")
}

func TestDispatcher_HandlerErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler string
		resp    string
		err     error
		wantMsg string
	}{
		{"model error", "cochrane_detailed", "", errors.New("quota exceeded"), "quota exceeded"},
		{"bad json", "itau_daily", "not json at all", nil, "no json object found"},
		{"short json content", "itau_daily", `{"formatted_content": "too short"}`, nil, "formatted content too short"},
		{"empty summary", "joe", "Rule: Joe", nil, "empty summary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
				return tt.resp, tt.err
			}}
			d, _, _ := newTestDispatcher(completer)
			res := d.Dispatch(context.Background(), tt.handler, Envelope{ID: "x", Title: "t", Text: longText})
			assert.True(t, strings.HasPrefix(res.Summary, "Rule: Error\n\n❌ Enrichment failed: "), res.Summary)
			assert.Contains(t, res.Summary, tt.wantMsg)
			assert.Equal(t, "ERROR", res.Category)
			assert.InDelta(t, 5.0, res.RelevanceScore, 0.001)
			assert.Equal(t, tt.handler, res.Handler)
		})
	}
}

func TestDispatcher_ErrorMessageTruncated(t *testing.T) {
	completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
		return "", errors.New(strings.Repeat("e", 500))
	}}
	d, _, _ := newTestDispatcher(completer)
	res := d.Dispatch(context.Background(), "joe", Envelope{Text: longText})
	assert.Equal(t, "Rule: Error\n\n❌ Enrichment failed: "+strings.Repeat("e", 200), res.Summary)
}

func TestDispatcher_HandlerPanic(t *testing.T) {
	completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
		panic("boom")
	}}
	d, _, _ := newTestDispatcher(completer)
	res := d.Dispatch(context.Background(), "gs_rates", Envelope{Text: longText})
	assert.Equal(t, "Rule: Error\n\n❌ Enrichment failed: handler panic: boom", res.Summary)
	assert.Equal(t, "gs_rates", res.Handler)
	assert.InDelta(t, 5.0, res.RelevanceScore, 0.001)
}

func TestDispatcher_TitleOnly(t *testing.T) {
	completer := &mocks.CompleterMock{}
	d, _, _ := newTestDispatcher(completer)

	res := d.Dispatch(context.Background(), "wsj_opinion", Envelope{Title: "FW: Opinion: The Fed's Mistake", Text: longText})
	assert.Equal(t, "Rule: WSJ Opinion\n\n📰 WSJ Opinion: The Fed's Mistake", res.Summary)
	assert.Equal(t, []string{"WSJ", "Opinion"}, res.Actors)
	assert.Equal(t, []string{"Opinion Column"}, res.Themes)
	assert.InDelta(t, 7.0, res.RelevanceScore, 0.001)

	res = d.Dispatch(context.Background(), "bloomberg_breaking", Envelope{Title: "Breaking News: Oil jumps 5%", Text: longText})
	assert.Equal(t, "Rule: Bloomberg Breaking News\n\n📰 Bloomberg Breaking News: Oil jumps 5%", res.Summary)
	assert.InDelta(t, 8.0, res.RelevanceScore, 0.001)
	assert.Empty(t, completer.CompleteCalls())
}

func TestDispatcher_Headlines(t *testing.T) {
	d, extractor, _ := newTestDispatcher(&mocks.CompleterMock{})
	extractor.TextFunc = func(html string) string {
		return strings.Join([]string{
			"Breakfast with Dave",
			"Bonds Are Telling a Different Story Than Stocks This Week",
			"Bonds Are Telling a Different Story Than Stocks This Week",
			"Philly Fed Survey Points to a Manufacturing Slowdown Ahead",
			"You are receiving this email because you subscribed to our service",
			"short",
		}, "\n")
	}

	res := d.Dispatch(context.Background(), "breakfast_headlines", Envelope{Title: "Breakfast with Dave", Text: longText, HTML: "<p>x</p>"})
	assert.True(t, strings.HasPrefix(res.Summary, "Rule: Breakfast Headlines\n\n📰 BREAKFAST HEADLINES - Breakfast with Dave"))
	assert.Equal(t, 1, strings.Count(res.Summary, "• Bonds Are Telling"))
	assert.Contains(t, res.Summary, "• Philly Fed Survey")
	assert.NotContains(t, res.Summary, "You are receiving")
	assert.Equal(t, []string{"David Rosenberg", "Rosenberg Research"}, res.Actors)
	assert.InDelta(t, 8.0, res.RelevanceScore, 0.001)
}

func TestDispatcher_JSON(t *testing.T) {
	formatted := strings.Repeat("Copom kept Selic at 15% and signaled a long pause. ", 6)
	completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
		return fmt.Sprintf("```json\n{\"formatted_content\": %q, \"actors\": [\"A\",\"B\",\"C\",\"D\",\"E\",\"F\",\"G\",\"H\",\"I\"], \"themes\": [\"Selic\"]}\n```", formatted), nil
	}}
	d, _, _ := newTestDispatcher(completer)

	res := d.Dispatch(context.Background(), "itau_daily", Envelope{Tag: "Itau_Brazil_Daily", Title: "Brazil Daily", Text: longText})
	assert.Equal(t, "Rule: Itau Daily\n\n# 🏦 Itau Daily: Brazil Daily\n\n"+strings.TrimSpace(formatted), res.Summary)
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G"}, res.Actors)
	assert.Equal(t, []string{"Selic"}, res.Themes)
	assert.InDelta(t, 9.0, res.RelevanceScore, 0.001)
	require.Len(t, completer.CompleteCalls(), 1)
	assert.True(t, completer.CompleteCalls()[0].Req.JSON)
	assert.Contains(t, completer.CompleteCalls()[0].Req.Prompt, "Source: Itau_Brazil_Daily")
}

func TestDispatcher_Vision(t *testing.T) {
	completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
		return "Rule: Charts\n\n# 📊 Macro Charts\n## Chart 1", nil
	}}

	t.Run("with images", func(t *testing.T) {
		d, _, images := newTestDispatcher(completer)
		images.ImageURLsFunc = func(html string, limit int) []string {
			return []string{"https://cdn.example.com/1.png", "https://cdn.example.com/broken.png", "https://cdn.example.com/2.png"}
		}
		images.FetchFunc = func(ctx context.Context, url string) (string, error) {
			if strings.Contains(url, "broken") {
				return "", errors.New("404")
			}
			return "data:image/png;base64,AAAA", nil
		}
		res := d.Dispatch(context.Background(), "charts_vlm", Envelope{Title: "Charts of the week", Text: longText, HTML: "<img>"})
		assert.Equal(t, "Rule: Charts\n\n# 📊 Macro Charts\n## Chart 1", res.Summary)
		assert.InDelta(t, 9.0, res.RelevanceScore, 0.001)
		calls := completer.CompleteCalls()
		require.NotEmpty(t, calls)
		assert.Len(t, calls[len(calls)-1].Req.Images, 2)
		assert.Contains(t, calls[len(calls)-1].Req.Prompt, "Charts attached: 2")
		assert.Equal(t, 10, images.ImageURLsCalls()[0].Limit)
	})

	t.Run("no images", func(t *testing.T) {
		d, _, _ := newTestDispatcher(completer)
		res := d.Dispatch(context.Background(), "charts_vlm", Envelope{Title: "Charts", Text: longText, HTML: "<p>no images</p>"})
		assert.InDelta(t, 6.0, res.RelevanceScore, 0.001)
		res = d.Dispatch(context.Background(), "shadow_vlm", Envelope{Title: "Shadow", Text: longText})
		assert.InDelta(t, 7.0, res.RelevanceScore, 0.001)
		assert.True(t, strings.HasPrefix(res.Summary, "Rule: Shadow\n\n"))
	})
}

func TestDispatcher_Digest(t *testing.T) {
	completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
		return "<strong>1. First</strong>\n• a\n\n\n\n<strong>2. Second</strong>\n• b", nil
	}}
	d, _, _ := newTestDispatcher(completer)

	res := d.Dispatch(context.Background(), "newsbrief_portuguese", Envelope{Tag: "Folha", Title: "Resumo", Text: "linha   um\n\n" + longText})
	assert.Equal(t, "Rule: NewsBrief\n\n<strong>1. First</strong>\n• a\n\n<strong>2. Second</strong>\n• b", res.Summary)
	assert.InDelta(t, 7.5, res.RelevanceScore, 0.001)
	prompt := completer.CompleteCalls()[0].Req.Prompt
	assert.Contains(t, prompt, "linha um The Fed")
	assert.Contains(t, prompt, "write the output in Portuguese")
	assert.Equal(t, 2500, completer.CompleteCalls()[0].Req.MaxTokens)
}

func TestDispatcher_ArticleExtraction(t *testing.T) {
	completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) {
		return "rep", nil
	}}
	d, extractor, _ := newTestDispatcher(completer)
	article := strings.Repeat("Main article paragraph about global growth. ", 4)
	extractor.ArticleFunc = func(html string) string { return article }

	d.Dispatch(context.Background(), "elerian_rep", Envelope{Text: longText, HTML: "<article>...</article>"})
	assert.Contains(t, completer.CompleteCalls()[0].Req.Prompt, article)
	assert.NotContains(t, completer.CompleteCalls()[0].Req.Prompt, "The Fed held")

	// handlers without article extraction use the text
	d.Dispatch(context.Background(), "joe", Envelope{Text: longText, HTML: "<article>...</article>"})
	assert.Contains(t, completer.CompleteCalls()[1].Req.Prompt, "The Fed held")
	assert.Len(t, extractor.ArticleCalls(), 1)
}

func TestDispatcher_Totality(t *testing.T) {
	names := []string{"", "unknown", "wsj_opinion", "breakfast_headlines", "itau_daily", "charts_vlm", "newsbrief_english", "video"}
	contents := []Envelope{
		{},
		{Text: "tiny"},
		{Text: longText},
		{HTML: "<p>" + longText + "</p>"},
		{Title: "Opinion: x", Text: longText, HTML: "<p>y</p>"},
	}
	responses := []func() (string, error){
		func() (string, error) { return "fine output", nil },
		func() (string, error) { return "", errors.New("network down") },
		func() (string, error) { return "", nil },
		func() (string, error) { panic("unexpected") },
	}

	for _, respFn := range responses {
		completer := &mocks.CompleterMock{CompleteFunc: func(ctx context.Context, req llm.Request) (string, error) { return respFn() }}
		d, _, _ := newTestDispatcher(completer)
		for _, name := range names {
			for _, env := range contents {
				res := d.Dispatch(context.Background(), name, env)
				assert.True(t, strings.HasPrefix(res.Summary, "Rule: "), res.Summary)
				assert.Greater(t, len(res.Summary), len("Rule: "))
				assert.False(t, math.IsNaN(res.RelevanceScore))
				assert.GreaterOrEqual(t, res.RelevanceScore, 0.0)
				assert.LessOrEqual(t, res.RelevanceScore, 10.0)
				assert.LessOrEqual(t, len(res.Actors), 7)
				assert.LessOrEqual(t, len(res.Themes), 7)
				assert.NotEmpty(t, res.Handler)
			}
		}
	}
}

func TestDispatcher_Lookup(t *testing.T) {
	d, _, _ := newTestDispatcher(&mocks.CompleterMock{})
	assert.Equal(t, KindDigest, d.Lookup("newsbrief_portuguese_with_links").Kind)
	assert.True(t, d.Lookup("newsbrief_portuguese_with_links").Portuguese)
	assert.Equal(t, DefaultHandler, d.Lookup("nope").Name)

	d = NewDispatcher(DispatcherConfig{DefaultHandler: "not_registered"})
	assert.Equal(t, DefaultHandler, d.Lookup("nope").Name)
}

func TestNormalizeHelpers(t *testing.T) {
	assert.Equal(t, "body", stripProvenance("Rule: Whatever\n\nbody"))
	assert.Equal(t, "body", stripProvenance("  body "))
	assert.Empty(t, stripProvenance("Rule: only label"))

	assert.Equal(t, []string{"a", "b"}, limitList([]string{" a ", "", "b"}))
	assert.Len(t, limitList([]string{"1", "2", "3", "4", "5", "6", "7", "8"}), 7)

	assert.InDelta(t, 9.0, clampScore(math.NaN(), 9.0), 0.001)
	assert.InDelta(t, 9.0, clampScore(math.Inf(1), 9.0), 0.001)
	assert.InDelta(t, 10.0, clampScore(12, 9.0), 0.001)
	assert.InDelta(t, 0.0, clampScore(-3, 9.0), 0.001)

	assert.Equal(t, "Pílu", truncate("Pílula", 4))
}

func TestCleanTranscript(t *testing.T) {
	in := "[00:01:02] Host: Welcome back [Music]\n\n[1:05] Guest: rates are high , very high ."
	assert.Equal(t, "Host: Welcome back\nGuest: rates are high, very high.", cleanTranscript(in))
}

func TestCleanSubject(t *testing.T) {
	assert.Equal(t, "Title", cleanSubject("FW: Opinion: Title"))
	assert.Equal(t, "Title", cleanSubject("Fwd: fw: Breaking News: Title"))
	assert.Equal(t, "Opinionated", cleanSubject("Opinionated"))
}

func TestFailed(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{})
	assert.True(t, Failed(d.ErrorResult("joe", errors.New("boom"))))
	assert.True(t, Failed(insufficientResult("joe", 3)))
	assert.False(t, Failed(domain.EnrichmentResult{Category: "ANALYSIS"}))
}
