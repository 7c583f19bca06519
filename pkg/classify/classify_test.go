package classify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/mailscope/pkg/config"
	"github.com/umputun/mailscope/pkg/content"
	"github.com/umputun/mailscope/pkg/domain"
)

func TestClassifier_Classify(t *testing.T) {
	c := New(Options{})

	tests := []struct {
		name    string
		email   string
		sender  string
		title   string
		content string
		want    string
	}{
		{name: "bloomberg breaking", email: "noreply@news.bloomberg.com", sender: "Bloomberg",
			title: "BREAKING NEWS: Fed cuts rates", want: "Bloomberg Breaking News"},
		{name: "bloomberg odd lots by title", email: "noreply@news.bloomberg.com", sender: "Bloomberg",
			title: "Odd Lots: why copper matters", want: "Bloomberg Odd Lots"},
		{name: "bloomberg odd lots by content", email: "x@bloomberg.net", sender: "Bloomberg Newsletters",
			title: "Markets", content: "Hi, this is Joe Weisenthal with today's note", want: "Bloomberg Odd Lots"},
		{name: "javier blas alert", email: "alerts@bloomberg.net", sender: "Bloomberg",
			title: "Oil", content: "Javier Blas, just published a story", want: "Javier Blas"},
		{name: "bloomberg generic", email: "noreply@news.bloomberg.com", sender: "Bloomberg",
			title: "Evening Briefing", want: "Bloomberg"},
		{name: "wsj opinion", email: "access@interactive.wsj.com", sender: "WSJ Opinion",
			title: "Opinion: the tariff trap", want: "WSJ Opinion"},
		{name: "wsj generic", email: "access@interactive.wsj.com", sender: "The Wall Street Journal",
			title: "The 10-Point", want: "WSJ"},
		{name: "tony", email: "tony.pasquariello@mail.marquee.gs.com", sender: "Tony Pasquariello",
			title: "Weekly", want: "Tony Pasquariello"},
		{name: "gs rates by title", email: "research@gs.com", sender: "Goldman Sachs Research",
			title: "US Rates: curve steepening", want: "GS Rates"},
		{name: "goldman generic", email: "research@gs.com", sender: "Goldman Sachs Research",
			title: "Top of mind", want: "Goldman Sachs"},
		{name: "rosenberg early morning", email: "dave@rosenbergresearch.com", sender: "Rosenberg Research",
			title: "Early Morning with Dave", want: "Rosenberg_EM"},
		{name: "rosenberg breakfast", email: "dave@rosenbergresearch.com", sender: "Rosenberg Research",
			title: "Breakfast with Dave", want: "Rosenberg Research"},
		{name: "itau fomc", email: "macro@itau.com.br", sender: "Itau Macro", title: "FOMC review", want: "Itau_FOMC"},
		{name: "itau brazil", email: "macro@itau.com.br", sender: "Pedro at Itau", title: "Brazil Daily", want: "Itau_Brazil_Daily"},
		{name: "itau generic", email: "macro@itau.com.br", sender: "Itau Macro", title: "Mexico Daily", want: "Itau"},
		{name: "estadao pilula", email: "newsletter@estadao.com.br", sender: "Estadão",
			title: "Pílula do dia", want: "Estadão Pílula"},
		{name: "estadao generic", email: "newsletter@estadao.com.br", sender: "Estadão",
			title: "Primeira página", want: "Estadão"},
		{name: "folha", email: "newsletter@folha.com.br", sender: "Folha de S.Paulo", title: "Folha Manhã", want: "Folha"},
		{name: "cochrane", email: "johnhcochrane@substack.com", sender: "The Grumpy Economist",
			title: "Inflation", want: "John Cochrane"},
		{name: "shadow by content", email: "x@substack.com", sender: "Robin",
			title: "Dollar", content: "Welcome to Shadow Price Macro", want: "Shadow Price Macro"},
		{name: "chartstorm", email: "chartstorm@substack.com", sender: "Callum Thomas", title: "Weekly #ChartStorm", want: "ChartStorm"},
		{name: "video", email: "me@example.com", sender: "Me", title: "VIDEO: interview", want: "Video"},
		{name: "no match", email: "someone@example.com", sender: "Someone", title: "Hello", want: ""},
		{name: "empty inputs", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.email, tt.sender, tt.title, tt.content))
		})
	}
}

func TestClassifier_FirstRegisteredWins(t *testing.T) {
	// breaking news from bloomberg matches both "Bloomberg Breaking News" and "Bloomberg"
	c := New(Options{})
	tags := c.Tags()
	breaking, generic := -1, -1
	for i, tag := range tags {
		switch tag {
		case "Bloomberg Breaking News":
			breaking = i
		case "Bloomberg":
			generic = i
		}
	}
	require.NotEqual(t, -1, breaking)
	require.NotEqual(t, -1, generic)
	assert.Less(t, breaking, generic)
	assert.Equal(t, "Bloomberg Breaking News", c.Classify("a@bloomberg.net", "Bloomberg", "Breaking: news", ""))

	// configured rules go before built-in ones
	c = New(Options{DetectionRules: []config.DetectionRule{
		{Tag: "Custom Bloomberg", Sender: "bloomberg", SubjectContains: []string{"breaking"}, Logic: "AND"},
	}})
	assert.Equal(t, "Custom Bloomberg", c.Classify("a@bloomberg.net", "Bloomberg", "Breaking: news", ""))
	assert.Equal(t, "Custom Bloomberg", c.Tags()[0])
}

func TestConfiguredRule(t *testing.T) {
	tests := []struct {
		name  string
		rule  config.DetectionRule
		title string
		body  string
		want  bool
	}{
		{"and both hit", config.DetectionRule{Sender: "itau", SubjectContains: []string{"chile"}, BodyContains: []string{"copper"}, Logic: "AND"},
			"Chile daily", "copper prices", true},
		{"and one miss", config.DetectionRule{Sender: "itau", SubjectContains: []string{"chile"}, BodyContains: []string{"copper"}, Logic: "AND"},
			"Chile daily", "nothing", false},
		{"or one hit", config.DetectionRule{Sender: "itau", SubjectContains: []string{"chile"}, BodyContains: []string{"copper"}, Logic: "OR"},
			"Peru daily", "copper prices", true},
		{"sender only", config.DetectionRule{Sender: "itau", Logic: "AND"}, "anything", "", true},
		{"sender miss", config.DetectionRule{Sender: "bradesco", SubjectContains: []string{"chile"}, Logic: "OR"}, "Chile", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.rule.Tag = "X"
			r := configuredRule(tt.rule)
			assert.Equal(t, tt.want, r.Match(newSignals("macro@itau.com.br", "Itau", tt.title, tt.body)))
		})
	}
}

func TestClassifier_AllowedAndBlocked(t *testing.T) {
	inactive := false
	c := New(Options{
		Senders: []config.SenderGroup{
			{Tag: "Bloomberg", Patterns: []string{"bloomberg.com", "bloomberg.net"}},
			{Tag: "Folha", Patterns: []string{"folha"}, Active: &inactive},
			{Tag: "Substack", Patterns: []string{"substack.com"}},
		},
		Blocked: config.BlockedConfig{
			Names:    []string{"Promo Team"},
			Emails:   []string{"noreply@marketing."},
			Patterns: []string{"webinar"},
		},
		DefaultTag: "General",
	})

	tag, ok := c.Allowed("Bloomberg <noreply@news.bloomberg.com>")
	assert.True(t, ok)
	assert.Equal(t, "Bloomberg", tag)

	_, ok = c.Allowed("Folha <news@folha.com.br>")
	assert.False(t, ok, "inactive group doesn't allow")

	_, ok = c.Allowed("Random <x@example.com>")
	assert.False(t, ok)

	assert.True(t, c.Blocked("a@example.com", "promo team", "hi"))
	assert.True(t, c.Blocked("noreply@marketing.example.com", "X", "hi"))
	assert.True(t, c.Blocked("a@example.com", "X", "Join our Webinar"))
	assert.False(t, c.Blocked("a@example.com", "X", "Daily brief"))

	open := New(Options{})
	tag, ok = open.Allowed("anyone <a@b.c>")
	assert.True(t, ok)
	assert.Empty(t, tag)
}

func TestClassifier_Resolve(t *testing.T) {
	c := New(Options{
		Senders: []config.SenderGroup{
			{Tag: "Bloomberg", Patterns: []string{"bloomberg"}},
			{Tag: "Substack", Patterns: []string{"substack.com"}},
		},
		Blocked:    config.BlockedConfig{Patterns: []string{"sponsored"}},
		DefaultTag: "General",
	})

	item := func(sender, title, text string) domain.InboundItem {
		return domain.InboundItem{ID: "1", SenderRaw: sender, Title: title, ContentText: text, CreatedAt: time.Now()}
	}

	tag, ok := c.Resolve(item("Bloomberg <noreply@news.bloomberg.com>", "Breaking News: X", ""))
	assert.True(t, ok)
	assert.Equal(t, "Bloomberg Breaking News", tag)

	tag, ok = c.Resolve(item("Unknown Writer <unknown@substack.com>", "Essay", ""))
	assert.True(t, ok)
	assert.Equal(t, "Substack", tag, "falls back to allow-list tag")

	_, ok = c.Resolve(item("Stranger <x@example.com>", "Hi", ""))
	assert.False(t, ok, "not in allow-list")

	_, ok = c.Resolve(item("Bloomberg <noreply@news.bloomberg.com>", "Sponsored content", ""))
	assert.False(t, ok, "blocked")

	open := New(Options{DefaultTag: "General"})
	tag, ok = open.Resolve(item("Stranger <x@example.com>", "Hi", ""))
	assert.True(t, ok)
	assert.Equal(t, "General", tag)
}

func TestClassifier_ResolveHTMLOnly(t *testing.T) {
	style := "<style>" + strings.Repeat(".mso-table td { font-family: Arial; padding: 0; } ", 30) + "</style>"
	body := "<html><head>" + style + "</head><body><div><p>Javier Blas just published a new column on oil " +
		"markets.</p><p>Read it on Bloomberg Opinion.</p></div></body></html>"
	item := domain.InboundItem{ID: "1", SenderRaw: "Bloomberg <noreply@news.bloomberg.com>",
		Title: "Opinion today", ContentHTML: body}
	require.Greater(t, len(style), contentPrefixLen)

	t.Run("text extractor", func(t *testing.T) {
		c := New(Options{Extractor: content.NewExtractor(), DefaultTag: "General"})
		tag, ok := c.Resolve(item)
		assert.True(t, ok)
		assert.Equal(t, "Javier Blas", tag)
	})

	t.Run("same text as plain body", func(t *testing.T) {
		c := New(Options{DefaultTag: "General"})
		plain := item
		plain.ContentHTML = ""
		plain.ContentText = "Javier Blas just published a new column on oil markets."
		tag, ok := c.Resolve(plain)
		assert.True(t, ok)
		assert.Equal(t, "Javier Blas", tag)
	})

	t.Run("text body wins over html", func(t *testing.T) {
		c := New(Options{Extractor: content.NewExtractor(), DefaultTag: "General"})
		both := item
		both.ContentText = "Morning markets wrap"
		tag, ok := c.Resolve(both)
		assert.True(t, ok)
		assert.Equal(t, "Bloomberg", tag)
	})
}

func TestParseSender(t *testing.T) {
	tests := []struct {
		raw, name, email string
	}{
		{"Bloomberg <noreply@news.bloomberg.com>", "Bloomberg", "noreply@news.bloomberg.com"},
		{`"Rosenberg Research" <dave@rosenbergresearch.com>`, "Rosenberg Research", "dave@rosenbergresearch.com"},
		{"Estadão <newsletter@estadao.com.br>", "Estadão", "newsletter@estadao.com.br"},
		{"plain@example.com", "", "plain@example.com"},
		{"Broken Name, Inc <x@y.com>", "Broken Name, Inc", "x@y.com"},
		{"Just A Name", "Just A Name", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, email := ParseSender(tt.raw)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.email, email)
		})
	}
}
