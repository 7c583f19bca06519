package enrich

import (
	"regexp"
	"sort"
	"strings"

	"github.com/umputun/mailscope/pkg/config"
)

// tagEntry is a label with the words triggering it
type tagEntry struct {
	name string
	re   *regexp.Regexp
}

// Tagger is a keyword based fallback for actors and themes
type Tagger struct {
	actors []tagEntry
	themes []tagEntry
}

var defaultActors = []struct {
	name     string
	triggers []string
}{
	{"Trump", []string{"trump"}},
	{"Federal Reserve", []string{"fed", "federal reserve", "fomc", "powell"}},
	{"ECB", []string{"ecb", "european central bank", "lagarde"}},
	{"Bank of Japan", []string{"boj", "bank of japan"}},
	{"IMF", []string{"imf", "international monetary fund"}},
	{"China", []string{"china", "beijing", "pboc"}},
	{"Treasury", []string{"treasury", "treasuries"}},
	{"OPEC", []string{"opec"}},
	{"Banco Central", []string{"banco central", "copom"}},
}

var defaultThemes = []struct {
	name     string
	triggers []string
}{
	{"Fiscal Policy", []string{"fiscal", "deficit", "debt"}},
	{"Quantitative Easing", []string{"qe", "quantitative easing"}},
	{"Inflation", []string{"inflation", "cpi", "pce", "inflação"}},
	{"Interest Rates", []string{"rate", "rates", "yield", "yields", "juros"}},
	{"Central Banking", []string{"central bank", "central banks"}},
	{"Trade", []string{"tariff", "tariffs", "trade war"}},
	{"Labor Market", []string{"payrolls", "unemployment", "jobless"}},
	{"Energy", []string{"oil", "crude", "natural gas", "lng"}},
	{"Currencies", []string{"dollar", "currency", "currencies", "fx", "yen", "euro"}},
}

// NewTagger makes a tagger from the built-in tables. Non-empty config maps replace the
// corresponding built-in table, entries are ordered by name.
func NewTagger(cfg config.TaggerConfig) *Tagger {
	res := &Tagger{}
	if len(cfg.Actors) > 0 {
		res.actors = entriesFromMap(cfg.Actors)
	} else {
		for _, a := range defaultActors {
			res.actors = append(res.actors, newTagEntry(a.name, a.triggers))
		}
	}
	if len(cfg.Themes) > 0 {
		res.themes = entriesFromMap(cfg.Themes)
	} else {
		for _, t := range defaultThemes {
			res.themes = append(res.themes, newTagEntry(t.name, t.triggers))
		}
	}
	return res
}

// Tag returns actors and themes whose trigger words appear in text, in table order
func (t *Tagger) Tag(text string) (actors, themes []string) {
	return match(t.actors, text), match(t.themes, text)
}

func match(entries []tagEntry, text string) []string {
	var res []string
	for _, e := range entries {
		if e.re != nil && e.re.MatchString(text) {
			res = append(res, e.name)
		}
	}
	return res
}

func entriesFromMap(m map[string][]string) []tagEntry {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	res := make([]tagEntry, 0, len(names))
	for _, name := range names {
		res = append(res, newTagEntry(name, m[name]))
	}
	return res
}

// newTagEntry compiles triggers into one case-insensitive whole-word pattern
func newTagEntry(name string, triggers []string) tagEntry {
	quoted := make([]string, 0, len(triggers))
	for _, tr := range triggers {
		if tr = strings.TrimSpace(tr); tr != "" {
			quoted = append(quoted, regexp.QuoteMeta(tr))
		}
	}
	if len(quoted) == 0 {
		return tagEntry{name: name}
	}
	return tagEntry{name: name, re: regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])(` + strings.Join(quoted, "|") + `)($|[^\p{L}\p{N}])`)}
}
