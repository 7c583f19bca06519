package enrich

// DefaultHandler is used for every tag without a route
const DefaultHandler = "gold_standard_enhanced"

// DefaultRoutes maps sender tags to handler names. Exact match only.
var DefaultRoutes = map[string]string{
	"WSJ Opinion":             "wsj_opinion",
	"Bloomberg Breaking News": "bloomberg_breaking",

	"Rosenberg_EM":       "rosenberg_deep_research",
	"Rosenberg Research": "breakfast_headlines",

	"Folha":   "newsbrief_portuguese",
	"Estadão": "newsbrief_portuguese_with_links",
	"O Globo": "newsbrief_portuguese",

	"WSJ":                  "newsbrief_english",
	"Financial Times / FT": "newsbrief_english",
	"Reuters":              "newsbrief_english",
	"Bloomberg":            "newsbrief_english",
	"Business Insider":     "newsbrief_english",
	"Barons Daily":         "newsbrief_english",
	"TKer":                 "newsbrief_english",
	"Topdown Charts":       "newsbrief_english",
	"Macro Mornings":       "newsbrief_english",

	"Goldman Sachs":             "gold_standard_enhanced",
	"Bloomberg Economics Daily": "gold_standard_enhanced",
	"Torsten Slok":              "gold_standard_enhanced",
	"Adam Tooze":                "gold_standard_enhanced",
	"Noahpinion":                "gold_standard_enhanced",
	"Yascha Mounk":              "gold_standard_enhanced",
	"MacroTourist":              "gold_standard_enhanced",
	"Matt Stoller":              "gold_standard_enhanced",

	"John Cochrane":     "cochrane_detailed",
	"Itau_FOMC":         "itau_daily",
	"Itau_China":        "itau_daily",
	"Itau_Europe":       "itau_daily",
	"Itau_Brazil_Daily": "itau_daily",
	"Itau_Global":       "itau_daily",
	"Itau_Cac":          "itau_daily",
	"Itau":              "itau_daily",

	"Shadow Price Macro": "shadow_vlm",
	"Macro Charts":       "charts_vlm",
	"ChartStorm":         "charts_vlm",
	"Mohamed El-Erian":   "elerian_rep",
	"Tony Pasquariello":  "tony_pasquariello",
	"Bloomberg Odd Lots": "joe",
	"Javier Blas":        "javier",
	"Estadão Pílula":     "pilula",
	"GS Rates":           "gs_rates",
	"Video":              "video",
}

// Router maps a sender tag to a handler name
type Router struct {
	routes     map[string]string
	defHandler string
}

// NewRouter makes a router from the default table with overrides applied on top.
// Empty defHandler means DefaultHandler.
func NewRouter(overrides map[string]string, defHandler string) *Router {
	if defHandler == "" {
		defHandler = DefaultHandler
	}
	routes := make(map[string]string, len(DefaultRoutes)+len(overrides))
	for tag, name := range DefaultRoutes {
		routes[tag] = name
	}
	for tag, name := range overrides {
		routes[tag] = name
	}
	return &Router{routes: routes, defHandler: defHandler}
}

// Route returns handler name for the tag, the default handler for unknown tags
func (r *Router) Route(tag string) string {
	if name, ok := r.routes[tag]; ok && name != "" {
		return name
	}
	return r.defHandler
}
