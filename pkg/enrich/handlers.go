package enrich

// registry lists every handler known to the dispatcher
var registry = []Handler{
	{
		Name: "wsj_opinion", Label: "WSJ Opinion", Kind: KindTitleOnly, Category: "OPINION", Score: 7.0,
		Actors: []string{"WSJ", "Opinion"}, Themes: []string{"Opinion Column"},
	},
	{
		Name: "bloomberg_breaking", Label: "Bloomberg Breaking News", Kind: KindTitleOnly, Category: "BREAKING_NEWS", Score: 8.0,
		Actors: []string{"Bloomberg"}, Themes: []string{"Breaking News", "News Alert"},
	},
	{
		Name: "breakfast_headlines", Label: "Breakfast Headlines", Kind: KindHeadlines, Category: "BREAKFAST_HEADLINES", Score: 8.0,
		Actors: []string{"David Rosenberg", "Rosenberg Research"}, Themes: []string{"Daily headlines", "Market research digest"},
	},
	{
		Name: "rosenberg_deep_research", Label: "Rosenberg Early Morning", Kind: KindText, Category: "DEEP_RESEARCH", Score: 9.5,
		Actors: []string{"David Rosenberg", "Rosenberg Research"}, Themes: []string{"Macro research"}, UseTagger: true,
		MaxTokens: 8192, Instructions: rosenbergInstructions,
	},
	{
		Name: "newsbrief_english", Label: "NewsBrief", Kind: KindDigest, Category: "NEWS_BRIEF", Score: 7.5,
		MaxTokens: 2500, Instructions: newsBriefInstructions,
	},
	{
		Name: "newsbrief_portuguese", Label: "NewsBrief", Kind: KindDigest, Category: "NEWS_BRIEF", Score: 7.5,
		Portuguese: true, MaxTokens: 2500, Instructions: newsBriefInstructions,
	},
	{
		Name: "newsbrief_portuguese_with_links", Label: "NewsBrief", Kind: KindDigest, Category: "NEWS_BRIEF", Score: 7.5,
		Portuguese: true, MaxTokens: 2500, Instructions: newsBriefInstructions,
	},
	{
		Name: DefaultHandler, Label: "Gold Standard Enhanced", Kind: KindText, Category: "THEMATIC_ANALYSIS", Score: 9.0,
		Actors: []string{"Bloomberg Economics"}, Themes: []string{"Economics Analysis"}, UseTagger: true,
		MaxTokens: 8192, Instructions: goldStandardInstructions,
	},
	{
		Name: "cochrane_detailed", Label: "DetailedSummary1", Kind: KindText, Category: "ECONOMIC_COMMENTARY", Score: 9.0,
		Actors: []string{"John Cochrane"}, Themes: []string{"Economics"}, UseTagger: true,
		MaxTokens: 8192, Instructions: cochraneInstructions,
	},
	{
		Name: "itau_daily", Label: "Itau Daily", Kind: KindJSON, Category: "MACRO_RESEARCH", Score: 9.0,
		Actors: []string{"Itau"}, Themes: []string{"Macro research"},
		MaxTokens: 4096, Instructions: itauInstructions,
	},
	{
		Name: "shadow_vlm", Label: "Shadow", Kind: KindVision, Category: "ECONOMIC_ANALYSIS", Score: 9.5, NoImageScore: 7.0,
		Actors: []string{"Robin Brooks"}, Themes: []string{"Macro analysis"}, UseTagger: true,
		MaxTokens: 12000, Instructions: shadowInstructions,
	},
	{
		Name: "charts_vlm", Label: "Charts", Kind: KindVision, Category: "CHART_ANALYSIS", Score: 9.0, NoImageScore: 6.0,
		Themes: []string{"Charts"}, UseTagger: true,
		MaxTokens: 8192, Instructions: chartsInstructions,
	},
	{
		Name: "elerian_rep", Label: "Rep", Kind: KindText, Category: "ELERIAN_COMMENTARY", Score: 9.0,
		Actors: []string{"Mohamed El-Erian"}, Themes: []string{"Economic commentary"}, UseTagger: true,
		Article: true, MaxTokens: 12288, Instructions: elerianInstructions,
	},
	{
		Name: "tony_pasquariello", Label: "Tony Pasquariello (Goldman Sachs)", Kind: KindText, Category: "MARKET_COMMENTARY", Score: 9.0,
		Actors: []string{"Tony Pasquariello", "Goldman Sachs"}, Themes: []string{"Markets"}, UseTagger: true,
		MaxTokens: 8192, Instructions: tonyInstructions,
	},
	{
		Name: "joe", Label: "Joe", Kind: KindText, Category: "COMMENTARY", Score: 8.5,
		Actors: []string{"Joe Weisenthal", "Bloomberg"}, Themes: []string{"Odd Lots"}, UseTagger: true,
		MaxTokens: 4096, Instructions: joeInstructions,
	},
	{
		Name: "javier", Label: "Javier", Kind: KindText, Category: "COMMODITIES", Score: 8.5,
		Actors: []string{"Javier Blas", "Bloomberg"}, Themes: []string{"Energy", "Commodities"},
		MaxTokens: 4096, Instructions: javierInstructions,
	},
	{
		Name: "pilula", Label: "Pílula", Kind: KindText, Category: "NEWS_BRIEF", Score: 7.5,
		Actors: []string{"Estadão"}, Themes: []string{"Notícias"}, Portuguese: true,
		MaxTokens: 4096, Instructions: pilulaInstructions,
	},
	{
		Name: "gs_rates", Label: "GS Rates", Kind: KindText, Category: "RATES_RESEARCH", Score: 9.5,
		Actors: []string{"Goldman Sachs"}, Themes: []string{"Rates"}, UseTagger: true,
		Article: true, MaxTokens: 8192, Instructions: gsRatesInstructions,
	},
	{
		Name: "video", Label: "Video", Kind: KindText, Category: "VIDEO_ANALYSIS", Score: 9.0,
		Themes: []string{"Video"}, UseTagger: true,
		Transcript: true, MaxTokens: 8192, Instructions: videoInstructions,
	},
}

// Handlers returns a copy of the handler registry
func Handlers() []Handler {
	res := make([]Handler, len(registry))
	copy(res, registry)
	return res
}
