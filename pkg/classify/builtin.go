package classify

import "strings"

// BuiltinRules returns the built-in detection rules in evaluation order.
// Combined conditions for the same platform (Bloomberg, Goldman, Rosenberg, Itau, Estadão, WSJ)
// go before the generic platform rule, otherwise the generic one would shadow them.
func BuiltinRules() []Rule {
	return []Rule{
		// bloomberg family
		{Tag: "Bloomberg Breaking News", Match: func(s Signals) bool {
			return isBloomberg(s) && containsAny(s.Title, "breaking news", "breaking:")
		}},
		{Tag: "Bloomberg Odd Lots", Match: func(s Signals) bool {
			return isBloomberg(s) && (strings.Contains(s.Title, "odd lots") ||
				containsAny(s.Content, "odd lots", "joe weisenthal", "tracy alloway") ||
				strings.Contains(s.Email, "oddlots@bloomberg.net"))
		}},
		{Tag: "Javier Blas", Match: func(s Signals) bool {
			return strings.Contains(s.Name, "bloomberg") &&
				strings.Contains(s.Content, "javier blas") && strings.Contains(s.Content, "just published")
		}},
		{Tag: "Bloomberg Economics Daily", Match: func(s Signals) bool {
			return strings.Contains(s.Name, "bloomberg") &&
				(strings.Contains(s.Title, "economics daily") || strings.Contains(s.Content, "economics daily"))
		}},

		// wsj opinion teasers
		{Tag: "WSJ Opinion", Match: func(s Signals) bool {
			return isWSJ(s) && strings.Contains(s.Title, "opinion")
		}},

		// goldman sachs family
		{Tag: "Tony Pasquariello", Match: func(s Signals) bool {
			return strings.Contains(s.Email, "tony.pasquariello@") ||
				(strings.Contains(s.Name, "tony") && strings.Contains(s.Name, "pasquariello"))
		}},
		{Tag: "GS Rates", Match: func(s Signals) bool {
			if strings.Contains(s.Email, "george.cole@alerts.publishing.gs.com") ||
				containsAny(s.Name, "gs rates", "goldman sachs rates") {
				return true
			}
			return (strings.Contains(s.Name, "goldman") || strings.Contains(s.Email, "@gs.com")) &&
				containsAny(s.Title, "rates", "fixed income", "bonds")
		}},
		{Tag: "Goldman Sachs", Match: func(s Signals) bool {
			return containsAny(s.Email, "@gs.com", ".gs.com") || containsAny(s.Name, "goldman sachs")
		}},

		// rosenberg: early morning is deep research, everything else is breakfast headlines
		{Tag: "Rosenberg_EM", Match: func(s Signals) bool {
			return isRosenberg(s) && (strings.Contains(s.Title, "early morning with dave") ||
				containsAny(s.Content, "fundamental recommendations", "key takeaways"))
		}},
		{Tag: "Rosenberg Research", Match: isRosenberg},

		// itau reports by region
		{Tag: "Itau_FOMC", Match: func(s Signals) bool { return isItau(s) && strings.Contains(s.Title, "fomc") }},
		{Tag: "Itau_Brazil_Daily", Match: func(s Signals) bool {
			return isItau(s) && containsAny(s.Title, "brazil", "brasil")
		}},
		{Tag: "Itau_China", Match: func(s Signals) bool { return isItau(s) && strings.Contains(s.Title, "china") }},
		{Tag: "Itau_Europe", Match: func(s Signals) bool {
			return isItau(s) && containsAny(s.Title, "europe", "euro area", "eurozone")
		}},
		{Tag: "Itau_Global", Match: func(s Signals) bool { return isItau(s) && strings.Contains(s.Title, "global") }},
		{Tag: "Itau", Match: isItau},

		// brazilian press
		{Tag: "Estadão Pílula", Match: func(s Signals) bool {
			return isEstadao(s) && containsAny(s.Title, "pílula", "pilula", "manchetes", "💊", "política |", "economia & negócios |")
		}},
		{Tag: "Estadão", Match: isEstadao},
		{Tag: "Folha", Match: func(s Signals) bool {
			return containsAny(s.Email, "folha.com", "uol.com.br") || strings.Contains(s.Name, "folha")
		}},
		{Tag: "O Globo", Match: func(s Signals) bool {
			return strings.Contains(s.Email, "oglobo") || containsAny(s.Name, "o globo", "oglobo")
		}},

		// independent authors
		{Tag: "John Cochrane", Match: func(s Signals) bool {
			return containsAny(s.Name, "cochrane", "grumpy economist") || strings.Contains(s.Title, "grumpy economist") ||
				strings.Contains(s.Email, "johnhcochrane@substack.com")
		}},
		{Tag: "Mohamed El-Erian", Match: func(s Signals) bool {
			return strings.Contains(s.Email, "mohamedelerian@substack.com") || containsAny(s.Name, "el-erian", "elerian")
		}},
		{Tag: "Shadow Price Macro", Match: func(s Signals) bool {
			return strings.Contains(s.Email, "robinjbrooks@substack.com") ||
				containsAny(s.Name, "shadow price", "robin brooks") || strings.Contains(s.Content, "shadow price macro")
		}},
		{Tag: "ChartStorm", Match: func(s Signals) bool {
			return strings.Contains(s.Email, "chartstorm@substack.com") || strings.Contains(s.Name, "chartstorm") ||
				strings.Contains(s.Title, "#chartstorm")
		}},
		{Tag: "Macro Charts", Match: func(s Signals) bool {
			return strings.Contains(s.Email, "macrocharts@substack.com") || strings.Contains(s.Name, "macro charts")
		}},
		{Tag: "Topdown Charts", Match: func(s Signals) bool { return containsAny(s.Name, "topdown charts", "topdowncharts") }},
		{Tag: "Torsten Slok", Match: func(s Signals) bool { return containsAny(s.Name, "slok", "sløk") }},
		{Tag: "Adam Tooze", Match: func(s Signals) bool { return containsAny(s.Name+" "+s.Email, "tooze") }},
		{Tag: "Noahpinion", Match: func(s Signals) bool { return containsAny(s.Name+" "+s.Email, "noahpinion", "noah smith") }},
		{Tag: "Yascha Mounk", Match: func(s Signals) bool { return containsAny(s.Name+" "+s.Email, "mounk") }},
		{Tag: "MacroTourist", Match: func(s Signals) bool { return containsAny(s.Name+" "+s.Email, "macrotourist", "macro tourist") }},
		{Tag: "Matt Stoller", Match: func(s Signals) bool { return containsAny(s.Name+" "+s.Email, "stoller", "bignewsletter") }},
		{Tag: "TKer", Match: func(s Signals) bool { return containsAny(s.Name+" "+s.Email, "tker") }},
		{Tag: "Macro Mornings", Match: func(s Signals) bool { return strings.Contains(s.Name, "macro mornings") }},

		// video transcripts
		{Tag: "Video", Match: func(s Signals) bool {
			return strings.HasPrefix(s.Title, "video") || containsAny(s.Title, "youtube", "transcript", "video:") ||
				containsAny(s.Content, "[music]", "[applause]")
		}},

		// generic news outlets, reached only if nothing more specific matched
		{Tag: "WSJ", Match: isWSJ},
		{Tag: "Financial Times / FT", Match: func(s Signals) bool {
			return strings.Contains(s.Email, "@ft.com") || strings.Contains(s.Name, "financial times")
		}},
		{Tag: "Reuters", Match: func(s Signals) bool { return containsAny(s.Name+" "+s.Email, "reuters") }},
		{Tag: "Business Insider", Match: func(s Signals) bool {
			return containsAny(s.Name, "business insider") || strings.Contains(s.Email, "businessinsider")
		}},
		{Tag: "Barons Daily", Match: func(s Signals) bool { return containsAny(s.Name+" "+s.Email, "barron") }},
		{Tag: "Bloomberg", Match: isBloomberg},
	}
}

func isBloomberg(s Signals) bool {
	return strings.Contains(s.Name, "bloomberg") || strings.Contains(s.Email, "bloomberg")
}

func isWSJ(s Signals) bool {
	return containsAny(s.Name, "wsj", "wall street journal", "emma tucker") || strings.Contains(s.Email, "wsj.com")
}

func isRosenberg(s Signals) bool {
	return strings.Contains(s.Name, "rosenberg") || strings.Contains(s.Email, "rosenberg")
}

func isItau(s Signals) bool {
	return containsAny(s.Email, "itau", "itaubba") || containsAny(s.Name, "itau", "itaú")
}

func isEstadao(s Signals) bool {
	return containsAny(s.Name, "estadão", "estadao") || strings.Contains(s.Email, "estadao")
}
