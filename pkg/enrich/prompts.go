package enrich

import (
	"fmt"
	"strings"
)

const systemPrompt = `You format financial newsletters and research notes for a personal reading feed.
Use only facts present in the supplied content, never invent numbers, names or quotes.
Keep the author's voice and keep the original language unless told otherwise.`

const contentFence = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

const rosenbergInstructions = `Extract a COMPLETE structured summary of this Rosenberg "Early Morning with Dave" report.
Include every topic and paragraph, do not skip anything.

Structure:
# 📊 EARLY MORNING WITH DAVE - [Date]
## [Section name] for every section of the report
• one bullet per argument, keeping all numbers, levels and dates
## 🎯 Bottom Line
2-3 sentences with Dave's overall call.`

const goldStandardInstructions = `Format this newsletter using the GOLD STANDARD ENHANCED approach.
It is a thematic newsletter with a main deep dive and supporting stories.

# 📊 [Source] - [Main Theme]
## 🎯 Today's Focus
1-2 sentences of context.
## 💡 Main Analysis: [Topic]
6-10 bullets, each on its own line. Use the author's actual phrases in quotes for key arguments,
keep all data points, citations and the reasoning chain.
## 📰 Quick Hits
3-6 short bullets for the other stories, if present.
## 📊 Research Note
Forecasts and predictions, if present.

Target 2,500-3,500 characters.`

const cochraneInstructions = `Format this John Cochrane "Grumpy Economist" article with rich detail and extracted phrases.

# 📝 The Grumpy Economist: [Title]
## 🎯 Main Argument
3-4 sentences with Cochrane's actual framing.
## 📋 Key Points
Bullets with his arguments, evidence and quoted phrases.
## 💬 Memorable Lines
2-4 direct quotes.
## 🔍 Implications
Policy implications he draws.`

const itauInstructions = `Extract and format this Itau macro report, then analyze it.

Task 1, format the content:
• remove footers, disclaimers, signatures, addresses, URLs and chart noise
• keep the opening, the complete analysis and the "Key Points" section with all subsections
• join lines broken mid-sentence into smooth paragraphs
• keep the original language, do not translate

Task 2, analyze:
• actors: up to 7 people, institutions or countries driving the story
• themes: up to 7 short topic names

Answer with a single JSON object and nothing else:
{"formatted_content": "...", "actors": ["..."], "themes": ["..."]}`

const shadowInstructions = `You are analyzing an economic analysis from Robin J Brooks' Shadow Price Macro newsletter.
Write a comprehensive, detailed analysis AS Robin Brooks, in first person ("I argue", "my analysis").

# 📊 Shadow Price Macro: [Title]
## My Core Argument
## What the Charts Show
Describe every chart: what it plots, the levels and what it means for my argument.
## Why This Matters
## Bottom Line

Include all data points with context. Aim for 8,000-12,000 characters.`

const chartsInstructions = `You are analyzing charts from a financial newsletter.

# 📊 Macro Charts
## [Title]
For EACH chart:
### Chart N: [What it shows]
• the data plotted and the time span
• current level and the trend
• the author's point about it
Finish with "## 🎯 Key Takeaways" of 3-5 bullets.`

const elerianInstructions = `You are analyzing Mohamed El-Erian's economic commentary.
Preserve his voice, style and complete message while creating a slightly condensed version
(about 80% of the original length). Keep his frameworks and numbered points, the policy
implications and the historical context. Use a measured, balanced tone.

# Mohamed El-Erian
## [Title]
[condensed commentary in his voice]`

const tonyInstructions = `You are analyzing an email from Tony Pasquariello, Head of Global Markets at Goldman Sachs.
Tony writes in a numbered, conversational style, preserve his structure and voice.

# 📈 [Title]
Keep his numbering: one section per numbered point with his key phrases,
all flows, positioning data and levels.
## 🎯 Bottom Line
His overall view in 2-3 sentences.`

const joeInstructions = `Format this Bloomberg Odd Lots commentary by Joe Weisenthal with complete coverage.
This is an essay, Joe makes one focused argument with supporting evidence.

# 🎙️ Odd Lots - [Main Topic]
## 💡 The Argument
## 📊 The Evidence
Bullets with every data point and source he cites.
## 🤔 Why It Matters`

const javierInstructions = `Extract and format this Javier Blas article using his actual words and voice.

# 🛢️ Javier Blas: [Topic]
## 💡 His Take
2-3 sentences capturing his main argument.
## 📊 The Numbers
All prices, volumes, dates and comparisons.
## 🔍 The Analysis
Bullets following his reasoning, quote his sharpest lines.`

const pilulaInstructions = `Format this Estadão news capsule with separated themes and all details.
It is a Portuguese news digest with multiple independent stories.
Identify each separate story, extract all available details and keep stories independent.
Write in Portuguese.

# 💊 Estadão - [Date or Main Topic]
## [Emoji] [Story theme]
• details, one per line`

const gsRatesInstructions = `You are analyzing a Goldman Sachs Rates Research report.
Write a comprehensive summary AS IF YOU WERE THE AUTHOR ("we", "our view is").
Capture the main thesis with its reasoning, include all key data points (rates, spreads,
basis points, dates, levels) and preserve the analytical framework.

# 📊 [Title]
## Our View
## The Analysis
## Trade Recommendations
## Risks`

const videoInstructions = `You are analyzing a video transcript. Transform the raw transcript into a detailed,
fluid and comprehensive explanation of the discussion, the ideas and the thesis presented.
Write in flowing paragraphs rather than bullets, attribute ideas to the speakers when they are known,
and keep every number and example given.

# 📹 [Title]
## Overview
## Main Ideas
## Key Takeaways`

const newsBriefInstructions = `Extract the individual news stories from this newsletter briefing.

Rules:
1. Extract ONLY actual news stories, no market snapshots or meta content
2. Number each story (1, 2, 3...)
3. Use the EXACT headlines from the newsletter
4. Add 2-4 bullet points per story with specific details

Format each story EXACTLY like this:

<strong style="font-size: 19px; display: block; margin-top: 15px; margin-bottom: 6px; color: #202124;">1. [Exact Story Headline]</strong>
• [Specific fact or detail from the story]
• [Another key point with numbers or names]
• [Additional context]

Extract between 6 and 12 stories.`

const keywordsPrompt = `Extract 4-6 SPECIFIC KEYWORDS from this financial story.

Good keywords are concrete: company names ("Apple", "Petrobras"), specific topics ("AI Chips",
"Trade War"), people ("Jerome Powell"), places and institutions ("China", "Federal Reserve").
Avoid generic words such as "Breaking News", "Market Updates", "Analysis", "Report", "Markets",
"Notícias", "Análise", "Mercado".

Return ONLY the keywords separated by " • ".`

// promptData is the per-call part of a prompt
type promptData struct {
	Label   string
	Tag     string
	Title   string
	Content string
	Images  int
	PT      bool
	JSON    bool
}

// buildPrompt assembles handler instructions with the item data
func buildPrompt(instructions string, p promptData) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	if p.Tag != "" {
		sb.WriteString(fmt.Sprintf("Source: %s\n", p.Tag))
	}
	sb.WriteString(fmt.Sprintf("Title: %s\n", p.Title))
	if p.Images > 0 {
		sb.WriteString(fmt.Sprintf("Charts attached: %d\n", p.Images))
	}
	if p.PT {
		sb.WriteString("The content is in Portuguese, write the output in Portuguese.\n")
	}
	sb.WriteString("\nCONTENT:\n")
	sb.WriteString(contentFence + "\n")
	sb.WriteString(p.Content)
	sb.WriteString("\n" + contentFence + "\n\n")
	if p.JSON {
		sb.WriteString("Answer with the JSON object only.")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("Output only the formatted result, starting with %q.", "Rule: "+p.Label))
	return sb.String()
}
