package summary

import "strings"

const summaryPrompt = `You are an expert AI research assistant. Generate a concise TLDR summary (1-3 sentences) for the following research paper.

Focus on:
- What problem the paper addresses
- What the paper introduces or proposes
- Key contributions or findings

Keep it technical but accessible.

Title: {title}

Abstract: {abstract}

TLDR:`

const keywordPrompt = `Extract 3-5 key technical keywords or phrases from this paper that best represent its main topics and contributions.

Title: {title}

Abstract: {abstract}

Keywords (comma-separated):`

// SummaryPrompt renders the TLDR prompt for one paper.
func SummaryPrompt(title, abstract string) string {
	return render(summaryPrompt, title, abstract)
}

// KeywordPrompt renders the keyword-extraction prompt for one paper.
func KeywordPrompt(title, abstract string) string {
	return render(keywordPrompt, title, abstract)
}

func render(tmpl, title, abstract string) string {
	return strings.NewReplacer("{title}", title, "{abstract}", abstract).Replace(tmpl)
}
