package scoring

import (
	"fmt"
	"strings"
)

// contentExcerptRunes bounds how much of the citing article's full text is
// embedded in the prompt.
const contentExcerptRunes = 500

// buildPrompt renders the fixed citation-review prompt. The model is asked to
// apply the 0-10 bands; the bands are not enforced here, only the JSON shape
// and range are validated after the call.
func buildPrompt(in CitationInput) string {
	context := in.CitationContext
	if strings.TrimSpace(context) == "" {
		context = "No context provided"
	}

	return fmt.Sprintf(`You are a professor in %s and
an expert academic reviewer evaluating citation quality.

CITING ARTICLE:
Title: %s
Subject: %s
Content excerpt: %s...

CITED WORK:
Title: %s
Authors: %s
Subject: %s

CITATION CONTEXT:
%s

REFERENCE CONTENT:
%s

Rate this citation on a scale of 0-10:
- 0-3: Poor (irrelevant, inaccurate, or misrepresented)
- 4-6: Fair (somewhat relevant but could be better)
- 7-8: Good (relevant and accurate)
- 9-10: Excellent (highly relevant, accurate, and necessary)

Respond ONLY with a JSON object:
{
  "score": <number 0-10>,
  "reasoning": "<brief 1-2 sentence explanation>"
}`,
		in.CitedSubject,
		in.CitingTitle, in.CitingSubject, excerpt(in.CitingContent, contentExcerptRunes),
		in.CitedTitle, in.CitedAuthors, in.CitedSubject,
		context,
		in.ReferenceContent)
}

func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
