package mailer

import (
	"fmt"
	"strings"

	"github.com/russross/blackfriday/v2"
)

// CitationNotice holds everything shown to the cited article's corresponding
// author when one of their articles is cited.
type CitationNotice struct {
	RecipientName string

	CitingTitle   string
	CitingJournal string
	CitingAuthors string

	CitedTitle string

	CitationContext string
	Score           *int // nil when the scoring callout produced nothing

	IfKeyReference       bool
	IfSecondaryReference bool
}

// Subject is the notification subject line.
func (n CitationNotice) Subject() string {
	return fmt.Sprintf("Your article %q has been cited", n.CitedTitle)
}

// HTML renders the notification body. The body is composed as Markdown and
// converted with blackfriday so the copy stays readable in the source.
func (n CitationNotice) HTML() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", n.RecipientName)
	fmt.Fprintf(&b, "Your article **%s** has been cited and the citation was submitted for validation.\n\n", n.CitedTitle)

	fmt.Fprintf(&b, "## Citing article\n\n")
	fmt.Fprintf(&b, "- **Title**: %s\n", n.CitingTitle)
	if n.CitingJournal != "" {
		fmt.Fprintf(&b, "- **Journal**: %s\n", n.CitingJournal)
	}
	if n.CitingAuthors != "" {
		fmt.Fprintf(&b, "- **Authors**: %s\n", n.CitingAuthors)
	}
	fmt.Fprintf(&b, "- **Key reference**: %s\n", yesNo(n.IfKeyReference))
	fmt.Fprintf(&b, "- **Secondary reference**: %s\n\n", yesNo(n.IfSecondaryReference))

	if strings.TrimSpace(n.CitationContext) != "" {
		fmt.Fprintf(&b, "## Citation context\n\n> %s\n\n", n.CitationContext)
	}

	if n.Score != nil {
		fmt.Fprintf(&b, "The citation received an automated quality score of **%d/10**.\n\n", *n.Score)
	} else {
		b.WriteString("An automated quality score was not available for this citation.\n\n")
	}

	b.WriteString("You can review the citation and leave feedback in the reference checking system.\n")

	html := blackfriday.Run([]byte(b.String()),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(htmlRenderer))
	return string(html)
}

// Smartypants stays off: the default renderer rewrites a score like "8/10"
// into a typographic fraction.
var htmlRenderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
	Flags: blackfriday.UseXHTML,
})

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
