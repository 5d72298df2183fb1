package render

import (
	"strconv"
	"strings"

	"finqa/internal/domain"
	"finqa/internal/sentiment"
)

// SectionKind identifies a block of a rendered answer.
type SectionKind int

const (
	SectionSummary SectionKind = iota
	SectionConfidence
	SectionRisks
	SectionOpportunities
	SectionContext
)

// Section is one block of an answer in display order.
type Section struct {
	Kind       SectionKind
	Title      string
	Question   string
	Tickers    []string
	Count      int
	Confidence float64
	Items      []string
	Context    []domain.ContextItem
}

// Sections lays an answer out in its fixed display order. List sections whose
// backing sequence is empty are left out.
func Sections(a domain.Answer) []Section {
	out := []Section{
		{
			Kind:     SectionSummary,
			Title:    "Question",
			Question: a.Summary.Question,
			Tickers:  a.Summary.TopTickers,
			Count:    a.Summary.ContextItems,
		},
		{Kind: SectionConfidence, Title: "Confidence", Confidence: a.Confidence},
	}
	if len(a.Risks) > 0 {
		out = append(out, Section{Kind: SectionRisks, Title: "Risks", Items: a.Risks})
	}
	if len(a.Opportunities) > 0 {
		out = append(out, Section{Kind: SectionOpportunities, Title: "Opportunities", Items: a.Opportunities})
	}
	if len(a.Context) > 0 {
		out = append(out, Section{Kind: SectionContext, Title: "Context", Context: a.Context})
	}
	return out
}

// FormatConfidence prints the confidence as received, without rounding.
func FormatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// HTMLRenderer renders answers as an HTML fragment. Every server-supplied
// string is escaped.
type HTMLRenderer struct{}

// Render returns the HTML fragment for a.
func (HTMLRenderer) Render(a domain.Answer) string { return HTML(a) }

// HTML renders an answer as an escaped HTML fragment.
func HTML(a domain.Answer) string {
	var b strings.Builder
	b.WriteString(`<div class="answer">` + "\n")
	for _, s := range Sections(a) {
		switch s.Kind {
		case SectionSummary:
			b.WriteString(`<p class="question"><strong>Question:</strong> ` + Escape(s.Question) + "</p>\n")
			b.WriteString(`<p class="tickers"><strong>Top tickers:</strong> ` + Escape(strings.Join(s.Tickers, ", ")) + "</p>\n")
		case SectionConfidence:
			b.WriteString(`<p class="confidence"><strong>Confidence:</strong> ` + FormatConfidence(s.Confidence) + "</p>\n")
		case SectionRisks, SectionOpportunities:
			b.WriteString(`<h4>` + s.Title + "</h4>\n")
			b.WriteString(`<ul class="` + strings.ToLower(s.Title) + `">` + "\n")
			for _, item := range s.Items {
				b.WriteString("<li>" + Escape(item) + "</li>\n")
			}
			b.WriteString("</ul>\n")
		case SectionContext:
			b.WriteString("<h4>Context</h4>\n")
			b.WriteString(`<ul class="context">` + "\n")
			for _, c := range s.Context {
				tier := sentiment.Classify(c.Sentiment)
				b.WriteString(`<li><span class="ticker">` + Escape(c.Ticker) + `</span> ` + Escape(c.Title) +
					` <span class="sentiment ` + string(tier) + `">` + sentiment.Format(c.Sentiment) + "</span></li>\n")
			}
			b.WriteString("</ul>\n")
		}
	}
	b.WriteString("</div>")
	return b.String()
}
