package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"finqa/internal/domain"
	"finqa/internal/sentiment"
)

// Palette holds the styles that depend on the active theme.
type Palette struct {
	Theme    domain.Theme
	Text     lipgloss.Style
	Heading  lipgloss.Style
	Muted    lipgloss.Style
	Ticker   lipgloss.Style
	Positive lipgloss.Style
	Neutral  lipgloss.Style
	Negative lipgloss.Style
	Border   lipgloss.Color
	Alert    lipgloss.Style
}

// PaletteFor returns the palette for a theme.
func PaletteFor(t domain.Theme) Palette {
	if t == domain.ThemeDark {
		return Palette{
			Theme:    domain.ThemeDark,
			Text:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
			Heading:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111")),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Ticker:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("117")).Padding(0, 1),
			Positive: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Neutral:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
			Negative: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
			Border:   lipgloss.Color("240"),
			Alert:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")).Padding(0, 1),
		}
	}
	return Palette{
		Theme:    domain.ThemeLight,
		Text:     lipgloss.NewStyle().Foreground(lipgloss.Color("235")),
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Ticker:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("25")).Padding(0, 1),
		Positive: lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Neutral:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Negative: lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		Border:   lipgloss.Color("250"),
		Alert:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")).Padding(0, 1),
	}
}

// TierStyle picks the style for a sentiment tier.
func (p Palette) TierStyle(t sentiment.Tier) lipgloss.Style {
	switch t {
	case sentiment.Positive:
		return p.Positive
	case sentiment.Negative:
		return p.Negative
	default:
		return p.Neutral
	}
}

// TerminalRenderer renders answers for a terminal using a palette.
type TerminalRenderer struct {
	Palette func() Palette
}

// Render paints the answer sections. Control characters in server text are
// dropped so a response cannot drive the terminal.
func (r TerminalRenderer) Render(a domain.Answer) string {
	p := PaletteFor(domain.ThemeLight)
	if r.Palette != nil {
		p = r.Palette()
	}
	var lines []string
	for _, s := range Sections(a) {
		switch s.Kind {
		case SectionSummary:
			lines = append(lines, p.Heading.Render("Question: ")+p.Text.Render(clean(s.Question)))
			tickers := clean(strings.Join(s.Tickers, ", "))
			lines = append(lines, p.Heading.Render("Top tickers: ")+p.Text.Render(tickers))
			if s.Count > 0 {
				lines = append(lines, p.Muted.Render(fmt.Sprintf("%d context items", s.Count)))
			}
		case SectionConfidence:
			lines = append(lines, p.Heading.Render("Confidence: ")+p.Text.Render(FormatConfidence(s.Confidence)))
		case SectionRisks, SectionOpportunities:
			lines = append(lines, "", p.Heading.Render(s.Title))
			for _, item := range s.Items {
				lines = append(lines, "  • "+p.Text.Render(clean(item)))
			}
		case SectionContext:
			lines = append(lines, "", p.Heading.Render("Context"))
			for _, c := range s.Context {
				tier := sentiment.Classify(c.Sentiment)
				line := "  " + p.Ticker.Render(clean(c.Ticker)) + " " + p.Text.Render(clean(c.Title)) + " " +
					p.TierStyle(tier).Render(sentiment.Format(c.Sentiment))
				lines = append(lines, line)
				if snippet := clean(c.Text); snippet != "" {
					lines = append(lines, "    "+p.Muted.Render(snippet))
				}
			}
		}
	}
	return strings.Join(lines, "\n")
}

func clean(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			if r == '\n' || r == '\t' {
				return ' '
			}
			return -1
		}
		return r
	}, s)
}
