package domain

// UploadResult is the body of a successful corpus upload.
type UploadResult struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Summary describes which question was answered and which tickers dominated the context.
type Summary struct {
	Question     string   `json:"question"`
	TopTickers   []string `json:"top_tickers"`
	ContextItems int      `json:"context_items"`
}

// ContextItem is a retrieved news item that supports an answer.
type ContextItem struct {
	Ticker    string  `json:"ticker"`
	Title     string  `json:"title"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	Sentiment float64 `json:"sentiment"`
}

// Answer is the structured result of a financial question.
type Answer struct {
	Summary       Summary       `json:"summary"`
	Confidence    float64       `json:"confidence"`
	Risks         []string      `json:"risks"`
	Opportunities []string      `json:"opportunities"`
	Context       []ContextItem `json:"context"`
}

// Normalize replaces absent sequences with empty ones so that renderers never
// have to distinguish missing from empty.
func (a *Answer) Normalize() {
	if a.Summary.TopTickers == nil {
		a.Summary.TopTickers = []string{}
	}
	if a.Risks == nil {
		a.Risks = []string{}
	}
	if a.Opportunities == nil {
		a.Opportunities = []string{}
	}
	if a.Context == nil {
		a.Context = []ContextItem{}
	}
}

// StatusOK is the query status that carries an answer.
const StatusOK = "ok"

// QueryResponse is the envelope returned by the question-answering endpoint.
type QueryResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Answer  *Answer `json:"answer"`
}

// Normalize applies decode-time defaults to the envelope and its answer.
func (r *QueryResponse) Normalize() {
	if r.Status != StatusOK {
		return
	}
	if r.Answer == nil {
		r.Answer = &Answer{}
	}
	r.Answer.Normalize()
}

// Theme is the persisted display preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme reports whether s names a known theme.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	}
	return "", false
}

// Surface is a named output region that shows the latest text written to it.
type Surface interface {
	Set(text string)
}

// Alerter shows a message the user has to acknowledge.
type Alerter interface {
	Alert(message string)
}

// ThemeApplier puts a theme into effect on the presentation root.
type ThemeApplier interface {
	ApplyTheme(theme Theme)
}
