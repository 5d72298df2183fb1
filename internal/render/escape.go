package render

import "strings"

// Apostrophes pass through unchanged.
var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape makes untrusted text safe to embed in HTML markup.
func Escape(text string) string {
	return htmlReplacer.Replace(text)
}
