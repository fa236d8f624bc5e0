package curio

import (
	"html"
	"strings"
)

// TextTransform turns user-submitted text into sanitized HTML for storage.
// The full markdown pipeline is injected via WithTransform; the default
// renders escaped plain text with paragraph breaks.
type TextTransform interface {
	ToHTML(text string) string
}

type plainTransform struct{}

func (plainTransform) ToHTML(text string) string {
	var b strings.Builder
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
