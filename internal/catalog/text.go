package catalog

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// CleanText turns a raw catalog field into display text. Book-Crossing
// titles carry HTML entities ("Harry Potter &amp; the ...") and the odd
// stray tag. Entities are decoded and known HTML elements are dropped;
// anything in angle brackets that is not an HTML element ("<Unabridged>")
// is part of the title and kept verbatim.
func CleanText(raw string) string {
	if !strings.ContainsAny(raw, "&<") {
		return collapseSpace(norm.NFC.String(raw))
	}

	var text strings.Builder
	z := html.NewTokenizer(strings.NewReader(raw))
	hidden := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return collapseSpace(norm.NFC.String(text.String()))
		case html.TextToken:
			if hidden == 0 {
				text.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// TagName lowercases the buffer in place, so take the raw
			// form first.
			rawTag := string(z.Raw())
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case 0:
				if hidden == 0 {
					text.WriteString(rawTag)
				}
			case atom.Script, atom.Style:
				if tt == html.StartTagToken {
					hidden++
				} else if tt == html.EndTagToken && hidden > 0 {
					hidden--
				}
			case atom.Br:
				text.WriteString(" ")
			}
		}
	}
}

// collapseSpace replaces runs of whitespace with a single space
func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
