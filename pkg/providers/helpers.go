package providers

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
)

// responseSnippet returns a truncated snippet of the response body for errors and logs.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// providerError builds the typed error returned by every fetcher.
func providerError(providerID, subject string, status int, err error) error {
	return &domain.ProviderError{
		Provider:   providerID,
		Subject:    subject,
		StatusCode: status,
		Err:        err,
	}
}

// tagPattern matches the opening of a start or end tag.
var tagPattern = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9._:-]*)`)

// plainText reduces a description to readable text. Only known HTML tag names
// are treated as markup; bracketed tokens such as ticker tags (<AAPL.O>) are
// kept verbatim. Element boundaries become spaces and whitespace is collapsed.
func plainText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	escaped, hasMarkup := escapeUnknownTags(raw)
	if !hasMarkup && !strings.Contains(raw, "&") {
		return strings.Join(strings.Fields(raw), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(escaped))
	if err != nil {
		return strings.Join(strings.Fields(raw), " ")
	}
	var b strings.Builder
	collectText(doc.Selection, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

// escapeUnknownTags turns the '<' of every tag that is not a known HTML element
// into an entity, so the parser reads it as text. It reports whether any known
// element remains.
func escapeUnknownTags(raw string) (string, bool) {
	known := false
	var b strings.Builder
	last := 0
	for _, m := range tagPattern.FindAllStringSubmatchIndex(raw, -1) {
		name := strings.ToLower(raw[m[4]:m[5]])
		if atom.Lookup([]byte(name)) != 0 {
			known = true
			continue
		}
		b.WriteString(raw[last:m[0]])
		b.WriteString("&lt;")
		last = m[0] + 1
	}
	b.WriteString(raw[last:])
	return b.String(), known
}

func collectText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		n := child.Get(0)
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			b.WriteByte(' ')
			collectText(child, b)
			b.WriteByte(' ')
		}
	})
}

// firstNonEmpty returns the first non-blank value, trimmed.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
