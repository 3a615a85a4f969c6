package content

import (
	"fmt"
	"html"
	"strings"
)

// Media spans become literal positional tokens that survive escaping
// unchanged; the external media renderer locates and replaces them.
// Quoted references become NUL-delimited keys that no real content
// can contain, swapped for their marker elements after the text
// passes are done.
type placeholder struct {
	key   string
	value string
}

// substitute replaces media and quoted-reference spans in text.
// Replacement is exact-substring based: each span's token replaces
// every occurrence of its matched text. Spans are deduplicated by the
// extractors, so duplicate occurrences of the same media URL collapse
// into one positional token repeated at each position.
func substitute(text string, media []Media, quotes []QuotedRef) (string, []placeholder) {
	var quotePlaceholders []placeholder

	for i, m := range media {
		token := fmt.Sprintf("__MEDIA_%d__", i)
		text = strings.ReplaceAll(text, m.Matched, token)
	}

	for i, q := range quotes {
		key := fmt.Sprintf("\x00QUOTE_%d\x00", i)
		marker := fmt.Sprintf(`<span class="quote-placeholder" data-quote-ref="%s"></span>`,
			html.EscapeString(q.Matched))
		quotePlaceholders = append(quotePlaceholders, placeholder{key: key, value: marker})
		text = strings.ReplaceAll(text, q.Matched, key)
	}

	return text, quotePlaceholders
}

// reinsert swaps placeholder keys for their marker markup. Keys pass
// through html.EscapeString untouched (no escapable characters), so a
// plain replace is enough.
func reinsert(htmlText string, placeholders []placeholder) string {
	for _, p := range placeholders {
		htmlText = strings.ReplaceAll(htmlText, p.key, p.value)
	}
	return htmlText
}
