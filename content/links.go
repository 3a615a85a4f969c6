package content

import (
	"log/slog"
	"net/url"
	"strings"
)

// trailing characters that are almost always prose punctuation, not
// part of the URL
const trailingPunct = ".,;:!?'\""

// trimTrailingPunct strips prose punctuation from the end of a URL
// token. A trailing ")" is kept only when the URL contains a matching
// "(" (wiki-style paths).
func trimTrailingPunct(u string) string {
	u = strings.TrimRight(u, trailingPunct)
	for strings.HasSuffix(u, ")") && strings.Count(u, ")") > strings.Count(u, "(") {
		u = strings.TrimSuffix(u, ")")
		u = strings.TrimRight(u, trailingPunct)
	}
	return u
}

// ExtractLinks returns generic http(s) links in order of first
// appearance, deduplicated by matched text. Tokens that fail strict
// URL parsing are skipped with a warning. The pipeline calls this
// after media substitution, so media URLs never show up here.
func ExtractLinks(text string) []Link {
	seen := make(map[string]bool)
	var links []Link
	for _, raw := range urlRegex.FindAllString(text, -1) {
		u := trimTrailingPunct(raw)
		if u == "" || seen[u] {
			continue
		}
		parsed, err := url.Parse(u)
		if err != nil || parsed.Host == "" {
			slog.Warn("skipping malformed URL", "url", u, "error", err)
			continue
		}
		seen[u] = true
		links = append(links, Link{Matched: u, URL: u, Domain: parsed.Hostname()})
	}
	return links
}
