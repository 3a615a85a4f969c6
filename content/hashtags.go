package content

import "regexp"

// Hashtags are matched on raw text, before any substitution that
// could hide or expose '#' characters. Whether an occurrence actually
// becomes a tagged span is decided later by the formatting pass, which
// requires a whitespace/start boundary (so "#fragment" inside a URL
// never gets wrapped).
var hashtagRegex = regexp.MustCompile(`(^|\s)#([A-Za-z0-9_]+)`)

// ExtractHashtags returns hashtag spans in order of first appearance,
// deduplicated by tag text.
func ExtractHashtags(text string) []Hashtag {
	seen := make(map[string]bool)
	var tags []Hashtag
	for _, m := range hashtagRegex.FindAllStringSubmatch(text, -1) {
		tag := m[2]
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, Hashtag{Matched: "#" + tag, Tag: tag})
	}
	return tags
}
