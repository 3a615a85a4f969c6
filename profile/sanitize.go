package profile

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Profile metadata comes straight off relays and is attacker
// controlled, so every text field is stripped of markup before it can
// reach rendered output or a patch call.
var strictPolicy = bluemonday.StrictPolicy()

// Sanitize returns a copy of p with markup stripped from text fields
// and a non-http(s) picture URL dropped.
func Sanitize(p *Profile) *Profile {
	clean := *p
	clean.Name = cleanText(p.Name)
	clean.DisplayName = cleanText(p.DisplayName)
	clean.About = cleanText(p.About)
	clean.Picture = cleanURL(p.Picture)
	return &clean
}

// cleanText strips tags and returns plain text. StrictPolicy escapes
// entities on the way out, so unescape back to text; the rendering
// layer escapes again at the markup boundary.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

func cleanURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
