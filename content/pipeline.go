package content

import (
	"html"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/nbd-wtf/go-nostr"

	"github.com/htsula/noornote/profile"
)

// Pipeline is the content-processing orchestrator. Process is
// synchronous end to end: every pass completes before it returns, so
// callers always get usable markup on the same tick content is
// submitted. The only side effect is profile cache population, whose
// background completions later reach the host through its Patcher.
type Pipeline struct {
	profiles *profile.Cache
	log      *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(log *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.log = log }
}

// NewPipeline creates a pipeline resolving mentions through profiles.
func NewPipeline(profiles *profile.Cache, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{profiles: profiles, log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process transforms raw note text and its tag list into a
// ProcessedContent snapshot. It never fails: malformed pieces degrade
// to plain text and the rest of the content still renders.
//
// Pass order is load-bearing. Extraction runs on raw text before
// escaping; media and quote spans are substituted away before any
// URL, mention or hashtag scanning can misread their insides; the
// hint-bearing mention pass runs before the bare one.
func (p *Pipeline) Process(text string, tags nostr.Tags) ProcessedContent {
	media := ExtractMedia(text)
	quotes := ExtractQuotedRefs(text)
	hashtags := ExtractHashtags(text)

	working, quotePlaceholders := substitute(text, media, quotes)
	links := ExtractLinks(working)

	working = html.EscapeString(working)
	working = linkify(working)
	working = resolveMentions(working, p.profiles)
	working = formatHashtags(working, hashtags)
	working = reinsert(working, quotePlaceholders)
	working = strings.ReplaceAll(working, "\n", "<br>")

	p.warmTagged(tags)

	tagNames := make([]string, len(hashtags))
	for i, h := range hashtags {
		tagNames[i] = h.Tag
	}

	return ProcessedContent{
		Text:       text,
		HTML:       working,
		Media:      media,
		Links:      links,
		Hashtags:   tagNames,
		QuotedRefs: quotes,
	}
}

// warmTagged pre-resolves every p-tagged pubkey so profiles for
// reply/mention tags are usually cached by the time they render.
func (p *Pipeline) warmTagged(tags nostr.Tags) {
	for _, tag := range tags {
		if len(tag) < 2 || tag[0] != "p" {
			continue
		}
		if !isHexPubkey(tag[1]) {
			continue
		}
		p.profiles.Resolve(tag[1])
	}
}

func isHexPubkey(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// linkify wraps remaining bare URLs in anchors. It runs on escaped
// text, so each token is unescaped before parsing and re-escaped on
// the way out. Trailing prose punctuation stays outside the anchor.
func linkify(escaped string) string {
	return urlRegex.ReplaceAllStringFunc(escaped, func(token string) string {
		raw := html.UnescapeString(token)
		trimmed := trimTrailingPunct(raw)
		if trimmed == "" {
			return token
		}
		parsed, err := url.Parse(trimmed)
		if err != nil || parsed.Host == "" {
			return token
		}
		tail := raw[len(trimmed):]
		esc := html.EscapeString(trimmed)
		return `<a href="` + esc + `" target="_blank" rel="noopener">` + esc + `</a>` + html.EscapeString(tail)
	})
}

// formatHashtags wraps each extracted hashtag occurrence, but only at
// a whitespace/start boundary so a "#fragment" inside a URL that
// survived as plain text is never tagged.
func formatHashtags(htmlText string, hashtags []Hashtag) string {
	for _, h := range hashtags {
		re := regexp.MustCompile(`(^|\s)#` + regexp.QuoteMeta(h.Tag) + `\b`)
		repl := `${1}<span class="hashtag" data-tag="` + h.Tag + `">#` + h.Tag + `</span>`
		htmlText = re.ReplaceAllString(htmlText, repl)
	}
	return htmlText
}
