package content

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"

	"github.com/htsula/noornote/profile"
)

// Mention forms, with or without the nostr: scheme. The hint-bearing
// nprofile pass runs before the bare npub pass; the character class is
// the bech32 alphabet so a match ends exactly at the reference
// boundary instead of swallowing trailing prose.
var (
	nprofileRegex = regexp.MustCompile(`(?:nostr:)?nprofile1[02-9ac-hj-np-z]+`)
	npubRegex     = regexp.MustCompile(`(?:nostr:)?npub1[02-9ac-hj-np-z]+`)
)

const (
	profileHrefPrefix = `href="/profile/`
	pendingMarker     = `data-pending="true"`
	pendingText       = "…"

	// How far the bare-form pass looks back for markup emitted by the
	// hint-bearing pass. Covers the href prefix and the pending marker
	// of an anchor whose npub the bare pass would otherwise re-match.
	mentionLookback = 64
)

// resolveMentions runs both mention passes over the working HTML.
// Each candidate resolves through the cache, which returns a pending
// fallback immediately and fetches in the background; decode failures
// leave the original substring untouched.
func resolveMentions(htmlText string, profiles *profile.Cache) string {
	htmlText = replaceMentions(htmlText, nprofileRegex, nil, func(match string) (string, bool) {
		ref := strings.TrimPrefix(match, "nostr:")
		prefix, value, err := nip19.Decode(ref)
		if err != nil || prefix != "nprofile" {
			return "", false
		}
		pp, ok := value.(nostr.ProfilePointer)
		if !ok {
			return "", false
		}
		return mentionAnchor(pp.PublicKey, profiles.Resolve(pp.PublicKey)), true
	})

	htmlText = replaceMentions(htmlText, npubRegex, alreadyLinked, func(match string) (string, bool) {
		ref := strings.TrimPrefix(match, "nostr:")
		prefix, value, err := nip19.Decode(ref)
		if err != nil || prefix != "npub" {
			return "", false
		}
		pubkey, ok := value.(string)
		if !ok {
			return "", false
		}
		return mentionAnchor(pubkey, profiles.Resolve(pubkey)), true
	})

	return htmlText
}

// alreadyLinked reports whether the window of markup immediately
// before a bare-form candidate shows it was produced by the
// hint-bearing pass (it sits inside a profile anchor's href, or right
// after a pending mention).
func alreadyLinked(window string) bool {
	return strings.Contains(window, profileHrefPrefix) ||
		strings.Contains(window, pendingMarker)
}

// replaceMentions substitutes every match of re via emit, skipping
// matches whose preceding lookback window satisfies skip. emit
// returning false keeps the original substring.
func replaceMentions(s string, re *regexp.Regexp, skip func(window string) bool, emit func(match string) (string, bool)) string {
	locs := re.FindAllStringIndex(s, -1)
	if locs == nil {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if skip != nil {
			wstart := start - mentionLookback
			if wstart < 0 {
				wstart = 0
			}
			if skip(s[wstart:start]) {
				continue
			}
		}
		replacement, ok := emit(s[start:end])
		if !ok {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(replacement)
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

// mentionAnchor renders a profile link for a mention. Unresolved
// profiles show the loading placeholder and carry the pending marker
// so the patch routine (and the bare-form pass) can find them.
func mentionAnchor(pubkey string, p *profile.Profile) string {
	npub, err := nip19.EncodePublicKey(pubkey)
	if err != nil {
		npub = pubkey
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<a href="/profile/%s" class="mention" data-pubkey="%s"`, npub, pubkey)
	if p.Pending {
		b.WriteString(" " + pendingMarker)
	}
	b.WriteString(">")

	if p.Picture != "" {
		fmt.Fprintf(&b, `<img src="%s" alt="" class="mention-avatar" loading="lazy">`,
			html.EscapeString(p.Picture))
	}

	display := pendingText
	if !p.Pending {
		display = "@" + p.BestName()
		if p.BestName() == "" {
			display = "@" + formatNpubShort(npub)
		}
	}
	fmt.Fprintf(&b, `<span class="mention-name">%s</span></a>`, html.EscapeString(display))
	return b.String()
}

// formatNpubShort shortens an npub for display: "npub1abc...xyz".
func formatNpubShort(npub string) string {
	if len(npub) <= 16 {
		return npub
	}
	return npub[:9] + "..." + npub[len(npub)-4:]
}
