package content

import (
	"fmt"
	"regexp"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// Quoted references appear with or without the nostr: scheme. The
// character class is the bech32 alphabet, so a match stops exactly at
// the first character that cannot be part of the reference.
var quoteRefRegex = regexp.MustCompile(`(?:nostr:)?(nevent1[02-9ac-hj-np-z]+|note1[02-9ac-hj-np-z]+|naddr1[02-9ac-hj-np-z]+)`)

// ExtractQuotedRefs returns quoted-event references in order of first
// appearance, deduplicated by matched text. Identifiers that fail
// bech32 decoding are left alone silently; truncated and adversarial
// references are routine input, not anomalies.
func ExtractQuotedRefs(text string) []QuotedRef {
	seen := make(map[string]bool)
	var refs []QuotedRef
	for _, m := range quoteRefRegex.FindAllStringSubmatch(text, -1) {
		matched, ref := m[0], m[1]
		if seen[matched] {
			continue
		}
		q, ok := decodeQuotedRef(matched, ref)
		if !ok {
			continue
		}
		seen[matched] = true
		refs = append(refs, q)
	}
	return refs
}

func decodeQuotedRef(matched, ref string) (QuotedRef, bool) {
	prefix, value, err := nip19.Decode(ref)
	if err != nil {
		return QuotedRef{}, false
	}
	q := QuotedRef{Matched: matched, Ref: ref}
	switch prefix {
	case "nevent":
		ep, ok := value.(nostr.EventPointer)
		if !ok {
			return QuotedRef{}, false
		}
		q.Kind = QuoteEvent
		q.ID = ep.ID
	case "note":
		id, ok := value.(string)
		if !ok {
			return QuotedRef{}, false
		}
		q.Kind = QuoteNote
		q.ID = id
	case "naddr":
		ap, ok := value.(nostr.EntityPointer)
		if !ok {
			return QuotedRef{}, false
		}
		q.Kind = QuoteAddress
		q.ID = fmt.Sprintf("%d:%s:%s", ap.Kind, ap.PublicKey, ap.Identifier)
	default:
		return QuotedRef{}, false
	}
	return q, true
}
