// Package content renders raw NIP-01 note text into safe, enriched
// HTML. All extraction and transform passes run synchronously; the
// only side effect is warming the profile cache, whose background
// resolutions later patch already-rendered mentions in place.
package content

// MediaKind classifies an extracted media URL.
type MediaKind string

const (
	MediaImage   MediaKind = "image"
	MediaVideo   MediaKind = "video"
	MediaAudio   MediaKind = "audio"
	MediaYouTube MediaKind = "youtube"
)

// Media is an extracted media span. Matched is the exact substring
// found in the original text; replacement is substring-based, so the
// pipeline substitutes every occurrence of it with the span's token.
type Media struct {
	Matched   string    `json:"-"`
	URL       string    `json:"url"`
	Kind      MediaKind `json:"type"`
	Thumbnail string    `json:"thumbnail,omitempty"` // derived preview for video hosts
}

// Link is a generic http(s) URL that is not media.
type Link struct {
	Matched string `json:"-"`
	URL     string `json:"url"`
	Domain  string `json:"domain"`
}

// Hashtag is a #-prefixed token extracted from raw text.
type Hashtag struct {
	Matched string `json:"-"`
	Tag     string `json:"tag"`
}

// QuoteKind classifies a quoted reference.
type QuoteKind string

const (
	QuoteEvent   QuoteKind = "nevent"
	QuoteNote    QuoteKind = "note"
	QuoteAddress QuoteKind = "naddr"
)

// QuotedRef is an embedded reference to another event, used by the
// external renderer to inline a quote box.
type QuotedRef struct {
	Matched string    `json:"-"`
	Ref     string    `json:"ref"` // bech32 identifier without the nostr: prefix
	ID      string    `json:"id"`  // hex event id, or kind:pubkey:d-tag for naddr
	Kind    QuoteKind `json:"kind"`
}

// ProcessedContent is the immutable snapshot returned by the pipeline.
// Later profile resolutions patch rendered output, never this value.
type ProcessedContent struct {
	Text       string      `json:"text"`
	HTML       string      `json:"html"`
	Media      []Media     `json:"media"`
	Links      []Link      `json:"links"`
	Hashtags   []string    `json:"hashtags"`
	QuotedRefs []QuotedRef `json:"quotedReferences"`
}
