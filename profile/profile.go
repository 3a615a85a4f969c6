// Package profile provides the memoizing profile cache and the
// recognition/blink controller that drive progressive mention
// enrichment: synchronous lookups always return a value immediately,
// resolution happens in the background, and identity changes are
// surfaced to the host renderer through a Patcher.
package profile

import "context"

// Profile contains user profile metadata (kind 0).
// A pending profile is the synchronous fallback handed out before the
// background fetch completes; all metadata fields are empty on it.
type Profile struct {
	PubKey      string `json:"pubkey"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Picture     string `json:"picture,omitempty"`
	About       string `json:"about,omitempty"`

	Pending bool `json:"-"`
}

// BestName returns the preferred display text: display_name, then name.
// Empty when neither is set (callers fall back to a shortened npub).
func (p *Profile) BestName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// Service fetches profiles from the outside world (relays, HTTP, a
// fixture in tests). Implementations own network-level deduplication;
// the Cache only guarantees it issues at most one fetch per pubkey.
type Service interface {
	GetUserProfile(ctx context.Context, pubkey string) (*Profile, error)
	GetUserProfiles(ctx context.Context, pubkeys []string) (map[string]*Profile, error)
}
