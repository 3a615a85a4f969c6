// Package services holds concrete implementations of the external
// collaborators the core pipeline is wired to.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"golang.org/x/sync/singleflight"

	"github.com/htsula/noornote/internal/cache"
	"github.com/htsula/noornote/profile"
)

// ErrProfileNotFound is returned when no kind-0 event exists for a
// pubkey on the configured relays.
var ErrProfileNotFound = errors.New("profile not found")

// profileMeta is the kind-0 content payload.
type profileMeta struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Picture     string `json:"picture"`
	About       string `json:"about"`
}

// RelayProfiles implements profile.Service over a go-nostr relay
// pool. Fetched metadata is memoized in a TTL cache backend and
// concurrent fetches for the same pubkey are collapsed with
// singleflight, so the network-level dedup the core's cache expects
// from its service lives here.
type RelayProfiles struct {
	pool   *nostr.SimplePool
	relays []string
	memo   cache.Backend
	ttl    cache.Config
	group  singleflight.Group
	log    *slog.Logger
}

// NewRelayProfiles creates the relay-backed profile service.
func NewRelayProfiles(pool *nostr.SimplePool, relays []string, memo cache.Backend, ttl cache.Config, log *slog.Logger) *RelayProfiles {
	if log == nil {
		log = slog.Default()
	}
	return &RelayProfiles{pool: pool, relays: relays, memo: memo, ttl: ttl, log: log}
}

// GetUserProfile fetches one profile, memo first. A memoized
// not-found suppresses the relay query until its short TTL lapses.
func (s *RelayProfiles) GetUserProfile(ctx context.Context, pubkey string) (*profile.Profile, error) {
	p, notFound, ok := s.memoGet(ctx, pubkey)
	if ok {
		return p, nil
	}
	if notFound {
		return nil, ErrProfileNotFound
	}

	result, err, shared := s.group.Do(pubkey, func() (interface{}, error) {
		return s.fetchDirect(ctx, pubkey)
	})
	if shared {
		s.log.Debug("singleflight: shared profile fetch", "pubkey", shortID(pubkey))
	}
	if err != nil {
		return nil, err
	}
	return result.(*profile.Profile), nil
}

// GetUserProfiles fetches many profiles, memo first, missing keys in
// parallel. Pubkeys that cannot be resolved are absent from the map.
func (s *RelayProfiles) GetUserProfiles(ctx context.Context, pubkeys []string) (map[string]*profile.Profile, error) {
	result := make(map[string]*profile.Profile, len(pubkeys))
	var missing []string
	for _, pk := range pubkeys {
		p, notFound, ok := s.memoGet(ctx, pk)
		switch {
		case ok:
			result[pk] = p
		case notFound:
			// Skip; the negative entry covers it.
		default:
			missing = append(missing, pk)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, pk := range missing {
		wg.Add(1)
		go func(pubkey string) {
			defer wg.Done()
			p, err := s.GetUserProfile(ctx, pubkey)
			if err != nil {
				return
			}
			mu.Lock()
			result[pubkey] = p
			mu.Unlock()
		}(pk)
	}
	wg.Wait()

	return result, nil
}

func (s *RelayProfiles) fetchDirect(ctx context.Context, pubkey string) (*profile.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	re := s.pool.QuerySingle(ctx, s.relays, nostr.Filter{
		Kinds:   []int{0},
		Authors: []string{pubkey},
	})
	if re == nil {
		s.memoSetNotFound(pubkey)
		return nil, ErrProfileNotFound
	}

	var meta profileMeta
	if err := json.Unmarshal([]byte(re.Content), &meta); err != nil {
		s.log.Warn("bad kind-0 metadata", "pubkey", shortID(pubkey), "error", err)
		s.memoSetNotFound(pubkey)
		return nil, ErrProfileNotFound
	}

	p := &profile.Profile{
		PubKey:      pubkey,
		Name:        meta.Name,
		DisplayName: meta.DisplayName,
		Picture:     meta.Picture,
		About:       meta.About,
	}
	s.memoSet(pubkey, p)
	return p, nil
}

const (
	memoKeyPrefix    = "profile:"
	memoNotFoundByte = 0x00
)

// memoGet reads the memo. notFound reports a cached negative entry;
// ok reports a cached profile.
func (s *RelayProfiles) memoGet(ctx context.Context, pubkey string) (p *profile.Profile, notFound, ok bool) {
	if s.memo == nil {
		return nil, false, false
	}
	data, found, err := s.memo.Get(ctx, memoKeyPrefix+pubkey)
	if err != nil || !found {
		return nil, false, false
	}
	if len(data) == 1 && data[0] == memoNotFoundByte {
		return nil, true, false
	}
	var cached profile.Profile
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, false
	}
	return &cached, false, true
}

func (s *RelayProfiles) memoSet(pubkey string, p *profile.Profile) {
	if s.memo == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.memo.Set(ctx, memoKeyPrefix+pubkey, data, s.ttl.ProfileTTL); err != nil {
		s.log.Warn("profile memo write failed", "pubkey", shortID(pubkey), "error", err)
	}
}

// memoSetNotFound keeps a short negative entry so a storm of renders
// for an unknown pubkey does not hammer the relays.
func (s *RelayProfiles) memoSetNotFound(pubkey string) {
	if s.memo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = s.memo.Set(ctx, memoKeyPrefix+pubkey, []byte{memoNotFoundByte}, s.ttl.ProfileNotFoundTTL)
}

func shortID(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}
