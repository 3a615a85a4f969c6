package profile

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"
)

// Encounter is the recognition system's memory of a pubkey's display
// identity: what it looked like when first seen and most recently.
type Encounter struct {
	PubKey            string
	FirstKnownName    string
	FirstKnownPicture string
	LastKnownName     string
	LastKnownPicture  string
	LastChangedAt     time.Time
}

// Store tracks encounters across a session. Implementations are never
// asked to delete; encounters live for the process lifetime.
type Store interface {
	GetEncounter(pubkey string) *Encounter
	UpdateLastKnown(pubkey, name, picture string)
	// HasChangedWithinWindow reports whether the pubkey's identity last
	// changed inside the recency window.
	HasChangedWithinWindow(pubkey string) bool
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	window time.Duration
	now    func() time.Time

	mu         sync.Mutex
	encounters map[string]*Encounter
}

// NewMemoryStore creates a store with the given recency window.
func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{
		window:     window,
		now:        time.Now,
		encounters: make(map[string]*Encounter),
	}
}

// GetEncounter returns a copy of the encounter, or nil before the
// first sighting.
func (s *MemoryStore) GetEncounter(pubkey string) *Encounter {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.encounters[pubkey]
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

// UpdateLastKnown records the observed (name, picture) pair. The
// first sighting creates the encounter and starts the recency window;
// after that LastChangedAt moves only when the pair actually differs,
// so repeated identical resolutions never reset the window.
func (s *MemoryStore) UpdateLastKnown(pubkey, name, picture string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.encounters[pubkey]
	if !ok {
		s.encounters[pubkey] = &Encounter{
			PubKey:            pubkey,
			FirstKnownName:    name,
			FirstKnownPicture: picture,
			LastKnownName:     name,
			LastKnownPicture:  picture,
			LastChangedAt:     s.now(),
		}
		return
	}
	if e.LastKnownName == name && e.LastKnownPicture == picture {
		return
	}
	e.LastKnownName = name
	e.LastKnownPicture = picture
	e.LastChangedAt = s.now()
}

func (s *MemoryStore) HasChangedWithinWindow(pubkey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.encounters[pubkey]
	if !ok || e.LastChangedAt.IsZero() {
		return false
	}
	return s.now().Sub(e.LastChangedAt) <= s.window
}

// Recognizer decides, per resolution, between a direct patch and a
// blink transition, and owns the binding registry that maps rendered
// elements (by correlation id) to their pubkey.
type Recognizer struct {
	store   Store
	patcher Patcher
	anim    Animator
	log     *slog.Logger

	mu       sync.Mutex
	bindings map[string]string   // correlation id -> pubkey
	byPubkey map[string][]string // pubkey -> correlation ids
}

// RecognizerOption configures a Recognizer.
type RecognizerOption func(*Recognizer)

// WithAnimator swaps the blink implementation; NopAnimator gives a
// headless recognizer that settles instantly.
func WithAnimator(a Animator) RecognizerOption {
	return func(r *Recognizer) { r.anim = a }
}

// WithRecognizerLogger sets the logger.
func WithRecognizerLogger(log *slog.Logger) RecognizerOption {
	return func(r *Recognizer) { r.log = log }
}

// NewRecognizer wires a store, a patcher and (by default) a timer
// driven blink animator.
func NewRecognizer(store Store, patcher Patcher, opts ...RecognizerOption) *Recognizer {
	r := &Recognizer{
		store:    store,
		patcher:  patcher,
		log:      slog.Default(),
		bindings: make(map[string]string),
		byPubkey: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.anim == nil {
		r.anim = NewTimerAnimator(patcher, DefaultBlinkConfig())
	}
	return r
}

// Bind associates a rendered mention element with a pubkey and returns
// its correlation id. Pass the id previously stored on the element, or
// "" to have one generated. Re-binding an existing id is a no-op, so
// repeated change events reuse the same animation machines instead of
// stacking timers.
func (r *Recognizer) Bind(id, pubkey string) string {
	if id == "" {
		id = newBindingID()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bindings[id]; ok {
		return id
	}
	r.bindings[id] = pubkey
	r.byPubkey[pubkey] = append(r.byPubkey[pubkey], id)
	return id
}

// ProfileResolved is the cache's OnResolved hook. First sightings and
// out-of-window changes patch directly; a change inside the recency
// window blinks between the stale and fresh identity.
func (r *Recognizer) ProfileResolved(pubkey string, p *Profile) {
	if p == nil || p.Pending {
		return
	}
	name := p.BestName()
	picture := p.Picture

	enc := r.store.GetEncounter(pubkey)
	if enc == nil {
		r.store.UpdateLastKnown(pubkey, name, picture)
		r.patchDirect(pubkey, name, picture)
		return
	}

	if enc.LastKnownName == name && enc.LastKnownPicture == picture {
		r.patchDirect(pubkey, name, picture)
		return
	}

	recent := r.store.HasChangedWithinWindow(pubkey)
	r.store.UpdateLastKnown(pubkey, name, picture)

	if !recent {
		r.patchDirect(pubkey, name, picture)
		return
	}

	ids := r.bindingsFor(pubkey)
	if len(ids) == 0 {
		// Nothing mounted to animate; settle the values anyway.
		r.patchDirect(pubkey, name, picture)
		return
	}
	r.log.Debug("identity changed within window, blinking",
		"pubkey", shortPubkey(pubkey), "name", name)
	for _, id := range ids {
		r.anim.Animate(id, pubkey, enc.LastKnownName, name, enc.LastKnownPicture, picture)
	}
}

// Close stops any running blink timers. Process teardown only; late
// resolutions after individual elements unmount are handled by the
// patcher matching nothing.
func (r *Recognizer) Close() {
	r.anim.Close()
}

func (r *Recognizer) patchDirect(pubkey, name, picture string) {
	r.patcher.SetName("", pubkey, name)
	if picture != "" {
		r.patcher.SetAvatar("", pubkey, picture)
	}
}

func (r *Recognizer) bindingsFor(pubkey string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.byPubkey[pubkey]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func newBindingID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
