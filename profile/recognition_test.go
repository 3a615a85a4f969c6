package profile

import (
	"sync"
	"testing"
	"time"
)

type recordingPatcher struct {
	mu      sync.Mutex
	names   []string
	avatars []string
}

func (p *recordingPatcher) SetName(bindingID, pubkey, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names = append(p.names, name)
}

func (p *recordingPatcher) SetAvatar(bindingID, pubkey, pictureURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.avatars = append(p.avatars, pictureURL)
}

func (p *recordingPatcher) nameLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

type recordingAnimator struct {
	mu    sync.Mutex
	calls []string // "bindingID old->new"
}

func (a *recordingAnimator) Animate(bindingID, pubkey, oldName, newName, oldPicture, newPicture string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, bindingID+" "+oldName+"->"+newName)
}

func (a *recordingAnimator) Close() {}

func (a *recordingAnimator) callLog() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.calls))
	copy(out, a.calls)
	return out
}

const encPubkey = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

func TestMemoryStoreFirstSightingStartsWindow(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	s.UpdateLastKnown(encPubkey, "alice", "a.png")

	e := s.GetEncounter(encPubkey)
	if e == nil {
		t.Fatal("no encounter after first sighting")
	}
	if e.FirstKnownName != "alice" || e.LastKnownName != "alice" {
		t.Errorf("encounter = %+v", e)
	}
	if e.LastChangedAt.IsZero() {
		t.Error("first sighting did not start the window")
	}
	if !s.HasChangedWithinWindow(encPubkey) {
		t.Error("fresh encounter outside window")
	}
}

func TestMemoryStoreUnchangedUpdateKeepsTimestamp(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	s.UpdateLastKnown(encPubkey, "alice", "a.png")

	s.now = func() time.Time { return base.Add(10 * time.Second) }
	s.UpdateLastKnown(encPubkey, "alice", "a.png")

	if got := s.GetEncounter(encPubkey).LastChangedAt; !got.Equal(base) {
		t.Errorf("LastChangedAt moved on identical update: %v", got)
	}

	s.UpdateLastKnown(encPubkey, "bob", "a.png")
	if got := s.GetEncounter(encPubkey).LastChangedAt; !got.Equal(base.Add(10 * time.Second)) {
		t.Errorf("LastChangedAt did not move on change: %v", got)
	}
	if got := s.GetEncounter(encPubkey).FirstKnownName; got != "alice" {
		t.Errorf("FirstKnownName rewritten: %q", got)
	}
}

func TestMemoryStoreWindowExpiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.UpdateLastKnown(encPubkey, "alice", "")

	s.now = func() time.Time { return base.Add(59 * time.Second) }
	if !s.HasChangedWithinWindow(encPubkey) {
		t.Error("inside window reported as outside")
	}
	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if s.HasChangedWithinWindow(encPubkey) {
		t.Error("expired window reported as inside")
	}
}

func TestRecognizerFirstSightingPatchesDirect(t *testing.T) {
	patcher := &recordingPatcher{}
	anim := &recordingAnimator{}
	r := NewRecognizer(NewMemoryStore(time.Minute), patcher, WithAnimator(anim))
	defer r.Close()

	r.Bind("b1", encPubkey)
	r.ProfileResolved(encPubkey, &Profile{PubKey: encPubkey, Name: "alice", Picture: "a.png"})

	if got := patcher.nameLog(); len(got) != 1 || got[0] != "alice" {
		t.Errorf("names = %v", got)
	}
	if got := anim.callLog(); len(got) != 0 {
		t.Errorf("first sighting animated: %v", got)
	}
}

func TestRecognizerBlinksOnChangeWithinWindow(t *testing.T) {
	patcher := &recordingPatcher{}
	anim := &recordingAnimator{}
	r := NewRecognizer(NewMemoryStore(time.Minute), patcher, WithAnimator(anim))
	defer r.Close()

	r.Bind("b1", encPubkey)
	r.ProfileResolved(encPubkey, &Profile{PubKey: encPubkey, Name: "alice"})
	r.ProfileResolved(encPubkey, &Profile{PubKey: encPubkey, Name: "bob"})

	got := anim.callLog()
	if len(got) != 1 || got[0] != "b1 alice->bob" {
		t.Errorf("animator calls = %v", got)
	}
	// The store settled on the new identity even though the patch went
	// through the animator.
	if e := r.store.GetEncounter(encPubkey); e.LastKnownName != "bob" {
		t.Errorf("LastKnownName = %q", e.LastKnownName)
	}
}

func TestRecognizerPatchesDirectOutsideWindow(t *testing.T) {
	patcher := &recordingPatcher{}
	anim := &recordingAnimator{}
	store := NewMemoryStore(time.Minute)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	r := NewRecognizer(store, patcher, WithAnimator(anim))
	defer r.Close()

	r.Bind("b1", encPubkey)
	r.ProfileResolved(encPubkey, &Profile{PubKey: encPubkey, Name: "alice"})

	store.now = func() time.Time { return base.Add(time.Hour) }
	r.ProfileResolved(encPubkey, &Profile{PubKey: encPubkey, Name: "bob"})

	if got := anim.callLog(); len(got) != 0 {
		t.Errorf("out-of-window change animated: %v", got)
	}
	names := patcher.nameLog()
	if len(names) != 2 || names[1] != "bob" {
		t.Errorf("names = %v", names)
	}
}

func TestRecognizerUnchangedResolutionPatchesDirect(t *testing.T) {
	patcher := &recordingPatcher{}
	anim := &recordingAnimator{}
	r := NewRecognizer(NewMemoryStore(time.Minute), patcher, WithAnimator(anim))
	defer r.Close()

	r.Bind("b1", encPubkey)
	r.ProfileResolved(encPubkey, &Profile{PubKey: encPubkey, Name: "alice"})
	r.ProfileResolved(encPubkey, &Profile{PubKey: encPubkey, Name: "alice"})

	if got := anim.callLog(); len(got) != 0 {
		t.Errorf("unchanged resolution animated: %v", got)
	}
}

func TestRecognizerAnimatesEveryBinding(t *testing.T) {
	patcher := &recordingPatcher{}
	anim := &recordingAnimator{}
	r := NewRecognizer(NewMemoryStore(time.Minute), patcher, WithAnimator(anim))
	defer r.Close()

	r.Bind("b1", encPubkey)
	r.Bind("b2", encPubkey)
	r.ProfileResolved(encPubkey, &Profile{PubKey: encPubkey, Name: "alice"})
	r.ProfileResolved(encPubkey, &Profile{PubKey: encPubkey, Name: "bob"})

	if got := anim.callLog(); len(got) != 2 {
		t.Errorf("animator calls = %v, want one per binding", got)
	}
}

func TestBindReusesExistingID(t *testing.T) {
	r := NewRecognizer(NewMemoryStore(time.Minute), &recordingPatcher{}, WithAnimator(&recordingAnimator{}))
	defer r.Close()

	if got := r.Bind("b1", encPubkey); got != "b1" {
		t.Errorf("Bind rewrote id: %q", got)
	}
	r.Bind("b1", encPubkey)
	if n := len(r.bindingsFor(encPubkey)); n != 1 {
		t.Errorf("re-bind duplicated registration: %d bindings", n)
	}

	gen := r.Bind("", encPubkey)
	if gen == "" || gen == "b1" {
		t.Errorf("generated id = %q", gen)
	}
}

func TestRecognizerIgnoresPendingResolutions(t *testing.T) {
	patcher := &recordingPatcher{}
	r := NewRecognizer(NewMemoryStore(time.Minute), patcher, WithAnimator(&recordingAnimator{}))
	defer r.Close()

	r.ProfileResolved(encPubkey, &Profile{PubKey: encPubkey, Pending: true})
	r.ProfileResolved(encPubkey, nil)

	if got := patcher.nameLog(); len(got) != 0 {
		t.Errorf("pending resolution patched: %v", got)
	}
}
