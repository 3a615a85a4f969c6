package profile

import (
	"sync"
	"time"
)

// BlinkConfig controls the identity-change transition: how many
// old/new alternations run and how far apart the frames are.
type BlinkConfig struct {
	Cycles   int
	Interval time.Duration
}

// DefaultBlinkConfig matches the feed client's transition: three
// alternations at 250ms.
func DefaultBlinkConfig() BlinkConfig {
	return BlinkConfig{Cycles: 3, Interval: 250 * time.Millisecond}
}

// Animator runs the visual transition when an identity changes inside
// the recency window. Swappable so headless environments can settle
// values without timers.
type Animator interface {
	// Animate transitions one bound element from the old to the new
	// identity. Name and avatar animate independently.
	Animate(bindingID, pubkey, oldName, newName, oldPicture, newPicture string)
	Close()
}

// NopAnimator applies the new identity immediately.
type NopAnimator struct {
	Patcher Patcher
}

func (a NopAnimator) Animate(bindingID, pubkey, oldName, newName, oldPicture, newPicture string) {
	a.Patcher.SetName(bindingID, pubkey, newName)
	if newPicture != "" {
		a.Patcher.SetAvatar(bindingID, pubkey, newPicture)
	}
}

func (a NopAnimator) Close() {}

// TimerAnimator drives blink transitions on time.AfterFunc timers.
// Machines are memoized per (binding, field) so a second change that
// lands mid-animation restarts the running machine instead of
// stacking a new timer next to it.
type TimerAnimator struct {
	patcher Patcher
	cfg     BlinkConfig

	mu       sync.Mutex
	machines map[string]*blinkMachine
	closed   bool
}

// NewTimerAnimator creates the default animator.
func NewTimerAnimator(patcher Patcher, cfg BlinkConfig) *TimerAnimator {
	if cfg.Cycles <= 0 {
		cfg.Cycles = DefaultBlinkConfig().Cycles
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultBlinkConfig().Interval
	}
	return &TimerAnimator{
		patcher:  patcher,
		cfg:      cfg,
		machines: make(map[string]*blinkMachine),
	}
}

func (a *TimerAnimator) Animate(bindingID, pubkey, oldName, newName, oldPicture, newPicture string) {
	name := a.machine(bindingID+"/name", func(v string) {
		a.patcher.SetName(bindingID, pubkey, v)
	})
	name.start(oldName, newName)

	if oldPicture == newPicture {
		return
	}
	avatar := a.machine(bindingID+"/avatar", func(v string) {
		a.patcher.SetAvatar(bindingID, pubkey, v)
	})
	avatar.start(oldPicture, newPicture)
}

// Close stops every running machine without settling values.
func (a *TimerAnimator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for _, m := range a.machines {
		m.stop()
	}
}

func (a *TimerAnimator) machine(key string, apply func(string)) *blinkMachine {
	a.mu.Lock()
	defer a.mu.Unlock()
	if m, ok := a.machines[key]; ok {
		return m
	}
	m := &blinkMachine{
		apply:    apply,
		cycles:   a.cfg.Cycles,
		interval: a.cfg.Interval,
	}
	a.machines[key] = m
	return m
}

// blinkMachine alternates one value between old and new for a fixed
// number of cycles, then settles on new.
type blinkMachine struct {
	apply    func(string)
	cycles   int
	interval time.Duration

	mu      sync.Mutex
	old     string
	fresh   string
	step    int
	running bool
	timer   *time.Timer
}

// start begins the alternation, restarting from the first frame if a
// run is already in flight.
func (m *blinkMachine) start(old, fresh string) {
	m.mu.Lock()
	m.old = old
	m.fresh = fresh
	m.step = 0
	if m.timer != nil {
		m.timer.Stop()
	}
	m.running = true
	m.timer = time.AfterFunc(m.interval, m.tick)
	apply := m.apply
	m.mu.Unlock()

	// First frame shows the stale identity so the alternation is
	// visible even when the element already displays the new value.
	apply(old)
}

func (m *blinkMachine) tick() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.step++
	var value string
	done := m.step >= m.cycles*2
	if done {
		value = m.fresh
		m.running = false
	} else if m.step%2 == 1 {
		value = m.fresh
	} else {
		value = m.old
	}
	if !done {
		m.timer = time.AfterFunc(m.interval, m.tick)
	}
	apply := m.apply
	m.mu.Unlock()

	apply(value)
}

func (m *blinkMachine) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	if m.timer != nil {
		m.timer.Stop()
	}
}
