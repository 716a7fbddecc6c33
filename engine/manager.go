// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/backend"
)

// Manager owns the voice pool, the sounds and categories, and the mixer
// driven by the backend.
type Manager struct {
	cfg     Config
	logger  *slog.Logger
	backend backend.Backend
	format  backend.Format
	reg     *audio.Registry

	mu         sync.Mutex
	slots      []slot
	sounds     map[string]*Sound
	categories map[string]*Category
	globalGain float64
	clock      int64 // frames mixed
	block      int   // largest Mix request, in samples
	retired    []*feed
	suspended  []Voice
	closed     bool
	cancel     context.CancelFunc
	group      *errgroup.Group

	mixMu   sync.Mutex
	entries []mixEntry
	scratch []float32

	updateMu sync.Mutex
	pending  []*feed

	wake chan struct{}
}

// New builds a manager rendering in the backend's format. It does not start
// the backend; call Start, or drive Mix directly.
func New(b backend.Backend, reg *audio.Registry, opts ...Option) (*Manager, error) {
	if reg == nil {
		return nil, ErrNoRegistry
	}

	format := b.Format()
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("backend format: %w", err)
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize()

	m := &Manager{
		cfg:        cfg,
		logger:     cfg.Logger,
		backend:    b,
		format:     format,
		reg:        reg,
		slots:      make([]slot, cfg.Voices),
		sounds:     make(map[string]*Sound),
		categories: make(map[string]*Category),
		globalGain: cfg.GlobalGain,
		wake:       make(chan struct{}, 1),
	}
	for i := range m.slots {
		m.slots[i] = slot{index: i, gain: 1}
	}

	if _, err := m.createCategory(CategoryConfig{Name: DefaultCategory, Gain: 1}); err != nil {
		return nil, err
	}
	for _, cc := range cfg.Categories {
		if cc.Name == DefaultCategory {
			m.categories[DefaultCategory].gain = max(cc.Gain, 0)
			m.categories[DefaultCategory].bufferMode = cc.BufferMode
			m.categories[DefaultCategory].sourceMode = cc.SourceMode
			continue
		}
		if _, err := m.createCategory(cc); err != nil {
			return nil, fmt.Errorf("category %q: %w", cc.Name, err)
		}
	}

	return m, nil
}

// Format is the device format voices are converted to.
func (m *Manager) Format() backend.Format { return m.format }

// Start runs the streaming worker (when threaded) and the backend.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.group != nil {
		m.mu.Unlock()
		return ErrStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	m.cancel, m.group = cancel, g
	m.mu.Unlock()

	if m.cfg.Threaded {
		g.Go(func() error { return m.run(gctx) })
	}

	if err := m.backend.Start(gctx, m.Mix); err != nil {
		cancel()
		_ = g.Wait()

		m.mu.Lock()
		m.cancel, m.group = nil, nil
		m.mu.Unlock()

		return fmt.Errorf("start backend: %w", err)
	}

	m.logger.Info("manager started",
		"voices", len(m.slots),
		"rate", m.format.SampleRate,
		"channels", m.format.Channels,
		"threaded", m.cfg.Threaded,
	)

	return nil
}

// Close stops the backend and the worker, releases every voice and closes
// their sources. The manager cannot be restarted.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	cancel, g := m.cancel, m.group
	m.mu.Unlock()

	var errs []error
	if cancel != nil {
		cancel()
	}
	if err := m.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close backend: %w", err))
	}
	if g != nil {
		if err := g.Wait(); err != nil {
			errs = append(errs, err)
		}
	}

	m.mixMu.Lock()
	m.mu.Lock()
	for i := range m.slots {
		if m.slots[i].bound {
			m.release(&m.slots[i], "closed")
		}
	}
	retired := m.retired
	m.retired = nil
	m.mu.Unlock()
	m.mixMu.Unlock()

	for _, fd := range retired {
		if err := fd.close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// fadeFrom starts a fade at the current render frame. Caller holds m.mu.
func (m *Manager) fadeFrom(d time.Duration, from, to float64) fade {
	return newFade(m.clock, d, m.format.SampleRate, from, to)
}

// Clock is the amount of audio mixed so far.
func (m *Manager) Clock() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(m.clock) * time.Second / time.Duration(m.format.SampleRate)
}

func (m *Manager) handle(s *slot) Voice {
	return Voice{m: m, index: s.index, gen: s.gen}
}

func (m *Manager) SetGlobalGain(g float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.globalGain = max(g, 0)
	m.recomputeGains()
}

func (m *Manager) GlobalGain() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.globalGain
}

// updateBase caches global * category * instance for one slot.
// Caller holds m.mu.
func (m *Manager) updateBase(s *slot) {
	g := m.globalGain * s.gain
	if snd := m.sounds[s.sound]; snd != nil {
		g *= snd.category.gain
	}
	s.base = g
}

// recomputeGains refreshes every bound voice. Caller holds m.mu.
func (m *Manager) recomputeGains() {
	for i := range m.slots {
		if m.slots[i].bound {
			m.updateBase(&m.slots[i])
		}
	}
}

func (m *Manager) setInstanceGain(s *slot, g float64) {
	s.gain = max(g, 0)
	m.updateBase(s)
}

func (m *Manager) setLooping(s *slot, on bool) {
	s.looping = on
	if s.feed != nil {
		s.feed.looping.Store(on)
	}
}

// Suspend pauses every playing voice at once and remembers them for Resume.
func (m *Manager) Suspend() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.slots {
		s := &m.slots[i]
		if s.bound && (s.state == Playing || s.state == FadingIn) {
			m.pause(s, 0)
			m.suspended = append(m.suspended, m.handle(s))
		}
	}
}

// Resume restarts the voices paused by Suspend. Voices released or resumed
// in between are skipped.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.suspended {
		if s := v.lookup(); s != nil && s.state == Paused {
			m.resume(s, 0)
		}
	}
	m.suspended = nil
}

// VoiceStat is a snapshot of one slot.
type VoiceStat struct {
	ID       int
	PlayID   uuid.UUID
	Bound    bool
	Sound    string
	State    State
	Gain     float64 // effective, fade included
	Offset   float64 // seconds
	Looping  bool
	Locked   bool
	Buffered int // frames decoded ahead
}

// Stats snapshots every slot in index order.
func (m *Manager) Stats() []VoiceStat {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock
	stats := make([]VoiceStat, len(m.slots))
	for i := range m.slots {
		s := &m.slots[i]
		st := VoiceStat{ID: i, Bound: s.bound, State: s.state}
		if s.bound {
			st.PlayID = s.playID
			st.Sound = s.sound
			st.Gain = s.base * s.level(now)
			st.Offset = m.offset(s)
			st.Looping = s.looping
			st.Locked = s.locked
		}
		if s.feed != nil {
			st.Buffered = s.feed.ring.Available() / m.format.Channels
		}
		stats[i] = st
	}
	return stats
}
