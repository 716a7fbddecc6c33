// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audmux/source"
)

// Capacity is the voice pool size.
func (m *Manager) Capacity() int { return len(m.slots) }

// FreeVoices counts unbound slots.
func (m *Manager) FreeVoices() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for i := range m.slots {
		if !m.slots[i].bound && m.slots[i].state == Stopped {
			n++
		}
	}
	return n
}

// evictRank orders eviction candidates, lowest first.
func evictRank(s *slot) int {
	switch {
	case s.state == Stopped:
		return 0
	case s.state == FadingOut && s.target == Stopped:
		return 1
	case s.state == Paused:
		return 2
	}
	return 3
}

// allocate returns a free slot, evicting one when the pool is full.
// Caller holds m.mu.
func (m *Manager) allocate() (*slot, error) {
	for i := range m.slots {
		if s := &m.slots[i]; !s.bound && s.state == Stopped {
			return s, nil
		}
	}

	now := m.clock
	var victim *slot
	var rank int
	var gain float64
	for i := range m.slots {
		s := &m.slots[i]
		if s.locked || s.reserved {
			continue
		}
		r, g := evictRank(s), s.base*s.level(now)
		if victim == nil || r < rank || (r == rank && g < gain) {
			victim, rank, gain = s, r, g
		}
	}

	if victim == nil {
		m.logger.Warn("voice pool exhausted", "voices", len(m.slots))
		return nil, ErrNoVoice
	}

	m.logger.Debug("voice evicted",
		"voice", victim.index,
		"sound", victim.sound,
		"state", victim.state.String(),
		"play_id", victim.playID,
	)
	m.release(victim, "evicted")

	return victim, nil
}

// bind attaches a free slot to a sound ("" for a raw voice).
// Caller holds m.mu.
func (m *Manager) bind(s *slot, sound string) {
	s.bound = true
	s.gen++
	s.playID = uuid.New()
	s.sound = sound
	s.state = Stopped
	s.gain = 1
	s.played = 0

	if snd := m.sounds[sound]; snd != nil {
		snd.voices = append(snd.voices, s.index)
	}
	m.updateBase(s)
}

// release stops the slot at once, unbinds it and retires its feed. Every
// outstanding handle turns inert. Caller holds m.mu.
func (m *Manager) release(s *slot, reason string) {
	if s.feed != nil {
		m.retired = append(m.retired, s.feed)
	}
	if snd := m.sounds[s.sound]; snd != nil {
		snd.voices = slices.DeleteFunc(snd.voices, func(i int) bool { return i == s.index })
	}

	m.logger.Debug("voice released",
		"voice", s.index,
		"sound", s.sound,
		"play_id", s.playID,
		"reason", reason,
	)

	*s = slot{index: s.index, gen: s.gen + 1, gain: 1}
}

// halt stops the slot without unbinding it. Caller holds m.mu.
func (m *Manager) halt(s *slot) {
	if s.feed != nil {
		m.retired = append(m.retired, s.feed)
		s.feed = nil
	}
	s.state = Stopped
	s.fade = fade{}
	s.played = 0
}

// begin moves a freshly fed slot to Playing, or FadingIn from silence.
// Caller holds m.mu.
func (m *Manager) begin(s *slot, d time.Duration) {
	if d > 0 {
		s.state = FadingIn
		s.fade = m.fadeFrom(d, 0, 1)
		return
	}
	s.state = Playing
}

// resume continues a paused or fading-out voice. Caller holds m.mu.
func (m *Manager) resume(s *slot, d time.Duration) {
	switch s.state {
	case Paused:
		m.begin(s, d)
	case FadingOut:
		if d <= 0 {
			s.state = Playing
			return
		}
		s.state = FadingIn
		s.fade = m.fadeFrom(d, s.fade.level(m.clock), 1)
	}
}

// stop fades the slot out toward release. Caller holds m.mu.
func (m *Manager) stop(s *slot, d time.Duration) {
	if d <= 0 || !s.state.audible() {
		m.release(s, "stopped")
		return
	}
	if s.state == FadingOut && s.target == Stopped {
		return
	}

	from := s.level(m.clock)
	s.state, s.target = FadingOut, Stopped
	s.fade = m.fadeFrom(d, from, 0)
}

// pause fades the slot out and keeps it bound. Caller holds m.mu.
func (m *Manager) pause(s *slot, d time.Duration) {
	switch s.state {
	case Playing, FadingIn:
	case FadingOut:
		if s.target == Paused && d <= 0 {
			s.state = Paused
		}
		return
	default:
		return
	}

	if d <= 0 {
		s.state = Paused
		return
	}

	from := s.level(m.clock)
	s.state, s.target = FadingOut, Paused
	s.fade = m.fadeFrom(d, from, 0)
}

// settle completes fades that ended by render frame t. Caller holds m.mu.
func (m *Manager) settle(s *slot, t int64) {
	if !s.bound || !s.fade.done(t) {
		return
	}

	switch s.state {
	case FadingIn:
		s.state = Playing
	case FadingOut:
		if s.target == Paused {
			s.state = Paused
			return
		}
		m.release(s, "faded out")
	}
}

// playSound binds or reuses a voice for snd and starts it.
func (m *Manager) playSound(snd *Sound, d time.Duration, looping, restart bool) (Voice, error) {
	if snd.err != nil {
		return Voice{}, fmt.Errorf("%w %q: %w", ErrSoundUnavailable, snd.name, snd.err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Voice{}, ErrClosed
	}
	if m.sounds[snd.name] != snd {
		m.mu.Unlock()
		return Voice{}, fmt.Errorf("%w %q", ErrUnknownSound, snd.name)
	}

	var s *slot
	if len(snd.voices) > 0 {
		p := &m.slots[snd.voices[0]]
		switch {
		case p.reserved:
			// a start from the beginning is already in flight; a replay
			// takes it over with its own fade and play ID
			m.setLooping(p, looping)
			if restart {
				p.startIn = d
				p.playID = uuid.New()
			}
			v := m.handle(p)
			m.mu.Unlock()
			return v, nil
		case restart, p.state == Stopped:
			m.halt(p)
			p.playID = uuid.New()
			s = p
		case p.state == Playing:
		default:
			m.setLooping(p, looping)
			m.resume(p, d)
			v := m.handle(p)
			m.mu.Unlock()
			return v, nil
		}
	}

	if s == nil {
		var err error
		if s, err = m.allocate(); err != nil {
			m.mu.Unlock()
			m.logger.Warn("play failed", "sound", snd.name, "err", err)
			return Voice{}, err
		}
		m.bind(s, snd.name)
	}

	return m.launch(s, snd.newSource(), snd.category.IsMemoryManaged(), d, looping)
}

// PlaySource plays an arbitrary source on a raw voice. The voice owns src
// and closes it when released.
func (m *Manager) PlaySource(src source.Source, d time.Duration, looping bool) (Voice, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Voice{}, ErrClosed
	}

	s, err := m.allocate()
	if err != nil {
		m.mu.Unlock()
		return Voice{}, err
	}
	m.bind(s, "")

	_, managed := src.(*source.Memory)
	return m.launch(s, src, managed, d, looping)
}

// launch opens the source outside the lock and installs the feed if the slot
// was not released meanwhile. Called with m.mu held; returns with it released.
func (m *Manager) launch(s *slot, src source.Source, managed bool, d time.Duration, looping bool) (Voice, error) {
	s.reserved = true
	s.startIn = d
	s.looping = looping
	v := m.handle(s)
	name := s.sound
	buffers := m.cfg.StreamBuffers
	if managed {
		buffers = 2
	}
	// size the ring for the largest callback seen so far
	format := m.format
	format.BufferFrames = max(format.BufferFrames, m.block/format.Channels)
	m.mu.Unlock()

	fd, err := newFeed(src, format, buffers, managed, looping)

	m.mu.Lock()
	defer m.mu.Unlock()

	if v.lookup() == nil {
		// released while opening
		switch {
		case fd == nil:
		case m.closed:
			// Close already drained the retired list
			if err := fd.close(); err != nil {
				m.logger.Warn("close source", "file", src.Filename(), "err", err)
			}
		default:
			m.retired = append(m.retired, fd)
		}
		return v, nil
	}
	s.reserved = false

	if err != nil {
		m.logger.Warn("voice start failed",
			"voice", s.index,
			"sound", name,
			"play_id", s.playID,
			"err", err,
		)
		m.release(s, "open failed")
		return Voice{}, fmt.Errorf("play %q: %w", src.Filename(), err)
	}

	s.feed = fd
	fd.looping.Store(s.looping)
	m.begin(s, s.startIn)

	m.logger.Debug("voice started",
		"voice", s.index,
		"sound", name,
		"play_id", s.playID,
		"looping", s.looping,
	)

	return v, nil
}

// AllocateSource binds a raw voice that belongs to no sound. It stays bound
// until released or evicted.
func (m *Manager) AllocateSource() (Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Voice{}, ErrClosed
	}
	s, err := m.allocate()
	if err != nil {
		return Voice{}, err
	}
	m.bind(s, "")

	return m.handle(s), nil
}
