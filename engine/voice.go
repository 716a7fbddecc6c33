// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// slot is one entry of the fixed voice arena. All fields are guarded by the
// manager lock; the feed has its own.
type slot struct {
	index    int
	gen      uint64
	playID   uuid.UUID
	bound    bool
	reserved bool          // a start is in flight outside the lock
	startIn  time.Duration // fade-in applied when that start lands
	sound    string

	state  State
	fade   fade
	target State // where FadingOut ends: Stopped or Paused

	gain    float64 // instance gain
	base    float64 // global * category * instance
	looping bool
	locked  bool
	played  int64 // device frames mixed since the last start
	feed    *feed
}

func (s *slot) level(t int64) float64 {
	switch s.state {
	case Playing:
		return 1
	case FadingIn, FadingOut:
		return s.fade.level(t)
	}
	return 0
}

// Voice is a handle to one bound voice. It turns inert once the voice is
// released or rebound: queries report inactive defaults and commands do
// nothing. The zero Voice is inert.
type Voice struct {
	m     *Manager
	index int
	gen   uint64
}

// lookup returns the slot if the handle is current. Caller holds m.mu.
func (v Voice) lookup() *slot {
	if v.m == nil || v.index < 0 || v.index >= len(v.m.slots) {
		return nil
	}
	s := &v.m.slots[v.index]
	if !s.bound || s.gen != v.gen {
		return nil
	}
	return s
}

func (v Voice) with(fn func(s *slot)) {
	if v.m == nil {
		return
	}
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	if s := v.lookup(); s != nil {
		fn(s)
	}
}

// Valid reports whether the handle still refers to a bound voice.
func (v Voice) Valid() bool {
	ok := false
	v.with(func(*slot) { ok = true })
	return ok
}

// ID is the arena slot index, or -1 for the zero Voice.
func (v Voice) ID() int {
	if v.m == nil {
		return -1
	}
	return v.index
}

// PlayID identifies this binding in logs.
func (v Voice) PlayID() uuid.UUID {
	id := uuid.Nil
	v.with(func(s *slot) { id = s.playID })
	return id
}

// Sound is the name of the bound sound, empty for an allocated raw voice.
func (v Voice) Sound() string {
	name := ""
	v.with(func(s *slot) { name = s.sound })
	return name
}

func (v Voice) State() State {
	st := Stopped
	v.with(func(s *slot) { st = s.state })
	return st
}

func (v Voice) IsPlaying() bool   { return v.State() == Playing }
func (v Voice) IsPaused() bool    { return v.State() == Paused }
func (v Voice) IsFadingIn() bool  { return v.State() == FadingIn }
func (v Voice) IsFadingOut() bool { return v.State() == FadingOut }

func (v Voice) IsFading() bool {
	st := v.State()
	return st == FadingIn || st == FadingOut
}

func (v Voice) IsLooping() bool {
	on := false
	v.with(func(s *slot) { on = s.looping })
	return on
}

func (v Voice) SetLooping(on bool) {
	v.with(func(s *slot) { v.m.setLooping(s, on) })
}

// Gain is the instance gain, 1 when inactive.
func (v Voice) Gain() float64 {
	g := 1.0
	v.with(func(s *slot) { g = s.gain })
	return g
}

func (v Voice) SetGain(g float64) {
	v.with(func(s *slot) { v.m.setInstanceGain(s, g) })
}

// SampleOffset is the playback position in seconds (not samples), wrapped
// to the asset duration while looping. 0 when inactive.
func (v Voice) SampleOffset() float64 {
	off := 0.0
	v.with(func(s *slot) { off = v.m.offset(s) })
	return off
}

func (v Voice) Lock()   { v.with(func(s *slot) { s.locked = true }) }
func (v Voice) Unlock() { v.with(func(s *slot) { s.locked = false }) }

func (v Voice) IsLocked() bool {
	on := false
	v.with(func(s *slot) { on = s.locked })
	return on
}

// Stop fades the voice out and releases it. fade <= 0 releases immediately.
func (v Voice) Stop(fade time.Duration) {
	v.with(func(s *slot) { v.m.stop(s, fade) })
}

// Pause fades the voice out and keeps its position.
func (v Voice) Pause(fade time.Duration) {
	v.with(func(s *slot) { v.m.pause(s, fade) })
}

// Resume continues a paused or fading-out voice.
func (v Voice) Resume(fade time.Duration) {
	v.with(func(s *slot) { v.m.resume(s, fade) })
}

// Release returns the voice to the pool at once.
func (v Voice) Release() {
	v.with(func(s *slot) { v.m.release(s, "released") })
}

// offset in seconds. Caller holds m.mu.
func (m *Manager) offset(s *slot) float64 {
	if s.state == Stopped {
		return 0
	}
	off := float64(s.played) / float64(m.format.SampleRate)
	if s.looping && s.sound != "" {
		if snd := m.sounds[s.sound]; snd != nil && snd.info.Duration > 0 {
			off = math.Mod(off, snd.info.Duration)
		}
	}
	return off
}
