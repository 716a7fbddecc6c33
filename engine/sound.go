// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"time"

	"github.com/ik5/audmux/source"
)

// Sound is a registered asset. Each Play binds or reuses a voice; the voices
// bound to a sound are kept in allocation order and the first one is the
// primary, which the per-voice queries below report on.
type Sound struct {
	m        *Manager
	name     string
	filename string
	category *Category
	info     source.Info
	err      error
	memory   *source.Memory // decoded template for Managed categories

	voices []int // slot indices, guarded by m.mu
}

func (s *Sound) Name() string        { return s.name }
func (s *Sound) Filename() string    { return s.filename }
func (s *Sound) Category() *Category { return s.category }
func (s *Sound) Info() source.Info   { return s.info }
func (s *Sound) Duration() float64   { return s.info.Duration }
func (s *Sound) Available() bool     { return s.err == nil }

// Err is the open failure recorded at registration, if any.
func (s *Sound) Err() error { return s.err }

// newSource returns a fresh, closed source for one voice.
func (s *Sound) newSource() source.Source {
	if s.memory != nil {
		return s.memory.Clone()
	}
	return source.NewFile(s.m.cfg.FS, s.filename, s.m.reg, s.category.sourceMode)
}

// Play starts the sound. A new voice is bound when none is bound yet or the
// primary is already playing; otherwise the primary is resumed or restarted
// in place.
func (s *Sound) Play(fade time.Duration, looping bool) (Voice, error) {
	return s.m.playSound(s, fade, looping, false)
}

// Replay restarts the primary from the beginning.
func (s *Sound) Replay(fade time.Duration, looping bool) (Voice, error) {
	return s.m.playSound(s, fade, looping, true)
}

// Voice returns the primary voice, or the zero Voice when none is bound.
func (s *Sound) Voice() Voice {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if len(s.voices) == 0 {
		return Voice{}
	}
	return s.m.handle(&s.m.slots[s.voices[0]])
}

// Voices returns handles to every bound voice, primary first.
func (s *Sound) Voices() []Voice {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	vs := make([]Voice, 0, len(s.voices))
	for _, i := range s.voices {
		vs = append(vs, s.m.handle(&s.m.slots[i]))
	}
	return vs
}

func (s *Sound) VoiceCount() int {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return len(s.voices)
}

func (s *Sound) Stop(fade time.Duration)  { s.Voice().Stop(fade) }
func (s *Sound) Pause(fade time.Duration) { s.Voice().Pause(fade) }

// StopAll stops every voice bound to the sound.
func (s *Sound) StopAll(fade time.Duration) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.stopSound(s, fade)
}

func (s *Sound) Lock()          { s.Voice().Lock() }
func (s *Sound) Unlock()        { s.Voice().Unlock() }
func (s *Sound) IsLocked() bool { return s.Voice().IsLocked() }

func (s *Sound) SetGain(g float64)  { s.Voice().SetGain(g) }
func (s *Sound) Gain() float64      { return s.Voice().Gain() }
func (s *Sound) SetLooping(on bool) { s.Voice().SetLooping(on) }

// SampleOffset is the primary voice's playback position in seconds of the
// asset, not a sample count. It is 0 when no voice is bound.
func (s *Sound) SampleOffset() float64 { return s.Voice().SampleOffset() }

func (s *Sound) IsPlaying() bool   { return s.Voice().IsPlaying() }
func (s *Sound) IsPaused() bool    { return s.Voice().IsPaused() }
func (s *Sound) IsFading() bool    { return s.Voice().IsFading() }
func (s *Sound) IsFadingIn() bool  { return s.Voice().IsFadingIn() }
func (s *Sound) IsFadingOut() bool { return s.Voice().IsFadingOut() }
func (s *Sound) IsLooping() bool   { return s.Voice().IsLooping() }

// IsAnyPlaying reports whether any bound voice is in the Playing state.
func (s *Sound) IsAnyPlaying() bool {
	return s.any(func(st State) bool { return st == Playing })
}

// IsAnyFading reports whether any bound voice is fading in or out.
func (s *Sound) IsAnyFading() bool {
	return s.any(func(st State) bool { return st == FadingIn || st == FadingOut })
}

func (s *Sound) any(match func(State) bool) bool {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, i := range s.voices {
		if match(s.m.slots[i].state) {
			return true
		}
	}
	return false
}

func (s *Sound) String() string {
	return fmt.Sprintf("%s (%s)", s.name, s.filename)
}
