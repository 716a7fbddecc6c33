// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"
	"time"
)

// State of a voice.
type State int

const (
	Stopped State = iota
	Playing
	Paused
	FadingIn
	FadingOut
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case FadingIn:
		return "fading-in"
	case FadingOut:
		return "fading-out"
	}
	return "unknown"
}

// audible states are mixed every cycle.
func (s State) audible() bool {
	return s == Playing || s == FadingIn || s == FadingOut
}

// fade is a linear gain ramp on the render clock, in frames.
type fade struct {
	start  int64
	length int64
	from   float64
	to     float64
}

func newFade(now int64, d time.Duration, rate int, from, to float64) fade {
	length := int64(math.Round(d.Seconds() * float64(rate)))
	return fade{start: now, length: length, from: from, to: to}
}

// level at render frame t.
func (f fade) level(t int64) float64 {
	if f.length <= 0 {
		return f.to
	}
	p := float64(t-f.start) / float64(f.length)
	switch {
	case p <= 0:
		return f.from
	case p >= 1:
		return f.to
	}
	return f.from + (f.to-f.from)*p
}

func (f fade) done(t int64) bool {
	return t >= f.start+f.length
}
