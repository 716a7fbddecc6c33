// SPDX-License-Identifier: EPL-2.0

// Package engine is the audio manager: a fixed pool of voices shared by
// registered sounds, grouped into categories, and mixed into one output
// stream.
//
// # Voices
//
// The pool has a fixed number of slots. Playing a sound binds a free slot,
// or evicts the least useful unlocked one (stopped first, then fading out,
// then paused, then the quietest). A Voice is a small handle carrying the
// slot generation; once the slot is released or rebound, old handles do
// nothing.
//
// # Mixing
//
// The backend calls Mix once per device buffer. Mix reads every audible
// voice from its ring buffer, ramps the gain across the block (global,
// category, instance and fade multiplied together) and sums. It never
// decodes streamed audio itself: a worker goroutine, or the application
// through Update, keeps the ring buffers ahead. Memory-managed categories
// decode everything at registration and refill inline.
//
// Fades are defined on the render clock, the number of frames mixed so far,
// so they are exact regardless of when the application issued them.
//
// # Usage
//
//	m, err := engine.New(b, reg, engine.WithVoices(32))
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	boom, err := m.CreateSound("sfx/boom.wav", engine.DefaultCategory, "")
//	if err != nil {
//		return err
//	}
//	if err := m.Start(ctx); err != nil {
//		return err
//	}
//	v, err := boom.Play(0, false)
package engine
