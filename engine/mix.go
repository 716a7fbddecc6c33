// SPDX-License-Identifier: EPL-2.0

package engine

// mixEntry is one audible voice captured for a mix cycle.
type mixEntry struct {
	s       *slot
	fd      *feed
	base    float64
	env     fade // envelope at snapshot time; a steady voice has a flat one
	frames  int
	drained bool
}

// gain at render frame t.
func (e *mixEntry) gain(t int64) float32 {
	return float32(e.base * e.env.level(t))
}

// Mix renders one block of interleaved frames in the device format into
// out. It is the backend callback and never waits on decoding: streamed
// voices that fell behind contribute what they have.
func (m *Manager) Mix(out []float32) {
	m.mixMu.Lock()
	defer m.mixMu.Unlock()

	clear(out)
	ch := m.format.Channels
	frames := len(out) / ch
	if frames == 0 {
		return
	}
	out = out[:frames*ch]

	m.mu.Lock()
	t0 := m.clock
	m.block = max(m.block, len(out))
	m.entries = m.entries[:0]
	for i := range m.slots {
		s := &m.slots[i]
		if !s.bound || s.feed == nil || !s.state.audible() {
			continue
		}
		env := s.fade
		if s.state == Playing {
			env = fade{to: 1}
		}
		m.entries = append(m.entries, mixEntry{s: s, fd: s.feed, base: s.base, env: env})
	}
	m.mu.Unlock()

	if cap(m.scratch) < len(out) {
		m.scratch = make([]float32, len(out))
	}
	scratch := m.scratch[:len(out)]

	for i := range m.entries {
		e := &m.entries[i]
		fd := e.fd

		// managed voices decode from memory inline until the block is full;
		// the ring may be smaller than out
		n := 0
		for {
			if fd.managed && fd.ring.Available() < len(scratch)-n && fd.mu.TryLock() {
				if _, err := fd.fill(); err != nil {
					m.logger.Warn("decode failed", "file", fd.src.Filename(), "err", err)
				}
				fd.mu.Unlock()
			}
			got := fd.ring.Read(scratch[n:])
			n += got
			if !fd.managed || got == 0 || n == len(scratch) {
				break
			}
		}

		e.frames = n / ch
		e.drained = fd.eof.Load() && fd.ring.Available() == 0

		for f := range e.frames {
			g := e.gain(t0 + int64(f))
			base := f * ch
			for c := range ch {
				out[base+c] += scratch[base+c] * g
			}
		}
	}

	m.mu.Lock()
	m.clock += int64(frames)
	for i := range m.entries {
		e := &m.entries[i]
		if e.s.feed != e.fd {
			// stopped or restarted during the cycle
			continue
		}
		e.s.played += int64(e.frames)
		if e.drained {
			m.release(e.s, "finished")
		}
	}
	for i := range m.slots {
		m.settle(&m.slots[i], m.clock)
	}
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}
