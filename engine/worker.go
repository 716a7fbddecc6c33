// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"time"
)

// Update is one streaming pass: it closes the sources of released voices and
// decodes ahead for every streamed voice. The threaded worker calls it on
// its own; otherwise the application calls it regularly.
func (m *Manager) Update() {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	m.mu.Lock()
	retired := m.retired
	m.retired = nil
	want := m.cfg.StreamBuffers * m.block
	m.pending = m.pending[:0]
	for i := range m.slots {
		s := &m.slots[i]
		if s.bound && s.feed != nil && !s.feed.managed && s.state != Stopped {
			m.pending = append(m.pending, s.feed)
		}
	}
	m.mu.Unlock()

	for _, fd := range retired {
		if err := fd.close(); err != nil {
			m.logger.Warn("close source", "file", fd.src.Filename(), "err", err)
		}
	}

	for _, fd := range m.pending {
		fd.mu.Lock()
		if fd.ring.Cap() < want {
			// the backend asked for more than the ring holds
			fd.ring.Grow(want)
		}
		_, err := fd.fill()
		fd.mu.Unlock()

		if err != nil {
			m.logger.Warn("decode failed", "file", fd.src.Filename(), "err", err)
		}
	}
	clear(m.pending)
}

// run is the streaming worker. It wakes every UpdateTime and whenever Mix
// has consumed audio.
func (m *Manager) run(ctx context.Context) error {
	tick := time.NewTicker(m.cfg.UpdateTime)
	defer tick.Stop()

	m.logger.Debug("streaming worker started", "period", m.cfg.UpdateTime)

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("streaming worker stopped")
			return nil
		case <-tick.C:
		case <-m.wake:
		}
		m.Update()
	}
}
