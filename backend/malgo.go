// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// Malgo plays through a miniaudio device. The device thread calls the
// callback for every period.
type Malgo struct {
	format Format
	logger *slog.Logger

	mu      sync.Mutex
	mctx    *malgo.AllocatedContext
	device  *malgo.Device
	render  renderer
	started bool
}

// NewMalgo returns a backend for f. Nothing is opened until Start.
func NewMalgo(f Format, logger *slog.Logger) *Malgo {
	return &Malgo{format: f, logger: logger}
}

func (m *Malgo) Format() Format { return m.format }

func malgoFormat(s SampleFormat) malgo.FormatType {
	switch s {
	case S24:
		return malgo.FormatS24
	case S32:
		return malgo.FormatS32
	case F32:
		return malgo.FormatF32
	default:
		return malgo.FormatS16
	}
}

func (m *Malgo) Start(ctx context.Context, cb Callback) error {
	if err := m.format.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrStarted
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	m.render = newRenderer(m.format, cb)

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgoFormat(m.format.Sample)
	cfg.Playback.Channels = uint32(m.format.Channels)
	cfg.SampleRate = uint32(m.format.SampleRate)
	cfg.PeriodSizeInFrames = uint32(m.format.BufferFrames)
	cfg.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frames uint32) {
			m.render.fill(out, int(frames))
		},
	})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.mctx, m.device, m.started = mctx, device, true
	m.logger.Info("audio device started", "backend", "malgo",
		"rate", m.format.SampleRate, "channels", m.format.Channels, "sample", m.format.Sample.String())

	go func() {
		<-ctx.Done()
		_ = m.Close()
	}()

	return nil
}

func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil
	}

	if err := m.device.Stop(); err != nil {
		m.logger.Warn("device stop", "err", err)
	}
	m.device.Uninit()

	if err := m.mctx.Uninit(); err != nil {
		m.logger.Warn("malgo context uninit", "err", err)
	}
	m.mctx.Free()

	m.device, m.mctx, m.started = nil, nil, false
	return nil
}

// renderer turns a float callback into encoded device buffers.
type renderer struct {
	format Format
	cb     Callback
	buf    []float32
}

func newRenderer(f Format, cb Callback) renderer {
	return renderer{format: f, cb: cb, buf: make([]float32, f.BufferFrames*f.Channels)}
}

// fill renders frames frames into out and returns the bytes written.
func (r *renderer) fill(out []byte, frames int) int {
	n := frames * r.format.Channels
	if limit := len(out) / r.format.Sample.Bytes(); n > limit {
		n = limit - limit%r.format.Channels
	}
	if cap(r.buf) < n {
		r.buf = make([]float32, n)
	}
	buf := r.buf[:n]
	clear(buf)

	r.cb(buf)
	return Encode(out, buf, r.format.Sample)
}
