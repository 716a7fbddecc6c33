// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Oto plays through an oto context. The oto player pulls PCM from a reader
// that renders on demand. Only S16 and F32 are supported and oto allows one
// context per process.
type Oto struct {
	format Format
	logger *slog.Logger

	mu      sync.Mutex
	octx    *oto.Context
	player  *oto.Player
	started bool
}

func NewOto(f Format, logger *slog.Logger) *Oto {
	return &Oto{format: f, logger: logger}
}

func (o *Oto) Format() Format { return o.format }

func (o *Oto) Start(ctx context.Context, cb Callback) error {
	if err := o.format.Validate(); err != nil {
		return err
	}

	var format oto.Format
	switch o.format.Sample {
	case S16:
		format = oto.FormatSignedInt16LE
	case F32:
		format = oto.FormatFloat32LE
	default:
		return fmt.Errorf("%w: oto supports s16 and f32, got %v", ErrFormat, o.format.Sample)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return ErrStarted
	}

	octx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   o.format.SampleRate,
		ChannelCount: o.format.Channels,
		Format:       format,
		BufferSize:   o.format.BufferDuration(),
	})
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	o.octx = octx
	o.player = octx.NewPlayer(&pull{render: newRenderer(o.format, cb)})
	o.player.Play()
	o.started = true

	o.logger.Info("audio device started", "backend", "oto",
		"rate", o.format.SampleRate, "channels", o.format.Channels, "sample", o.format.Sample.String())

	go func() {
		<-ctx.Done()
		_ = o.Close()
	}()

	return nil
}

func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		return nil
	}

	if err := o.player.Close(); err != nil {
		o.logger.Warn("oto player close", "err", err)
	}
	if err := o.octx.Suspend(); err != nil {
		o.logger.Warn("oto suspend", "err", err)
	}

	o.player, o.started = nil, false
	return nil
}

// pull is an endless io.Reader over the mixer.
type pull struct {
	render renderer
}

func (p *pull) Read(b []byte) (int, error) {
	frameBytes := p.render.format.Channels * p.render.format.Sample.Bytes()
	frames := min(len(b)/frameBytes, p.render.format.BufferFrames)
	if frames == 0 {
		return 0, nil
	}

	return p.render.fill(b, frames), nil
}
