// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// Ticker renders without a device. With a positive interval Start renders a
// buffer per tick; with interval 0 buffers are rendered only by Step, which
// suits offline rendering and tests. Rendered buffers are encoded and written
// to w when w is not nil.
type Ticker struct {
	format   Format
	w        io.Writer
	interval time.Duration

	mu     sync.Mutex
	render *renderer
	out    []byte
	wg     sync.WaitGroup
	stop   context.CancelFunc
	err    error
}

// NewTicker returns a Ticker. Pass f.BufferDuration() as interval for real time.
func NewTicker(f Format, w io.Writer, interval time.Duration) *Ticker {
	return &Ticker{format: f, w: w, interval: interval}
}

func (t *Ticker) Format() Format { return t.format }

func (t *Ticker) Start(ctx context.Context, cb Callback) error {
	if err := t.format.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.render != nil {
		return ErrStarted
	}

	r := newRenderer(t.format, cb)
	t.render = &r
	t.out = make([]byte, t.format.BufferFrames*t.format.Channels*t.format.Sample.Bytes())

	if t.interval <= 0 {
		return nil
	}

	ctx, t.stop = context.WithCancel(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		tick := time.NewTicker(t.interval)
		defer tick.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				if err := t.Step(); err != nil {
					return
				}
			}
		}
	}()

	return nil
}

// Step renders one buffer.
func (t *Ticker) Step() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.render == nil {
		return ErrNotStarted
	}
	if t.err != nil {
		return t.err
	}

	n := t.render.fill(t.out, t.format.BufferFrames)
	if t.w == nil {
		return nil
	}
	if _, err := t.w.Write(t.out[:n]); err != nil {
		t.err = fmt.Errorf("ticker write: %w", err)
		return t.err
	}

	return nil
}

func (t *Ticker) Close() error {
	t.mu.Lock()
	stop := t.stop
	t.stop = nil
	t.mu.Unlock()

	if stop != nil {
		stop()
	}
	t.wg.Wait()

	return nil
}
