// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/backend"
	"github.com/ik5/audmux/source"
	"github.com/ik5/audmux/utils"
)

// maxLoopRewinds bounds consecutive empty reads of a looping source, so a
// zero-length asset ends instead of spinning.
const maxLoopRewinds = 2

// pcmStream reads 16-bit PCM from a Source as float32 and loops it on demand.
type pcmStream struct {
	src     source.Source
	info    source.Info
	looping *atomic.Bool
	raw     []byte
	eof     bool
}

func newPCMStream(src source.Source, looping *atomic.Bool) *pcmStream {
	return &pcmStream{src: src, info: src.Info(), looping: looping}
}

func (p *pcmStream) SampleRate() int { return p.info.SamplingRate }
func (p *pcmStream) Channels() int   { return p.info.Channels }
func (p *pcmStream) BufSize() int    { return source.ChunkSize / 2 }
func (p *pcmStream) Close() error    { return p.src.Close() }

func (p *pcmStream) ReadSamples(dst []float32) (int, error) {
	if p.eof {
		return 0, io.EOF
	}

	ch := p.info.Channels
	want := (len(dst) - len(dst)%ch) * 2
	if want == 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if cap(p.raw) < want {
		p.raw = make([]byte, want)
	}
	raw := p.raw[:want]

	for empty := 0; ; {
		n, err := p.src.LoadChunk(raw)
		if err != nil {
			p.eof = true
			return 0, err
		}

		n -= n % (ch * 2)
		if n > 0 {
			for i := range n / 2 {
				dst[i] = utils.Int16ToFloat32(int16(binary.NativeEndian.Uint16(raw[2*i:])))
			}
			return n / 2, nil
		}

		if !p.looping.Load() || empty >= maxLoopRewinds {
			p.eof = true
			return 0, io.EOF
		}
		if err := p.src.Rewind(); err != nil {
			p.eof = true
			return 0, err
		}
		empty++
	}
}

// feed is the decode pipeline of one bound voice. A new feed is built for
// every start from the beginning and retired when the voice is unbound.
type feed struct {
	mu      sync.Mutex // guards src, stream, buf and closed
	src     source.Source
	stream  audio.Stream
	buf     []float32
	closed  bool
	managed bool

	channels int
	ring     *audio.RingBuffer
	looping  atomic.Bool
	eof      atomic.Bool
}

// newFeed opens src and converts it to the device format. It does I/O and
// must not be called with the manager lock held.
func newFeed(src source.Source, f backend.Format, buffers int, managed, looping bool) (*feed, error) {
	if err := src.Open(); err != nil {
		return nil, err
	}

	fd := &feed{src: src, managed: managed, channels: f.Channels}
	fd.looping.Store(looping)

	var st audio.Stream = newPCMStream(src, &fd.looping)
	if st.SampleRate() != f.SampleRate {
		st = audio.NewResampler(st, f.SampleRate)
	}
	if st.Channels() != f.Channels {
		st = audio.NewChannelMixer(st, f.Channels)
	}
	fd.stream = st

	size := buffers * f.BufferFrames * f.Channels
	fd.ring = audio.NewRingBuffer(size)
	batch := min(size, max(f.BufferFrames*f.Channels, source.ChunkSize))
	fd.buf = make([]float32, batch-batch%f.Channels)

	if _, err := fd.fill(); err != nil {
		_ = src.Close()
		return nil, err
	}

	return fd, nil
}

// fill decodes until the ring is full or the stream ends. Caller holds mu
// unless the feed is not yet shared.
func (fd *feed) fill() (int, error) {
	if fd.closed || fd.eof.Load() {
		return 0, nil
	}

	total := 0
	for {
		free := fd.ring.Free()
		free -= free % fd.channels
		if free == 0 {
			return total, nil
		}

		n, err := fd.stream.ReadSamples(fd.buf[:min(free, len(fd.buf))])
		fd.ring.Write(fd.buf[:n])
		total += n

		if errors.Is(err, io.EOF) {
			fd.eof.Store(true)
			return total, nil
		}
		if err != nil {
			fd.eof.Store(true)
			return total, fmt.Errorf("decode: %w", err)
		}
		if n == 0 {
			return total, nil
		}
	}
}

// close releases the source. Safe to call more than once.
func (fd *feed) close() error {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.closed {
		return nil
	}
	fd.closed = true
	fd.eof.Store(true)

	return fd.src.Close()
}
