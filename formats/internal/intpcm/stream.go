// SPDX-License-Identifier: EPL-2.0

// Package intpcm adapts go-audio integer PCM decoders to audio.Stream.
package intpcm

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// Reader is the part of the go-audio wav and aiff decoders used here.
type Reader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Stream converts integer PCM from a Reader to float32.
type Stream struct {
	dec        Reader
	sampleRate int
	channels   int
	scale      float32
	bits       int
	offset     int // unsigned 8-bit PCM is centred on 128
	frames     int64
	intBuf     *goaudio.IntBuffer
	closer     io.Closer
	eof        bool
}

// Options describes the decoded PCM layout.
type Options struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Unsigned8  bool // 8-bit samples are unsigned (WAV)
	Frames     int64
	Closer     io.Closer
}

// New wraps dec. BitDepth must be 8, 16, 24 or 32.
func New(dec Reader, o Options) (*Stream, error) {
	s := &Stream{
		dec:        dec,
		sampleRate: o.SampleRate,
		channels:   o.Channels,
		frames:     o.Frames,
		closer:     o.Closer,
		bits:       o.BitDepth,
	}

	switch o.BitDepth {
	case 8:
		s.scale = 128
		if o.Unsigned8 {
			s.offset = 128
		}
	case 16:
		s.scale = 32768
	case 24:
		s.scale = 8388608
	case 32:
		s.scale = 2147483648
	default:
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, o.BitDepth)
	}

	if s.channels <= 0 || s.sampleRate <= 0 {
		return nil, ErrLayout
	}

	return s, nil
}

func (s *Stream) SampleRate() int { return s.sampleRate }
func (s *Stream) Channels() int   { return s.channels }
func (s *Stream) Frames() int64   { return s.frames }
func (s *Stream) BitDepth() int   { return s.bits }

func (s *Stream) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples decodes whole frames into dst.
func (s *Stream) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.eof {
		return 0, io.EOF
	}

	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, ErrShortBuffer
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, want),
			Format: s.dec.Format(),
		}
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.eof = true
	default:
		return 0, fmt.Errorf("%w", err)
	}

	n -= n % s.channels
	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]-s.offset) / s.scale
	}

	if n == 0 {
		s.eof = true
		return 0, io.EOF
	}
	if s.eof {
		return n, io.EOF
	}

	return n, nil
}
