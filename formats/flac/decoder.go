// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmux/audio"
	goflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// frameParser is the part of flac.Stream used for decoding.
type frameParser interface {
	ParseNext() (*frame.Frame, error)
}

type source struct {
	dec        frameParser
	closer     io.Closer
	sampleRate int
	channels   int
	scale      float32
	bits       int
	frames     int64

	// current FLAC frame and the next sample index inside it
	cur *frame.Frame
	pos int
	eof bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Frames() int64   { return s.frames }
func (s *source) BitDepth() int   { return s.bits }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst) < s.channels {
		return 0, audio.ErrInvalidDstSize
	}

	written := 0
	for written+s.channels <= len(dst) {
		if s.cur == nil || s.pos >= int(s.cur.BlockSize) {
			if s.eof {
				break
			}
			f, err := s.dec.ParseNext()
			if errors.Is(err, io.EOF) {
				s.eof = true
				break
			}
			if err != nil {
				return written, fmt.Errorf("%w", err)
			}
			if len(f.Subframes) < s.channels {
				return written, ErrChannelMismatch
			}
			s.cur, s.pos = f, 0
		}

		for c := range s.channels {
			dst[written+c] = float32(s.cur.Subframes[c].Samples[s.pos]) / s.scale
		}
		written += s.channels
		s.pos++
	}

	if s.eof && (s.cur == nil || s.pos >= int(s.cur.BlockSize)) {
		return written, io.EOF
	}

	return written, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Stream, error) {
	stream, err := goflac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFLAC, err)
	}

	info := stream.Info
	return newSource(stream, stream, int(info.SampleRate), int(info.NChannels), int(info.BitsPerSample), int64(info.NSamples))
}

func newSource(dec frameParser, closer io.Closer, sampleRate, channels, bitsPerSample int, frames int64) (*source, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrNotFLAC
	}
	if bitsPerSample < 4 || bitsPerSample > 32 {
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bitsPerSample)
	}

	return &source{
		dec:        dec,
		closer:     closer,
		sampleRate: sampleRate,
		channels:   channels,
		scale:      float32(int64(1) << (bitsPerSample - 1)),
		bits:       bitsPerSample,
		frames:     frames,
	}, nil
}
