// SPDX-License-Identifier: EPL-2.0

package backend

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ik5/audmux/utils"
)

// SampleFormat is the device sample encoding.
type SampleFormat int

const (
	S16 SampleFormat = iota
	S24
	S32
	F32
)

func (s SampleFormat) String() string {
	switch s {
	case S16:
		return "s16"
	case S24:
		return "s24"
	case S32:
		return "s32"
	case F32:
		return "f32"
	}
	return fmt.Sprintf("SampleFormat(%d)", int(s))
}

// ParseSampleFormat is the inverse of SampleFormat.String.
func ParseSampleFormat(s string) (SampleFormat, error) {
	for _, f := range []SampleFormat{S16, S24, S32, F32} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: sample format %q", ErrFormat, s)
}

// Bytes per sample.
func (s SampleFormat) Bytes() int {
	switch s {
	case S16:
		return 2
	case S24:
		return 3
	default:
		return 4
	}
}

// Format of the device stream.
type Format struct {
	SampleRate int
	Channels   int
	// BufferFrames is the number of frames rendered per callback.
	BufferFrames int
	Sample       SampleFormat
}

// DefaultFormat is 48kHz stereo s16 with 10ms buffers.
var DefaultFormat = Format{SampleRate: 48000, Channels: 2, BufferFrames: 480, Sample: S16}

func (f Format) Validate() error {
	switch {
	case f.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrFormat, f.SampleRate)
	case f.Channels <= 0:
		return fmt.Errorf("%w: channels %d", ErrFormat, f.Channels)
	case f.BufferFrames <= 0:
		return fmt.Errorf("%w: buffer frames %d", ErrFormat, f.BufferFrames)
	case f.Sample < S16 || f.Sample > F32:
		return fmt.Errorf("%w: %v", ErrFormat, f.Sample)
	}
	return nil
}

// BufferDuration is the wall time covered by one callback.
func (f Format) BufferDuration() time.Duration {
	return time.Duration(f.BufferFrames) * time.Second / time.Duration(f.SampleRate)
}

// Callback renders len(out)/Channels frames of interleaved float32.
// It is called from the device thread and must not block.
type Callback func(out []float32)

// Backend drives a Callback at the device rate.
type Backend interface {
	Format() Format
	// Start begins calling cb. The backend stops when ctx is done or on Close.
	Start(ctx context.Context, cb Callback) error
	Close() error
}

// Encode writes src to dst as little-endian samples in format f and returns
// the number of bytes written. dst must hold len(src)*f.Bytes() bytes.
func Encode(dst []byte, src []float32, f SampleFormat) int {
	switch f {
	case S16:
		for i, v := range src {
			binary.LittleEndian.PutUint16(dst[2*i:], uint16(utils.Float32ToInt16(v)))
		}
	case S24:
		for i, v := range src {
			s := int32(float64(utils.Clamp32(v)) * 8388607)
			dst[3*i] = byte(s)
			dst[3*i+1] = byte(s >> 8)
			dst[3*i+2] = byte(s >> 16)
		}
	case S32:
		for i, v := range src {
			s := int32(float64(utils.Clamp32(v)) * math.MaxInt32)
			binary.LittleEndian.PutUint32(dst[4*i:], uint32(s))
		}
	case F32:
		for i, v := range src {
			binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(utils.Clamp32(v)))
		}
	}

	return len(src) * f.Bytes()
}
