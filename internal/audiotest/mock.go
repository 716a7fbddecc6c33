// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides deterministic audio fixtures for tests.
package audiotest

import (
	"io"
	"math"
)

// MockStream generates frames from a waveform function.
// It implements audio.Stream and audio.Lengther without importing them.
type MockStream struct {
	sampleRate  int
	channels    int
	totalFrames int
	generated   int
	waveform    func(frame int, channel int) float32
}

// NewMockStream creates a stream of totalFrames frames produced by waveform.
func NewMockStream(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockStream {
	return &MockStream{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentStream generates silence.
func NewSilentStream(sampleRate, channels, totalFrames int) *MockStream {
	return NewConstantStream(sampleRate, channels, totalFrames, 0)
}

// NewSineStream generates a sine wave at frequency Hz on every channel.
func NewSineStream(sampleRate, channels, totalFrames int, frequency float64) *MockStream {
	return NewMockStream(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantStream generates a constant value.
func NewConstantStream(sampleRate, channels, totalFrames int, value float32) *MockStream {
	return NewMockStream(sampleRate, channels, totalFrames, func(int, int) float32 {
		return value
	})
}

func (m *MockStream) SampleRate() int { return m.sampleRate }
func (m *MockStream) Channels() int   { return m.channels }
func (m *MockStream) BufSize() int    { return 4096 }
func (m *MockStream) Close() error    { return nil }
func (m *MockStream) Frames() int64   { return int64(m.totalFrames) }

// Reset rewinds the generator.
func (m *MockStream) Reset() {
	m.generated = 0
}

func (m *MockStream) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalFrames-m.generated)
	for f := range frames {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}
	m.generated += frames

	if m.generated >= m.totalFrames {
		return frames * m.channels, io.EOF
	}

	return frames * m.channels, nil
}
