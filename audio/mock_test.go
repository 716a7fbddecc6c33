// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// mockStream generates frames from a waveform function.
type mockStream struct {
	sampleRate  int
	channels    int
	totalFrames int
	generated   int
	waveform    func(frame int, channel int) float32
	closed      bool
}

func newMockStream(sampleRate, channels, totalFrames int, waveform func(frame, channel int) float32) *mockStream {
	return &mockStream{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

func newSilentStream(sampleRate, channels, totalFrames int) *mockStream {
	return newConstantStream(sampleRate, channels, totalFrames, 0)
}

func newConstantStream(sampleRate, channels, totalFrames int, value float32) *mockStream {
	return newMockStream(sampleRate, channels, totalFrames, func(int, int) float32 { return value })
}

func newSineStream(sampleRate, channels, totalFrames int, frequency float64) *mockStream {
	return newMockStream(sampleRate, channels, totalFrames, func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func (m *mockStream) SampleRate() int { return m.sampleRate }
func (m *mockStream) Channels() int   { return m.channels }
func (m *mockStream) BufSize() int    { return 4096 }
func (m *mockStream) Frames() int64   { return int64(m.totalFrames) }
func (m *mockStream) Close() error    { m.closed = true; return nil }

func (m *mockStream) ReadSamples(dst []float32) (int, error) {
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

// drain reads s to the end and returns every sample.
func drain(s Stream, bufSize int) ([]float32, error) {
	buf := make([]float32, bufSize)
	var out []float32
	for {
		n, err := s.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		if n == 0 {
			return out, nil
		}
	}
}
