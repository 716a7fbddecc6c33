// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// mockMP3Reader serves 16-bit stereo PCM bytes, at most chunk bytes per Read.
type mockMP3Reader struct {
	sampleRate int
	data       []byte
	offset     int
	chunk      int
	err        error
}

func newMockReader(sampleRate int, samples []int16, chunk int) *mockMP3Reader {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, samples)
	return &mockMP3Reader{sampleRate: sampleRate, data: buf.Bytes(), chunk: chunk}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }
func (m *mockMP3Reader) Length() int64   { return int64(len(m.data)) }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.data) {
		return 0, io.EOF
	}
	if m.chunk > 0 && len(buf) > m.chunk {
		buf = buf[:m.chunk]
	}
	n := copy(buf, m.data[m.offset:])
	m.offset += n
	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader(nil)); !errors.Is(err, ErrNotMP3) {
		t.Errorf("Decode(empty) error = %v, want ErrNotMP3", err)
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, 32767, -32768, 1, 2, 3}

	tests := []struct {
		name    string
		chunk   int
		bufSize int
	}{
		{"whole reads", 0, 64},
		{"odd decoder chunks", 3, 4},
		{"one byte at a time", 1, 2},
		{"odd dst", 5, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &source{dec: newMockReader(44100, samples, tt.chunk)}
			if s.Channels() != 2 || s.SampleRate() != 44100 {
				t.Fatalf("format = %d/%d", s.SampleRate(), s.Channels())
			}
			if s.Frames() != int64(len(samples)/2) {
				t.Errorf("Frames() = %d, want %d", s.Frames(), len(samples)/2)
			}

			buf := make([]float32, tt.bufSize)
			var got []float32
			for {
				n, err := s.ReadSamples(buf)
				if n%2 != 0 {
					t.Fatalf("partial frame: n = %d", n)
				}
				got = append(got, buf[:n]...)
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatal(err)
				}
			}

			if len(got) != len(samples) {
				t.Fatalf("read %d samples, want %d", len(got), len(samples))
			}
			for i, v := range samples {
				if want := float32(v) / 32768; got[i] != want {
					t.Errorf("sample[%d] = %v, want %v", i, got[i], want)
				}
			}
		})
	}
}

func TestSource_DecodeError(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt frame")
	s := &source{dec: &mockMP3Reader{sampleRate: 44100, err: boom}}
	if _, err := s.ReadSamples(make([]float32, 8)); !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

func TestSource_InvalidDst(t *testing.T) {
	t.Parallel()

	s := &source{dec: newMockReader(44100, []int16{1, 2}, 0)}
	if _, err := s.ReadSamples(make([]float32, 1)); err == nil {
		t.Error("ReadSamples(len 1) error = nil, want error")
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 44100*2)
	buf := make([]float32, 4096)

	for b.Loop() {
		s := &source{dec: newMockReader(44100, samples, 0)}
		for {
			if _, err := s.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
