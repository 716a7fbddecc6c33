// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/internal/audiotest"
)

func readAll(s audio.Stream) int {
	buf := make([]float32, 4096*s.Channels())
	total := 0
	for {
		n, err := s.ReadSamples(buf)
		total += n
		if err != nil || n == 0 {
			return total
		}
	}
}

// Example_resampler converts a 44.1kHz stream to 16kHz.
func Example_resampler() {
	src := audiotest.NewSineStream(44100, 1, 44100, 440.0)
	r := audio.NewResampler(src, 16000)

	samples := readAll(r)

	fmt.Printf("rate=%d channels=%d\n", r.SampleRate(), r.Channels())
	fmt.Printf("duration=%.1fs\n", float64(samples)/float64(r.SampleRate()))
	// Output:
	// rate=16000 channels=1
	// duration=1.0s
}

// Example_channelMixer up-mixes mono to stereo for a stereo device.
func Example_channelMixer() {
	src := audiotest.NewConstantStream(48000, 1, 4, 0.25)
	stereo := audio.NewChannelMixer(src, 2)

	buf := make([]float32, 8)
	n, _ := stereo.ReadSamples(buf)

	fmt.Println(stereo.Channels(), n, buf[:n])
	// Output:
	// 2 8 [0.25 0.25 0.25 0.25 0.25 0.25 0.25 0.25]
}

// Example_processingChain resamples then down-mixes.
func Example_processingChain() {
	src := audiotest.NewSineStream(44100, 2, 44100, 440.0)
	mono := audio.NewMonoMixer(audio.NewResampler(src, 8000))

	samples := readAll(mono)

	fmt.Printf("rate=%d channels=%d duration=%.1fs\n",
		mono.SampleRate(), mono.Channels(), float64(samples)/float64(mono.SampleRate()))
	// Output:
	// rate=8000 channels=1 duration=1.0s
}

type toneDecoder struct{}

func (toneDecoder) Decode(io.Reader) (audio.Stream, error) {
	return audiotest.NewSineStream(16000, 1, 1000, 440.0), nil
}

// Example_registry resolves decoders by file extension.
func Example_registry() {
	registry := audio.NewRegistry()
	registry.Register("tone", toneDecoder{})

	d, err := registry.Lookup("sfx/beep.TONE")
	fmt.Printf("%T %v\n", d, err)

	_, err = registry.Lookup("music.xm")
	fmt.Println(errors.Is(err, audio.ErrUnknownFormat))
	// Output:
	// audio_test.toneDecoder <nil>
	// true
}

// Example_ringBuffer shows the producer/consumer handoff used per voice.
func Example_ringBuffer() {
	rb := audio.NewRingBuffer(4)

	stored := rb.Write([]float32{1, 2, 3, 4, 5})
	out := make([]float32, 3)
	read := rb.Read(out)

	fmt.Println(stored, read, out, rb.Available(), rb.Free())
	// Output:
	// 4 3 [1 2 3] 1 3
}
