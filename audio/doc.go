// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM building blocks the mixer is made of.
//
//   - Stream: a decoded, interleaved float32 PCM source
//   - Resampler: sample rate conversion with cubic interpolation
//   - ChannelMixer: mono/stereo/multichannel mapping
//   - RingBuffer: per-voice handoff between the decoder and the mixer
//   - Registry: decoders keyed by file extension
//
// # Stream
//
//	type Stream interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Streams that know their length up front also implement Lengther.
// Processors wrap a Stream and are Streams themselves, so a voice
// pipeline is just a chain:
//
//	s := audio.NewChannelMixer(audio.NewResampler(dec, 48000), 2)
//
// # Samples
//
// Samples are float32 in [-1.0, 1.0]. ReadSamples returns the number of
// values written, not frames. io.EOF marks the end of the stream and may be
// returned together with the last samples.
//
//	for {
//	    n, err := s.ReadSamples(buf)
//	    consume(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
//
// # Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	dec, err := registry.Lookup("sfx/click.wav")
//
// Keys are case-insensitive.
package audio
