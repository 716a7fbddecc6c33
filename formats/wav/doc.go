// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes RIFF/WAVE files.
//
// Decoding goes through github.com/go-audio/wav, so files with LIST, fact or
// other chunks before the data chunk are accepted. Integer PCM of 8, 16, 24
// and 32 bits is supported in any channel layout. The returned stream knows
// its length (audio.Lengther).
//
//	s, err := wav.Decoder{}.Decode(f)
//	buf := make([]float32, 4096)
//	n, err := s.ReadSamples(buf)
//
// WriteWAV16 writes interleaved int16 samples with a canonical 44-byte header.
// The offline renderer uses it to dump a mix:
//
//	err := wav.WriteWAV16(f, 48000, 2, samples)
package wav
