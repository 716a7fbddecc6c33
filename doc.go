// SPDX-License-Identifier: EPL-2.0

// Package audmux is a sound manager for games and interactive programs: a
// fixed pool of voices shared between many sounds, mixed in real time into
// one output device.
//
// The pieces live in subpackages:
//   - audio: streams, the resampler, the channel mixer and ring buffers
//   - formats/...: WAV, AIFF, Ogg Vorbis, MP3 and FLAC decoders
//   - source: rewindable 16-bit PCM sources read from disk or memory
//   - backend: output devices (miniaudio, oto) and a headless ticker
//   - engine: the manager, sounds, categories, voices and the mixer
//
// This package wires them together with every bundled decoder.
//
// # Quick Start
//
//	b := backend.NewMalgo(backend.DefaultFormat, logger)
//	m, err := audmux.NewManager(b, engine.WithFS(os.DirFS("assets")))
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	if _, err := m.CreateSoundsFromPath("sfx", engine.DefaultCategory, "sfx/"); err != nil {
//		logger.Warn("some sounds failed", "err", err)
//	}
//	if err := m.Start(ctx); err != nil {
//		return err
//	}
//	m.Play("sfx/explosion", 0, false)
//
// # Offline Conversion
//
// Convert runs a decoded stream through the same resampler and channel mixer
// the engine uses and returns 16-bit PCM, ready for wav.WriteWAV16:
//
//	src, _ := mp3.Decoder{}.Decode(file)
//	pcm, err := audmux.Convert(src, 8000, 1, 4096)
package audmux
