// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg/Vorbis streams through
// github.com/jfreymuth/oggvorbis.
//
// Vorbis decodes to float32 natively, so samples are passed through without
// conversion. The stream length comes from the last Ogg granule position.
//
//	s, err := vorbis.Decoder{}.Decode(f)
//	frames := s.(audio.Lengther).Frames()
package vorbis
