// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC files through github.com/mewkiz/flac.
//
// Samples of any bit depth from 4 to 32 are scaled to float32 in [-1.0, 1.0].
// The length comes from the STREAMINFO block and is 0 when the encoder left
// it unset.
//
//	s, err := flac.Decoder{}.Decode(f)
package flac
