// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III through github.com/hajimehoshi/go-mp3.
//
// go-mp3 always outputs 16-bit stereo, mono files included, so Channels()
// is always 2. The length is known when the input is an io.Seeker.
//
//	s, err := mp3.Decoder{}.Decode(f)
package mp3
