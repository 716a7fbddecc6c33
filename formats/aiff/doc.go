// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF (Audio Interchange File Format) files through
// github.com/go-audio/aiff.
//
// Big-endian integer PCM of 8, 16, 24 or 32 bits is converted to float32 in
// [-1.0, 1.0]. The stream reports its length from the COMM chunk.
//
//	s, err := aiff.Decoder{}.Decode(f)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // not an AIFF file
//	}
//
// Inputs that are not an io.ReadSeeker are read into memory first.
package aiff
