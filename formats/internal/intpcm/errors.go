// SPDX-License-Identifier: EPL-2.0

package intpcm

import "errors"

var (
	ErrBitDepth    = errors.New("unsupported PCM bit depth")
	ErrLayout      = errors.New("invalid PCM layout")
	ErrShortBuffer = errors.New("dst shorter than one frame")
)
