// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	ErrNotFLAC         = errors.New("not a FLAC stream")
	ErrBitDepth        = errors.New("unsupported FLAC bit depth")
	ErrChannelMismatch = errors.New("FLAC frame has fewer subframes than channels")
)
