// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding")
	ErrNoDataChunk         = errors.New("WAV data chunk not found")
	ErrChannels            = errors.New("channel count must be positive")
	ErrSampleCount         = errors.New("sample count is not a multiple of channels")
)
