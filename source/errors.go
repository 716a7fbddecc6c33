// SPDX-License-Identifier: EPL-2.0

package source

import "errors"

var (
	// ErrOpen wraps every failure to open an asset.
	ErrOpen    = errors.New("cannot open audio source")
	ErrNotOpen = errors.New("audio source is not open")
	ErrLayout  = errors.New("decoder reported an invalid PCM layout")
)
