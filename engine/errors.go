// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrNoVoice is returned when every voice is bound and none can be evicted.
	ErrNoVoice = errors.New("no voice available")
	// ErrSoundUnavailable is returned when playing a sound whose asset failed to open.
	ErrSoundUnavailable = errors.New("sound unavailable")
	ErrSoundExists      = errors.New("sound already exists")
	ErrUnknownSound     = errors.New("unknown sound")
	ErrCategoryExists   = errors.New("category already exists")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrNoRegistry       = errors.New("decoder registry is required")
	ErrStarted          = errors.New("manager already started")
	ErrClosed           = errors.New("manager closed")
)
