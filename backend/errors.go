// SPDX-License-Identifier: EPL-2.0

package backend

import "errors"

var (
	ErrFormat     = errors.New("invalid device format")
	ErrStarted    = errors.New("backend already started")
	ErrNotStarted = errors.New("backend not started")
)
