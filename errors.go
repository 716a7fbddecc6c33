// SPDX-License-Identifier: EPL-2.0

package audmux

import "errors"

// ErrFormat is returned for a non-positive rate or channel count.
var ErrFormat = errors.New("invalid output format")
