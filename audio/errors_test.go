// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors_Wrapping(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []error{ErrInvalidDstSize, ErrUnknownFormat} {
		wrapped := fmt.Errorf("lookup %q: %w", "x.bin", sentinel)
		if !errors.Is(wrapped, sentinel) {
			t.Errorf("errors.Is(%v, %v) = false", wrapped, sentinel)
		}
	}

	if errors.Is(ErrInvalidDstSize, ErrUnknownFormat) {
		t.Error("distinct sentinels compare equal")
	}
}
