// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

func Float32ToInt16(x float32) int16 {
	// Use 32767 for positive max to avoid overflow
	return int16(Clamp32(x) * 32767.0)
}

// Float32ToPCM16 is the inverse of Int16ToFloat32: it scales by 32768 and
// rounds, so decoded 16-bit PCM survives a float round trip unchanged.
func Float32ToPCM16(x float32) int16 {
	v := math.Round(float64(x) * 32768.0)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}

	return int16(v)
}
