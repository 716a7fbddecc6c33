// SPDX-License-Identifier: EPL-2.0

package utils

// Int16ToFloat32 scales a signed 16-bit sample into [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// Clamp32 limits x to [-1, 1].
func Clamp32(x float32) float32 {
	if x > 1 {
		return 1
	} else if x < -1 {
		return -1
	}

	return x
}
