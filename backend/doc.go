// SPDX-License-Identifier: EPL-2.0

// Package backend connects the mixer to an output.
//
// A Backend owns the device clock and calls a Callback whenever it needs
// another buffer of interleaved float32 frames. The backend encodes the
// result to the device sample format.
//
//   - Malgo: miniaudio through github.com/gen2brain/malgo, device-thread callback
//   - Oto: github.com/ebitengine/oto/v3, the player pulls from the mixer
//   - Ticker: no device, timer driven or stepped by hand
package backend
