// SPDX-License-Identifier: EPL-2.0

package audmux

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/utils"
)

// Convert drains src into interleaved 16-bit PCM at rate Hz with the given
// channel count. The resampler and channel mixer are only inserted when the
// source differs. bufferSize is the read batch in samples; it is rounded down
// to whole frames. src is not closed.
func Convert(src audio.Stream, rate, channels, bufferSize int) ([]int16, error) {
	if rate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("convert to %dHz/%dch: %w", rate, channels, ErrFormat)
	}

	var st audio.Stream = src
	if st.SampleRate() != rate {
		st = audio.NewResampler(st, rate)
	}
	if st.Channels() != channels {
		st = audio.NewChannelMixer(st, channels)
	}

	bufferSize -= bufferSize % channels
	if bufferSize <= 0 {
		bufferSize = st.BufSize() - st.BufSize()%channels
		if bufferSize <= 0 {
			bufferSize = 4096 * channels
		}
	}

	// estimate from the source length when it is known
	var pcm []int16
	if l, ok := st.(audio.Lengther); ok && l.Frames() > 0 {
		pcm = make([]int16, 0, int(l.Frames())*channels)
	}

	buf := make([]float32, bufferSize)
	for {
		n, err := st.ReadSamples(buf)
		for _, v := range buf[:n] {
			pcm = append(pcm, utils.Float32ToPCM16(v))
		}

		if errors.Is(err, io.EOF) {
			return pcm, nil
		}
		if err != nil {
			return pcm, fmt.Errorf("convert: %w", err)
		}
	}
}
