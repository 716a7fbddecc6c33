// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer maps the channels of src onto a different channel count.
//
//   - to mono: all input channels are averaged
//   - from mono: the single channel is copied to every output channel
//   - otherwise: channels are copied in order, missing outputs are silent
type ChannelMixer struct {
	src Stream
	out int
	tmp []float32
}

// NewChannelMixer returns a stream of src with channels output channels.
func NewChannelMixer(src Stream, channels int) *ChannelMixer {
	return &ChannelMixer{
		src: src,
		out: channels,
		tmp: make([]float32, 4096),
	}
}

// NewMonoMixer down-mixes src to a single channel.
func NewMonoMixer(src Stream) *ChannelMixer {
	return NewChannelMixer(src, 1)
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.out }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMixer) Frames() int64 {
	if l, ok := m.src.(Lengther); ok {
		return l.Frames()
	}
	return 0
}

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// ReadSamples fills dst with frames of m.Channels() samples each.
func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	in := m.src.Channels()
	if in == m.out {
		return m.src.ReadSamples(dst)
	}
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := len(dst) / m.out
	need := frames * in

	// grow but never shrink
	if cap(m.tmp) < need {
		m.tmp = make([]float32, max(need, 8192))
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / in

	switch {
	case m.out == 1:
		inv := float32(1) / float32(in)
		for f := range frames {
			sum := float32(0)
			base := f * in
			for c := range in {
				sum += m.tmp[base+c]
			}
			dst[f] = sum * inv
		}
	case in == 1:
		for f := range frames {
			v := m.tmp[f]
			base := f * m.out
			for c := range m.out {
				dst[base+c] = v
			}
		}
	default:
		for f := range frames {
			ib, ob := f*in, f*m.out
			for c := range m.out {
				if c < in {
					dst[ob+c] = m.tmp[ib+c]
				} else {
					dst[ob+c] = 0
				}
			}
		}
	}

	return frames * m.out, err
}
