// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/formats/internal/intpcm"
)

const formatPCM = 1

type Decoder struct{}

// Decode parses the RIFF header and positions the stream on the data chunk.
// Unknown chunks before "data" are skipped.
func (Decoder) Decode(r io.Reader) (audio.Stream, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio needs to seek over chunks
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDataChunk, err)
	}

	channels := int(dec.NumChans)
	bytesPerFrame := channels * int(dec.BitDepth) / 8
	frames := int64(0)
	if bytesPerFrame > 0 {
		frames = dataSize(rs, int64(dec.PCMSize)) / int64(bytesPerFrame)
	}

	s, err := intpcm.New(dec, intpcm.Options{
		SampleRate: int(dec.SampleRate),
		Channels:   channels,
		BitDepth:   int(dec.BitDepth),
		Unsigned8:  true,
		Frames:     frames,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedEncoding, err)
	}

	return s, nil
}

// dataSize clamps the data chunk size from the header to the bytes left in
// rs, which sits at the start of the samples. Truncated files are common.
func dataSize(rs io.Seeker, declared int64) int64 {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return declared
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if _, serr := rs.Seek(pos, io.SeekStart); err != nil || serr != nil {
		return declared
	}

	return min(declared, end-pos)
}
