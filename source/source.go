// SPDX-License-Identifier: EPL-2.0

package source

import (
	"encoding/binary"
	"io"
)

// ChunkSize is the decode batch, in bytes, used by Load and LoadChunk.
const ChunkSize = 4096

// BitsPerSample of every Source. Decoders of other depths are converted.
const BitsPerSample = 16

// BufferMode selects how a category's voices get their audio.
type BufferMode int

const (
	// Streamed voices decode ahead from their own open Source.
	Streamed BufferMode = iota
	// Managed voices share one fully decoded Memory image.
	Managed
)

func (b BufferMode) String() string {
	if b == Managed {
		return "managed"
	}
	return "streamed"
}

// Mode selects where a File reads its encoded bytes from.
type Mode int

const (
	// Disk reads from the file system on demand.
	Disk Mode = iota
	// RAM copies the encoded file into memory at Open.
	RAM
)

func (m Mode) String() string {
	if m == RAM {
		return "ram"
	}
	return "disk"
}

// Info describes the PCM a Source delivers.
type Info struct {
	Channels      int
	SamplingRate  int
	BitsPerSample int
	// SourceBits is the sample depth of the encoded asset, 0 when the
	// format has none (mp3, vorbis).
	SourceBits int
	// Size in bytes of the whole decoded asset.
	Size int64
	// Duration in seconds.
	Duration float64
}

// FrameSize is the number of bytes per frame.
func (i Info) FrameSize() int {
	return i.Channels * i.BitsPerSample / 8
}

// Frames is the number of frames in the asset.
func (i Info) Frames() int64 {
	fs := i.FrameSize()
	if fs == 0 {
		return 0
	}
	return i.Size / int64(fs)
}

func newInfo(channels, rate int, size int64) Info {
	info := Info{
		Channels:      channels,
		SamplingRate:  rate,
		BitsPerSample: BitsPerSample,
		Size:          size,
	}
	if bps := int64(rate) * int64(info.FrameSize()); bps > 0 {
		info.Duration = float64(size) / float64(bps)
	}
	return info
}

// Source is a rewindable producer of native-endian signed 16-bit PCM.
type Source interface {
	Filename() string
	// Open prepares the asset for reading. A failed Open leaves the source closed.
	Open() error
	// Close is idempotent.
	Close() error
	// Rewind restarts decoding from the first frame. The source must be open.
	Rewind() error
	// Load writes all remaining audio to w.
	Load(w io.Writer) error
	// LoadChunk fills up to len(dst) bytes. 0, nil marks the end of the stream.
	LoadChunk(dst []byte) (int, error)
	IsOpen() bool
	Info() Info
}

var bigEndian = binary.NativeEndian.Uint16([]byte{0x12, 0x34}) == 0x1234

// NormalizeEndian converts little-endian 16-bit samples in place to the host
// byte order. It does nothing on little-endian hosts.
func NormalizeEndian(b []byte) {
	if !bigEndian {
		return
	}
	swap16(b)
}

func swap16(b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
}

// load drains src into w in ChunkSize pieces.
func load(src Source, w io.Writer) error {
	buf := make([]byte, ChunkSize)
	for {
		n, err := src.LoadChunk(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}
