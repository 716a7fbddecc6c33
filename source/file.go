// SPDX-License-Identifier: EPL-2.0

package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/utils"
)

// File decodes an asset from an fs.FS with the decoder registered for its
// extension.
type File struct {
	fsys fs.FS
	name string
	reg  *audio.Registry
	mode Mode

	dec    audio.Decoder
	file   fs.File
	rs     io.ReadSeeker
	stream audio.Stream
	info   Info
	open   bool
	read   int64 // bytes handed out since Open or Rewind

	fbuf    []float32
	pbuf    []byte
	pending []byte // encoded bytes not yet handed out
}

// NewFile does not touch the file system; call Open.
func NewFile(fsys fs.FS, name string, reg *audio.Registry, mode Mode) *File {
	return &File{fsys: fsys, name: name, reg: reg, mode: mode}
}

func (f *File) Filename() string { return f.name }
func (f *File) IsOpen() bool     { return f.open }
func (f *File) Info() Info       { return f.info }

// hides Close from decoders that close their input
type readSeeker struct{ io.ReadSeeker }

func (f *File) Open() error {
	if f.open {
		return nil
	}

	dec, err := f.reg.Lookup(f.name)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrOpen, f.name, err)
	}
	f.dec = dec

	file, err := f.fsys.Open(f.name)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrOpen, f.name, err)
	}

	rs, seekable := file.(io.ReadSeeker)
	if f.mode == RAM || !seekable {
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return fmt.Errorf("%w %q: %w", ErrOpen, f.name, err)
		}
		file, rs = nil, bytes.NewReader(data)
	}
	f.file, f.rs = file, rs

	if err := f.decode(); err != nil {
		f.release()
		return fmt.Errorf("%w %q: %w", ErrOpen, f.name, err)
	}

	channels, rate := f.stream.Channels(), f.stream.SampleRate()
	f.info = newInfo(channels, rate, 0)
	if b, ok := f.stream.(audio.BitDepther); ok {
		f.info.SourceBits = b.BitDepth()
	}
	f.open = true
	f.read = 0

	var frames int64
	if l, ok := f.stream.(audio.Lengther); ok {
		frames = l.Frames()
	}
	if frames > 0 {
		f.resize(frames * int64(f.info.FrameSize()))
		return nil
	}

	// length unknown up front: count it
	var counter countWriter
	if err := f.Load(&counter); err != nil {
		f.release()
		return fmt.Errorf("%w %q: %w", ErrOpen, f.name, err)
	}
	f.resize(counter.n)

	if err := f.Rewind(); err != nil {
		f.release()
		return fmt.Errorf("%w %q: %w", ErrOpen, f.name, err)
	}

	return nil
}

func (f *File) decode() error {
	stream, err := f.dec.Decode(readSeeker{f.rs})
	if err != nil {
		return err
	}
	if stream.Channels() <= 0 || stream.SampleRate() <= 0 {
		_ = stream.Close()
		return ErrLayout
	}

	f.stream = stream
	f.pending = f.pending[:0]
	// whole frames per batch
	n := ChunkSize / 2
	f.fbuf = make([]float32, n-n%stream.Channels())
	if f.pbuf == nil {
		f.pbuf = make([]byte, ChunkSize)
	}

	return nil
}

func (f *File) Close() error {
	if !f.open {
		return nil
	}
	return f.release()
}

func (f *File) release() error {
	var errs []error
	if f.stream != nil {
		errs = append(errs, f.stream.Close())
	}
	if f.file != nil {
		errs = append(errs, f.file.Close())
	}
	f.stream, f.file, f.rs = nil, nil, nil
	f.open = false
	f.pending = nil

	return errors.Join(errs...)
}

func (f *File) Rewind() error {
	if !f.open {
		return ErrNotOpen
	}

	if _, err := f.rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind %q: %w", f.name, err)
	}
	_ = f.stream.Close()

	if err := f.decode(); err != nil {
		return fmt.Errorf("rewind %q: %w", f.name, err)
	}
	f.read = 0

	return nil
}

// resize replaces the decoded size, keeping the layout.
func (f *File) resize(size int64) {
	bits := f.info.SourceBits
	f.info = newInfo(f.info.Channels, f.info.SamplingRate, size)
	f.info.SourceBits = bits
}

func (f *File) Load(w io.Writer) error {
	if !f.open {
		return ErrNotOpen
	}
	return load(f, w)
}

func (f *File) LoadChunk(dst []byte) (int, error) {
	if !f.open {
		return 0, ErrNotOpen
	}

	written := 0
	for written < len(dst) {
		if len(f.pending) == 0 {
			n, err := f.fill()
			if err != nil {
				return written, err
			}
			if n == 0 {
				// a header may promise more than the file holds
				if end := f.read + int64(written); end < f.info.Size {
					f.resize(end)
				}
				break
			}
		}

		c := copy(dst[written:], f.pending)
		f.pending = f.pending[c:]
		written += c
	}
	f.read += int64(written)

	return written, nil
}

// fill decodes one batch into pending and returns its size in bytes.
func (f *File) fill() (int, error) {
	n, err := f.stream.ReadSamples(f.fbuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decode %q: %w", f.name, err)
	}
	n -= n % f.info.Channels

	buf := f.pbuf[:n*2]
	for i, v := range f.fbuf[:n] {
		s := uint16(utils.Float32ToPCM16(v))
		buf[2*i] = byte(s)
		buf[2*i+1] = byte(s >> 8)
	}
	NormalizeEndian(buf)
	f.pending = buf

	return len(buf), nil
}

type countWriter struct{ n int64 }

func (c *countWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
