// SPDX-License-Identifier: EPL-2.0

package source

import (
	"bytes"
	"fmt"
	"io"
)

// Memory is a fully decoded PCM image. The bytes are never modified, so
// clones can share them.
type Memory struct {
	name string
	data []byte
	info Info
	pos  int
	open bool
}

// NewMemory wraps native-endian 16-bit PCM.
func NewMemory(name string, channels, sampleRate int, pcm []byte) *Memory {
	return &Memory{
		name: name,
		data: pcm,
		info: newInfo(channels, sampleRate, int64(len(pcm))),
	}
}

// LoadMemory decodes all of src. src is opened if needed and rewound first.
func LoadMemory(src Source) (*Memory, error) {
	if !src.IsOpen() {
		if err := src.Open(); err != nil {
			return nil, err
		}
	} else if err := src.Rewind(); err != nil {
		return nil, err
	}

	info := src.Info()
	buf := bytes.NewBuffer(make([]byte, 0, info.Size))
	if err := src.Load(buf); err != nil {
		return nil, fmt.Errorf("load %q: %w", src.Filename(), err)
	}

	m := NewMemory(src.Filename(), info.Channels, info.SamplingRate, buf.Bytes())
	m.info.SourceBits = info.SourceBits
	return m, nil
}

// Clone returns a closed Memory sharing the PCM with its own read position.
func (m *Memory) Clone() *Memory {
	return &Memory{name: m.name, data: m.data, info: m.info}
}

func (m *Memory) Filename() string { return m.name }
func (m *Memory) IsOpen() bool     { return m.open }
func (m *Memory) Info() Info       { return m.info }

// Bytes returns the shared PCM. Callers must not modify it.
func (m *Memory) Bytes() []byte { return m.data }

func (m *Memory) Open() error {
	m.open = true
	m.pos = 0
	return nil
}

func (m *Memory) Close() error {
	m.open = false
	return nil
}

func (m *Memory) Rewind() error {
	if !m.open {
		return ErrNotOpen
	}
	m.pos = 0
	return nil
}

func (m *Memory) Load(w io.Writer) error {
	if !m.open {
		return ErrNotOpen
	}
	return load(m, w)
}

func (m *Memory) LoadChunk(dst []byte) (int, error) {
	if !m.open {
		return 0, ErrNotOpen
	}
	n := copy(dst, m.data[m.pos:])
	m.pos += n
	return n, nil
}
