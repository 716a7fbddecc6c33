// SPDX-License-Identifier: EPL-2.0

package source

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ik5/audmux/internal/audiotest"
)

func TestLoadMemory(t *testing.T) {
	t.Parallel()

	samples := audiotest.Ramp(4000, 2)
	file := NewFile(testFS(samples, 2), "sfx/ramp.wav", testRegistry(), Disk)

	mem, err := LoadMemory(file)
	if err != nil {
		t.Fatalf("LoadMemory() error = %v", err)
	}
	if !bytes.Equal(mem.Bytes(), pcm(samples)) {
		t.Error("memory image differs from the file")
	}
	if mem.Info() != file.Info() {
		t.Errorf("Info() = %+v, want %+v", mem.Info(), file.Info())
	}
	if mem.Filename() != "sfx/ramp.wav" {
		t.Errorf("Filename() = %q", mem.Filename())
	}

	// a second load of the same, already open, file rewinds first
	again, err := LoadMemory(file)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again.Bytes(), mem.Bytes()) {
		t.Error("second LoadMemory differs")
	}
}

func TestLoadMemory_OpenFailure(t *testing.T) {
	t.Parallel()

	file := NewFile(testFS(nil, 1), "sfx/bad.wav", testRegistry(), Disk)
	if _, err := LoadMemory(file); !errors.Is(err, ErrOpen) {
		t.Errorf("error = %v, want ErrOpen", err)
	}
}

func TestMemory_CloneIndependence(t *testing.T) {
	t.Parallel()

	data := pcm(audiotest.Ramp(100, 1))
	tmpl := NewMemory("ramp", 1, 8000, data)

	a, b := tmpl.Clone(), tmpl.Clone()
	if a.IsOpen() {
		t.Fatal("clone is open")
	}
	_ = a.Open()
	_ = b.Open()

	if _, err := a.LoadChunk(make([]byte, 150)); err != nil {
		t.Fatal(err)
	}

	got := readChunks(t, b, 64)
	if !bytes.Equal(got, data) {
		t.Error("clone b was affected by reads on clone a")
	}

	rest := readChunks(t, a, 64)
	if !bytes.Equal(rest, data[150:]) {
		t.Error("clone a lost its position")
	}

	if &a.Bytes()[0] != &tmpl.Bytes()[0] {
		t.Error("clone copied the PCM")
	}
}

func TestMemory_RewindAndClose(t *testing.T) {
	t.Parallel()

	m := NewMemory("x", 1, 8000, []byte{1, 2, 3, 4})

	if err := m.Rewind(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Rewind() closed error = %v, want ErrNotOpen", err)
	}

	_ = m.Open()
	first := readChunks(t, m, 3)
	if err := m.Rewind(); err != nil {
		t.Fatal(err)
	}
	second := readChunks(t, m, 1)
	if !bytes.Equal(first, second) {
		t.Errorf("rewind: %v vs %v", first, second)
	}

	_ = m.Close()
	if _, err := m.LoadChunk(make([]byte, 2)); !errors.Is(err, ErrNotOpen) {
		t.Errorf("LoadChunk() after Close error = %v", err)
	}
}
