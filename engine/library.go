// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/ik5/audmux/source"
)

// soundName is the prefix plus the base name without extension.
func soundName(filename, prefix string) string {
	base := path.Base(filename)
	return prefix + strings.TrimSuffix(base, path.Ext(base))
}

// CreateSound registers filename (a path in the manager FS) under category.
// An empty category means DefaultCategory. A file that fails to open is still
// registered: the failure is logged and the sound refuses to play.
func (m *Manager) CreateSound(filename, category, prefix string) (*Sound, error) {
	filename = strings.ReplaceAll(filename, `\`, "/")
	name := soundName(filename, prefix)
	if category == "" {
		category = DefaultCategory
	}

	m.mu.Lock()
	cat, ok := m.categories[category]
	_, exists := m.sounds[name]
	m.mu.Unlock()

	switch {
	case !ok:
		return nil, fmt.Errorf("%w %q", ErrUnknownCategory, category)
	case exists:
		return nil, fmt.Errorf("%w %q", ErrSoundExists, name)
	}

	snd := &Sound{m: m, name: name, filename: filename, category: cat}
	snd.info, snd.memory, snd.err = m.inspect(filename, cat)
	if snd.err != nil {
		m.logger.Warn("sound unavailable", "sound", name, "file", filename, "err", snd.err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sounds[name]; exists {
		return nil, fmt.Errorf("%w %q", ErrSoundExists, name)
	}
	m.sounds[name] = snd

	return snd, nil
}

// inspect opens the asset once to read its format, and decodes it fully for
// Managed categories.
func (m *Manager) inspect(filename string, cat *Category) (source.Info, *source.Memory, error) {
	src := source.NewFile(m.cfg.FS, filename, m.reg, cat.sourceMode)
	if err := src.Open(); err != nil {
		return source.Info{}, nil, err
	}
	defer src.Close()

	info := src.Info()
	if !cat.IsMemoryManaged() {
		return info, nil, nil
	}

	mem, err := source.LoadMemory(src)
	if err != nil {
		return info, nil, err
	}
	return info, mem, nil
}

// CreateSoundsFromPath registers every file in dir that has a known decoder.
// Failures do not stop the walk; they are joined into the returned error.
func (m *Manager) CreateSoundsFromPath(dir, category, prefix string) ([]*Sound, error) {
	dir = strings.ReplaceAll(dir, `\`, "/")
	entries, err := fs.ReadDir(m.cfg.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", dir, err)
	}

	var (
		sounds []*Sound
		errs   []error
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := m.reg.Lookup(e.Name()); err != nil {
			continue
		}

		snd, err := m.CreateSound(path.Join(dir, e.Name()), category, prefix)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sounds = append(sounds, snd)
	}

	return sounds, errors.Join(errs...)
}

func (m *Manager) Sound(name string) (*Sound, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snd, ok := m.sounds[name]
	return snd, ok
}

// Sounds lists registered sound names in order.
func (m *Manager) Sounds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.sounds))
}

// DestroySound releases the sound's voices and forgets it.
func (m *Manager) DestroySound(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snd, ok := m.sounds[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownSound, name)
	}
	m.destroy(snd)

	return nil
}

// DestroySoundsWithPrefix destroys every sound whose name starts with prefix
// and returns how many were removed.
func (m *Manager) DestroySoundsWithPrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for name, snd := range m.sounds {
		if strings.HasPrefix(name, prefix) {
			m.destroy(snd)
			n++
		}
	}
	return n
}

func (m *Manager) destroy(snd *Sound) {
	for _, i := range slices.Clone(snd.voices) {
		m.release(&m.slots[i], "destroyed")
	}
	delete(m.sounds, snd.name)
}

func (m *Manager) lookupSound(name string) (*Sound, error) {
	snd, ok := m.Sound(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSound, name)
	}
	return snd, nil
}

// Play plays a registered sound by name.
func (m *Manager) Play(name string, d time.Duration, looping bool) (Voice, error) {
	snd, err := m.lookupSound(name)
	if err != nil {
		return Voice{}, err
	}
	return snd.Play(d, looping)
}

// Stop stops every voice of the named sound.
func (m *Manager) Stop(name string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snd, ok := m.sounds[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownSound, name)
	}
	m.stopSound(snd, d)

	return nil
}

func (m *Manager) stopSound(snd *Sound, d time.Duration) {
	for _, i := range slices.Clone(snd.voices) {
		m.stop(&m.slots[i], d)
	}
}

// StopAll stops every bound voice, raw ones included.
func (m *Manager) StopAll(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.slots {
		if m.slots[i].bound {
			m.stop(&m.slots[i], d)
		}
	}
}

// StopCategory stops the voices of every sound in category.
func (m *Manager) StopCategory(category string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[category]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownCategory, category)
	}
	for _, snd := range m.sounds {
		if snd.category.name == category {
			m.stopSound(snd, d)
		}
	}

	return nil
}

// IsAnyPlaying reports whether any voice of the named sound is playing.
func (m *Manager) IsAnyPlaying(name string) bool {
	snd, ok := m.Sound(name)
	return ok && snd.IsAnyPlaying()
}

func (m *Manager) IsAnyFading(name string) bool {
	snd, ok := m.Sound(name)
	return ok && snd.IsAnyFading()
}
