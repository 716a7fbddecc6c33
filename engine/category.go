// SPDX-License-Identifier: EPL-2.0

package engine

import "github.com/ik5/audmux/source"

// Category is a named volume group. Its gain multiplies into every voice of
// every sound assigned to it.
type Category struct {
	m          *Manager
	name       string
	gain       float64 // guarded by m.mu
	bufferMode source.BufferMode
	sourceMode source.Mode
}

func (c *Category) Name() string                  { return c.name }
func (c *Category) BufferMode() source.BufferMode { return c.bufferMode }
func (c *Category) SourceMode() source.Mode       { return c.sourceMode }
func (c *Category) IsStreamed() bool              { return c.bufferMode == source.Streamed }
func (c *Category) IsMemoryManaged() bool         { return c.bufferMode == source.Managed }

func (c *Category) Gain() float64 {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	return c.gain
}

// SetGain applies to playing voices from the next mix cycle on.
// Negative values are clamped to 0.
func (c *Category) SetGain(g float64) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()

	c.gain = max(g, 0)
	c.m.recomputeGains()
}

// CreateCategory registers a new category. Names are unique.
func (m *Manager) CreateCategory(name string, bm source.BufferMode, sm source.Mode) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.createCategory(CategoryConfig{Name: name, Gain: 1, BufferMode: bm, SourceMode: sm})
}

func (m *Manager) createCategory(cc CategoryConfig) (*Category, error) {
	if _, ok := m.categories[cc.Name]; ok {
		return nil, ErrCategoryExists
	}

	c := &Category{
		m:          m,
		name:       cc.Name,
		gain:       max(cc.Gain, 0),
		bufferMode: cc.BufferMode,
		sourceMode: cc.SourceMode,
	}
	m.categories[cc.Name] = c

	return c, nil
}

// Category looks a category up by name.
func (m *Manager) Category(name string) (*Category, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.categories[name]
	return c, ok
}
