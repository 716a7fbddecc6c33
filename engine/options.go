// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/ik5/audmux/internal/log"
	"github.com/ik5/audmux/source"
)

// DefaultCategory always exists. Sounds created without a category use it.
const DefaultCategory = "default"

// CategoryConfig declares a category created with the manager.
type CategoryConfig struct {
	Name       string
	Gain       float64
	BufferMode source.BufferMode
	SourceMode source.Mode
}

// Config holds manager configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Voices is the fixed pool size.
	Voices int

	// FS is where sound files are read from.
	FS fs.FS

	// Threaded runs the streaming worker in its own goroutine. Without it
	// the application calls Update.
	Threaded   bool
	UpdateTime time.Duration

	// StreamBuffers is the decode-ahead depth of streamed voices, in
	// backend buffers.
	StreamBuffers int

	GlobalGain float64
	Categories []CategoryConfig

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring the manager.
type Option func(*Config)

// DefaultConfig returns 16 voices, a threaded worker at 10ms and 4 stream
// buffers, reading from the working directory.
func DefaultConfig() Config {
	return Config{
		Voices:        16,
		FS:            os.DirFS("."),
		Threaded:      true,
		UpdateTime:    10 * time.Millisecond,
		StreamBuffers: 4,
		GlobalGain:    1,
		Logger:        log.Discard(),
	}
}

// WithVoices sets the voice pool size.
func WithVoices(n int) Option {
	return func(c *Config) {
		c.Voices = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithFS sets the file system sounds are read from.
func WithFS(fsys fs.FS) Option {
	return func(c *Config) {
		c.FS = fsys
	}
}

// WithThreaded enables or disables the streaming worker goroutine.
func WithThreaded(on bool) Option {
	return func(c *Config) {
		c.Threaded = on
	}
}

// WithUpdateTime sets the worker period.
func WithUpdateTime(d time.Duration) Option {
	return func(c *Config) {
		c.UpdateTime = d
	}
}

// WithStreamBuffer sets the decode-ahead depth in backend buffers.
func WithStreamBuffer(buffers int) Option {
	return func(c *Config) {
		c.StreamBuffers = buffers
	}
}

// WithGlobalGain sets the initial global gain.
func WithGlobalGain(g float64) Option {
	return func(c *Config) {
		c.GlobalGain = g
	}
}

// WithCategory creates a category at startup.
func WithCategory(name string, gain float64, bm source.BufferMode, sm source.Mode) Option {
	return func(c *Config) {
		c.Categories = append(c.Categories, CategoryConfig{Name: name, Gain: gain, BufferMode: bm, SourceMode: sm})
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Voices <= 0 {
		c.Voices = d.Voices
	}
	if c.FS == nil {
		c.FS = d.FS
	}
	if c.UpdateTime <= 0 {
		c.UpdateTime = d.UpdateTime
	}
	if c.StreamBuffers < 2 {
		c.StreamBuffers = 2
	}
	if c.GlobalGain < 0 {
		c.GlobalGain = 0
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
}
