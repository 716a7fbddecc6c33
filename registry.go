// SPDX-License-Identifier: EPL-2.0

package audmux

import (
	"github.com/ik5/audmux/audio"
	"github.com/ik5/audmux/backend"
	"github.com/ik5/audmux/engine"
	"github.com/ik5/audmux/formats/aiff"
	"github.com/ik5/audmux/formats/flac"
	"github.com/ik5/audmux/formats/mp3"
	"github.com/ik5/audmux/formats/vorbis"
	"github.com/ik5/audmux/formats/wav"
)

// DefaultRegistry knows every bundled decoder, keyed by file extension.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("flac", flac.Decoder{})

	return reg
}

// NewManager is engine.New with DefaultRegistry.
func NewManager(b backend.Backend, opts ...engine.Option) (*engine.Manager, error) {
	return engine.New(b, DefaultRegistry(), opts...)
}
