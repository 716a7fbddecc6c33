// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ik5/audmux"
	"github.com/ik5/audmux/backend"
	"github.com/ik5/audmux/engine"
)

var errEndless = errors.New("looping render needs -duration")

// pcmSink collects the little-endian s16 buffers written by the ticker.
type pcmSink struct{ samples []int16 }

func (p *pcmSink) Write(b []byte) (int, error) {
	for i := 0; i+1 < len(b); i += 2 {
		p.samples = append(p.samples, int16(binary.LittleEndian.Uint16(b[i:])))
	}
	return len(b), nil
}

// rootFS serves absolute paths so files from anywhere can be registered.
// names are returned relative to the returned FS.
func rootFS(paths []string) (fs.FS, []string, error) {
	var (
		root  string
		names = make([]string, 0, len(paths))
	)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, err
		}
		vol := filepath.VolumeName(abs)
		if root == "" {
			root = vol + string(filepath.Separator)
		}
		names = append(names, strings.TrimPrefix(filepath.ToSlash(abs[len(vol):]), "/"))
	}
	if root == "" {
		root = string(filepath.Separator)
	}
	return os.DirFS(root), names, nil
}

func runRender(ctx context.Context, args []string, stderr io.Writer) error {
	var c common
	flags := flag.NewFlagSet("render", flag.ContinueOnError)
	flags.SetOutput(stderr)
	c.register(flags)
	out := flags.String("o", "mix.wav", "output WAV file")
	rate := flags.Int("rate", 44100, "output sample rate in Hz")
	channels := flags.Int("channels", 2, "output channel count")
	duration := flags.Duration("duration", 0, "length of the mix, 0 renders until every sound ended")
	loop := flags.Bool("loop", false, "loop every sound")
	fadeIn := flags.Duration("fade-in", 0, "fade every sound in")
	gain := flags.Float64("gain", 1, "global gain")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: audmux render [flags] <file>...")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errArgs
	}
	if *loop && *duration <= 0 {
		return errEndless
	}
	logger := c.logger(stderr)

	fsys, names, err := rootFS(flags.Args())
	if err != nil {
		return err
	}

	format := backend.Format{
		SampleRate:   *rate,
		Channels:     *channels,
		BufferFrames: max(*rate/100, 1),
		Sample:       backend.S16,
	}
	sink := new(pcmSink)
	ticker := backend.NewTicker(format, sink, 0)

	m, err := audmux.NewManager(ticker,
		engine.WithFS(fsys),
		engine.WithLogger(logger),
		engine.WithThreaded(false),
		engine.WithVoices(len(names)),
		engine.WithGlobalGain(*gain),
	)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Start(ctx); err != nil {
		return err
	}

	for i, name := range names {
		snd, err := m.CreateSound(name, engine.DefaultCategory, fmt.Sprintf("%d:", i))
		if err != nil {
			return err
		}
		if _, err := snd.Play(*fadeIn, *loop); err != nil {
			return fmt.Errorf("%s: %w", flags.Arg(i), err)
		}
	}

	limit := int64(duration.Seconds() * float64(*rate))
	for rendered := int64(0); ctx.Err() == nil; rendered += int64(format.BufferFrames) {
		if limit > 0 && rendered >= limit {
			break
		}
		if limit <= 0 && m.FreeVoices() == m.Capacity() {
			break
		}

		m.Update()
		if err := ticker.Step(); err != nil {
			return err
		}
	}

	pcm := sink.samples
	if limit > 0 {
		pcm = pcm[:min(len(pcm), int(limit)*format.Channels)]
	}
	if err := writeWAV(*out, *rate, *channels, pcm); err != nil {
		return err
	}

	logger.Info("rendered", "file", *out, "duration", time.Duration(len(pcm)/format.Channels)*time.Second/time.Duration(*rate))
	return nil
}
