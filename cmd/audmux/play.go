// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/ik5/audmux"
	"github.com/ik5/audmux/backend"
	"github.com/ik5/audmux/engine"
	"github.com/ik5/audmux/source"
)

var errBackend = errors.New("unknown backend")

func newBackend(name string, f backend.Format, logger *slog.Logger) (backend.Backend, error) {
	switch name {
	case "malgo":
		return backend.NewMalgo(f, logger), nil
	case "oto":
		return backend.NewOto(f, logger), nil
	case "null":
		return backend.NewTicker(f, nil, f.BufferDuration()), nil
	}
	return nil, fmt.Errorf("%w %q", errBackend, name)
}

// registerSounds adds files, and every decodable file of directories, as sounds.
func registerSounds(m *engine.Manager, fsys fs.FS, names []string, category string, logger *slog.Logger) error {
	for _, name := range names {
		info, err := fs.Stat(fsys, name)
		if err != nil {
			return err
		}

		if info.IsDir() {
			sounds, err := m.CreateSoundsFromPath(name, category, "")
			if err != nil {
				logger.Warn("some sounds were skipped", "dir", name, "err", err)
			}
			logger.Info("registered directory", "dir", name, "sounds", len(sounds))
			continue
		}

		if _, err := m.CreateSound(name, category, ""); err != nil {
			logger.Warn("sound skipped", "file", name, "err", err)
		}
	}
	return nil
}

func runPlay(ctx context.Context, args []string) error {
	var c common
	flags := flag.NewFlagSet("play", flag.ContinueOnError)
	c.register(flags)
	device := flags.String("backend", "malgo", "output backend: malgo, oto or null")
	rate := flags.Int("rate", backend.DefaultFormat.SampleRate, "device sample rate in Hz")
	channels := flags.Int("channels", backend.DefaultFormat.Channels, "device channel count")
	buffer := flags.Duration("buffer", 10*time.Millisecond, "device buffer length")
	sample := flags.String("sample", "s16", "device sample format: s16, s24, s32 or f32")
	voices := flags.Int("voices", 16, "voice pool size")
	update := flags.Duration("update", 10*time.Millisecond, "streaming worker period")
	streamBuffers := flags.Int("stream-buffers", 4, "decode-ahead depth in device buffers")
	managed := flags.Bool("managed", false, "decode every sound into memory up front")
	fade := flags.Duration("fade", 300*time.Millisecond, "fade length used by the play and stop keys")
	noTUI := flags.Bool("no-tui", false, "play every sound once and exit")
	logFile := flags.String("log-file", "audmux.log", "log file while the terminal UI runs")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: audmux play [flags] <file|dir>...")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errArgs
	}

	var logOut io.Writer = os.Stderr
	if !*noTUI {
		f, err := os.OpenFile(*logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := c.logger(logOut)

	sf, err := backend.ParseSampleFormat(*sample)
	if err != nil {
		return err
	}
	format := backend.Format{
		SampleRate:   *rate,
		Channels:     *channels,
		BufferFrames: max(int(buffer.Seconds()*float64(*rate)), 1),
		Sample:       sf,
	}
	b, err := newBackend(*device, format, logger)
	if err != nil {
		return err
	}

	fsys, names, err := rootFS(flags.Args())
	if err != nil {
		return err
	}

	mode := source.Streamed
	if *managed {
		mode = source.Managed
	}
	m, err := audmux.NewManager(b,
		engine.WithFS(fsys),
		engine.WithLogger(logger),
		engine.WithVoices(*voices),
		engine.WithUpdateTime(*update),
		engine.WithStreamBuffer(*streamBuffers),
		engine.WithCategory("play", 1, mode, source.Disk),
	)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := registerSounds(m, fsys, names, "play", logger); err != nil {
		return err
	}
	if len(m.Sounds()) == 0 {
		return errors.New("no playable sounds")
	}

	if err := m.Start(ctx); err != nil {
		return err
	}

	if *noTUI {
		return playAll(ctx, m, logger)
	}
	return runTUI(ctx, m, *fade)
}

// playAll starts every sound once and waits for them to end.
func playAll(ctx context.Context, m *engine.Manager, logger *slog.Logger) error {
	for _, name := range m.Sounds() {
		v, err := m.Play(name, 0, false)
		if err != nil {
			logger.Warn("play failed", "sound", name, "err", err)
			continue
		}
		logger.Info("playing", "sound", name, "voice", v.ID(), "play_id", v.PlayID())
	}

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			m.StopAll(0)
			return nil
		case <-tick.C:
			if m.FreeVoices() == m.Capacity() {
				return nil
			}
		}
	}
}
