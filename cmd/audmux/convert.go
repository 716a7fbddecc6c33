// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audmux"
	"github.com/ik5/audmux/formats/wav"
)

var errArgs = errors.New("wrong number of arguments")

func runConvert(args []string, stderr io.Writer) error {
	var c common
	flags := flag.NewFlagSet("convert", flag.ContinueOnError)
	flags.SetOutput(stderr)
	c.register(flags)
	rate := flags.Int("rate", 8000, "output sample rate in Hz")
	channels := flags.Int("channels", 1, "output channel count")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: audmux convert [flags] <input> <output.wav>")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return errArgs
	}
	logger := c.logger(stderr)
	in, out := flags.Arg(0), flags.Arg(1)

	dec, err := audmux.DefaultRegistry().Lookup(in)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", in, err)
	}
	defer src.Close()

	logger.Debug("decoding", "file", in, "rate", src.SampleRate(), "channels", src.Channels())

	pcm, err := audmux.Convert(src, *rate, *channels, 4096)
	if err != nil {
		return err
	}

	if err := writeWAV(out, *rate, *channels, pcm); err != nil {
		return err
	}

	logger.Info("wrote", "file", out, "frames", len(pcm) / *channels, "rate", *rate, "channels", *channels)
	return nil
}

func writeWAV(name string, rate, channels int, pcm []int16) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	if err := wav.WriteWAV16(f, rate, channels, pcm); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}
