// SPDX-License-Identifier: EPL-2.0

// Command audmux plays, mixes and converts sound files.
//
//	audmux play    [flags] file|dir...   interactive mixer on an audio device
//	audmux render  [flags] file...       mix files offline into a WAV file
//	audmux convert [flags] in out.wav    resample and remix one file
//	audmux formats                       list supported extensions
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/ik5/audmux"
	"github.com/ik5/audmux/internal/log"
)

const usage = `usage: audmux <command> [flags] [args]

commands:
  play      interactive mixer on an audio device
  render    mix files offline into a WAV file
  convert   resample and remix one file into a WAV file
  formats   list supported file extensions

Run "audmux <command> -h" for the flags of a command.
`

// common flags shared by every command
type common struct {
	level string
	json  bool
}

func (c *common) register(flags *flag.FlagSet) {
	flags.StringVar(&c.level, "log-level", "info", "log level: debug, info, warn, error")
	flags.BoolVar(&c.json, "log-json", false, "log as JSON")
}

func (c *common) logger(w io.Writer) *slog.Logger {
	return log.New(w, c.level, c.json)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "play":
		err = runPlay(ctx, args)
	case "render":
		err = runRender(ctx, args, os.Stderr)
	case "convert":
		err = runConvert(args, os.Stderr)
	case "formats":
		formats := audmux.DefaultRegistry().Formats()
		slices.Sort(formats)
		for _, f := range formats {
			fmt.Println(f)
		}
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "audmux:", err)
		os.Exit(1)
	}
}
