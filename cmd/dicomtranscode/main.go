// Command dicomtranscode converts the pixel data of DICOM files between
// transfer syntaxes, and inspects files or raw bitstream payloads.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/cocosip/go-dicom-imageio/config"
)

// version is set at build time via -ldflags
var version = "dev"

const usage = `Usage:
  dicomtranscode -in file.dcm -out out.dcm [-ts uid] [-quality n] [-ratio n] [-metadata-only] [-config path] [-v]
  dicomtranscode inspect -in file.dcm
  dicomtranscode parse -in payload -type content/type [-out out.dcm] [-ts uid]
`

func main() {
	args := os.Args[1:]
	cmd := "transcode"
	if len(args) > 0 {
		switch args[0] {
		case "inspect", "parse", "transcode":
			cmd, args = args[0], args[1:]
		case "version":
			fmt.Println(version)
			return
		}
	}

	var err error
	switch cmd {
	case "inspect":
		err = runInspect(args)
	case "parse":
		err = runParse(args)
	default:
		err = runTranscode(args)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newFlagSet returns a flag set printing the command usage on error
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	return fs
}

// newLogger builds the stderr logger. verbose forces the debug level.
func newLogger(cfg *config.Config, verbose bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	var logger zerolog.Logger
	if cfg.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
