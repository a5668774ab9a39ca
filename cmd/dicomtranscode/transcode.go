package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/cocosip/go-dicom-imageio/adapter"
	"github.com/cocosip/go-dicom-imageio/config"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"

	// codecs register themselves with the default registry
	_ "github.com/cocosip/go-dicom-imageio/jpeg/baseline"
	_ "github.com/cocosip/go-dicom-imageio/jpeg/extended"
	_ "github.com/cocosip/go-dicom-imageio/jpeg/lossless"
	_ "github.com/cocosip/go-dicom-imageio/jpegls"
	_ "github.com/cocosip/go-dicom-imageio/rle"
)

func runTranscode(args []string) error {
	fs := newFlagSet("transcode")
	in := fs.String("in", "", "Input DICOM file (required)")
	out := fs.String("out", "", "Output DICOM file (required)")
	ts := fs.String("ts", "", "Requested transfer syntax UID (default: config, then the input syntax)")
	quality := fs.Int("quality", 0, "Lossy JPEG quality 1-100 (default: config)")
	ratio := fs.Int("ratio", -1, "Compression ratio, 0 = codec default (default: config)")
	metadataOnly := fs.Bool("metadata-only", false, "Write the attributes without pixel data")
	configPath := fs.String("config", "", "YAML configuration file")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		fs.Usage()
		return errors.New("-in and -out are required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *quality != 0 {
		cfg.Transcode.Quality = *quality
	}
	if *ratio >= 0 {
		cfg.Transcode.CompressionRatio = *ratio
	}
	if *metadataOnly {
		cfg.Transcode.MetadataOnly = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cfg, *verbose)

	a, err := openAdapter(*in, *ts, cfg, log)
	if err != nil {
		return err
	}
	if err := a.WriteDicomFile(*out, cfg.Transcode.MetadataOnly); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	ev := log.Info().Str("out", *out).Str("syntax", a.OutputTransferSyntax())
	if st, err := os.Stat(*out); err == nil {
		ev = ev.Int64("size", st.Size())
	}
	ev.Msg("written")
	return nil
}

// openAdapter reads path and decides the output syntax. When the requested
// syntax cannot be produced the configured fallback is requested instead.
func openAdapter(path, requested string, cfg *config.Config, log zerolog.Logger) (*adapter.ImageAdapter, error) {
	ds, src, err := adapter.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	orig := adapter.TransferSyntaxOf(ds)

	ats := cfg.Adapt(orig, requested)
	a, err := adapter.NewImageAdapter(ds, src, ats, cfg.AdapterOptions()...)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("in", path).
		Str("original", orig).
		Str("requested", ats.Requested()).
		Int("frames", a.FrameCount()).
		Bool("pixelData", src != nil).
		Msg("read")

	transcode := a.CheckTranscode()
	fallback := cfg.Transcode.FallbackTransferSyntax
	if src != nil && !transcode && !transfersyntax.Compatible(orig, ats.Requested()) &&
		fallback != "" && fallback != ats.Requested() && !transfersyntax.Compatible(orig, fallback) {
		log.Warn().
			Str("requested", ats.Requested()).
			Str("fallback", fallback).
			Msg("requested syntax cannot be produced")
		a, err = adapter.NewImageAdapter(ds, src, cfg.Adapt(orig, fallback), cfg.AdapterOptions()...)
		if err != nil {
			return nil, err
		}
		transcode = a.CheckTranscode()
	}
	log.Info().
		Str("in", path).
		Str("original", transfersyntax.Name(orig)).
		Str("suitable", transfersyntax.Name(a.TransferSyntax().Suitable())).
		Bool("transcode", transcode).
		Int("frames", a.FrameCount()).
		Msg("transfer syntax")
	return a, nil
}
