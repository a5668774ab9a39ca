package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/cocosip/go-dicom-imageio/adapter"
	"github.com/cocosip/go-dicom-imageio/config"
	"github.com/cocosip/go-dicom-imageio/imagedesc"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

// contentTypes maps payload file extensions to STOW-RS media types.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".jls":  "image/jls",
	".jp2":  "image/jp2",
	".j2c":  "image/j2c",
	".j2k":  "image/j2c",
	".jpx":  "image/jpx",
	".jph":  "image/jph",
	".jhc":  "image/jphc",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
	".mp4":  "video/mp4",
}

func runParse(args []string) error {
	fs := newFlagSet("parse")
	in := fs.String("in", "", "Bitstream payload (required)")
	contentType := fs.String("type", "", "Media type of the payload (default: from the file extension)")
	out := fs.String("out", "", "Write the wrapped object to this DICOM file")
	ts := fs.String("ts", "", "Transfer syntax of the written object (default: the payload syntax)")
	configPath := fs.String("config", "", "YAML configuration file")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("-in is required")
	}
	ct := *contentType
	if ct == "" {
		ext := filepath.Ext(*in)
		if ct = contentTypes[ext]; ct == "" {
			ct = mime.TypeByExtension(ext)
		}
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg, *verbose)

	f, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer f.Close()
	obj, err := adapter.NewBitstreamObject(f, ct, nil)
	if err != nil {
		return fmt.Errorf("parse %s: %w", *in, err)
	}
	desc, err := imagedesc.New(obj.Dataset)
	if err != nil {
		return err
	}
	fmt.Printf("Transfer syntax: %s (%s)\n", transfersyntax.Name(obj.TransferSyntaxUID), obj.TransferSyntaxUID)
	printDescriptor(os.Stdout, desc)
	if *out == "" {
		return nil
	}

	requested := *ts
	if requested == "" {
		requested = obj.TransferSyntaxUID
	}
	a, err := obj.Adapter(requested, cfg.AdapterOptions()...)
	if err != nil {
		return err
	}
	if err := a.WriteDicomFile(*out, false); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Info().Str("out", *out).Str("syntax", a.OutputTransferSyntax()).Msg("written")
	return nil
}
