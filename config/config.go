// Package config loads the transcoding settings used by dicomtranscode
// from a YAML file and turns them into adapter options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cocosip/go-dicom-imageio/adapter"
	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/mask"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	Transcode struct {
		// TransferSyntax is the syntax requested when the command line gives none.
		// Empty keeps the syntax of the input.
		TransferSyntax string `yaml:"transferSyntax"`

		// Quality is the lossy JPEG quality factor (1-100)
		Quality int `yaml:"quality"`

		// CompressionRatio asked from ratio driven codecs, 0 = codec default
		CompressionRatio int `yaml:"compressionRatio"`

		// FallbackTransferSyntax is requested instead when the requested syntax
		// cannot be produced. Empty keeps the original syntax.
		FallbackTransferSyntax string `yaml:"fallbackTransferSyntax"`

		MetadataOnly bool `yaml:"metadataOnly"`

		// Deflate writes Explicit VR Little Endian output as the deflated syntax
		Deflate bool `yaml:"deflate"`
	} `yaml:"transcode"`

	JPEGLossless struct {
		// Predictor is the selection value (1-7), 0 = codec default
		Predictor int `yaml:"predictor"`
	} `yaml:"jpegLossless"`

	JPEGLS struct {
		// Near is the error bound, 0 = lossless
		Near int `yaml:"near"`
	} `yaml:"jpegls"`

	// Mask blanks regions of every transcoded frame when it has rectangles
	Mask struct {
		Rects  []mask.Rect `yaml:"rects"`
		Fill   int         `yaml:"fill"`
		Frames []int       `yaml:"frames"`
	} `yaml:"mask"`

	Log struct {
		// Level is a zerolog level name
		Level string `yaml:"level"`

		// Pretty selects the console writer instead of JSON lines
		Pretty bool `yaml:"pretty"`
	} `yaml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Transcode.Quality = transfersyntax.DefaultJPEGQuality
	cfg.Transcode.FallbackTransferSyntax = transfersyntax.ExplicitVRLittleEndian
	cfg.Log.Level = "info"
	cfg.Log.Pretty = true
	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Validate checks the syntaxes and the encoding parameters.
func (c *Config) Validate() error {
	for _, uid := range []string{c.Transcode.TransferSyntax, c.Transcode.FallbackTransferSyntax} {
		if uid != "" && !transfersyntax.IsValidUID(uid) {
			return fmt.Errorf("transfer syntax %q: %w", uid, codec.ErrInvalidParameter)
		}
	}
	return c.Parameters().Validate()
}

// Adapt builds the transfer syntax triple for data arriving in original.
// An empty requested syntax uses the configured one, or original.
func (c *Config) Adapt(original, requested string) *transfersyntax.Adapt {
	if requested == "" {
		requested = c.Transcode.TransferSyntax
	}
	if requested == "" {
		requested = original
	}
	ats := transfersyntax.NewAdapt(original, requested)
	ats.SetJPEGQuality(c.Transcode.Quality)
	ats.SetCompressionRatio(c.Transcode.CompressionRatio)
	return ats
}

// Parameters returns the codec parameters of the configuration.
func (c *Config) Parameters() *codec.Parameters {
	return codec.NewParameters().
		WithQuality(c.Transcode.Quality).
		WithCompressionRatio(c.Transcode.CompressionRatio).
		WithPredictor(c.JPEGLossless.Predictor).
		WithNear(c.JPEGLS.Near)
}

// MaskArea returns the configured mask, nil when it has no rectangles.
func (c *Config) MaskArea() *mask.Area {
	if len(c.Mask.Rects) == 0 {
		return nil
	}
	a := mask.NewArea(c.Mask.Rects...).WithFill(c.Mask.Fill)
	a.Frames = c.Mask.Frames
	return a
}

// AdapterOptions converts the configuration into image adapter options.
func (c *Config) AdapterOptions() []adapter.Option {
	opts := []adapter.Option{
		adapter.WithParameters(c.Parameters()),
		adapter.WithDeflate(c.Transcode.Deflate),
	}
	if area := c.MaskArea(); area != nil {
		opts = append(opts, adapter.WithMask(area))
	}
	return opts
}
