package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/mask"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Transcode.Quality != 85 {
		t.Errorf("Quality = %d, want 85", cfg.Transcode.Quality)
	}
	if cfg.Transcode.FallbackTransferSyntax != transfersyntax.ExplicitVRLittleEndian {
		t.Errorf("FallbackTransferSyntax = %s", cfg.Transcode.FallbackTransferSyntax)
	}
	if cfg.MaskArea() != nil {
		t.Error("default config has a mask")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcode.yaml")
	data := []byte(`
transcode:
  transferSyntax: 1.2.840.10008.1.2.4.80
  quality: 70
  deflate: true
jpegls:
  near: 2
mask:
  rects:
    - {x: 0, y: 0, width: 10, height: 4}
  fill: -1000
  frames: [0]
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Transcode.TransferSyntax != transfersyntax.JPEGLSLossless {
		t.Errorf("TransferSyntax = %s", cfg.Transcode.TransferSyntax)
	}
	if cfg.Transcode.Quality != 70 || !cfg.Transcode.Deflate {
		t.Errorf("Transcode = %+v", cfg.Transcode)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Pretty {
		t.Errorf("Log = %+v", cfg.Log)
	}
	p := cfg.Parameters()
	if p.Quality != 70 || p.Near != 2 {
		t.Errorf("Parameters() = %+v", p)
	}
	area := cfg.MaskArea()
	if area == nil {
		t.Fatal("MaskArea() = nil")
	}
	if area.Rects[0] != (mask.Rect{Width: 10, Height: 4}) || area.Fill != -1000 {
		t.Errorf("MaskArea() = %+v", area)
	}
	if !area.Applies(0) || area.Applies(1) {
		t.Error("mask frame list not honored")
	}
	if n := len(cfg.AdapterOptions()); n != 3 {
		t.Errorf("AdapterOptions() returned %d options, want 3", n)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"quality", "transcode:\n  quality: 0\n", codec.ErrInvalidQuality},
		{"predictor", "jpegLossless:\n  predictor: 9\n", codec.ErrInvalidParameter},
		{"syntax", "transcode:\n  transferSyntax: not-a-uid\n", codec.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); !errors.Is(err, tt.want) {
				t.Errorf("LoadConfig() error = %v, want %v", err, tt.want)
			}
		})
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("transcode: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed YAML accepted")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transcode.TransferSyntax = transfersyntax.RLELossless
	cfg.JPEGLossless.Predictor = 1
	path := filepath.Join(t.TempDir(), "nested", "dir", "c.yaml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Transcode.TransferSyntax != transfersyntax.RLELossless || got.JPEGLossless.Predictor != 1 {
		t.Errorf("LoadConfig() = %+v", got)
	}
}

func TestAdapt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transcode.Quality = 60
	cfg.Transcode.CompressionRatio = 10

	ats := cfg.Adapt(transfersyntax.ExplicitVRLittleEndian, "")
	if ats.Requested() != transfersyntax.ExplicitVRLittleEndian {
		t.Errorf("Requested() = %s, want the original syntax", ats.Requested())
	}
	if ats.JPEGQuality() != 60 || ats.CompressionRatio() != 10 {
		t.Errorf("JPEGQuality() = %d, CompressionRatio() = %d", ats.JPEGQuality(), ats.CompressionRatio())
	}

	cfg.Transcode.TransferSyntax = transfersyntax.JPEGLossless
	if got := cfg.Adapt(transfersyntax.ExplicitVRLittleEndian, "").Requested(); got != transfersyntax.JPEGLossless {
		t.Errorf("Requested() = %s, want the configured syntax", got)
	}
	if got := cfg.Adapt(transfersyntax.ExplicitVRLittleEndian, transfersyntax.RLELossless).Requested(); got != transfersyntax.RLELossless {
		t.Errorf("Requested() = %s, want the explicit syntax", got)
	}
}
