package lossless

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

func roundTrip(t *testing.T, pixelData []byte, width, height, components, bitDepth, predictor int) []byte {
	t.Helper()
	jpegData, err := Encode(pixelData, width, height, components, bitDepth, predictor)
	if err != nil {
		t.Fatalf("Encode with predictor %d failed: %v", predictor, err)
	}

	decoded, w, h, comps, bits, err := Decode(jpegData)
	if err != nil {
		t.Fatalf("Decode with predictor %d failed: %v", predictor, err)
	}
	if w != width || h != height || comps != components || bits != bitDepth {
		t.Fatalf("Metadata mismatch w=%d h=%d comps=%d bits=%d", w, h, comps, bits)
	}
	if len(decoded) != len(pixelData) {
		t.Fatalf("Decoded length mismatch: got %d want %d", len(decoded), len(pixelData))
	}
	for i := range pixelData {
		if decoded[i] != pixelData[i] {
			t.Fatalf("Pixel %d mismatch got=%d want=%d", i, decoded[i], pixelData[i])
		}
	}
	return jpegData
}

func TestAllPredictors(t *testing.T) {
	width, height := 64, 64
	pixelData := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixelData[y*width+x] = byte((x + y*2) % 256)
		}
	}

	for predictor := 0; predictor <= 7; predictor++ {
		t.Run(PredictorName(predictor), func(t *testing.T) {
			jpegData := roundTrip(t, pixelData, width, height, 1, 8, predictor)
			t.Logf("Predictor %d: Compressed size: %d bytes (%.2fx)",
				predictor, len(jpegData), float64(len(pixelData))/float64(len(jpegData)))
		})
	}
}

func TestRGBLossless(t *testing.T) {
	width, height := 32, 32
	pixelData := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := (y*width + x) * 3
			pixelData[offset+0] = byte(x * 8)
			pixelData[offset+1] = byte(y * 8)
			pixelData[offset+2] = byte((x + y) * 4)
		}
	}
	roundTrip(t, pixelData, width, height, 3, 8, 4)
}

func TestHighBitDepth(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		value    func(x, y int) int
	}{
		{"12-bit ramp", 12, func(x, y int) int { return ((x + y*3) * 37) % 4096 }},
		{"16-bit large values", 16, func(x, y int) int { return (y*1024 + x*17 + 50000) % 65536 }},
		{"16-bit extremes", 16, func(x, y int) int { return ((x + y) % 2) * 65535 }},
		{"2-bit", 2, func(x, y int) int { return (x ^ y) & 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			width, height := 32, 32
			bps := (tt.bitDepth + 7) / 8
			pixelData := make([]byte, width*height*bps)
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					val := tt.value(x, y)
					off := (y*width + x) * bps
					pixelData[off] = byte(val)
					if bps == 2 {
						pixelData[off+1] = byte(val >> 8)
					}
				}
			}
			for _, predictor := range []int{1, 4, 7} {
				roundTrip(t, pixelData, width, height, 1, tt.bitDepth, predictor)
			}
		})
	}
}

func TestSigned16BitRoundTrip(t *testing.T) {
	width, height := 8, 4
	pixelData := make([]byte, width*height*2)

	values := []int16{-2000, -1000, -10, 0, 10, 1000, 2000, 30000, -32768}
	for i := 0; i < width*height; i++ {
		u := uint16(values[i%len(values)])
		pixelData[i*2] = byte(u)
		pixelData[i*2+1] = byte(u >> 8)
	}
	roundTrip(t, pixelData, width, height, 1, 16, 1)
}

func TestEncodeInvalidParameters(t *testing.T) {
	pixelData := make([]byte, 64*64)

	tests := []struct {
		name       string
		width      int
		height     int
		components int
		bitDepth   int
		predictor  int
		wantErr    error
	}{
		{"Invalid width", 0, 64, 1, 8, 1, common.ErrInvalidDimensions},
		{"Invalid height", 64, 0, 1, 8, 1, common.ErrInvalidDimensions},
		{"Invalid components", 8, 8, 5, 8, 1, common.ErrInvalidComponents},
		{"Invalid bit depth low", 64, 64, 1, 1, 1, common.ErrInvalidBitDepth},
		{"Invalid bit depth high", 64, 64, 1, 17, 1, common.ErrInvalidBitDepth},
		{"Invalid predictor low", 64, 64, 1, 8, -1, common.ErrInvalidPredictor},
		{"Invalid predictor high", 64, 64, 1, 8, 8, common.ErrInvalidPredictor},
		{"Buffer too small", 65, 64, 1, 8, 1, common.ErrBufferTooSmall},
		{"Valid predictor 7", 64, 64, 1, 8, 7, nil},
		{"Valid auto predictor", 64, 64, 1, 8, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(pixelData, tt.width, tt.height, tt.components, tt.bitDepth, tt.predictor)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Encode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeRejectsOtherProcesses(t *testing.T) {
	jpegData, err := Encode(make([]byte, 16), 4, 4, 1, 8, 1)
	if err != nil {
		t.Fatal(err)
	}
	i := bytes.Index(jpegData, []byte{0xFF, 0xC3})
	jpegData[i+1] = 0xC0
	if _, _, _, _, _, err := Decode(jpegData); !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("Decode(baseline) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, _, _, _, _, err := Decode([]byte{0x00, 0x01}); !errors.Is(err, common.ErrInvalidSOI) {
		t.Errorf("Decode(garbage) error = %v, want ErrInvalidSOI", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	pixelData := make([]byte, 32*32)
	for i := range pixelData {
		pixelData[i] = byte(i * 7)
	}
	jpegData, err := Encode(pixelData, 32, 32, 1, 8, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, _, _, err := Decode(jpegData[:len(jpegData)/2]); err == nil {
		t.Error("Decode of a truncated stream should fail")
	}
}

func BenchmarkEncode8bitGrayscale(b *testing.B) {
	width, height := 512, 512
	pixelData := make([]byte, width*height)
	for i := range pixelData {
		pixelData[i] = byte(i % 256)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(pixelData, width, height, 1, 8, 1); err != nil {
			b.Fatal(err)
		}
	}
}

func TestSelectPredictor(t *testing.T) {
	const width, height = 8, 4
	plane := make([]int, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			plane[row*width+col] = 10 * col
		}
	}
	// identical rows are predicted exactly from above
	if got := selectPredictor([][]int{plane}, width, height, 8); got != 2 {
		t.Errorf("selectPredictor() = %d, want 2", got)
	}
	if got := Predictor(9, 1, 2, 3); got != 1 {
		t.Errorf("Predictor(9) = %d, want the left sample", got)
	}
	if got := PredictorName(8); got != "unknown" {
		t.Errorf("PredictorName(8) = %q", got)
	}
}
