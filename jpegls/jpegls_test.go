package jpegls

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

func gradient(width, height int, fn func(x, y int) int) []int {
	plane := make([]int, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			plane[y*width+x] = fn(x, y)
		}
	}
	return plane
}

func TestLosslessRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tests := []struct {
		name   string
		width  int
		height int
		bits   int
		value  func(x, y int) int
	}{
		{"flat", 32, 16, 8, func(x, y int) int { return 100 }},
		{"ramp", 64, 64, 8, func(x, y int) int { return (x + 2*y) & 0xFF }},
		{"noise", 40, 30, 8, func(x, y int) int { return rng.Intn(256) }},
		{"12-bit", 33, 17, 12, func(x, y int) int { return (x*131 + y*7) % 4096 }},
		{"16-bit extremes", 16, 16, 16, func(x, y int) int { return ((x + y) % 2) * 65535 }},
		{"2-bit", 9, 9, 2, func(x, y int) int { return (x ^ y) & 3 }},
		{"single column", 1, 50, 8, func(x, y int) int { return y * 5 }},
		{"runs and edges", 64, 8, 8, func(x, y int) int {
			if x > 20 && x < 40 {
				return 200
			}
			return 10
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plane := gradient(tt.width, tt.height, tt.value)
			encoded, err := EncodeSamples([][]int{plane}, tt.width, tt.height, tt.bits, 0)
			if err != nil {
				t.Fatalf("EncodeSamples() error = %v", err)
			}
			planes, w, h, bits, near, err := DecodeSamples(encoded)
			if err != nil {
				t.Fatalf("DecodeSamples() error = %v", err)
			}
			if w != tt.width || h != tt.height || bits != tt.bits || near != 0 {
				t.Fatalf("metadata = %dx%d %d bits near %d", w, h, bits, near)
			}
			for i, v := range plane {
				if planes[0][i] != v {
					t.Fatalf("sample %d = %d, want %d", i, planes[0][i], v)
				}
			}
		})
	}
}

func TestNearLosslessBound(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	width, height := 48, 40
	plane := gradient(width, height, func(x, y int) int {
		return (x*3 + y*5 + rng.Intn(9)) & 0xFF
	})
	for _, near := range []int{1, 2, 3, 7} {
		encoded, err := EncodeSamples([][]int{plane}, width, height, 8, near)
		if err != nil {
			t.Fatalf("near %d: EncodeSamples() error = %v", near, err)
		}
		planes, _, _, _, gotNear, err := DecodeSamples(encoded)
		if err != nil {
			t.Fatalf("near %d: DecodeSamples() error = %v", near, err)
		}
		if gotNear != near {
			t.Errorf("decoded near = %d, want %d", gotNear, near)
		}
		for i, v := range plane {
			if d := abs(planes[0][i] - v); d > near {
				t.Fatalf("near %d: sample %d off by %d", near, i, d)
			}
		}
	}
}

func TestRGBRoundTrip(t *testing.T) {
	width, height := 24, 20
	pixelData := make([]byte, width*height*3)
	for i := 0; i < width*height; i++ {
		pixelData[3*i] = byte(i)
		pixelData[3*i+1] = byte(i / width * 9)
		pixelData[3*i+2] = 128
	}
	encoded, err := Encode(pixelData, width, height, 3, 8, 0)
	if err != nil {
		t.Fatal(err)
	}
	decoded, w, h, comps, bits, err := Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if w != width || h != height || comps != 3 || bits != 8 {
		t.Fatalf("metadata = %dx%d %d comps %d bits", w, h, comps, bits)
	}
	if !bytes.Equal(decoded, pixelData) {
		t.Error("RGB round trip mismatch")
	}
}

func TestStreamLayout(t *testing.T) {
	encoded, err := EncodeSamples([][]int{{1, 2, 3, 4}}, 2, 2, 8, 3)
	if err != nil {
		t.Fatal(err)
	}
	if encoded[0] != 0xFF || encoded[1] != 0xD8 {
		t.Fatal("missing SOI")
	}
	if encoded[2] != 0xFF || encoded[3] != 0xF7 {
		t.Fatalf("first segment is %02X%02X, want SOF55", encoded[2], encoded[3])
	}
	if n := len(encoded); encoded[n-2] != 0xFF || encoded[n-1] != 0xD9 {
		t.Fatal("missing EOI")
	}
}

func TestGolombMarkerStuffing(t *testing.T) {
	w := NewGolombWriter()
	w.WriteBits(0xFF, 8)
	w.WriteBits(0x7F, 7)
	w.WriteBits(0x5, 3)
	data := w.Bytes()
	if data[0] != 0xFF || data[1]&0x80 != 0 {
		t.Fatalf("byte after 0xFF = %02X, high bit must be clear", data[1])
	}

	r := NewGolombReader(data)
	for _, want := range []struct{ v, n int }{{0xFF, 8}, {0x7F, 7}, {0x5, 3}} {
		got, err := r.ReadBits(want.n)
		if err != nil {
			t.Fatal(err)
		}
		if got != want.v {
			t.Errorf("ReadBits(%d) = %X, want %X", want.n, got, want.v)
		}
	}
}

func TestMappedValueLimit(t *testing.T) {
	tr := NewTraits(255, 0, nil)
	w := NewGolombWriter()
	values := []struct{ k, v int }{{0, 0}, {2, 13}, {0, 200}, {1, 255}, {5, 40}}
	for _, tt := range values {
		w.EncodeMappedValue(tt.k, tt.v, tr.Limit, tr.Qbpp)
	}
	r := NewGolombReader(w.Bytes())
	for _, tt := range values {
		got, err := r.DecodeMappedValue(tt.k, tr.Limit, tr.Qbpp)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.v {
			t.Errorf("DecodeMappedValue(k=%d) = %d, want %d", tt.k, got, tt.v)
		}
	}
}

func TestDefaultTraits(t *testing.T) {
	tests := []struct {
		maxVal, near   int
		t1, t2, t3     int
		rng, qbpp, lim int
	}{
		{255, 0, 3, 7, 21, 256, 8, 32},
		{4095, 0, 18, 67, 276, 4096, 12, 48},
		{255, 2, 9, 17, 35, 52, 6, 32},
	}
	for _, tt := range tests {
		tr := NewTraits(tt.maxVal, tt.near, nil)
		if tr.T1 != tt.t1 || tr.T2 != tt.t2 || tr.T3 != tt.t3 {
			t.Errorf("NewTraits(%d, %d) thresholds = %d %d %d, want %d %d %d",
				tt.maxVal, tt.near, tr.T1, tr.T2, tr.T3, tt.t1, tt.t2, tt.t3)
		}
		if tr.Range != tt.rng || tr.Qbpp != tt.qbpp || tr.Limit != tt.lim {
			t.Errorf("NewTraits(%d, %d) range %d qbpp %d limit %d", tt.maxVal, tt.near, tr.Range, tr.Qbpp, tr.Limit)
		}
	}
}

func TestEncodeInvalidParameters(t *testing.T) {
	plane := []int{0, 0, 0, 0}
	tests := []struct {
		name string
		err  error
		fn   func() error
	}{
		{"zero width", common.ErrInvalidDimensions, func() error {
			_, err := EncodeSamples([][]int{plane}, 0, 4, 8, 0)
			return err
		}},
		{"five components", common.ErrInvalidComponents, func() error {
			_, err := EncodeSamples(make([][]int, 5), 2, 2, 8, 0)
			return err
		}},
		{"17 bits", common.ErrInvalidBitDepth, func() error {
			_, err := EncodeSamples([][]int{plane}, 2, 2, 17, 0)
			return err
		}},
		{"near too large", common.ErrInvalidData, func() error {
			_, err := EncodeSamples([][]int{plane}, 2, 2, 2, 2)
			return err
		}},
		{"short plane", common.ErrBufferTooSmall, func() error {
			_, err := EncodeSamples([][]int{plane}, 4, 4, 8, 0)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	if _, _, _, _, _, err := Decode([]byte{0x00, 0x01}); !errors.Is(err, common.ErrInvalidSOI) {
		t.Errorf("garbage: error = %v", err)
	}
	sof3 := []byte{0xFF, 0xD8, 0xFF, 0xC3, 0x00, 0x0B, 8, 0, 2, 0, 2, 1, 1, 0x11, 0}
	if _, _, _, _, _, err := Decode(sof3); !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("SOF3: error = %v", err)
	}

	encoded, err := EncodeSamples([][]int{gradient(16, 16, func(x, y int) int { return x * y })}, 16, 16, 8, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, _, _, err := Decode(encoded[:len(encoded)/2]); err == nil {
		t.Error("truncated stream decoded without error")
	}
}

func BenchmarkEncode8bit(b *testing.B) {
	plane := gradient(256, 256, func(x, y int) int { return (x*y + x) & 0xFF })
	for i := 0; i < b.N; i++ {
		if _, err := EncodeSamples([][]int{plane}, 256, 256, 8, 0); err != nil {
			b.Fatal(err)
		}
	}
}
