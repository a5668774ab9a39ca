package imagedesc

import (
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-imageio/attrs"
)

func dataset(t *testing.T, kv ...any) *dicom.Dataset {
	t.Helper()
	ds := &dicom.Dataset{}
	for i := 0; i+1 < len(kv); i += 2 {
		if err := attrs.Set(ds, kv[i].(tag.Tag), kv[i+1]); err != nil {
			t.Fatalf("Set(%v) error: %v", kv[i], err)
		}
	}
	return ds
}

func TestNewNilDataset(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilDataset) {
		t.Errorf("New(nil) error = %v, want %v", err, ErrNilDataset)
	}
}

func TestDefaultsOnEmptyDataset(t *testing.T) {
	d, err := New(&dicom.Dataset{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if d.Rows() != 0 || d.Columns() != 0 {
		t.Errorf("Rows(), Columns() = %d, %d, want 0, 0", d.Rows(), d.Columns())
	}
	if d.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", d.Frames())
	}
	if d.BitsAllocated() != 8 || d.BitsStored() != 8 || d.HighBit() != 7 {
		t.Errorf("bits = %d/%d/%d, want 8/8/7", d.BitsAllocated(), d.BitsStored(), d.HighBit())
	}
	if d.Photometric() != Monochrome2 {
		t.Errorf("Photometric() = %v, want %v", d.Photometric(), Monochrome2)
	}
	if d.FrameLength() != 0 || d.Length() != 0 {
		t.Errorf("FrameLength(), Length() = %d, %d, want 0, 0", d.FrameLength(), d.Length())
	}
	if _, ok := d.PixelPaddingValue(); ok {
		t.Error("PixelPaddingValue() present on empty dataset")
	}
	if d.ModalityLUT() != nil || d.VOILUT() != nil {
		t.Error("LUTs present on empty dataset")
	}
}

func TestFrameLength(t *testing.T) {
	tests := []struct {
		rows, cols, samples, bits, frames int
	}{
		{0, 0, 1, 8, 1},
		{1, 1, 1, 8, 1},
		{512, 512, 1, 16, 1},
		{256, 128, 3, 8, 10},
		{7, 9, 1, 32, 3},
		{100, 0, 3, 16, 2},
		{64, 64, 1, 16, 0},
		{64, 64, 1, 16, -4},
	}
	for _, tt := range tests {
		ds := dataset(t,
			tag.Rows, []int{tt.rows},
			tag.Columns, []int{tt.cols},
			tag.SamplesPerPixel, []int{tt.samples},
			tag.BitsAllocated, []int{tt.bits},
			tag.NumberOfFrames, []string{strconv.Itoa(tt.frames)},
		)
		d, err := New(ds)
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		want := int64(tt.rows * tt.cols * tt.samples * tt.bits / 8)
		if d.FrameLength() != want {
			t.Errorf("FrameLength() = %d, want %d", d.FrameLength(), want)
		}
		if got, wantLen := d.Length(), want*int64(max(1, tt.frames)); got != wantLen {
			t.Errorf("Length() = %d, want %d", got, wantLen)
		}
	}
}

func TestClamping(t *testing.T) {
	tests := []struct {
		name                  string
		rows                  int
		allocated, stored, hb int
		wantRows              int
		wantStored, wantHigh  int
	}{
		{"consistent", 10, 16, 12, 11, 10, 12, 11},
		{"negative rows", -5, 16, 12, 11, 0, 12, 11},
		{"stored above allocated", 1, 16, 20, 19, 1, 16, 15},
		{"high bit below stored", 1, 16, 12, 4, 1, 12, 11},
		{"high bit above allocated", 1, 8, 8, 9, 1, 8, 7},
		{"high bit inside allocated", 1, 16, 12, 15, 1, 12, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := dataset(t,
				tag.Rows, []int{tt.rows},
				tag.BitsAllocated, []int{tt.allocated},
				tag.BitsStored, []int{tt.stored},
				tag.HighBit, []int{tt.hb},
			)
			d, err := New(ds)
			if err != nil {
				t.Fatal(err)
			}
			if d.Rows() != tt.wantRows {
				t.Errorf("Rows() = %d, want %d", d.Rows(), tt.wantRows)
			}
			if d.BitsStored() != tt.wantStored {
				t.Errorf("BitsStored() = %d, want %d", d.BitsStored(), tt.wantStored)
			}
			if d.HighBit() != tt.wantHigh {
				t.Errorf("HighBit() = %d, want %d", d.HighBit(), tt.wantHigh)
			}
		})
	}
}

func TestBitsCompressedOverride(t *testing.T) {
	ds := dataset(t, tag.BitsAllocated, []int{16}, tag.BitsStored, []int{12})
	d, err := NewWithBitsCompressed(ds, 16)
	if err != nil {
		t.Fatal(err)
	}
	if d.BitsCompressed() != 16 || d.BitsStored() != 12 {
		t.Errorf("BitsCompressed(), BitsStored() = %d, %d, want 16, 12", d.BitsCompressed(), d.BitsStored())
	}
	d, _ = New(ds)
	if d.BitsCompressed() != 12 {
		t.Errorf("BitsCompressed() = %d, want 12", d.BitsCompressed())
	}
}

func TestDerivedFlags(t *testing.T) {
	ds := dataset(t,
		tag.Rows, []int{2},
		tag.Columns, []int{2},
		tag.SamplesPerPixel, []int{3},
		tag.PhotometricInterpretation, []string{"YBR_FULL_422"},
		attrs.PlanarConfiguration, []int{1},
		tag.BitsAllocated, []int{8},
		tag.PixelRepresentation, []int{1},
		tag.NumberOfFrames, []string{"4"},
		tag.Modality, []string{"US"},
		tag.RescaleSlope, []string{"2"},
		tag.WindowCenter, []string{"40"},
		tag.WindowWidth, []string{"400"},
	)
	if err := attrs.SetVR(ds, attrs.PixelPaddingValue, "US", []int{0}); err != nil {
		t.Fatal(err)
	}
	if err := attrs.SetVR(ds, attrs.OverlayTag(0, attrs.OverlayBitsAllocated), "US", []int{16}); err != nil {
		t.Fatal(err)
	}
	d, err := New(ds)
	if err != nil {
		t.Fatal(err)
	}
	if !d.IsSigned() || !d.IsBanded() || !d.IsMultiframe() {
		t.Errorf("IsSigned(), IsBanded(), IsMultiframe() = %v, %v, %v, want all true",
			d.IsSigned(), d.IsBanded(), d.IsMultiframe())
	}
	if d.IsFloatPixelData() {
		t.Error("IsFloatPixelData() = true for 8-bit data")
	}
	if d.Photometric() != YBRFull422 {
		t.Errorf("Photometric() = %v, want %v", d.Photometric(), YBRFull422)
	}
	if v, ok := d.PixelPaddingValue(); !ok || v != 0 {
		t.Errorf("PixelPaddingValue() = %d, %v, want 0, true", v, ok)
	}
	if lut := d.ModalityLUT(); lut == nil || lut.Slope != 2 || lut.Intercept != 0 {
		t.Errorf("ModalityLUT() = %+v, want slope 2", lut)
	}
	if voi := d.VOILUT(); voi == nil || len(voi.WindowWidth) != 1 || voi.WindowWidth[0] != 400 {
		t.Errorf("VOILUT() = %+v, want width 400", voi)
	}
	if got := d.EmbeddedOverlays(); len(got) != 1 || got[0] != 0x6000 {
		t.Errorf("EmbeddedOverlays() = %v, want [0x6000]", got)
	}
}

func TestFloatPixelData(t *testing.T) {
	tests := []struct {
		bits     int
		modality string
		want     bool
	}{
		{32, "RF", true},
		{32, "XA", true},
		{32, "RTDOSE", true},
		{32, "CT", true},
		{32, "MR", false},
		{64, "CT", true},
		{16, "CT", false},
		{16, "RF", false},
	}
	for _, tt := range tests {
		d, err := New(dataset(t, tag.BitsAllocated, []int{tt.bits}, tag.Modality, []string{tt.modality}))
		if err != nil {
			t.Fatal(err)
		}
		if d.IsFloatPixelData() != tt.want {
			t.Errorf("IsFloatPixelData(%d, %s) = %v, want %v", tt.bits, tt.modality, d.IsFloatPixelData(), tt.want)
		}
	}
}

func TestMinMaxCache(t *testing.T) {
	d, err := New(dataset(t, tag.NumberOfFrames, []string{"2"}))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.MinMax(0); ok {
		t.Error("MinMax(0) present before SetMinMax")
	}
	d.SetMinMax(1, MinMax{Min: -3, Max: 9})
	d.SetMinMax(2, MinMax{Min: 1, Max: 1})
	d.SetMinMax(-1, MinMax{Min: 1, Max: 1})
	if mm, ok := d.MinMax(1); !ok || mm.Min != -3 || mm.Max != 9 {
		t.Errorf("MinMax(1) = %+v, %v, want {-3 9}, true", mm, ok)
	}
	if _, ok := d.MinMax(2); ok {
		t.Error("MinMax(2) present for out of range frame")
	}
}

func TestComputeFrameStats(t *testing.T) {
	ds := dataset(t,
		tag.BitsAllocated, []int{16},
		tag.BitsStored, []int{12},
		tag.PixelRepresentation, []int{1},
	)
	d, err := New(ds)
	if err != nil {
		t.Fatal(err)
	}
	values := []int16{-2048, 0, 2047, 1}
	frame := make([]byte, 2*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint16(frame[2*i:], uint16(v)&0x0FFF)
	}
	st, err := ComputeFrameStats(frame, d, binary.BigEndian)
	if err != nil {
		t.Fatalf("ComputeFrameStats() error: %v", err)
	}
	if st.Min != -2048 || st.Max != 2047 {
		t.Errorf("Min, Max = %v, %v, want -2048, 2047", st.Min, st.Max)
	}
	if st.Count != 4 || math.Abs(st.Mean-0) > 1e-9 {
		t.Errorf("Count, Mean = %d, %v, want 4, 0", st.Count, st.Mean)
	}

	if _, err := d.UpdateMinMax(0, frame, binary.BigEndian); err != nil {
		t.Fatal(err)
	}
	if mm, ok := d.MinMax(0); !ok || mm.Min != -2048 {
		t.Errorf("MinMax(0) = %+v, %v", mm, ok)
	}
}

func TestValidate(t *testing.T) {
	d, _ := New(dataset(t, tag.SamplesPerPixel, []int{3}, tag.PhotometricInterpretation, []string{"RGB"}))
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	d, _ = New(dataset(t,
		tag.SamplesPerPixel, []int{2},
		tag.BitsAllocated, []int{12},
		tag.PhotometricInterpretation, []string{"PALETTE COLOR"},
	))
	err := d.Validate()
	for _, want := range []error{ErrInvalidSamplesPerPixel, ErrInvalidBitsAllocated, ErrPhotometricMismatch, ErrMissingPaletteLUT} {
		if !errors.Is(err, want) {
			t.Errorf("Validate() error = %v, want it to include %v", err, want)
		}
	}
}

func TestEqualAndHash(t *testing.T) {
	build := func(rows int) *Descriptor {
		d, err := New(dataset(t, tag.Rows, []int{rows}, tag.Columns, []int{4}, tag.Modality, []string{"CT"}))
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	a, b, c := build(3), build(3), build(5)
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Error("descriptors from equal datasets differ")
	}
	a.SetMinMax(0, MinMax{Min: 1, Max: 2})
	if !a.Equal(b) {
		t.Error("min/max cache changed equality")
	}
	if a.Equal(c) {
		t.Error("descriptors with different rows are equal")
	}
}

func TestFrameInfo(t *testing.T) {
	d, _ := New(dataset(t,
		tag.Rows, []int{3},
		tag.Columns, []int{5},
		tag.BitsAllocated, []int{16},
		tag.BitsStored, []int{12},
		tag.PixelRepresentation, []int{1},
	))
	fi := d.FrameInfo()
	if fi.Width != 5 || fi.Height != 3 || fi.BitsStored != 12 || fi.HighBit != 11 {
		t.Errorf("FrameInfo() = %+v", fi)
	}
	if fi.PixelRepresentation != 1 {
		t.Errorf("PixelRepresentation = %v, want 1", fi.PixelRepresentation)
	}
}

func TestParsePhotometric(t *testing.T) {
	tests := []struct {
		in   string
		want Photometric
	}{
		{"MONOCHROME1", Monochrome1},
		{"monochrome2 ", Monochrome2},
		{"PALETTE COLOR", PaletteColor},
		{"PALETTE_COLOR", PaletteColor},
		{"YBR_PARTIAL_420", YBRPartial420},
		{"XYZ", PhotometricUnknown},
	}
	for _, tt := range tests {
		if got := ParsePhotometric(tt.in); got != tt.want {
			t.Errorf("ParsePhotometric(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
