package extended

import (
	"bytes"
	"encoding/binary"
	"testing"

	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/header"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

// ctFrame holds signed 12-bit samples, sign extended through bit 15
func ctFrame(width, height int) ([]byte, *imagetypes.FrameInfo) {
	frame := make([]byte, width*height*2)
	for i := 0; i < width*height; i++ {
		v := int16((i%width)*40 - 1024 + (i/width)*25)
		binary.LittleEndian.PutUint16(frame[2*i:], uint16(v))
	}
	return frame, &imagetypes.FrameInfo{
		Width:                     uint16(width),
		Height:                    uint16(height),
		BitsAllocated:             16,
		BitsStored:                12,
		HighBit:                   11,
		SamplesPerPixel:           1,
		PixelRepresentation:       1,
		PhotometricInterpretation: "MONOCHROME2",
	}
}

func int16Error(a, b []byte) int {
	m := 0
	for i := 0; i+1 < len(a); i += 2 {
		d := int(int16(binary.LittleEndian.Uint16(a[i:]))) - int(int16(binary.LittleEndian.Uint16(b[i:])))
		if d < 0 {
			d = -d
		}
		m = max(m, d)
	}
	return m
}

func TestExtendedCodecSigned(t *testing.T) {
	frame, info := ctFrame(48, 40)
	c := NewExtendedCodec()
	encoded, err := c.Encode(frame, info, codec.NewParameters().WithQuality(100))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(encoded) >= len(frame) {
		t.Errorf("encoded %d bytes from a %d byte frame", len(encoded), len(frame))
	}

	p, err := header.NewJPEGParser(bytes.NewReader(encoded))
	if err != nil {
		t.Fatal(err)
	}
	if p.TransferSyntaxUID() != transfersyntax.JPEGExtended12Bit {
		t.Errorf("stream parses as %s, want %s", p.TransferSyntaxUID(), transfersyntax.JPEGExtended12Bit)
	}
	if cp := p.CodecParameters(); cp.BitsStored != 12 {
		t.Errorf("stream precision = %d, want 12", cp.BitsStored)
	}

	decoded, outInfo, err := c.Decode(encoded, info)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(decoded) != len(frame) {
		t.Fatalf("decoded %d bytes, want %d", len(decoded), len(frame))
	}
	if e := int16Error(frame, decoded); e > 3 {
		t.Errorf("max error %d, want <= 3", e)
	}
	if outInfo.PixelRepresentation != 1 || outInfo.BitsStored != 12 || outInfo.BitsAllocated != 16 {
		t.Errorf("decoded info = %+v", outInfo)
	}
}

func TestExtendedCodecWithoutInfo(t *testing.T) {
	frame, info := ctFrame(16, 16)
	info.PixelRepresentation = 0
	info.PhotometricInterpretation = "MONOCHROME1"
	c := NewExtendedCodec()
	encoded, err := c.Encode(frame, info, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, outInfo, err := c.Decode(encoded, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outInfo.BitsStored != 12 || outInfo.BitsAllocated != 16 || outInfo.PhotometricInterpretation != "MONOCHROME2" {
		t.Errorf("decoded info = %+v", outInfo)
	}
	_, outInfo, err = c.Decode(encoded, info)
	if err != nil {
		t.Fatal(err)
	}
	if outInfo.PhotometricInterpretation != "MONOCHROME1" {
		t.Errorf("PhotometricInterpretation = %s, want MONOCHROME1", outInfo.PhotometricInterpretation)
	}

	wrong := *info
	wrong.Width = 17
	if _, _, err := c.Decode(encoded, &wrong); err == nil {
		t.Error("Decode() accepted mismatched dimensions")
	}
}

func TestExtendedCodecPlanarRGB(t *testing.T) {
	width, height := 16, 8
	pixels := width * height
	planar := make([]byte, pixels*3)
	for s, v := range []byte{220, 60, 110} {
		for i := 0; i < pixels; i++ {
			planar[s*pixels+i] = v
		}
	}
	info := &imagetypes.FrameInfo{
		Width: uint16(width), Height: uint16(height),
		BitsAllocated: 8, BitsStored: 8, HighBit: 7,
		SamplesPerPixel: 3, PlanarConfiguration: 1,
		PhotometricInterpretation: "RGB",
	}

	c := NewExtendedCodec()
	encoded, err := c.Encode(planar, info, codec.NewParameters().WithQuality(95))
	if err != nil {
		t.Fatal(err)
	}
	decoded, outInfo, err := c.Decode(encoded, info)
	if err != nil {
		t.Fatal(err)
	}
	if outInfo.PlanarConfiguration != 0 || outInfo.PhotometricInterpretation != "RGB" {
		t.Errorf("decoded info = %+v", outInfo)
	}
	want := codec.Interleave(planar, info)
	for i := range want {
		d := int(want[i]) - int(decoded[i])
		if d < -2 || d > 2 {
			t.Fatalf("sample %d = %d, want %d", i, decoded[i], want[i])
		}
	}
}

func TestExtendedCodecCanEncode(t *testing.T) {
	c := NewExtendedCodec()
	tests := []struct {
		name string
		info *imagetypes.FrameInfo
		want bool
	}{
		{"12 bit", &imagetypes.FrameInfo{BitsAllocated: 16, BitsStored: 12, SamplesPerPixel: 1}, true},
		{"signed 12 bit", &imagetypes.FrameInfo{BitsAllocated: 16, BitsStored: 12, SamplesPerPixel: 1, PixelRepresentation: 1}, true},
		{"8 bit", &imagetypes.FrameInfo{BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 1, PhotometricInterpretation: "MONOCHROME2"}, true},
		{"ybr full", &imagetypes.FrameInfo{BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 3, PhotometricInterpretation: "YBR_FULL"}, true},
		{"16 bit", &imagetypes.FrameInfo{BitsAllocated: 16, BitsStored: 16, SamplesPerPixel: 1}, false},
		{"palette", &imagetypes.FrameInfo{BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 1, PhotometricInterpretation: "PALETTE COLOR"}, false},
		{"subsampled", &imagetypes.FrameInfo{BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 3, PhotometricInterpretation: "YBR_FULL_422"}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codec.CanEncode(c, tt.info); got != tt.want {
				t.Errorf("CanEncode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodecRegistry(t *testing.T) {
	for _, key := range []string{transfersyntax.JPEGExtended12Bit, "jpeg-extended"} {
		c, err := codec.Get(key)
		if err != nil {
			t.Fatalf("Get(%q) unexpected error: %v", key, err)
		}
		if c.UID() != transfersyntax.JPEGExtended12Bit {
			t.Errorf("Get(%q).UID() = %q", key, c.UID())
		}
	}

	exported, ok := dicomcodec.GetGlobalRegistry().GetCodec(codec.Syntax(transfersyntax.JPEGExtended12Bit))
	if !ok {
		t.Fatal("JPEG Extended is not registered with go-dicom")
	}
	if exported.Name() != "jpeg-extended" {
		t.Errorf("exported codec name = %q", exported.Name())
	}
}
