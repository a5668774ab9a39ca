package jpegls

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

func signedFrame(width, height int) ([]byte, *imagetypes.FrameInfo) {
	frame := make([]byte, width*height*2)
	for i := 0; i < width*height; i++ {
		v := int16((i%width)*11 - 300 + (i/width)*2)
		binary.LittleEndian.PutUint16(frame[2*i:], uint16(v))
	}
	return frame, &imagetypes.FrameInfo{
		Width:                     uint16(width),
		Height:                    uint16(height),
		BitsAllocated:             16,
		BitsStored:                16,
		HighBit:                   15,
		SamplesPerPixel:           1,
		PixelRepresentation:       1,
		PhotometricInterpretation: "MONOCHROME2",
	}
}

func TestCodecLosslessSigned(t *testing.T) {
	frame, info := signedFrame(40, 30)
	c := NewCodec(transfersyntax.JPEGLSLossless)
	encoded, err := c.Encode(frame, info, nil)
	if err != nil {
		t.Fatal(err)
	}
	decoded, outInfo, err := c.Decode(encoded, info)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, frame) {
		t.Error("lossless round trip mismatch")
	}
	if outInfo.PixelRepresentation != 1 {
		t.Errorf("PixelRepresentation = %d, want 1", outInfo.PixelRepresentation)
	}

	p, err := header.NewJPEGParser(bytes.NewReader(encoded))
	if err != nil {
		t.Fatal(err)
	}
	if p.TransferSyntaxUID() != transfersyntax.JPEGLSLossless {
		t.Errorf("stream parses as %s", p.TransferSyntaxUID())
	}
}

func TestCodecNearLosslessSigned(t *testing.T) {
	frame, info := signedFrame(40, 30)
	c := NewCodec(transfersyntax.JPEGLSNearLossless)
	encoded, err := c.Encode(frame, info, codec.NewParameters().WithNear(4))
	if err != nil {
		t.Fatal(err)
	}
	decoded, _, err := c.Decode(encoded, info)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(frame); i += 2 {
		want := int(int16(binary.LittleEndian.Uint16(frame[i:])))
		got := int(int16(binary.LittleEndian.Uint16(decoded[i:])))
		if d := abs(got - want); d > 4 {
			t.Fatalf("sample %d: got %d, want %d within 4", i/2, got, want)
		}
	}

	p, err := header.NewJPEGParser(bytes.NewReader(encoded))
	if err != nil {
		t.Fatal(err)
	}
	if p.TransferSyntaxUID() != transfersyntax.JPEGLSNearLossless {
		t.Errorf("stream parses as %s", p.TransferSyntaxUID())
	}
	if !p.LossyImageCompression() {
		t.Error("near-lossless stream not reported as lossy")
	}
}

func TestCodecDefaultNear(t *testing.T) {
	if got := NewCodec(transfersyntax.JPEGLSNearLossless).near(nil); got != DefaultNear {
		t.Errorf("near(nil) = %d, want %d", got, DefaultNear)
	}
	if got := NewCodec(transfersyntax.JPEGLSLossless).near(codec.NewParameters().WithNear(3)); got != 0 {
		t.Errorf("lossless codec near = %d, want 0", got)
	}
}

func TestCodecPlanarRGB(t *testing.T) {
	width, height := 8, 6
	planar := make([]byte, width*height*3)
	for i := range planar {
		planar[i] = byte(i * 5)
	}
	info := &imagetypes.FrameInfo{
		Width: uint16(width), Height: uint16(height),
		BitsAllocated: 8, BitsStored: 8, HighBit: 7,
		SamplesPerPixel: 3, PlanarConfiguration: 1,
		PhotometricInterpretation: "RGB",
	}
	c := NewCodec(transfersyntax.JPEGLSLossless)
	encoded, err := c.Encode(planar, info, nil)
	if err != nil {
		t.Fatal(err)
	}
	decoded, outInfo, err := c.Decode(encoded, nil)
	if err != nil {
		t.Fatal(err)
	}
	if outInfo.PhotometricInterpretation != "RGB" || outInfo.SamplesPerPixel != 3 {
		t.Errorf("decoded info = %+v", outInfo)
	}
	if !bytes.Equal(decoded, codec.Interleave(planar, info)) {
		t.Error("decoded frame is not the interleaved source")
	}
}

func TestCodecCanEncode(t *testing.T) {
	c := NewCodec(transfersyntax.JPEGLSLossless)
	tests := []struct {
		name string
		info *imagetypes.FrameInfo
		want bool
	}{
		{"16 bit", &imagetypes.FrameInfo{BitsAllocated: 16, BitsStored: 12, SamplesPerPixel: 1}, true},
		{"rgb", &imagetypes.FrameInfo{BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 3}, true},
		{"two samples", &imagetypes.FrameInfo{BitsAllocated: 8, BitsStored: 8, SamplesPerPixel: 2}, false},
		{"32 bit", &imagetypes.FrameInfo{BitsAllocated: 32, BitsStored: 32, SamplesPerPixel: 1}, false},
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
	for _, uid := range []string{transfersyntax.JPEGLSLossless, transfersyntax.JPEGLSNearLossless} {
		c, err := codec.Get(uid)
		if err != nil {
			t.Fatalf("Get(%q) unexpected error: %v", uid, err)
		}
		if c.UID() != uid {
			t.Errorf("Get(%q).UID() = %q", uid, c.UID())
		}
		if _, ok := dicomcodec.GetGlobalRegistry().GetCodec(codec.Syntax(uid)); !ok {
			t.Errorf("%s is not registered with go-dicom", uid)
		}
	}
}
