package rle

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

var (
	_ codec.Codec      = (*Codec)(nil)
	_ codec.Capability = (*Codec)(nil)
)

// Codec is RLE Lossless
type Codec struct{}

// NewCodec creates the RLE Lossless codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the codec name
func (c *Codec) Name() string { return "rle-lossless" }

// UID returns the transfer syntax UID
func (c *Codec) UID() string { return transfersyntax.RLELossless }

// CanEncode accepts 8, 16 or 32 bits allocated with one or three samples
func (c *Codec) CanEncode(info *imagetypes.FrameInfo) bool {
	return info != nil &&
		(info.BitsAllocated == 8 || info.BitsAllocated == 16 || info.BitsAllocated == 32) &&
		(info.SamplesPerPixel == 1 || info.SamplesPerPixel == 3)
}

// Encode compresses one native frame; parameters are ignored.
func (c *Codec) Encode(frame []byte, info *imagetypes.FrameInfo, _ *codec.Parameters) ([]byte, error) {
	if !c.CanEncode(info) {
		return nil, fmt.Errorf("%w: %s cannot encode %d bits with %d samples",
			codec.ErrUnsupportedFormat, c.Name(), info.BitsAllocated, info.SamplesPerPixel)
	}
	n := codec.FrameLength(info)
	if len(frame) < n {
		return nil, fmt.Errorf("%w: frame is %d bytes, want %d", codec.ErrInvalidParameter, len(frame), n)
	}
	frame = codec.Interleave(frame[:n], info)
	return Encode(frame, int(info.Width), int(info.Height), int(info.SamplesPerPixel), int(info.BitsAllocated)/8)
}

// Decode expands one frame. RLE carries no geometry, so info is required.
// Color output is interleaved.
func (c *Codec) Decode(data []byte, info *imagetypes.FrameInfo) ([]byte, *imagetypes.FrameInfo, error) {
	if info == nil || !c.CanEncode(info) {
		return nil, nil, fmt.Errorf("%w: RLE decode needs 8, 16 or 32 bit geometry", codec.ErrInvalidParameter)
	}
	frame, err := Decode(data, int(info.Width), int(info.Height), int(info.SamplesPerPixel), int(info.BitsAllocated)/8)
	if err != nil {
		return nil, nil, fmt.Errorf("RLE decode failed: %w", err)
	}
	out := *info
	out.PlanarConfiguration = 0
	return frame, &out, nil
}

func init() {
	c := NewCodec()
	codec.Register(c)
	codec.Export(c)
}
