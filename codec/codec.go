// Package codec defines the frame-level codec interface of the engine, a
// registry keyed by transfer syntax UID and name, and the bridge to the
// go-dicom imaging codec registry.
package codec

import "github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

// Codec encodes and decodes one frame at a time
type Codec interface {
	// Name returns a human-readable name
	Name() string

	// UID returns the DICOM Transfer Syntax UID the codec produces
	UID() string

	// Encode compresses one native frame. Multi-byte samples are little endian
	// and interleaved unless info says planar.
	Encode(frame []byte, info *imagetypes.FrameInfo, p *Parameters) ([]byte, error)

	// Decode decompresses one frame. info carries the expected geometry and may
	// be nil; the returned info describes the decoded samples.
	Decode(data []byte, info *imagetypes.FrameInfo) ([]byte, *imagetypes.FrameInfo, error)
}

// Capability is implemented by codecs that can reject a geometry before any
// pixel data is touched.
type Capability interface {
	CanEncode(info *imagetypes.FrameInfo) bool
}

// CanEncode reports whether c accepts info. Codecs without a Capability
// accept everything and fail in Encode instead.
func CanEncode(c Codec, info *imagetypes.FrameInfo) bool {
	if capable, ok := c.(Capability); ok {
		return capable.CanEncode(info)
	}
	return true
}

// FrameLength returns the byte length of one native frame described by info.
func FrameLength(info *imagetypes.FrameInfo) int {
	bytesPerSample := (int(info.BitsAllocated) + 7) / 8
	return int(info.Width) * int(info.Height) * int(info.SamplesPerPixel) * bytesPerSample
}
