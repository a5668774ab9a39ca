package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
)

// Interleave returns frame with color-by-pixel sample order. Frames that are
// already interleaved, or have one sample, are returned unchanged.
func Interleave(frame []byte, info *imagetypes.FrameInfo) []byte {
	spp := int(info.SamplesPerPixel)
	if info.PlanarConfiguration == 0 || spp < 2 {
		return frame
	}
	bps := (int(info.BitsAllocated) + 7) / 8
	pixels := int(info.Width) * int(info.Height)
	out := make([]byte, len(frame))
	for s := 0; s < spp; s++ {
		for i := 0; i < pixels; i++ {
			src := (s*pixels + i) * bps
			dst := (i*spp + s) * bps
			if src+bps <= len(frame) {
				copy(out[dst:dst+bps], frame[src:src+bps])
			}
		}
	}
	return out
}

// Deinterleave converts a color-by-pixel frame to color-by-plane.
func Deinterleave(frame []byte, info *imagetypes.FrameInfo) []byte {
	spp := int(info.SamplesPerPixel)
	if spp < 2 {
		return frame
	}
	bps := (int(info.BitsAllocated) + 7) / 8
	pixels := int(info.Width) * int(info.Height)
	out := make([]byte, len(frame))
	for i := 0; i < pixels; i++ {
		for s := 0; s < spp; s++ {
			src := (i*spp + s) * bps
			dst := (s*pixels + i) * bps
			if src+bps <= len(frame) {
				copy(out[dst:dst+bps], frame[src:src+bps])
			}
		}
	}
	return out
}

// ReadSamples unpacks little endian samples of bitsAllocated 8 or 16 into
// ints, keeping only the low bitsStored bits. Signed samples come back in
// two's complement of bitsStored bits, which is what lossless coders need.
func ReadSamples(frame []byte, bitsAllocated, bitsStored int) ([]int, error) {
	mask := 1<<uint(bitsStored) - 1
	switch bitsAllocated {
	case 8:
		out := make([]int, len(frame))
		for i, b := range frame {
			out[i] = int(b) & mask
		}
		return out, nil
	case 16:
		if len(frame)%2 != 0 {
			return nil, fmt.Errorf("%w: odd frame length %d for 16-bit samples", ErrInvalidParameter, len(frame))
		}
		out := make([]int, len(frame)/2)
		for i := range out {
			out[i] = int(binary.LittleEndian.Uint16(frame[2*i:])) & mask
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: bits allocated %d", ErrUnsupportedFormat, bitsAllocated)
	}
}

// WriteSamples packs samples into a little endian frame. With signed set,
// values are sign extended from bitsStored to bitsAllocated.
func WriteSamples(samples []int, bitsAllocated, bitsStored int, signed bool) []byte {
	signBit := 1 << uint(bitsStored-1)
	mask := 1<<uint(bitsStored) - 1
	extend := func(v int) int {
		v &= mask
		if signed && v&signBit != 0 {
			v -= 1 << uint(bitsStored)
		}
		return v
	}
	if bitsAllocated <= 8 {
		out := make([]byte, len(samples))
		for i, v := range samples {
			out[i] = byte(extend(v))
		}
		return out
	}
	out := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(extend(v)))
	}
	return out
}
