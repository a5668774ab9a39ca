// Package pixeldata resolves the Pixel Data element into one of two
// containers and splits it into frames.
package pixeldata

import (
	"encoding/binary"
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
)

// Container is a *Blob or a *Fragments.
type Container interface {
	// FrameBytes returns frame i of frames. frameLength is only used by
	// native data.
	FrameBytes(i, frames int, frameLength int64) ([]byte, error)
	container()
}

// Blob is native pixel data stored contiguously.
type Blob struct {
	Data  []byte
	Order binary.ByteOrder
}

func (*Blob) container() {}

// FrameBytes returns a view of frame i.
func (b *Blob) FrameBytes(i, frames int, frameLength int64) ([]byte, error) {
	if i < 0 || i >= frames {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameOutOfRange, i, frames)
	}
	start := int64(i) * frameLength
	end := start + frameLength
	if end > int64(len(b.Data)) {
		return nil, fmt.Errorf("%w: frame %d ends at %d, data is %d bytes", ErrFrameOutOfRange, i, end, len(b.Data))
	}
	return b.Data[start:end], nil
}

// Fragments is encapsulated pixel data: the Basic Offset Table and the data
// fragments that follow it.
type Fragments struct {
	Offsets []uint32
	Items   [][]byte
}

func (*Fragments) container() {}

// Groups returns the fragment indexes making up each of frames frames.
func (f *Fragments) Groups(frames int) ([][]int, error) {
	lengths := make([]int64, len(f.Items))
	leads := make([][]byte, len(f.Items))
	for i, item := range f.Items {
		lengths[i] = int64(len(item))
		leads[i] = item[:min(len(item), 4)]
	}
	return group(lengths, leads, f.Offsets, frames)
}

// FrameBytes returns the compressed bytes of frame i. A frame spread over
// several fragments is concatenated.
func (f *Fragments) FrameBytes(i, frames int, _ int64) ([]byte, error) {
	if i < 0 || i >= frames {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameOutOfRange, i, frames)
	}
	groups, err := f.Groups(frames)
	if err != nil {
		return nil, err
	}
	g := groups[i]
	if len(g) == 1 {
		return f.Items[g[0]], nil
	}
	var out []byte
	for _, idx := range g {
		out = append(out, f.Items[idx]...)
	}
	return out, nil
}

// Resolve maps the value of a Pixel Data element to a container. Native
// frames parsed by suyashkumar/dicom come back as little endian bytes.
func Resolve(elem *dicom.Element) (Container, error) {
	return ResolveOrder(elem, binary.LittleEndian)
}

// ResolveOrder is Resolve for a dataset encoded in order. Only unprocessed
// native values keep the byte order of the encoding.
func ResolveOrder(elem *dicom.Element, order binary.ByteOrder) (Container, error) {
	if elem == nil || elem.Value == nil {
		return nil, fmt.Errorf("%w: no value", ErrUnsupportedPixelData)
	}
	info, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, fmt.Errorf("%w: value of type %T", ErrUnsupportedPixelData, elem.Value.GetValue())
	}
	switch {
	case info.IntentionallySkipped:
		return nil, fmt.Errorf("%w: pixel data was skipped while parsing", ErrUnsupportedPixelData)
	case info.IntentionallyUnprocessed:
		return &Blob{Data: info.UnprocessedValueData, Order: order}, nil
	case info.IsEncapsulated:
		f := &Fragments{Offsets: info.Offsets}
		for _, fr := range info.Frames {
			f.Items = append(f.Items, fr.EncapsulatedData.Data)
		}
		return f, nil
	}

	b := &Blob{Order: binary.LittleEndian}
	for _, fr := range info.Frames {
		data, err := nativeBytes(fr)
		if err != nil {
			return nil, err
		}
		b.Data = append(b.Data, data...)
	}
	return b, nil
}

func nativeBytes(fr *frame.Frame) ([]byte, error) {
	if fr == nil || fr.NativeData == nil {
		return nil, fmt.Errorf("%w: empty native frame", ErrUnsupportedPixelData)
	}
	switch raw := fr.NativeData.RawDataSlice().(type) {
	case []uint8:
		return raw, nil
	case []int8:
		out := make([]byte, len(raw))
		for i, v := range raw {
			out[i] = byte(v)
		}
		return out, nil
	case []uint16:
		out := make([]byte, 2*len(raw))
		for i, v := range raw {
			binary.LittleEndian.PutUint16(out[2*i:], v)
		}
		return out, nil
	case []int16:
		out := make([]byte, 2*len(raw))
		for i, v := range raw {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
		}
		return out, nil
	case []uint32:
		out := make([]byte, 4*len(raw))
		for i, v := range raw {
			binary.LittleEndian.PutUint32(out[4*i:], v)
		}
		return out, nil
	case []int32:
		out := make([]byte, 4*len(raw))
		for i, v := range raw {
			binary.LittleEndian.PutUint32(out[4*i:], uint32(v))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: native samples of type %T", ErrUnsupportedPixelData, raw)
	}
}

// SwapBytes16 reverses the byte order of each 16-bit word of b in place.
func SwapBytes16(b []byte) {
	for i := 0; i+1 < len(b); i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}
}

// SwapBytes32 reverses the byte order of each 32-bit word of b in place.
func SwapBytes32(b []byte) {
	for i := 0; i+3 < len(b); i += 4 {
		b[i], b[i+1], b[i+2], b[i+3] = b[i+3], b[i+2], b[i+1], b[i]
	}
}

// ToLittleEndian returns native data in little endian order, swapping a
// copy when order is big endian. bitsAllocated selects the word size.
func ToLittleEndian(data []byte, order binary.ByteOrder, bitsAllocated int) []byte {
	if order != binary.BigEndian || bitsAllocated <= 8 {
		return data
	}
	out := append([]byte(nil), data...)
	if bitsAllocated == 32 {
		SwapBytes32(out)
	} else {
		SwapBytes16(out)
	}
	return out
}
