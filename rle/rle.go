// Package rle implements DICOM RLE Lossless (PS3.5 Annex G).
package rle

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	headerSize  = 64
	maxSegments = 15
)

// Encode compresses an interleaved little endian frame of width*height
// pixels with samples of bytesPerSample bytes. Each sample byte plane is one
// segment, most significant byte first, and each row is packed separately.
func Encode(frame []byte, width, height, samples, bytesPerSample int) ([]byte, error) {
	segments := samples * bytesPerSample
	if segments < 1 || segments > maxSegments {
		return nil, fmt.Errorf("%w: %d samples of %d bytes", ErrSegmentCount, samples, bytesPerSample)
	}
	pixels := width * height
	if len(frame) < pixels*segments {
		return nil, fmt.Errorf("%w: frame is %d bytes, want %d", ErrTruncated, len(frame), pixels*segments)
	}

	var body bytes.Buffer
	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header, uint32(segments))
	row := make([]byte, width)
	for s := 0; s < samples; s++ {
		for b := bytesPerSample - 1; b >= 0; b-- {
			seg := s*bytesPerSample + (bytesPerSample - 1 - b)
			binary.LittleEndian.PutUint32(header[4+4*seg:], uint32(headerSize+body.Len()))
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					row[x] = frame[((y*width+x)*samples+s)*bytesPerSample+b]
				}
				packBits(&body, row)
			}
			if body.Len()%2 != 0 {
				body.WriteByte(0)
			}
		}
	}
	return append(header, body.Bytes()...), nil
}

// Decode expands an RLE frame into an interleaved little endian frame.
func Decode(data []byte, width, height, samples, bytesPerSample int) ([]byte, error) {
	if len(data) < headerSize {
		return nil, ErrInvalidHeader
	}
	segments := int(binary.LittleEndian.Uint32(data))
	if segments != samples*bytesPerSample {
		return nil, fmt.Errorf("%w: header declares %d, want %d", ErrSegmentCount, segments, samples*bytesPerSample)
	}
	offsets := make([]int, segments+1)
	for i := 0; i < segments; i++ {
		offsets[i] = int(binary.LittleEndian.Uint32(data[4+4*i:]))
		if offsets[i] < headerSize || offsets[i] > len(data) || (i > 0 && offsets[i] < offsets[i-1]) {
			return nil, fmt.Errorf("%w: segment %d offset %d", ErrInvalidHeader, i, offsets[i])
		}
	}
	offsets[segments] = len(data)

	pixels := width * height
	out := make([]byte, pixels*segments)
	for s := 0; s < samples; s++ {
		for b := bytesPerSample - 1; b >= 0; b-- {
			seg := s*bytesPerSample + (bytesPerSample - 1 - b)
			plane, err := unpackBits(data[offsets[seg]:offsets[seg+1]], pixels)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", seg, err)
			}
			for i, v := range plane {
				out[(i*samples+s)*bytesPerSample+b] = v
			}
		}
	}
	return out, nil
}
