package imagedesc

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MinMax is the sample value range of one frame.
type MinMax struct {
	Min float64
	Max float64
}

// FrameStats summarizes the samples of one frame.
type FrameStats struct {
	MinMax
	Mean   float64
	StdDev float64
	Count  int
}

// MinMax returns the cached range of frame, if one was stored.
func (d *Descriptor) MinMax(frame int) (MinMax, bool) {
	if frame < 0 || frame >= len(d.minMax) || d.minMax[frame] == nil {
		return MinMax{}, false
	}
	return *d.minMax[frame], true
}

// SetMinMax caches the range of frame. Out of range indexes are ignored.
func (d *Descriptor) SetMinMax(frame int, mm MinMax) {
	if frame < 0 || frame >= len(d.minMax) {
		return
	}
	d.minMax[frame] = &mm
}

// Samples converts one native frame into sample values, honoring bits
// stored, signedness and floating point data. order is the byte order of
// the frame; nil means little endian.
func Samples(frame []byte, d *Descriptor, order binary.ByteOrder) ([]float64, error) {
	if order == nil {
		order = binary.LittleEndian
	}
	bytesPerSample := d.bitsAllocated / 8
	switch d.bitsAllocated {
	case 8, 16, 32, 64:
	default:
		return nil, fmt.Errorf("bits allocated %d: %w", d.bitsAllocated, ErrUnsupportedSampleSize)
	}
	n := len(frame) / bytesPerSample
	out := make([]float64, n)

	shift := uint(64 - d.bitsStored)
	for i := 0; i < n; i++ {
		b := frame[i*bytesPerSample:]
		var raw uint64
		switch bytesPerSample {
		case 1:
			raw = uint64(b[0])
		case 2:
			raw = uint64(order.Uint16(b))
		case 4:
			raw = uint64(order.Uint32(b))
		case 8:
			raw = order.Uint64(b)
		}
		switch {
		case d.floatPixelData && bytesPerSample == 4:
			out[i] = float64(math.Float32frombits(uint32(raw)))
		case d.floatPixelData && bytesPerSample == 8:
			out[i] = math.Float64frombits(raw)
		case d.IsSigned():
			out[i] = float64(int64(raw<<shift) >> shift)
		default:
			out[i] = float64((raw << shift) >> shift)
		}
	}
	return out, nil
}

// ComputeFrameStats returns the statistics of one native frame.
func ComputeFrameStats(frame []byte, d *Descriptor, order binary.ByteOrder) (FrameStats, error) {
	samples, err := Samples(frame, d, order)
	if err != nil {
		return FrameStats{}, err
	}
	if len(samples) == 0 {
		return FrameStats{}, nil
	}
	mean, std := stat.MeanStdDev(samples, nil)
	return FrameStats{
		MinMax: MinMax{Min: floats.Min(samples), Max: floats.Max(samples)},
		Mean:   mean,
		StdDev: std,
		Count:  len(samples),
	}, nil
}

// UpdateMinMax computes the statistics of frame index i and caches its range.
func (d *Descriptor) UpdateMinMax(i int, frame []byte, order binary.ByteOrder) (FrameStats, error) {
	st, err := ComputeFrameStats(frame, d, order)
	if err != nil {
		return FrameStats{}, err
	}
	if st.Count > 0 {
		d.SetMinMax(i, st.MinMax)
	}
	return st, nil
}
