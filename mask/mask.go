// Package mask blanks rectangular regions of native pixel data, typically
// to remove burned-in annotations before a frame is re-encoded.
package mask

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
	"golang.org/x/exp/constraints"
)

// Rect is a rectangle in pixel coordinates, origin top left.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Clip returns the part of r inside a width x height image.
func (r Rect) Clip(width, height int) Rect {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.Width, width), min(r.Y+r.Height, height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Area is a set of rectangles filled with one sample value.
type Area struct {
	Rects []Rect
	Fill  int
	// Frames limits the mask to these frame indexes; empty means all.
	Frames []int
}

// NewArea creates an area filled with zero.
func NewArea(rects ...Rect) *Area {
	return &Area{Rects: rects}
}

// WithFill sets the fill value and returns the area for chaining
func (a *Area) WithFill(v int) *Area {
	a.Fill = v
	return a
}

// Applies reports whether the area masks frame i.
func (a *Area) Applies(i int) bool {
	if a == nil || len(a.Rects) == 0 {
		return false
	}
	if len(a.Frames) == 0 {
		return true
	}
	for _, f := range a.Frames {
		if f == i {
			return true
		}
	}
	return false
}

// Apply fills the area in samples, a frame of width x height pixels with spp
// samples each. planar selects color-by-plane order.
func Apply[T constraints.Integer](samples []T, width, height, spp int, planar bool, a *Area) int {
	if a == nil {
		return 0
	}
	fill := T(a.Fill)
	plane := width * height
	n := 0
	for _, r := range a.Rects {
		r = r.Clip(width, height)
		if r.Empty() {
			continue
		}
		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				p := y*width + x
				for s := 0; s < spp; s++ {
					i := p*spp + s
					if planar {
						i = s*plane + p
					}
					if i < len(samples) {
						samples[i] = fill
						n++
					}
				}
			}
		}
	}
	return n
}

// ApplyFrame masks a native little endian frame in place and returns the
// number of samples changed.
func (a *Area) ApplyFrame(frame []byte, info *imagetypes.FrameInfo) (int, error) {
	w, h, spp := int(info.Width), int(info.Height), int(info.SamplesPerPixel)
	planar := info.PlanarConfiguration == 1
	switch info.BitsAllocated {
	case 8:
		return Apply(frame, w, h, spp, planar, a), nil
	case 16:
		s := make([]uint16, len(frame)/2)
		for i := range s {
			s[i] = binary.LittleEndian.Uint16(frame[2*i:])
		}
		n := Apply(s, w, h, spp, planar, a)
		for i, v := range s {
			binary.LittleEndian.PutUint16(frame[2*i:], v)
		}
		return n, nil
	case 32:
		s := make([]uint32, len(frame)/4)
		for i := range s {
			s[i] = binary.LittleEndian.Uint32(frame[4*i:])
		}
		n := Apply(s, w, h, spp, planar, a)
		for i, v := range s {
			binary.LittleEndian.PutUint32(frame[4*i:], v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("mask: %d bits allocated is not supported", info.BitsAllocated)
}
