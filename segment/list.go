// Package segment maps the fragments of a pixel data element to byte ranges
// of a file so that one frame can be read without loading the rest.
package segment

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/cocosip/go-dicom-imageio/imagedesc"
)

// List is an immutable, ordered set of (position, length) byte ranges in the
// file at Path. Accessors return copies.
type List struct {
	path      string
	positions []int64
	lengths   []int64
	desc      *imagedesc.Descriptor
}

// NewList validates and copies its arguments. An empty path is treated as
// missing.
func NewList(path string, positions, lengths []int64, desc *imagedesc.Descriptor) (*List, error) {
	if path == "" {
		return nil, ErrNilPath
	}
	if positions == nil {
		return nil, ErrNilPositions
	}
	if lengths == nil {
		return nil, ErrNilLengths
	}
	if len(positions) != len(lengths) {
		return nil, fmt.Errorf("%d positions, %d lengths: %w", len(positions), len(lengths), ErrLengthMismatch)
	}
	if len(positions) == 0 {
		return nil, ErrNoSegments
	}
	for i, p := range positions {
		if p < 0 {
			return nil, fmt.Errorf("segment %d at %d: %w", i, p, ErrNegativePosition)
		}
	}
	for i, l := range lengths {
		if l <= 0 {
			return nil, fmt.Errorf("segment %d of length %d: %w", i, l, ErrNonPositiveLength)
		}
	}
	return &List{
		path:      path,
		positions: slices.Clone(positions),
		lengths:   slices.Clone(lengths),
		desc:      desc,
	}, nil
}

// Path returns the file the positions refer to.
func (l *List) Path() string { return l.path }

// Positions returns a copy of the segment offsets.
func (l *List) Positions() []int64 { return slices.Clone(l.positions) }

// Lengths returns a copy of the segment lengths.
func (l *List) Lengths() []int64 { return slices.Clone(l.lengths) }

// Descriptor returns the image the segments belong to. It may be nil.
func (l *List) Descriptor() *imagedesc.Descriptor { return l.desc }

// SegmentCount returns the number of segments.
func (l *List) SegmentCount() int { return len(l.positions) }

// Segment returns the position and length of segment i.
func (l *List) Segment(i int) (position, length int64, err error) {
	if i < 0 || i >= len(l.positions) {
		return 0, 0, fmt.Errorf("segment %d of %d: %w", i, len(l.positions), ErrSegmentOutOfRange)
	}
	return l.positions[i], l.lengths[i], nil
}

// TotalLength returns the sum of all segment lengths.
func (l *List) TotalLength() int64 {
	var total int64
	for _, n := range l.lengths {
		total += n
	}
	return total
}

// Equal compares path, positions, lengths and descriptor by value.
func (l *List) Equal(o *List) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.path == o.path &&
		slices.Equal(l.positions, o.positions) &&
		slices.Equal(l.lengths, o.lengths) &&
		l.desc.Equal(o.desc)
}

// Hash returns an FNV-1a hash consistent with Equal.
func (l *List) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(l.path))
	var buf [8]byte
	for _, p := range l.positions {
		binary.LittleEndian.PutUint64(buf[:], uint64(p))
		h.Write(buf[:])
	}
	for _, n := range l.lengths {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}
	binary.LittleEndian.PutUint64(buf[:], l.desc.Hash())
	h.Write(buf[:])
	return h.Sum64()
}

// Sub returns a list of the segments in [from, to).
func (l *List) Sub(from, to int) (*List, error) {
	if from < 0 || to > len(l.positions) || from > to {
		return nil, fmt.Errorf("segments [%d, %d) of %d: %w", from, to, len(l.positions), ErrSegmentOutOfRange)
	}
	return NewList(l.path, l.positions[from:to], l.lengths[from:to], l.desc)
}
