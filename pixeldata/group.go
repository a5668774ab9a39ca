package pixeldata

import (
	"bytes"
	"fmt"
)

var (
	soi = []byte{0xFF, 0xD8}
	soc = []byte{0xFF, 0x4F, 0xFF, 0x51}
)

// itemHeaderLength is the size of the item tag and length preceding each
// fragment, which Basic Offset Table values include.
const itemHeaderLength = 8

// group assigns fragments to frames. One fragment per frame is used as is,
// a single frame takes everything, a populated offset table splits at its
// offsets, and otherwise a frame starts at every fragment that begins with
// a JPEG SOI or JPEG 2000 SOC marker.
func group(lengths []int64, leads [][]byte, offsets []uint32, frames int) ([][]int, error) {
	n := len(lengths)
	if frames <= 0 || n == 0 {
		return nil, fmt.Errorf("%w: %d fragments for %d frames", ErrFragmentMismatch, n, frames)
	}
	groups := make([][]int, 0, frames)
	switch {
	case n == frames:
		for i := 0; i < n; i++ {
			groups = append(groups, []int{i})
		}
		return groups, nil
	case frames == 1:
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return append(groups, all), nil
	case len(offsets) == frames:
		if offsets[0] != 0 {
			return nil, fmt.Errorf("%w: first offset is %d", ErrFragmentMismatch, offsets[0])
		}
		groups = groups[:frames]
		var pos int64
		frame := 0
		for i, l := range lengths {
			for frame+1 < frames && int64(offsets[frame+1]) <= pos {
				frame++
				if int64(offsets[frame]) != pos {
					return nil, fmt.Errorf("%w: offset %d of frame %d is inside a fragment", ErrFragmentMismatch, offsets[frame], frame)
				}
			}
			groups[frame] = append(groups[frame], i)
			pos += itemHeaderLength + l
		}
	default:
		for i, lead := range leads {
			if i == 0 || bytes.HasPrefix(lead, soi) || bytes.HasPrefix(lead, soc) {
				groups = append(groups, nil)
			}
			groups[len(groups)-1] = append(groups[len(groups)-1], i)
		}
	}
	if len(groups) != frames {
		return nil, fmt.Errorf("%w: %d fragments form %d frames, want %d", ErrFragmentMismatch, n, len(groups), frames)
	}
	for i, g := range groups {
		if len(g) == 0 {
			return nil, fmt.Errorf("%w: frame %d has no fragments", ErrFragmentMismatch, i)
		}
	}
	return groups, nil
}
