package imagedesc

import (
	"encoding/binary"
	"hash/fnv"
	"slices"
)

// Equal compares the immutable geometry of two descriptors. The min/max
// cache does not take part.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.rows == o.rows &&
		d.columns == o.columns &&
		d.frames == o.frames &&
		d.samplesPerPixel == o.samplesPerPixel &&
		d.photometric == o.photometric &&
		d.planarConfig == o.planarConfig &&
		d.bitsAllocated == o.bitsAllocated &&
		d.bitsStored == o.bitsStored &&
		d.bitsCompressed == o.bitsCompressed &&
		d.highBit == o.highBit &&
		d.pixelRep == o.pixelRep &&
		d.floatPixelData == o.floatPixelData &&
		d.sopClassUID == o.sopClassUID &&
		d.seriesInstanceUID == o.seriesInstanceUID &&
		d.modality == o.modality &&
		d.stationName == o.stationName &&
		d.anatomicRegion == o.anatomicRegion &&
		d.bodyPartExamined == o.bodyPartExamined &&
		d.pixelPresentation == o.pixelPresentation &&
		d.presentationLUTShape == o.presentationLUTShape &&
		d.paletteColorLUT == o.paletteColorLUT &&
		equalOptional(d.pixelPadding, o.pixelPadding) &&
		equalOptional(d.pixelPaddingLimit, o.pixelPaddingLimit) &&
		d.overlayData == o.overlayData &&
		slices.Equal(d.embeddedOverlays, o.embeddedOverlays)
}

func equalOptional(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Hash returns an FNV-1a hash of the fields compared by Equal.
func (d *Descriptor) Hash() uint64 {
	if d == nil {
		return 0
	}
	h := fnv.New64a()
	var buf [8]byte
	putInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	for _, v := range []int{
		d.rows, d.columns, d.frames, d.samplesPerPixel, int(d.photometric), d.planarConfig,
		d.bitsAllocated, d.bitsStored, d.bitsCompressed, d.highBit, d.pixelRep,
	} {
		putInt(v)
	}
	for _, s := range []string{
		d.sopClassUID, d.seriesInstanceUID, d.modality, d.stationName, d.anatomicRegion,
		d.bodyPartExamined, d.pixelPresentation, d.presentationLUTShape,
	} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	for _, b := range []bool{d.floatPixelData, d.paletteColorLUT, d.overlayData} {
		if b {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	for _, p := range []*int{d.pixelPadding, d.pixelPaddingLimit} {
		if p == nil {
			h.Write([]byte{0})
		} else {
			h.Write([]byte{1})
			putInt(*p)
		}
	}
	for _, g := range d.embeddedOverlays {
		putInt(g)
	}
	return h.Sum64()
}
