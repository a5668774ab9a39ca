package codec

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
)

var _ imagetypes.PixelData = (*FramePixelData)(nil)

// FramePixelData is an in-memory imagetypes.PixelData used to hand frames to
// go-dicom codecs.
type FramePixelData struct {
	frames       [][]byte
	frameInfo    *imagetypes.FrameInfo
	encapsulated bool
}

// NewFramePixelData creates an empty frame container
func NewFramePixelData(info *imagetypes.FrameInfo, encapsulated bool) *FramePixelData {
	return &FramePixelData{frameInfo: info, encapsulated: encapsulated}
}

// GetFrame returns the pixel data for the specified frame (0-indexed)
func (p *FramePixelData) GetFrame(frameIndex int) ([]byte, error) {
	if frameIndex < 0 || frameIndex >= len(p.frames) {
		return nil, fmt.Errorf("frame index %d out of range (0-%d)", frameIndex, len(p.frames)-1)
	}
	return p.frames[frameIndex], nil
}

// AddFrame appends a new frame to the pixel data
func (p *FramePixelData) AddFrame(frameData []byte) error {
	p.frames = append(p.frames, frameData)
	return nil
}

// FrameCount returns the number of frames in the pixel data
func (p *FramePixelData) FrameCount() int {
	return len(p.frames)
}

// GetFrameInfo returns frame metadata for codec operations
func (p *FramePixelData) GetFrameInfo() *imagetypes.FrameInfo {
	return p.frameInfo
}

// IsEncapsulated returns true if pixel data is encapsulated (compressed)
func (p *FramePixelData) IsEncapsulated() bool {
	return p.encapsulated
}
