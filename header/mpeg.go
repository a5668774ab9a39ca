package header

import (
	"bufio"
	"errors"
	"io"
	"math"

	"github.com/suyashkumar/dicom"

	"github.com/cocosip/go-dicom-imageio/imagedesc"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

// UnknownFrameCount is reported when the bitrate is not set and the number
// of frames cannot be estimated.
const UnknownFrameCount = 9999

// sequenceHeaderCode is the MPEG-1/2 sequence_header_code start code.
const sequenceHeaderCode = 0xB3

// MPEGParser locates the first MPEG-1/2 sequence header of a stream.
type MPEGParser struct {
	found       bool
	width       int
	height      int
	aspectCode  int
	rateCode    int
	bitRate     int // in units of 400 bit/s
	length      int64
	startOffset int64
}

// NewMPEGParser scans r for a sequence header and leaves r positioned where
// it was. A stream without one is not an error; Found reports false.
func NewMPEGParser(r io.ReadSeeker) (*MPEGParser, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}

	p := &MPEGParser{length: end - start, startOffset: -1}
	if err := p.scan(bufio.NewReader(io.LimitReader(r, end-start))); err != nil {
		return nil, err
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *MPEGParser) scan(br *bufio.Reader) error {
	var zeros int
	var off int64
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		off++
		switch {
		case b == 0:
			zeros++
			continue
		case b == 1 && zeros >= 2:
			code, err := br.ReadByte()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			off++
			if code == sequenceHeaderCode {
				return p.readSequenceHeader(br, off-4)
			}
			if code == 0 {
				zeros = 1
				continue
			}
		}
		zeros = 0
	}
}

func (p *MPEGParser) readSequenceHeader(br *bufio.Reader, at int64) error {
	var h [7]byte
	if _, err := io.ReadFull(br, h[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		return err
	}
	p.found = true
	p.startOffset = at
	p.width = int(h[0])<<4 | int(h[1])>>4
	p.height = int(h[1]&0x0F)<<8 | int(h[2])
	p.aspectCode = int(h[3] >> 4)
	p.rateCode = int(h[3] & 0x0F)
	p.bitRate = int(h[4])<<10 | int(h[5])<<2 | int(h[6])>>6
	return nil
}

// Found reports whether a sequence header was located.
func (p *MPEGParser) Found() bool { return p.found }

// SequenceHeaderOffset returns the offset of the sequence header start
// code, -1 when none was found.
func (p *MPEGParser) SequenceHeaderOffset() int64 { return p.startOffset }

// FrameRate returns the frame rate in Hz, 0 for forbidden or reserved codes.
func (p *MPEGParser) FrameRate() float64 {
	frameRates := [...][2]float64{
		{24000, 1001}, {24, 1}, {25, 1}, {30000, 1001},
		{30, 1}, {50, 1}, {60000, 1001}, {60, 1},
	}
	if p.rateCode < 1 || p.rateCode > len(frameRates) {
		return 0
	}
	r := frameRates[p.rateCode-1]
	return r[0] / r[1]
}

// AspectRatio returns the display aspect ratio, zero for unknown codes.
func (p *MPEGParser) AspectRatio() [2]int {
	aspectRatios := [...][2]int{{1, 1}, {4, 3}, {16, 9}, {221, 100}}
	if p.aspectCode < 1 || p.aspectCode > len(aspectRatios) {
		return [2]int{}
	}
	return aspectRatios[p.aspectCode-1]
}

// Frames estimates the number of frames from the stream length, bitrate
// and frame rate.
func (p *MPEGParser) Frames() int {
	fps := p.FrameRate()
	if p.bitRate == 0 || fps == 0 {
		return UnknownFrameCount
	}
	seconds := float64(p.length*8) / float64(p.bitRate*400)
	frames := int(seconds * fps)
	if frames < 1 {
		return 1
	}
	return frames
}

// TransferSyntaxUID returns MPEG-2 Main Profile at Main Level when the
// picture fits 720x576, otherwise at High Level.
func (p *MPEGParser) TransferSyntaxUID() string {
	if p.width <= 720 && p.height <= 576 {
		return transfersyntax.MPEG2MainProfileMainLevel
	}
	return transfersyntax.MPEG2MainProfileHighLevel
}

// CodecParameters returns the fixed 8-bit YBR_PARTIAL_420 layout with the
// geometry from the sequence header.
func (p *MPEGParser) CodecParameters() CodecParameters {
	cp := CodecParameters{
		Rows:             p.height,
		Columns:          p.width,
		SamplesPerPixel:  3,
		BitsAllocated:    8,
		BitsStored:       8,
		Photometric:      imagedesc.YBRPartial420,
		Lossy:            true,
		Frames:           p.Frames(),
		PixelAspectRatio: p.AspectRatio(),
	}
	if fps := p.FrameRate(); fps > 0 {
		cp.FrameTime = 1000 / fps
		cp.CineRate = int(math.Round(fps))
	}
	return cp
}

// Attributes returns false when no sequence header was found.
func (p *MPEGParser) Attributes() (*dicom.Dataset, bool) {
	if !p.found {
		return nil, false
	}
	ds, err := build(p.CodecParameters())
	if err != nil {
		return nil, false
	}
	return ds, true
}
