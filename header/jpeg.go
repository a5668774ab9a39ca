package header

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/suyashkumar/dicom"

	"github.com/cocosip/go-dicom-imageio/imagedesc"
	"github.com/cocosip/go-dicom-imageio/jpeg/common"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

// JPEG 2000 codestream markers
const (
	markerSOC = 0xFF4F
	markerSIZ = 0xFF51
	markerCOD = 0xFF52
	markerSOT = 0xFF90
	markerSOD = 0xFF93
	markerEOC = 0xFFD9
)

// jp2Signature is the JP2 signature box (ISO/IEC 15444-1 I.5.1)
var jp2Signature = []byte{0x00, 0x00, 0x00, 0x0C, 'j', 'P', ' ', ' ', 0x0D, 0x0A, 0x87, 0x0A}

// Adobe APP14 color transform meaning "no transform", i.e. RGB or CMYK
const adobeTransformNone = 0

// JPEGParser reads the header of a JPEG, JPEG-LS or JPEG 2000 bitstream.
// Offsets it reports are relative to the reader position at construction.
type JPEGParser struct {
	sof       uint16 // SOF marker, or SOC for JPEG 2000
	precision int
	rows      int
	columns   int
	ids       []byte
	ss        int // predictor (SOF3) or NEAR (SOF55)

	jfif           bool
	adobe          bool
	adobeTransform byte

	// JPEG 2000
	signed      bool
	rsiz        uint16
	mct         bool
	reversible  bool
	codestream  int64
	afterAPP    int64
	uid         string
	photometric imagedesc.Photometric
	lossy       bool
}

// NewJPEGParser parses r up to the first scan (or the JPEG 2000 COD
// segment) and leaves r positioned where it was.
func NewJPEGParser(r io.ReadSeeker) (*JPEGParser, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	p := &JPEGParser{afterAPP: -1}
	s := newStreamReader(r)
	if err := p.parse(s); err != nil {
		return nil, err
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *JPEGParser) parse(s *streamReader) error {
	var magic [2]byte
	if err := s.full(magic[:]); err != nil {
		return err
	}
	switch binary.BigEndian.Uint16(magic[:]) {
	case common.MarkerSOI:
		return p.parseJPEG(s)
	case markerSOC:
		return p.parseJ2K(s)
	case 0x0000:
		rest := make([]byte, len(jp2Signature)-2)
		if err := s.full(rest); err != nil {
			return err
		}
		if !bytes.Equal(rest, jp2Signature[2:]) {
			return formatErrorf(0, "missing JP2 signature box")
		}
		return p.parseJP2(s)
	default:
		return formatErrorf(0, "not a JPEG or JPEG 2000 stream (0x%02X%02X)", magic[0], magic[1])
	}
}

func (p *JPEGParser) parseJPEG(s *streamReader) error {
	for {
		at := s.off
		marker, err := s.marker()
		if err != nil {
			return err
		}
		if p.afterAPP < 0 && !common.IsAPP(marker) {
			p.afterAPP = at
		}
		if !common.HasLength(marker) {
			if marker == common.MarkerEOI {
				return formatErrorf(at, "end of image before start of scan")
			}
			continue
		}
		data, err := s.segment()
		if err != nil {
			return err
		}
		switch {
		case marker == common.MarkerAPP0:
			if bytes.HasPrefix(data, []byte("JFIF\x00")) {
				p.jfif = true
			}
		case marker == common.MarkerAPP14:
			if len(data) >= 12 && bytes.HasPrefix(data, []byte("Adobe")) {
				p.adobe = true
				p.adobeTransform = data[11]
			}
		case common.IsSOF(marker) || marker == common.MarkerSOF55:
			if p.sof != 0 {
				continue
			}
			if err := p.readSOF(marker, data, at); err != nil {
				return err
			}
		case marker == common.MarkerSOS:
			if p.sof == 0 {
				return formatErrorf(at, "start of scan before start of frame")
			}
			if len(data) < 1 || len(data) < 1+2*int(data[0])+3 {
				return formatErrorf(at, "short SOS segment")
			}
			p.ss = int(data[1+2*int(data[0])])
			return p.derive()
		}
	}
}

func (p *JPEGParser) readSOF(marker uint16, data []byte, at int64) error {
	if len(data) < 6 {
		return formatErrorf(at, "short SOF segment")
	}
	n := int(data[5])
	if n == 0 || len(data) < 6+3*n {
		return formatErrorf(at, "SOF declares %d components in %d bytes", n, len(data))
	}
	p.sof = marker
	p.precision = int(data[0])
	p.rows = int(binary.BigEndian.Uint16(data[1:3]))
	p.columns = int(binary.BigEndian.Uint16(data[3:5]))
	p.ids = make([]byte, n)
	for i := range p.ids {
		p.ids[i] = data[6+3*i]
	}
	return nil
}

func (p *JPEGParser) derive() error {
	switch p.sof {
	case common.MarkerSOF0:
		p.uid = transfersyntax.JPEGBaseline8Bit
	case common.MarkerSOF1:
		p.uid = transfersyntax.JPEGExtended12Bit
	case common.MarkerSOF2:
		p.uid = transfersyntax.JPEGProgressive
	case common.MarkerSOF3:
		p.uid = transfersyntax.JPEGLossless
		if p.ss == 1 {
			p.uid = transfersyntax.JPEGLosslessSV1
		}
	case common.MarkerSOF55:
		p.uid = transfersyntax.JPEGLSLossless
		if p.ss != 0 {
			p.uid = transfersyntax.JPEGLSNearLossless
		}
	default:
		return fmt.Errorf("%w: 0x%04X", ErrUnsupportedSOF, p.sof)
	}

	p.lossy = !(p.sof == common.MarkerSOF3 || (p.sof == common.MarkerSOF55 && p.ss == 0))

	switch {
	case len(p.ids) == 1:
		p.photometric = imagedesc.Monochrome2
	case p.adobe && p.adobeTransform == adobeTransformNone,
		!p.jfif && bytes.Equal(p.ids, []byte("RGB")),
		p.sof == common.MarkerSOF3, p.sof == common.MarkerSOF55:
		p.photometric = imagedesc.RGB
	case p.sof == common.MarkerSOF0:
		p.photometric = imagedesc.YBRFull422
	default:
		p.photometric = imagedesc.YBRFull
	}
	return nil
}

// parseJP2 walks the JP2 boxes to the contiguous codestream box.
func (p *JPEGParser) parseJP2(s *streamReader) error {
	for {
		at := s.off
		length, err := s.uint32()
		if err != nil {
			return err
		}
		var typ [4]byte
		if err := s.full(typ[:]); err != nil {
			return err
		}
		size := int64(length)
		header := int64(8)
		if length == 1 {
			xl, err := s.uint64()
			if err != nil {
				return err
			}
			size = int64(xl)
			header = 16
		}
		if string(typ[:]) == "jp2c" {
			p.codestream = s.off
			var soc [2]byte
			if err := s.full(soc[:]); err != nil {
				return err
			}
			if binary.BigEndian.Uint16(soc[:]) != markerSOC {
				return formatErrorf(p.codestream, "jp2c box does not start with SOC")
			}
			return p.parseJ2K(s)
		}
		if length == 0 {
			return formatErrorf(at, "no contiguous codestream box")
		}
		if size < header {
			return formatErrorf(at, "box length %d", size)
		}
		if err := s.skip(size - header); err != nil {
			return err
		}
	}
}

// parseJ2K reads the main header after SOC up to COD.
func (p *JPEGParser) parseJ2K(s *streamReader) error {
	p.sof = markerSOC
	var sawSIZ bool
	for {
		at := s.off
		marker, err := s.marker()
		if err != nil {
			return err
		}
		switch marker {
		case markerSOT, markerSOD, markerEOC:
			return formatErrorf(at, "no COD segment in main header")
		}
		data, err := s.segment()
		if err != nil {
			return err
		}
		switch marker {
		case markerSIZ:
			if err := p.readSIZ(data, at); err != nil {
				return err
			}
			sawSIZ = true
		case markerCOD:
			if !sawSIZ {
				return formatErrorf(at, "COD before SIZ")
			}
			if len(data) < 10 {
				return formatErrorf(at, "short COD segment")
			}
			p.mct = data[4] != 0
			p.reversible = data[9] == 1
			p.deriveJ2K()
			return nil
		}
	}
}

func (p *JPEGParser) readSIZ(data []byte, at int64) error {
	if len(data) < 36 {
		return formatErrorf(at, "short SIZ segment")
	}
	p.rsiz = binary.BigEndian.Uint16(data[0:2])
	xsiz := binary.BigEndian.Uint32(data[2:6])
	ysiz := binary.BigEndian.Uint32(data[6:10])
	xosiz := binary.BigEndian.Uint32(data[10:14])
	yosiz := binary.BigEndian.Uint32(data[14:18])
	n := int(binary.BigEndian.Uint16(data[34:36]))
	if n == 0 || len(data) < 36+3*n {
		return formatErrorf(at, "SIZ declares %d components in %d bytes", n, len(data))
	}
	if xosiz > xsiz || yosiz > ysiz {
		return formatErrorf(at, "image offset outside reference grid")
	}
	ssiz := data[36]
	p.columns = int(xsiz - xosiz)
	p.rows = int(ysiz - yosiz)
	p.precision = int(ssiz&0x7F) + 1
	p.signed = ssiz&0x80 != 0
	p.ids = make([]byte, n)
	for i := range p.ids {
		p.ids[i] = byte(i)
	}
	return nil
}

func (p *JPEGParser) deriveJ2K() {
	p.lossy = !p.reversible
	ht := p.rsiz&0x4000 != 0
	switch {
	case ht && p.reversible:
		p.uid = transfersyntax.HTJ2KLossless
	case ht:
		p.uid = transfersyntax.HTJ2K
	case p.reversible:
		p.uid = transfersyntax.JPEG2000Lossless
	default:
		p.uid = transfersyntax.JPEG2000
	}
	switch {
	case len(p.ids) == 1:
		p.photometric = imagedesc.Monochrome2
	case !p.mct:
		p.photometric = imagedesc.RGB
	case p.reversible:
		p.photometric = imagedesc.YBRRCT
	default:
		p.photometric = imagedesc.YBRICT
	}
}

// TransferSyntaxUID returns the syntax selected by the frame header.
func (p *JPEGParser) TransferSyntaxUID() string { return p.uid }

// IsJPEG2000 reports whether the stream is a JPEG 2000 codestream.
func (p *JPEGParser) IsJPEG2000() bool { return p.sof == markerSOC }

// LossyImageCompression reports whether the encoding process is lossy.
func (p *JPEGParser) LossyImageCompression() bool { return p.lossy }

// PositionAfterAPPSegments returns the offset of the first marker after
// SOI that is not an APPn segment, or 0 for JPEG 2000.
func (p *JPEGParser) PositionAfterAPPSegments() int64 {
	if p.afterAPP < 0 {
		return 0
	}
	return p.afterAPP
}

// CodestreamOffset returns where the JPEG 2000 codestream starts inside a
// JP2 file, 0 for bare codestreams and JPEG.
func (p *JPEGParser) CodestreamOffset() int64 { return p.codestream }

// CodecParameters returns the sample layout from the frame header.
func (p *JPEGParser) CodecParameters() CodecParameters {
	allocated := 8
	if p.precision > 8 {
		allocated = 16
	}
	pixelRep := 0
	if p.signed {
		pixelRep = 1
	}
	return CodecParameters{
		Rows:                p.rows,
		Columns:             p.columns,
		SamplesPerPixel:     len(p.ids),
		BitsAllocated:       allocated,
		BitsStored:          p.precision,
		PixelRepresentation: pixelRep,
		Photometric:         p.photometric,
		Lossy:               p.lossy,
	}
}

// Attributes returns the image pixel attributes for the stream.
func (p *JPEGParser) Attributes() (*dicom.Dataset, bool) {
	ds, err := build(p.CodecParameters())
	if err != nil {
		return nil, false
	}
	return ds, true
}
