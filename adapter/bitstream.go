package adapter

import (
	"encoding/binary"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-imageio/attrs"
	"github.com/cocosip/go-dicom-imageio/dicomuid"
	"github.com/cocosip/go-dicom-imageio/header"
	"github.com/cocosip/go-dicom-imageio/pixeldata"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

// SOP classes given to wrapped payloads that arrive without one.
const (
	SecondaryCaptureImageStorage  = "1.2.840.10008.5.1.4.1.1.7"
	VideoPhotographicImageStorage = "1.2.840.10008.5.1.4.1.1.77.1.4.1"
)

// BitstreamObject is a compressed payload wrapped as a DICOM object.
type BitstreamObject struct {
	Dataset           *dicom.Dataset
	Source            *ContainerSource
	TransferSyntaxUID string
}

// Adapter returns an adapter converting the object to requested.
func (b *BitstreamObject) Adapter(requested string, opts ...Option) (*ImageAdapter, error) {
	return NewImageAdapter(b.Dataset, b.Source, transfersyntax.NewAdapt(b.TransferSyntaxUID, requested), opts...)
}

// NewBitstreamObject wraps a raw JPEG, JPEG-LS, JPEG 2000 or video payload,
// as received in a STOW-RS part, into a dataset built on base. The image
// attributes are taken from the bitstream header. A transfer-syntax
// parameter of contentType overrides the syntax derived from the stream.
func NewBitstreamObject(payload io.ReadSeeker, contentType string, base *dicom.Dataset) (*BitstreamObject, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedContentType, err)
	}
	ds := attrs.Clone(base)
	sopClass := SecondaryCaptureImageStorage

	var (
		ts    string
		strip func([]byte) []byte
	)
	switch mediaType {
	case "image/jpeg", "image/jls", "image/jp2", "image/j2c", "image/jpx", "image/jph", "image/jphc":
		p, err := header.NewJPEGParser(payload)
		if err != nil {
			return nil, err
		}
		if err := header.Synthesize(p, ds); err != nil {
			return nil, err
		}
		ts = p.TransferSyntaxUID()
		strip = func(b []byte) []byte {
			if p.IsJPEG2000() {
				return b[p.CodestreamOffset():]
			}
			return stripAPP(b, int(p.PositionAfterAPPSegments()))
		}
	case "video/mpeg", "video/mpeg2":
		p, err := header.NewMPEGParser(payload)
		if err != nil {
			return nil, err
		}
		if err := header.Synthesize(p, ds); err != nil {
			return nil, err
		}
		ts = p.TransferSyntaxUID()
		sopClass = VideoPhotographicImageStorage
	case "video/mp4", "video/h264":
		ts = transfersyntax.MPEG4HighProfileLevel41
		sopClass = VideoPhotographicImageStorage
	case "video/h265":
		ts = transfersyntax.HEVCMainProfileLevel51
		sopClass = VideoPhotographicImageStorage
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, mediaType)
	}
	if v := params["transfer-syntax"]; v != "" {
		if !transfersyntax.IsValidUID(v) {
			return nil, fmt.Errorf("%w: invalid transfer-syntax %q", ErrUnsupportedContentType, v)
		}
		ts = v
	}

	data, err := io.ReadAll(payload)
	if err != nil {
		return nil, err
	}
	if strip != nil {
		data = strip(data)
	}

	defaults := []struct {
		t tag.Tag
		v string
	}{
		{tag.SOPClassUID, sopClass},
		{tag.SOPInstanceUID, dicomuid.New()},
	}
	for _, d := range defaults {
		if s, ok := attrs.String(ds, d.t); ok && strings.TrimSpace(s) != "" {
			continue
		}
		if err := attrs.Set(ds, d.t, []string{d.v}); err != nil {
			return nil, err
		}
	}
	if err := attrs.Set(ds, tag.TransferSyntaxUID, []string{ts}); err != nil {
		return nil, err
	}

	frags := &pixeldata.Fragments{Items: [][]byte{data}}
	return &BitstreamObject{
		Dataset:           ds,
		Source:            NewContainerSource(frags, binary.LittleEndian),
		TransferSyntaxUID: ts,
	}, nil
}

// stripAPP drops the APPn segments between SOI and end. APP14 is kept since
// its Adobe transform flag decides whether three-component data is RGB.
func stripAPP(b []byte, end int) []byte {
	if end <= 2 || end > len(b) {
		return b
	}
	out := []byte{0xFF, 0xD8}
	for at := 2; at+4 <= end; {
		n := int(binary.BigEndian.Uint16(b[at+2:])) + 2
		if n < 4 || at+n > end {
			break
		}
		if b[at+1] == 0xEE {
			out = append(out, b[at:at+n]...)
		}
		at += n
	}
	return append(out, b[end:]...)
}
