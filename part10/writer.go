// Package part10 streams DICOM Part-10 files: the file meta information,
// the dataset attributes and a Pixel Data element whose frames are pulled
// one at a time.
package part10

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-imageio/attrs"
	"github.com/cocosip/go-dicom-imageio/pixeldata"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

const (
	tagItem            = 0xE000
	tagSeqDelimitation = 0xE0DD
	undefinedLength    = 0xFFFFFFFF
)

// FrameSource yields the frames written into the Pixel Data element.
type FrameSource interface {
	FrameCount() int
	Frame(i int) ([]byte, error)
}

// Pixels describes the Pixel Data element of the output.
type Pixels struct {
	Source FrameSource
	// Encapsulated writes one fragment per frame after an empty offset
	// table. Otherwise frames are native little endian samples.
	Encapsulated bool
	// FrameLength is the byte length of every native frame.
	FrameLength   int64
	BitsAllocated int
}

// Writer writes Part-10 streams in one transfer syntax.
type Writer struct {
	ts      string
	aeTitle string
	level   int
}

// NewWriter creates a writer declaring transfer syntax ts.
func NewWriter(ts string) *Writer {
	return &Writer{ts: ts, level: flate.DefaultCompression}
}

// WithSourceAE records the source application entity title in the meta group.
func (w *Writer) WithSourceAE(ae string) *Writer {
	w.aeTitle = ae
	return w
}

// WithCompressionLevel sets the deflate level used for the deflated syntax.
func (w *Writer) WithCompressionLevel(level int) *Writer {
	w.level = level
	return w
}

// TransferSyntaxUID returns the declared transfer syntax.
func (w *Writer) TransferSyntaxUID() string { return w.ts }

// WriteTo writes ds and, when pixels is not nil, the Pixel Data element to
// out. Pixel data elements already in ds are not written.
func (w *Writer) WriteTo(out io.Writer, ds *dicom.Dataset, pixels *Pixels) (int64, error) {
	if w.ts == "" {
		return 0, ErrMissingTransferSyntax
	}
	body, err := w.attributes(ds)
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: out}
	meta := &Meta{
		MediaStorageSOPClassUID:    firstString(ds, tag.SOPClassUID, tag.MediaStorageSOPClassUID),
		MediaStorageSOPInstanceUID: firstString(ds, tag.SOPInstanceUID, tag.MediaStorageSOPInstanceUID),
		TransferSyntaxUID:          w.ts,
		SourceApplicationEntity:    w.aeTitle,
	}
	if _, err := cw.Write(meta.encode()); err != nil {
		return cw.n, err
	}

	var dst io.Writer = cw
	var fw *flate.Writer
	if transfersyntax.IsDeflated(w.ts) {
		fw, err = flate.NewWriter(cw, w.level)
		if err != nil {
			return cw.n, err
		}
		dst = fw
	}
	if _, err := dst.Write(body); err != nil {
		return cw.n, err
	}
	if pixels != nil && pixels.Source != nil {
		if pixels.Encapsulated {
			err = w.encapsulated(dst, pixels)
		} else {
			err = w.native(dst, pixels)
		}
		if err != nil {
			return cw.n, err
		}
	}
	if fw != nil {
		if err := fw.Close(); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

// attributes encodes every element of ds outside group 2 and the pixel
// data tags, using the byte order and VR encoding of the declared syntax.
func (w *Writer) attributes(ds *dicom.Dataset) ([]byte, error) {
	encoding := transfersyntax.ExplicitVRLittleEndian
	switch {
	case transfersyntax.IsImplicitVR(w.ts):
		encoding = transfersyntax.ImplicitVRLittleEndian
	case transfersyntax.IsBigEndian(w.ts):
		encoding = transfersyntax.ExplicitVRBigEndian
	}
	tsElem, err := dicom.NewElement(tag.TransferSyntaxUID, []string{encoding})
	if err != nil {
		return nil, err
	}
	tmp := dicom.Dataset{Elements: []*dicom.Element{tsElem}}
	if ds != nil {
		for _, e := range ds.Elements {
			if e.Tag.Group == 0x0002 || isPixelTag(e.Tag) {
				continue
			}
			tmp.Elements = append(tmp.Elements, e)
		}
	}
	var buf bytes.Buffer
	if err := dicom.Write(&buf, tmp, dicom.SkipVRVerification(), dicom.SkipValueTypeVerification()); err != nil {
		return nil, fmt.Errorf("write attributes: %w", err)
	}
	return StripMeta(buf.Bytes())
}

// byteOrder is implemented by binary.LittleEndian and binary.BigEndian.
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func (w *Writer) order() byteOrder {
	if transfersyntax.IsBigEndian(w.ts) {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// pixelHeader writes the Pixel Data tag, its VR when explicit, and length.
func (w *Writer) pixelHeader(dst io.Writer, vr string, length uint32) error {
	order := w.order()
	h := order.AppendUint16(nil, tag.PixelData.Group)
	h = order.AppendUint16(h, tag.PixelData.Element)
	if !transfersyntax.IsImplicitVR(w.ts) {
		h = append(h, vr...)
		h = append(h, 0, 0)
	}
	h = order.AppendUint32(h, length)
	_, err := dst.Write(h)
	return err
}

func (w *Writer) native(dst io.Writer, p *Pixels) error {
	n := p.Source.FrameCount()
	total := p.FrameLength * int64(n)
	vr := "OW"
	if p.BitsAllocated <= 8 {
		vr = "OB"
	}
	if err := w.pixelHeader(dst, vr, uint32(total+total%2)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		frame, err := p.Source.Frame(i)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if int64(len(frame)) != p.FrameLength {
			return fmt.Errorf("%w: frame %d has %d bytes, want %d", ErrFrameLength, i, len(frame), p.FrameLength)
		}
		if transfersyntax.IsBigEndian(w.ts) {
			frame = pixeldata.ToLittleEndian(frame, binary.BigEndian, p.BitsAllocated)
		}
		if _, err := dst.Write(frame); err != nil {
			return err
		}
	}
	if total%2 == 1 {
		_, err := dst.Write([]byte{0})
		return err
	}
	return nil
}

func (w *Writer) encapsulated(dst io.Writer, p *Pixels) error {
	if err := w.pixelHeader(dst, "OB", undefinedLength); err != nil {
		return err
	}
	if err := item(dst, tagItem, 0); err != nil {
		return err
	}
	for i := 0; i < p.Source.FrameCount(); i++ {
		frame, err := p.Source.Frame(i)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		pad := len(frame) % 2
		if err := item(dst, tagItem, uint32(len(frame)+pad)); err != nil {
			return err
		}
		if _, err := dst.Write(frame); err != nil {
			return err
		}
		if pad == 1 {
			if _, err := dst.Write([]byte{0}); err != nil {
				return err
			}
		}
	}
	return item(dst, tagSeqDelimitation, 0)
}

// item writes an item or delimiter header; these are always little endian.
func item(dst io.Writer, elem uint16, length uint32) error {
	h := binary.LittleEndian.AppendUint16(nil, 0xFFFE)
	h = binary.LittleEndian.AppendUint16(h, elem)
	h = binary.LittleEndian.AppendUint32(h, length)
	_, err := dst.Write(h)
	return err
}

func isPixelTag(t tag.Tag) bool {
	return t == tag.PixelData || t == attrs.FloatPixelData || t == attrs.DoubleFloatPixelData
}

func firstString(ds *dicom.Dataset, tags ...tag.Tag) string {
	for _, t := range tags {
		if s, ok := attrs.String(ds, t); ok && s != "" {
			return s
		}
	}
	return ""
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Frames adapts a slice of frames to a FrameSource.
type Frames [][]byte

// FrameCount implements FrameSource.
func (f Frames) FrameCount() int { return len(f) }

// Frame implements FrameSource.
func (f Frames) Frame(i int) ([]byte, error) {
	if i < 0 || i >= len(f) {
		return nil, pixeldata.ErrFrameOutOfRange
	}
	return f[i], nil
}
