// Package adapter is the transcoding engine: it decides whether the pixel
// data of an object must be re-encoded for a requested transfer syntax,
// re-encodes it frame by frame on demand, and writes the result as a
// Part-10 stream.
package adapter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-imageio/attrs"
	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/imagedesc"
	"github.com/cocosip/go-dicom-imageio/part10"
	"github.com/cocosip/go-dicom-imageio/pixeldata"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

// ImageAdapter converts the pixel data of one object. It is not safe for
// concurrent use.
type ImageAdapter struct {
	ds   *dicom.Dataset
	src  Source
	ats  *transfersyntax.Adapt
	desc *imagedesc.Descriptor
	opts options

	checked   bool
	transcode bool
	err       error
	decoder   codec.Codec
	encoder   codec.Codec

	// out describes the frames Bytes returns when transcoding.
	out   *imagetypes.FrameInfo
	ratio float64
	cache map[int][]byte
}

// NewImageAdapter prepares the conversion of ds, whose pixel data is read
// from src, as decided by ats. src is nil for objects without pixel data.
// The editor, when configured, runs here on a copy of ds.
func NewImageAdapter(ds *dicom.Dataset, src Source, ats *transfersyntax.Adapt, opts ...Option) (*ImageAdapter, error) {
	if ds == nil {
		return nil, imagedesc.ErrNilDataset
	}
	if ats == nil {
		ts := TransferSyntaxOf(ds)
		ats = transfersyntax.NewAdapt(ts, ts)
	}
	o := options{registry: codec.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.params == nil {
		o.params = codec.NewParameters().
			WithQuality(ats.JPEGQuality()).
			WithCompressionRatio(ats.CompressionRatio())
	}

	a := &ImageAdapter{
		ds:    attrs.Clone(ds),
		src:   src,
		ats:   ats,
		opts:  o,
		cache: make(map[int][]byte),
	}
	if o.editor != nil {
		ctx := &EditContext{
			OriginalTransferSyntax: ats.Original(),
			CallingAETitle:         o.callingAE,
			CalledAETitle:          o.calledAE,
			Mask:                   o.mask,
		}
		if err := o.editor.Edit(ctx, a.ds); err != nil {
			return nil, fmt.Errorf("edit attributes: %w", err)
		}
		a.opts.mask = ctx.Mask
	}
	desc, err := imagedesc.New(a.ds)
	if err != nil {
		return nil, err
	}
	a.desc = desc
	return a, nil
}

// Descriptor returns the image descriptor of the edited attributes.
func (a *ImageAdapter) Descriptor() *imagedesc.Descriptor { return a.desc }

// Dataset returns the edited attributes.
func (a *ImageAdapter) Dataset() *dicom.Dataset { return a.ds }

// TransferSyntax returns the decision triple, updated by CheckTranscode.
func (a *ImageAdapter) TransferSyntax() *transfersyntax.Adapt { return a.ats }

// FrameCount returns the number of frames of the object.
func (a *ImageAdapter) FrameCount() int { return a.desc.Frames() }

// CheckTranscode reports whether the pixel data must be re-encoded. When
// the requested syntax cannot be produced the suitable syntax of the triple
// falls back to the original one.
func (a *ImageAdapter) CheckTranscode() bool {
	if !a.checked {
		a.checked = true
		a.transcode = a.check()
	}
	return a.transcode
}

func (a *ImageAdapter) check() bool {
	orig := a.original()
	if a.src == nil {
		a.ats.SetSuitable(orig)
		return false
	}
	if bs, ok := attrs.Int(a.ds, tag.BitsStored); ok && bs <= 0 {
		a.ats.SetSuitable(orig)
		return false
	}
	suitable := a.ats.Suitable()
	if !transfersyntax.Known(suitable) {
		a.ats.SetSuitable(orig)
		suitable = orig
	}
	masked := a.masked()
	if transfersyntax.Compatible(orig, suitable) && !masked {
		return false
	}
	if transfersyntax.IsVideo(orig) || transfersyntax.IsVideo(suitable) {
		return a.fallback(masked)
	}

	info := a.desc.FrameInfo()
	if !transfersyntax.IsNative(orig) {
		dec, err := a.opts.registry.Lookup(orig)
		if err != nil {
			return a.fallback(masked)
		}
		a.decoder = dec
		info = decodedInfo(info)
	}
	if !transfersyntax.IsNative(suitable) {
		enc, err := a.opts.registry.Lookup(suitable)
		if err != nil || !a.encodable(enc, suitable, info) {
			if !masked {
				a.decoder = nil
				return a.fallback(false)
			}
			// masked pixels are still written, uncompressed
			native := orig
			if !transfersyntax.IsNative(native) {
				native = transfersyntax.ExplicitVRLittleEndian
			}
			a.ats.SetSuitable(native)
			return true
		}
		a.encoder = enc
	}
	return true
}

// encodable reports whether enc can write frames described by info in ts.
// Palette indexes are never compressed lossily.
func (a *ImageAdapter) encodable(enc codec.Codec, ts string, info *imagetypes.FrameInfo) bool {
	if transfersyntax.IsLossy(ts) && a.desc.Photometric() == imagedesc.PaletteColor {
		return false
	}
	return codec.CanEncode(enc, info)
}

// decodedInfo describes frames produced by a decoder. Color frames stored
// in a compressed-domain YBR interpretation decode to RGB.
func decodedInfo(info *imagetypes.FrameInfo) *imagetypes.FrameInfo {
	switch imagedesc.ParsePhotometric(info.PhotometricInterpretation) {
	case imagedesc.YBRFull422, imagedesc.YBRPartial422, imagedesc.YBRPartial420, imagedesc.YBRICT, imagedesc.YBRRCT:
		out := *info
		out.PhotometricInterpretation = imagedesc.RGB.String()
		out.PlanarConfiguration = 0
		return &out
	}
	return info
}

// original returns the syntax the pixel data arrived in. An object without
// a valid one is taken as Explicit VR Little Endian unless its pixel data
// is encapsulated, which cannot be written without knowing the codec.
func (a *ImageAdapter) original() string {
	orig := a.ats.Original()
	if transfersyntax.IsValidUID(orig) {
		return orig
	}
	if a.src != nil && a.src.Encapsulated() {
		return orig
	}
	return transfersyntax.ExplicitVRLittleEndian
}

// fallback keeps the original syntax. A requested mask cannot be honored
// then.
func (a *ImageAdapter) fallback(masked bool) bool {
	a.ats.SetSuitable(a.original())
	if masked {
		a.err = ErrMaskNotApplicable
	}
	return false
}

func (a *ImageAdapter) masked() bool {
	if a.opts.mask == nil {
		return false
	}
	for i := 0; i < a.FrameCount(); i++ {
		if a.opts.mask.Applies(i) {
			return true
		}
	}
	return false
}

// OutputTransferSyntax returns the syntax the pixel data is written in.
func (a *ImageAdapter) OutputTransferSyntax() string {
	a.CheckTranscode()
	ts := a.ats.Suitable()
	if !a.transcode && !transfersyntax.Compatible(a.original(), ts) {
		ts = a.original()
	}
	if a.opts.deflate && ts == transfersyntax.ExplicitVRLittleEndian {
		ts = transfersyntax.DeflatedExplicitVRLittleEndian
	}
	return ts
}

// Bytes returns frame i in the output syntax. Re-encoded frames are
// produced on first access and cached; native frames are little endian.
func (a *ImageAdapter) Bytes(i int) ([]byte, error) {
	if i < 0 || i >= a.FrameCount() {
		return nil, fmt.Errorf("%w: %d of %d", pixeldata.ErrFrameOutOfRange, i, a.FrameCount())
	}
	if b, ok := a.cache[i]; ok {
		return b, nil
	}
	a.CheckTranscode()
	if a.err != nil {
		return nil, a.err
	}
	if a.src == nil {
		return nil, pixeldata.ErrNoPixelData
	}
	raw, err := a.src.Frame(i, a.FrameCount(), a.desc)
	if err != nil {
		return nil, err
	}
	if !a.transcode {
		if a.src.Encapsulated() {
			return raw, nil
		}
		return pixeldata.ToLittleEndian(raw, a.src.Order(), a.desc.BitsAllocated()), nil
	}
	out, err := a.transcodeFrame(i, raw)
	if err != nil {
		return nil, err
	}
	a.cache[i] = out
	return out, nil
}

// release drops a cached frame once it has been written.
func (a *ImageAdapter) release(i int) {
	delete(a.cache, i)
}

func (a *ImageAdapter) transcodeFrame(i int, raw []byte) ([]byte, error) {
	info := a.desc.FrameInfo()
	var native []byte
	if a.decoder != nil {
		var err error
		native, info, err = a.decoder.Decode(raw, info)
		if err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", i, err)
		}
	} else {
		native = pixeldata.ToLittleEndian(raw, a.src.Order(), int(info.BitsAllocated))
	}

	if a.opts.mask.Applies(i) {
		if a.decoder == nil {
			native = slices.Clone(native)
		}
		if _, err := a.opts.mask.ApplyFrame(native, info); err != nil {
			return nil, fmt.Errorf("mask frame %d: %w", i, err)
		}
	}

	if a.encoder == nil {
		if a.out == nil {
			a.out = info
		}
		return native, nil
	}
	encoded, err := a.encoder.Encode(native, info, a.opts.params)
	if err != nil {
		return nil, fmt.Errorf("encode frame %d: %w", i, err)
	}
	if a.out == nil {
		out := *info
		out.PlanarConfiguration = 0
		out.PhotometricInterpretation = encodedPhotometric(a.ats.Suitable(), info)
		a.out = &out
		if len(encoded) > 0 {
			a.ratio = float64(len(native)) / float64(len(encoded))
		}
	}
	return encoded, nil
}

// encodedPhotometric is the photometric interpretation of color frames
// after encoding in ts.
func encodedPhotometric(ts string, info *imagetypes.FrameInfo) string {
	if info.SamplesPerPixel != 3 {
		return info.PhotometricInterpretation
	}
	switch {
	case transfersyntax.IsJPEG(ts) && transfersyntax.IsLossy(ts):
		return imagedesc.YBRFull422.String()
	case transfersyntax.IsJPEG2000(ts) && transfersyntax.IsLossy(ts):
		return imagedesc.YBRICT.String()
	case transfersyntax.IsJPEG2000(ts):
		return imagedesc.YBRRCT.String()
	}
	return info.PhotometricInterpretation
}

// compressionMethod is the Lossy Image Compression Method term of ts.
func compressionMethod(ts string) string {
	switch {
	case transfersyntax.IsJPEG(ts):
		return "ISO_10918_1"
	case transfersyntax.IsJPEGLS(ts):
		return "ISO_14495_1"
	case ts == transfersyntax.HTJ2K:
		return "ISO_15444_15"
	case transfersyntax.IsJPEG2000(ts):
		return "ISO_15444_1"
	}
	return ""
}

// outputDataset returns the attributes written with the pixel data.
func (a *ImageAdapter) outputDataset(metadataOnly bool) (*dicom.Dataset, error) {
	ds := attrs.Clone(a.ds)
	attrs.Remove(ds, tag.PixelData)
	if metadataOnly || !a.transcode {
		return ds, nil
	}
	if _, err := a.Bytes(0); err != nil {
		return nil, err
	}
	out := a.out
	if err := attrs.Set(ds, tag.PhotometricInterpretation, []string{out.PhotometricInterpretation}); err != nil {
		return nil, err
	}
	if out.SamplesPerPixel > 1 {
		if err := attrs.Set(ds, attrs.PlanarConfiguration, []int{int(out.PlanarConfiguration)}); err != nil {
			return nil, err
		}
	}
	if a.encoder == nil || !transfersyntax.IsLossy(a.ats.Suitable()) {
		return ds, nil
	}
	ratios := append(attrs.Strings(ds, attrs.LossyImageCompressionRatio), strconv.FormatFloat(a.ratio, 'f', 2, 64))
	methods := append(attrs.Strings(ds, attrs.LossyImageCompressionMethod), compressionMethod(a.ats.Suitable()))
	for _, s := range []struct {
		t tag.Tag
		v []string
	}{
		{attrs.LossyImageCompression, []string{"01"}},
		{attrs.LossyImageCompressionRatio, ratios},
		{attrs.LossyImageCompressionMethod, methods},
	} {
		if err := attrs.Set(ds, s.t, s.v); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// DataWriter streams one Part-10 object.
type DataWriter interface {
	io.WriterTo
	// TransferSyntaxUID is the syntax declared in the stream.
	TransferSyntaxUID() string
}

type dataWriter struct {
	ds     *dicom.Dataset
	w      *part10.Writer
	pixels *part10.Pixels
}

func (d *dataWriter) WriteTo(w io.Writer) (int64, error) {
	return d.w.WriteTo(w, d.ds, d.pixels)
}

func (d *dataWriter) TransferSyntaxUID() string { return d.w.TransferSyntaxUID() }

// BuildDataWriter returns a writer streaming the file meta information,
// the attributes and the pixel data in the output syntax. Frames are read,
// and re-encoded when needed, one at a time while the writer runs; ctx is
// checked before each frame.
func (a *ImageAdapter) BuildDataWriter(ctx context.Context) (DataWriter, error) {
	return a.dataWriter(ctx, false)
}

func (a *ImageAdapter) dataWriter(ctx context.Context, metadataOnly bool) (*dataWriter, error) {
	ts := transfersyntax.ExplicitVRLittleEndian
	if !metadataOnly {
		a.CheckTranscode()
		if a.err != nil {
			return nil, a.err
		}
		ts = a.OutputTransferSyntax()
	}
	ds, err := a.outputDataset(metadataOnly)
	if err != nil {
		return nil, err
	}
	dw := &dataWriter{ds: ds, w: part10.NewWriter(ts).WithSourceAE(a.opts.callingAE)}
	if metadataOnly || a.src == nil {
		return dw, nil
	}

	frameLength := a.desc.FrameLength()
	bits := a.desc.BitsAllocated()
	if a.transcode && a.out != nil {
		frameLength = int64(codec.FrameLength(a.out))
		bits = int(a.out.BitsAllocated)
	}
	dw.pixels = &part10.Pixels{
		Source:        &frameSource{a: a, ctx: ctx, video: transfersyntax.IsVideo(ts)},
		Encapsulated:  transfersyntax.IsEncapsulated(ts),
		FrameLength:   frameLength,
		BitsAllocated: bits,
	}
	return dw, nil
}

// frameSource feeds the frames of an adapter to a part10 writer. A video
// stream is written as the single bitstream it is stored as.
type frameSource struct {
	a     *ImageAdapter
	ctx   context.Context
	video bool
}

func (f *frameSource) FrameCount() int {
	if f.video {
		return 1
	}
	return f.a.FrameCount()
}

func (f *frameSource) Frame(i int) ([]byte, error) {
	if err := f.ctx.Err(); err != nil {
		return nil, err
	}
	if f.video {
		return f.a.src.Frame(0, 1, f.a.desc)
	}
	b, err := f.a.Bytes(i)
	f.a.release(i)
	return b, err
}

// WriteDicomFile writes the object to path. Metadata-only files carry no
// pixel data and are always Explicit VR Little Endian. A partially written
// file is removed on failure.
func (a *ImageAdapter) WriteDicomFile(path string, metadataOnly bool) (err error) {
	dw, err := a.dataWriter(context.Background(), metadataOnly)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	bw := bufio.NewWriterSize(f, 64*1024)
	if _, err := dw.WriteTo(bw); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return bw.Flush()
}
