package adapter

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-imageio/attrs"
	"github.com/cocosip/go-dicom-imageio/bytechannel"
	"github.com/cocosip/go-dicom-imageio/imagedesc"
	"github.com/cocosip/go-dicom-imageio/pixeldata"
	"github.com/cocosip/go-dicom-imageio/segment"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

// Source supplies the stored pixel data of one object, frame by frame.
type Source interface {
	// Frame returns frame i of frames as stored: a compressed bitstream or
	// native samples in Order.
	Frame(i, frames int, desc *imagedesc.Descriptor) ([]byte, error)

	// Order is the byte order of native samples.
	Order() binary.ByteOrder

	// Encapsulated reports whether frames are compressed bitstreams.
	Encapsulated() bool
}

// ContainerSource serves frames from pixel data held in memory.
type ContainerSource struct {
	c     pixeldata.Container
	order binary.ByteOrder
}

// NewContainerSource wraps c. order applies to native samples.
func NewContainerSource(c pixeldata.Container, order binary.ByteOrder) *ContainerSource {
	if order == nil {
		order = binary.LittleEndian
	}
	return &ContainerSource{c: c, order: order}
}

// NewDatasetSource resolves the Pixel Data element of ds, parsed from a
// stream in transfer syntax ts.
func NewDatasetSource(ds *dicom.Dataset, ts string) (*ContainerSource, error) {
	elem := attrs.Find(ds, tag.PixelData)
	if elem == nil {
		return nil, pixeldata.ErrNoPixelData
	}
	var order binary.ByteOrder = binary.LittleEndian
	if transfersyntax.IsBigEndian(ts) {
		order = binary.BigEndian
	}
	c, err := pixeldata.ResolveOrder(elem, order)
	if err != nil {
		return nil, err
	}
	if b, ok := c.(*pixeldata.Blob); ok {
		order = b.Order
	}
	return NewContainerSource(c, order), nil
}

// Frame implements Source.
func (s *ContainerSource) Frame(i, frames int, desc *imagedesc.Descriptor) ([]byte, error) {
	return s.c.FrameBytes(i, frames, desc.FrameLength())
}

// Order implements Source.
func (s *ContainerSource) Order() binary.ByteOrder { return s.order }

// Encapsulated implements Source.
func (s *ContainerSource) Encapsulated() bool {
	_, ok := s.c.(*pixeldata.Fragments)
	return ok
}

// Container returns the wrapped container.
func (s *ContainerSource) Container() pixeldata.Container { return s.c }

// FileSource reads frames lazily from the Pixel Data element of a Part-10
// file, one seek and read per fragment.
type FileSource struct {
	loc *pixeldata.Location
}

// NewFileSource locates the pixel data of the file at path.
func NewFileSource(path string) (*FileSource, error) {
	loc, err := pixeldata.Locate(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{loc: loc}, nil
}

// TransferSyntaxUID returns the syntax declared by the file.
func (s *FileSource) TransferSyntaxUID() string { return s.loc.TransferSyntaxUID }

// Location returns where the pixel data lives in the file.
func (s *FileSource) Location() *pixeldata.Location { return s.loc }

// Segments returns the read plan of frame i of frames.
func (s *FileSource) Segments(i, frames int, desc *imagedesc.Descriptor) (*segment.List, error) {
	return s.loc.FrameSegments(i, frames, desc)
}

// Frame implements Source. The segments of the frame are gathered in a
// scratch channel sized to their total length.
func (s *FileSource) Frame(i, frames int, desc *imagedesc.Descriptor) ([]byte, error) {
	list, err := s.loc.FrameSegments(i, frames, desc)
	if err != nil {
		return nil, err
	}
	r, err := list.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	ch := bytechannel.New(int(list.TotalLength()))
	if _, err := io.Copy(ch, r); err != nil {
		return nil, fmt.Errorf("read frame %d of %s: %w", i, list.Path(), err)
	}
	return ch.Bytes(), nil
}

// Order implements Source.
func (s *FileSource) Order() binary.ByteOrder { return s.loc.Order }

// Encapsulated implements Source.
func (s *FileSource) Encapsulated() bool { return s.loc.Encapsulated }

// ReadFile parses the attributes of the Part-10 file at path and returns a
// source for its pixel data, nil when it has none. Pixel data of deflated
// files cannot be located and is parsed into memory instead.
func ReadFile(path string) (*dicom.Dataset, Source, error) {
	src, err := NewFileSource(path)
	switch {
	case err == nil:
		ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
		if err != nil {
			return nil, nil, err
		}
		return &ds, src, nil
	case errors.Is(err, pixeldata.ErrNoPixelData):
		ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
		if err != nil {
			return nil, nil, err
		}
		return &ds, nil, nil
	case errors.Is(err, pixeldata.ErrUnsupportedPixelData):
		ds, err := dicom.ParseFile(path, nil)
		if err != nil {
			return nil, nil, err
		}
		mem, err := NewDatasetSource(&ds, TransferSyntaxOf(&ds))
		if errors.Is(err, pixeldata.ErrNoPixelData) {
			return &ds, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		return &ds, mem, nil
	}
	return nil, nil, err
}

// TransferSyntaxOf returns the Transfer Syntax UID in the meta group of ds.
func TransferSyntaxOf(ds *dicom.Dataset) string {
	ts, _ := attrs.String(ds, tag.TransferSyntaxUID)
	return ts
}
