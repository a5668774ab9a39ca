package pixeldata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cocosip/go-dicom-imageio/imagedesc"
	"github.com/cocosip/go-dicom-imageio/segment"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

const undefinedLength = 0xFFFFFFFF

const (
	tagItem             = 0xFFFEE000
	tagItemDelimitation = 0xFFFEE00D
	tagSeqDelimitation  = 0xFFFEE0DD
	tagPixelData        = 0x7FE00010
	tagTransferSyntax   = 0x00020010
)

// Region is a byte range of a file.
type Region struct {
	Position int64
	Length   int64
	lead     []byte
}

// Location records where the Pixel Data element of a Part-10 file lives.
type Location struct {
	Path              string
	TransferSyntaxUID string
	Order             binary.ByteOrder
	Encapsulated      bool
	// Native is the value of native pixel data.
	Native Region
	// Offsets is the Basic Offset Table of encapsulated data.
	Offsets []uint32
	// Fragments are the data fragments after the offset table.
	Fragments []Region
}

// Locate walks the Part-10 file at path to its top-level Pixel Data
// element without loading any values. Deflated files cannot be located.
func Locate(path string) (*Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w := &walker{r: bufio.NewReaderSize(f, 64*1024)}
	var preamble [132]byte
	if err := w.read(preamble[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPart10, err)
	}
	if string(preamble[128:]) != "DICM" {
		return nil, ErrNotPart10
	}

	loc := &Location{Path: path}
	w.order = binary.LittleEndian
	w.explicit = true
	for {
		peek, err := w.r.Peek(2)
		if err != nil || binary.LittleEndian.Uint16(peek) != 0x0002 {
			break
		}
		tag, length, err := w.header()
		if err != nil {
			return nil, err
		}
		if tag == tagTransferSyntax {
			v := make([]byte, length)
			if err := w.read(v); err != nil {
				return nil, err
			}
			loc.TransferSyntaxUID = strings.TrimRight(string(v), "\x00 ")
			continue
		}
		if err := w.skip(length); err != nil {
			return nil, err
		}
	}

	uid := loc.TransferSyntaxUID
	if transfersyntax.IsDeflated(uid) {
		return nil, fmt.Errorf("%w: deflated transfer syntax", ErrUnsupportedPixelData)
	}
	w.explicit = !transfersyntax.IsImplicitVR(uid)
	if transfersyntax.IsBigEndian(uid) {
		w.order = binary.BigEndian
	}
	loc.Order = w.order

	for {
		tag, length, err := w.header()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoPixelData
		}
		if err != nil {
			return nil, err
		}
		if tag != tagPixelData {
			if err := w.skip(length); err != nil {
				return nil, err
			}
			continue
		}
		if length != undefinedLength {
			loc.Native = Region{Position: w.off, Length: int64(length)}
			return loc, nil
		}
		loc.Encapsulated = true
		return loc, w.fragments(loc)
	}
}

func (w *walker) fragments(loc *Location) error {
	first := true
	for {
		tag, length, err := w.itemHeader()
		if err != nil {
			return err
		}
		if tag == tagSeqDelimitation {
			return nil
		}
		if tag != tagItem || length == undefinedLength {
			return fmt.Errorf("%w: unexpected tag %08X in pixel data sequence", ErrUnsupportedPixelData, tag)
		}
		if first {
			first = false
			bot := make([]byte, length)
			if err := w.read(bot); err != nil {
				return err
			}
			for i := 0; i+4 <= len(bot); i += 4 {
				loc.Offsets = append(loc.Offsets, w.order.Uint32(bot[i:]))
			}
			continue
		}
		r := Region{Position: w.off, Length: int64(length)}
		if lead, err := w.r.Peek(min(int(length), 4)); err == nil {
			r.lead = bytes.Clone(lead)
		}
		loc.Fragments = append(loc.Fragments, r)
		if err := w.skip(length); err != nil {
			return err
		}
	}
}

// Segments returns one segment per fragment, or a single segment for native
// data.
func (l *Location) Segments(desc *imagedesc.Descriptor) (*segment.List, error) {
	if !l.Encapsulated {
		return segment.NewList(l.Path, []int64{l.Native.Position}, []int64{l.Native.Length}, desc)
	}
	positions := make([]int64, 0, len(l.Fragments))
	lengths := make([]int64, 0, len(l.Fragments))
	for _, f := range l.Fragments {
		if f.Length == 0 {
			continue
		}
		positions = append(positions, f.Position)
		lengths = append(lengths, f.Length)
	}
	return segment.NewList(l.Path, positions, lengths, desc)
}

// FrameSegments returns the segments holding frame i of frames.
func (l *Location) FrameSegments(i, frames int, desc *imagedesc.Descriptor) (*segment.List, error) {
	if i < 0 || i >= frames {
		return nil, fmt.Errorf("%w: %d of %d", ErrFrameOutOfRange, i, frames)
	}
	if !l.Encapsulated {
		n := desc.FrameLength()
		start := l.Native.Position + int64(i)*n
		if int64(i+1)*n > l.Native.Length {
			return nil, fmt.Errorf("%w: frame %d beyond %d bytes of pixel data", ErrFrameOutOfRange, i, l.Native.Length)
		}
		return segment.NewList(l.Path, []int64{start}, []int64{n}, desc)
	}

	lengths := make([]int64, len(l.Fragments))
	leads := make([][]byte, len(l.Fragments))
	for j, f := range l.Fragments {
		lengths[j] = f.Length
		leads[j] = f.lead
	}
	groups, err := group(lengths, leads, l.Offsets, frames)
	if err != nil {
		return nil, err
	}
	var positions, sizes []int64
	for _, j := range groups[i] {
		if l.Fragments[j].Length == 0 {
			continue
		}
		positions = append(positions, l.Fragments[j].Position)
		sizes = append(sizes, l.Fragments[j].Length)
	}
	return segment.NewList(l.Path, positions, sizes, desc)
}

// walker reads element headers while tracking the file offset.
type walker struct {
	r        *bufio.Reader
	off      int64
	order    binary.ByteOrder
	explicit bool
}

func (w *walker) read(p []byte) error {
	n, err := io.ReadFull(w.r, p)
	w.off += int64(n)
	return err
}

func (w *walker) skip(n uint32) error {
	if n == undefinedLength {
		return w.skipUndefined()
	}
	d, err := w.r.Discard(int(n))
	w.off += int64(d)
	if err != nil {
		return fmt.Errorf("skipping %d bytes at %d: %w", n, w.off, err)
	}
	return nil
}

func (w *walker) tag() (uint32, error) {
	var b [4]byte
	if err := w.read(b[:]); err != nil {
		return 0, err
	}
	return uint32(w.order.Uint16(b[0:]))<<16 | uint32(w.order.Uint16(b[2:])), nil
}

// itemHeader reads an item or delimiter, which never carries a VR.
func (w *walker) itemHeader() (uint32, uint32, error) {
	tag, err := w.tag()
	if err != nil {
		return 0, 0, err
	}
	var b [4]byte
	if err := w.read(b[:]); err != nil {
		return 0, 0, err
	}
	return tag, w.order.Uint32(b[:]), nil
}

// header reads the tag and value length of the next element.
func (w *walker) header() (uint32, uint32, error) {
	tag, err := w.tag()
	if err != nil {
		return 0, 0, err
	}
	if tag>>16 == 0xFFFE || !w.explicit {
		var b [4]byte
		if err := w.read(b[:]); err != nil {
			return 0, 0, err
		}
		return tag, w.order.Uint32(b[:]), nil
	}
	var vr [2]byte
	if err := w.read(vr[:]); err != nil {
		return 0, 0, err
	}
	switch string(vr[:]) {
	case "OB", "OD", "OF", "OL", "OV", "OW", "SQ", "SV", "UC", "UN", "UR", "UT", "UV":
		var b [6]byte
		if err := w.read(b[:]); err != nil {
			return 0, 0, err
		}
		return tag, w.order.Uint32(b[2:]), nil
	}
	var b [2]byte
	if err := w.read(b[:]); err != nil {
		return 0, 0, err
	}
	return tag, uint32(w.order.Uint16(b[:])), nil
}

// skipUndefined skips a sequence of undefined length up to and including
// its delimiter.
func (w *walker) skipUndefined() error {
	for {
		tag, length, err := w.itemHeader()
		if err != nil {
			return err
		}
		switch tag {
		case tagSeqDelimitation:
			return nil
		case tagItem:
			if length != undefinedLength {
				if err := w.skip(length); err != nil {
					return err
				}
				continue
			}
			if err := w.skipItem(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected tag %08X in sequence", ErrUnsupportedPixelData, tag)
		}
	}
}

func (w *walker) skipItem() error {
	for {
		tag, length, err := w.header()
		if err != nil {
			return err
		}
		if tag == tagItemDelimitation {
			return nil
		}
		if err := w.skip(length); err != nil {
			return err
		}
	}
}
