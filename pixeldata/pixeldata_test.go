package pixeldata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-imageio/imagedesc"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

func TestResolveFragments(t *testing.T) {
	info := dicom.PixelDataInfo{IsEncapsulated: true}
	for _, b := range [][]byte{{0xFF, 0xD8, 1}, {0xFF, 0xD8, 2}, {0xFF, 0xD8, 3}} {
		info.Frames = append(info.Frames, &frame.Frame{
			Encapsulated:     true,
			EncapsulatedData: frame.EncapsulatedFrame{Data: b},
		})
	}
	elem, err := dicom.NewElement(tag.PixelData, info)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Resolve(elem)
	if err != nil {
		t.Fatal(err)
	}
	f, ok := c.(*Fragments)
	if !ok {
		t.Fatalf("Resolve() = %T, want *Fragments", c)
	}
	for i := 0; i < 3; i++ {
		got, err := f.FrameBytes(i, 3, 0)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, f.Items[i]) {
			t.Errorf("frame %d = %v, want fragment %d", i, got, i+1)
		}
	}
	if _, err := f.FrameBytes(3, 3, 0); !errors.Is(err, ErrFrameOutOfRange) {
		t.Errorf("frame 3: error = %v", err)
	}
}

func TestResolveNative(t *testing.T) {
	nf := frame.NewNativeFrame[uint16](16, 2, 2, 4, 1)
	copy(nf.RawData, []uint16{1, 0x0203, 4, 0xFFFF})
	info := dicom.PixelDataInfo{Frames: []*frame.Frame{{NativeData: nf}}}
	elem, err := dicom.NewElement(tag.PixelData, info)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Resolve(elem)
	if err != nil {
		t.Fatal(err)
	}
	b, ok := c.(*Blob)
	if !ok {
		t.Fatalf("Resolve() = %T, want *Blob", c)
	}
	want := []byte{1, 0, 3, 2, 4, 0, 0xFF, 0xFF}
	if !bytes.Equal(b.Data, want) {
		t.Errorf("Data = %v, want %v", b.Data, want)
	}
}

func TestResolveOrderUnprocessed(t *testing.T) {
	info := dicom.PixelDataInfo{IntentionallyUnprocessed: true, UnprocessedValueData: []byte{0, 1, 0, 2}}
	elem, err := dicom.NewElement(tag.PixelData, info)
	if err != nil {
		t.Fatal(err)
	}
	c, err := ResolveOrder(elem, binary.BigEndian)
	if err != nil {
		t.Fatal(err)
	}
	if b := c.(*Blob); b.Order != binary.BigEndian || len(b.Data) != 4 {
		t.Errorf("ResolveOrder() = %+v", b)
	}
}

func TestResolveUnsupported(t *testing.T) {
	elem, err := dicom.NewElement(tag.Rows, []int{4})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(elem); !errors.Is(err, ErrUnsupportedPixelData) {
		t.Errorf("Rows element: error = %v", err)
	}
	if _, err := Resolve(nil); !errors.Is(err, ErrUnsupportedPixelData) {
		t.Errorf("nil element: error = %v", err)
	}
}

func TestBlobFrameBytes(t *testing.T) {
	b := &Blob{Data: []byte{0, 1, 2, 3, 4, 5}}
	got, err := b.FrameBytes(1, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{2, 3}) {
		t.Errorf("frame 1 = %v", got)
	}
	if _, err := b.FrameBytes(0, 1, 10); !errors.Is(err, ErrFrameOutOfRange) {
		t.Errorf("short data: error = %v", err)
	}
}

func TestGroup(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	j2k := []byte{0xFF, 0x4F, 0xFF, 0x51}
	other := []byte{1, 2, 3, 4}
	tests := []struct {
		name    string
		lengths []int64
		leads   [][]byte
		offsets []uint32
		frames  int
		want    [][]int
		wantErr bool
	}{
		{"one per frame", []int64{10, 10}, [][]byte{other, other}, nil, 2, [][]int{{0}, {1}}, false},
		{"single frame", []int64{10, 10, 4}, [][]byte{jpeg, other, other}, nil, 1, [][]int{{0, 1, 2}}, false},
		{"offset table", []int64{10, 6, 20, 4}, [][]byte{other, other, other, other}, []uint32{0, 32}, 2,
			[][]int{{0, 1}, {2, 3}}, false},
		{"offset inside fragment", []int64{10, 6, 20}, [][]byte{other, other, other}, []uint32{0, 20}, 2, nil, true},
		{"soi detection", []int64{5, 5, 5, 5}, [][]byte{jpeg, other, jpeg, other}, nil, 2, [][]int{{0, 1}, {2, 3}}, false},
		{"soc detection", []int64{5, 5, 5}, [][]byte{j2k, j2k, other}, nil, 2, [][]int{{0}, {1, 2}}, false},
		{"too few starts", []int64{5, 5, 5}, [][]byte{jpeg, other, other}, nil, 2, nil, true},
		{"no fragments", nil, nil, nil, 1, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := group(tt.lengths, tt.leads, tt.offsets, tt.frames)
			if tt.wantErr {
				if !errors.Is(err, ErrFragmentMismatch) {
					t.Errorf("error = %v, want ErrFragmentMismatch", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("groups = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !equalInts(got[i], tt.want[i]) {
					t.Errorf("groups = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSwapBytes(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5}
	SwapBytes16(b)
	if !bytes.Equal(b, []byte{2, 1, 4, 3, 5}) {
		t.Errorf("SwapBytes16 = %v", b)
	}
	w := []byte{1, 2, 3, 4}
	SwapBytes32(w)
	if !bytes.Equal(w, []byte{4, 3, 2, 1}) {
		t.Errorf("SwapBytes32 = %v", w)
	}
	src := []byte{0, 1}
	le := ToLittleEndian(src, binary.BigEndian, 16)
	if !bytes.Equal(le, []byte{1, 0}) || src[0] != 0 {
		t.Errorf("ToLittleEndian = %v, source %v", le, src)
	}
}

// part10 builds a minimal explicit VR little endian file by hand.
type part10 struct {
	bytes.Buffer
}

func (p *part10) short(group, elem uint16, vr string, value []byte) {
	binary.Write(p, binary.LittleEndian, [2]uint16{group, elem})
	p.WriteString(vr)
	binary.Write(p, binary.LittleEndian, uint16(len(value)))
	p.Write(value)
}

func (p *part10) long(group, elem uint16, vr string, length uint32) {
	binary.Write(p, binary.LittleEndian, [2]uint16{group, elem})
	p.WriteString(vr)
	p.Write([]byte{0, 0})
	binary.Write(p, binary.LittleEndian, length)
}

func (p *part10) item(group, elem uint16, length uint32) {
	binary.Write(p, binary.LittleEndian, [2]uint16{group, elem})
	binary.Write(p, binary.LittleEndian, length)
}

func newPart10(ts string) *part10 {
	p := &part10{}
	p.Write(make([]byte, 128))
	p.WriteString("DICM")
	uid := []byte(ts)
	if len(uid)%2 != 0 {
		uid = append(uid, 0)
	}
	p.short(0x0002, 0x0010, "UI", uid)
	p.short(0x0028, 0x0010, "US", []byte{2, 0})
	// undefined length sequence with one undefined length item
	p.long(0x0040, 0x0275, "SQ", undefinedLength)
	p.item(0xFFFE, 0xE000, undefinedLength)
	p.short(0x0040, 0x0007, "LO", []byte("AB"))
	p.item(0xFFFE, 0xE00D, 0)
	p.item(0xFFFE, 0xE0DD, 0)
	return p
}

func writeFile(t *testing.T, p *part10) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.dcm")
	if err := os.WriteFile(path, p.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocateEncapsulated(t *testing.T) {
	p := newPart10(transfersyntax.JPEGBaseline8Bit)
	p.long(0x7FE0, 0x0010, "OB", undefinedLength)
	p.item(0xFFFE, 0xE000, 8)
	binary.Write(p, binary.LittleEndian, [2]uint32{0, 12})
	p.item(0xFFFE, 0xE000, 4)
	firstAt := int64(p.Len())
	p.Write([]byte{0xFF, 0xD8, 0xAA, 0xBB})
	p.item(0xFFFE, 0xE000, 6)
	p.Write([]byte{0xFF, 0xD8, 1, 2, 3, 4})
	p.item(0xFFFE, 0xE0DD, 0)
	path := writeFile(t, p)

	loc, err := Locate(path)
	if err != nil {
		t.Fatal(err)
	}
	if loc.TransferSyntaxUID != transfersyntax.JPEGBaseline8Bit || !loc.Encapsulated {
		t.Fatalf("Locate() = %+v", loc)
	}
	if len(loc.Offsets) != 2 || loc.Offsets[1] != 12 {
		t.Errorf("Offsets = %v", loc.Offsets)
	}
	if len(loc.Fragments) != 2 || loc.Fragments[0].Position != firstAt || loc.Fragments[1].Length != 6 {
		t.Fatalf("Fragments = %+v", loc.Fragments)
	}

	desc := descriptor(t)
	list, err := loc.FrameSegments(1, 2, desc)
	if err != nil {
		t.Fatal(err)
	}
	data, err := list.ReadSegment(0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{0xFF, 0xD8, 1, 2, 3, 4}) {
		t.Errorf("frame 1 = %v", data)
	}
	all, err := loc.Segments(desc)
	if err != nil {
		t.Fatal(err)
	}
	if all.SegmentCount() != 2 || all.TotalLength() != 10 {
		t.Errorf("Segments() = %d segments, %d bytes", all.SegmentCount(), all.TotalLength())
	}
}

func TestLocateNative(t *testing.T) {
	p := newPart10(transfersyntax.ExplicitVRLittleEndian)
	p.long(0x7FE0, 0x0010, "OW", 8)
	at := int64(p.Len())
	p.Write([]byte{1, 0, 2, 0, 3, 0, 4, 0})
	path := writeFile(t, p)

	loc, err := Locate(path)
	if err != nil {
		t.Fatal(err)
	}
	if loc.Encapsulated || loc.Native.Position != at || loc.Native.Length != 8 {
		t.Fatalf("Locate() = %+v", loc)
	}
	if loc.Order != binary.LittleEndian {
		t.Error("explicit little endian file located as big endian")
	}
}

func TestLocateErrors(t *testing.T) {
	p := newPart10(transfersyntax.ExplicitVRLittleEndian)
	if _, err := Locate(writeFile(t, p)); !errors.Is(err, ErrNoPixelData) {
		t.Errorf("no pixel data: error = %v", err)
	}
	bad := &part10{}
	bad.WriteString("not dicom at all")
	if _, err := Locate(writeFile(t, bad)); !errors.Is(err, ErrNotPart10) {
		t.Errorf("garbage: error = %v", err)
	}
	deflated := newPart10(transfersyntax.DeflatedExplicitVRLittleEndian)
	if _, err := Locate(writeFile(t, deflated)); !errors.Is(err, ErrUnsupportedPixelData) {
		t.Errorf("deflated: error = %v", err)
	}
}

func descriptor(t *testing.T) *imagedesc.Descriptor {
	t.Helper()
	ds := &dicom.Dataset{}
	for _, e := range []struct {
		t tag.Tag
		v any
	}{
		{tag.Rows, []int{2}},
		{tag.Columns, []int{2}},
		{tag.BitsAllocated, []int{16}},
		{tag.BitsStored, []int{16}},
		{tag.SamplesPerPixel, []int{1}},
		{tag.NumberOfFrames, []string{"2"}},
	} {
		elem, err := dicom.NewElement(e.t, e.v)
		if err != nil {
			t.Fatal(err)
		}
		ds.Elements = append(ds.Elements, elem)
	}
	d, err := imagedesc.New(ds)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
