package header

import (
	"bytes"
	"io"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/cocosip/go-dicom-imageio/attrs"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

func sequenceHeader(width, height, aspect, rate, bitRate int) []byte {
	return []byte{
		0x00, 0x00, 0x01, 0xB3,
		byte(width >> 4), byte(width<<4) | byte(height>>8), byte(height),
		byte(aspect<<4 | rate),
		byte(bitRate >> 10), byte(bitRate >> 2), byte(bitRate<<6) | 0x20,
	}
}

func TestMPEGParserNoHeader(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0xFF, 0xFF, 0x00, 0x00, 0x01, 0xB5, 0x12},
		bytes.Repeat([]byte{0x00}, 64),
		{0x00, 0x00, 0x01, 0xB3, 0x2D},
	}
	for _, in := range inputs {
		p, err := NewMPEGParser(bytes.NewReader(in))
		if err != nil {
			t.Fatalf("NewMPEGParser(% X) error = %v", in, err)
		}
		if p.Found() {
			t.Errorf("Found() = true for % X", in)
		}
		if ds, ok := p.Attributes(); ok || ds != nil {
			t.Errorf("Attributes() = %v, %v, want nil, false", ds, ok)
		}
	}
}

func TestMPEGParser(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		aspect     int
		rate       int
		bitRate    int
		padding    int
		wantUID    string
		wantFrames int
		wantCine   int
		wantAspect [2]int
	}{
		{"PAL main level", 720, 576, 2, 3, 15000, 0, transfersyntax.MPEG2MainProfileMainLevel, 1, 25, [2]int{4, 3}},
		{"HD high level", 1920, 1080, 3, 4, 0, 0, transfersyntax.MPEG2MainProfileHighLevel, UnknownFrameCount, 30, [2]int{16, 9}},
		{"leading junk", 352, 288, 1, 5, 1, 3000, transfersyntax.MPEG2MainProfileMainLevel, 1806, 30, [2]int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			junk := bytes.Repeat([]byte{0x47}, tt.padding)
			stream := append(junk, sequenceHeader(tt.width, tt.height, tt.aspect, tt.rate, tt.bitRate)...)
			p, err := NewMPEGParser(bytes.NewReader(stream))
			if err != nil {
				t.Fatalf("NewMPEGParser() error = %v", err)
			}
			if !p.Found() {
				t.Fatal("Found() = false")
			}
			if got := p.SequenceHeaderOffset(); got != int64(tt.padding) {
				t.Errorf("SequenceHeaderOffset() = %d, want %d", got, tt.padding)
			}
			if got := p.TransferSyntaxUID(); got != tt.wantUID {
				t.Errorf("TransferSyntaxUID() = %q, want %q", got, tt.wantUID)
			}
			cp := p.CodecParameters()
			if cp.Columns != tt.width || cp.Rows != tt.height {
				t.Errorf("geometry = %dx%d, want %dx%d", cp.Columns, cp.Rows, tt.width, tt.height)
			}
			if cp.Frames != tt.wantFrames {
				t.Errorf("Frames = %d, want %d", cp.Frames, tt.wantFrames)
			}
			if cp.CineRate != tt.wantCine {
				t.Errorf("CineRate = %d, want %d", cp.CineRate, tt.wantCine)
			}
			if cp.PixelAspectRatio != tt.wantAspect {
				t.Errorf("PixelAspectRatio = %v, want %v", cp.PixelAspectRatio, tt.wantAspect)
			}

			ds, ok := p.Attributes()
			if !ok {
				t.Fatal("Attributes() returned false")
			}
			if got, _ := attrs.String(ds, tag.PhotometricInterpretation); got != "YBR_PARTIAL_420" {
				t.Errorf("PhotometricInterpretation = %q", got)
			}
			if got, _ := attrs.Int(ds, tag.NumberOfFrames); got != tt.wantFrames {
				t.Errorf("NumberOfFrames = %d, want %d", got, tt.wantFrames)
			}
			if got, _ := attrs.Int(ds, attrs.PlanarConfiguration); got != 0 {
				t.Errorf("PlanarConfiguration = %d, want 0", got)
			}
		})
	}
}

func TestMPEGParserRestoresPosition(t *testing.T) {
	stream := append([]byte("abc"), sequenceHeader(640, 480, 1, 3, 100)...)
	r := bytes.NewReader(stream)
	if _, err := r.Seek(3, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	p, err := NewMPEGParser(r)
	if err != nil {
		t.Fatal(err)
	}
	if p.SequenceHeaderOffset() != 0 {
		t.Errorf("SequenceHeaderOffset() = %d, want 0", p.SequenceHeaderOffset())
	}
	if pos, _ := r.Seek(0, io.SeekCurrent); pos != 3 {
		t.Errorf("reader position = %d, want 3", pos)
	}
}

func TestSynthesize(t *testing.T) {
	ds := &dicom.Dataset{}
	if err := attrs.Set(ds, tag.Rows, []int{1}); err != nil {
		t.Fatal(err)
	}
	if err := attrs.Set(ds, tag.PatientID, []string{"P1"}); err != nil {
		t.Fatal(err)
	}

	p, err := NewMPEGParser(bytes.NewReader(sequenceHeader(640, 480, 1, 3, 100)))
	if err != nil {
		t.Fatal(err)
	}
	if err := Synthesize(p, ds); err != nil {
		t.Fatal(err)
	}
	if got, _ := attrs.Int(ds, tag.Rows); got != 480 {
		t.Errorf("Rows = %d, want 480", got)
	}
	if got, _ := attrs.String(ds, tag.PatientID); got != "P1" {
		t.Errorf("PatientID = %q, want P1", got)
	}

	empty, err := NewMPEGParser(bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	before := len(ds.Elements)
	if err := Synthesize(empty, ds); err != nil {
		t.Fatal(err)
	}
	if len(ds.Elements) != before {
		t.Error("Synthesize without a header should leave the dataset untouched")
	}
}
