package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"
	"github.com/suyashkumar/dicom"

	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/pixeldata"
	"github.com/cocosip/go-dicom-imageio/transfersyntax"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			s := &scenario{t: t}
			s.register(sc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// scenario holds the state of one scenario.
type scenario struct {
	t       *testing.T
	dir     string
	object  *object
	adapter *ImageAdapter
	path    string
}

func (s *scenario) register(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		s.dir = s.t.TempDir()
		return ctx, nil
	})

	sc.Step(`^a (\d+)x(\d+) signed 16-bit CT object with (\d+) frames?$`, s.ctObject)
	sc.Step(`^the object is stored as one JPEG Lossless fragment per frame$`, s.storedAsFragments)
	sc.Step(`^transfer syntax "([^"]*)" is requested$`, s.requested)
	sc.Step(`^a metadata-only file is written$`, func() error { return s.write(true) })
	sc.Step(`^a full file is written$`, func() error { return s.write(false) })
	sc.Step(`^transcoding is needed$`, func() error { return s.transcoding(true) })
	sc.Step(`^transcoding is not needed$`, func() error { return s.transcoding(false) })
	sc.Step(`^the data writer declares transfer syntax "([^"]*)"$`, s.writerDeclares)
	sc.Step(`^the suitable transfer syntax is "([^"]*)"$`, s.suitableIs)
	sc.Step(`^frame 0 is not empty and not larger than the native frame$`, s.frameZeroSize)
	sc.Step(`^every frame returns the bytes of its fragment$`, s.framesAreFragments)
	sc.Step(`^the file declares transfer syntax "([^"]*)"$`, s.fileDeclares)
	sc.Step(`^the file has no pixel data$`, s.fileHasNoPixelData)
	sc.Step(`^the file decodes to the original frames$`, s.fileDecodes)
}

func (s *scenario) ctObject(rows, cols, frames int) error {
	s.object = ctObject(s.t, rows, cols, frames)
	return nil
}

func (s *scenario) storedAsFragments() error {
	s.object = encapsulated(s.t, s.object)
	return nil
}

func (s *scenario) requested(uid string) error {
	a, err := NewImageAdapter(s.object.ds, s.object.src, transfersyntax.NewAdapt(TransferSyntaxOf(s.object.ds), uid))
	if err != nil {
		return err
	}
	s.adapter = a
	return nil
}

func (s *scenario) write(metadataOnly bool) error {
	s.path = filepath.Join(s.dir, "out.dcm")
	return s.adapter.WriteDicomFile(s.path, metadataOnly)
}

func (s *scenario) transcoding(want bool) error {
	if got := s.adapter.CheckTranscode(); got != want {
		return fmt.Errorf("CheckTranscode() = %v, want %v", got, want)
	}
	return nil
}

func (s *scenario) writerDeclares(uid string) error {
	dw, err := s.adapter.BuildDataWriter(context.Background())
	if err != nil {
		return err
	}
	if got := dw.TransferSyntaxUID(); got != uid {
		return fmt.Errorf("TransferSyntaxUID() = %s, want %s", got, uid)
	}
	return nil
}

func (s *scenario) suitableIs(uid string) error {
	if got := s.adapter.TransferSyntax().Suitable(); got != uid {
		return fmt.Errorf("Suitable() = %s, want %s", got, uid)
	}
	return nil
}

func (s *scenario) frameZeroSize() error {
	frame, err := s.adapter.Bytes(0)
	if err != nil {
		return err
	}
	if len(frame) == 0 || int64(len(frame)) > s.adapter.Descriptor().FrameLength() {
		return fmt.Errorf("frame 0 = %d bytes, native frame is %d", len(frame), s.adapter.Descriptor().FrameLength())
	}
	return nil
}

func (s *scenario) framesAreFragments() error {
	frags := s.object.src.(*ContainerSource).Container().(*pixeldata.Fragments)
	for i := 0; i < s.adapter.FrameCount(); i++ {
		got, err := s.adapter.Bytes(i)
		if err != nil {
			return err
		}
		if !bytes.Equal(got, frags.Items[i]) {
			return fmt.Errorf("frame %d is not fragment %d", i, i+1)
		}
	}
	return nil
}

func (s *scenario) fileDeclares(uid string) error {
	ds, err := dicom.ParseFile(s.path, nil, dicom.SkipPixelData())
	if err != nil {
		return err
	}
	if got := TransferSyntaxOf(&ds); got != uid {
		return fmt.Errorf("file transfer syntax = %s, want %s", got, uid)
	}
	return nil
}

func (s *scenario) fileHasNoPixelData() error {
	if _, err := pixeldata.Locate(s.path); !errors.Is(err, pixeldata.ErrNoPixelData) {
		return fmt.Errorf("Locate() error = %v, want %v", err, pixeldata.ErrNoPixelData)
	}
	return nil
}

func (s *scenario) fileDecodes() error {
	ds, src, err := ReadFile(s.path)
	if err != nil {
		return err
	}
	ts := TransferSyntaxOf(ds)
	a, err := NewImageAdapter(ds, src, transfersyntax.NewAdapt(ts, ts))
	if err != nil {
		return err
	}
	c, err := codec.Default().Lookup(ts)
	if err != nil {
		return err
	}
	for i, want := range s.object.raw {
		enc, err := a.Bytes(i)
		if err != nil {
			return err
		}
		got, _, err := c.Decode(enc, a.Descriptor().FrameInfo())
		if err != nil {
			return fmt.Errorf("decode frame %d: %w", i, err)
		}
		if !bytes.Equal(got, want) {
			return fmt.Errorf("frame %d differs from the original", i)
		}
	}
	return nil
}
