package codec

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
)

// syntaxes lists the go-dicom transfer syntaxes a codec may be bridged for
var syntaxes = []*transfer.Syntax{
	transfer.JPEGBaseline8Bit,
	transfer.JPEGExtended12Bit,
	transfer.JPEGLossless,
	transfer.JPEGLosslessSV1,
	transfer.JPEGLSLossless,
	transfer.JPEGLSNearLossless,
	transfer.JPEG2000Lossless,
	transfer.JPEG2000,
	transfer.JPEG2000Part2MultiComponentLosslessOnly,
	transfer.JPEG2000Part2MultiComponent,
	transfer.HTJ2KLossless,
	transfer.HTJ2KLosslessRPCL,
	transfer.HTJ2K,
	transfer.RLELossless,
}

// Syntax returns the go-dicom transfer syntax for uid, nil when go-dicom has
// no codec slot for it.
func Syntax(uid string) *transfer.Syntax {
	for _, ts := range syntaxes {
		if ts.UID().UID() == uid {
			return ts
		}
	}
	return nil
}

// Export registers c in the go-dicom global codec registry so that callers
// of that library can use it. It returns false when go-dicom does not know
// the codec's transfer syntax.
func Export(c Codec) bool {
	ts := Syntax(c.UID())
	if ts == nil {
		return false
	}
	dicomcodec.GetGlobalRegistry().RegisterCodec(ts, &exported{codec: c, ts: ts})
	return true
}

// exported adapts a frame codec to the go-dicom multi-frame interface
type exported struct {
	codec Codec
	ts    *transfer.Syntax
}

var _ dicomcodec.Codec = (*exported)(nil)

func (e *exported) Name() string { return e.codec.Name() }

func (e *exported) TransferSyntax() *transfer.Syntax { return e.ts }

func (e *exported) GetDefaultParameters() dicomcodec.Parameters { return NewParameters() }

func (e *exported) Encode(src, dst imagetypes.PixelData, params dicomcodec.Parameters) error {
	if src == nil || dst == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}
	info := src.GetFrameInfo()
	if info == nil {
		return fmt.Errorf("failed to get frame info from source pixel data")
	}
	p := FromGeneric(params)
	for i := 0; i < src.FrameCount(); i++ {
		frame, err := src.GetFrame(i)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", i, err)
		}
		encoded, err := e.codec.Encode(frame, info, p)
		if err != nil {
			return fmt.Errorf("%s encode failed for frame %d: %w", e.codec.Name(), i, err)
		}
		if err := dst.AddFrame(encoded); err != nil {
			return fmt.Errorf("failed to add encoded frame %d: %w", i, err)
		}
	}
	return nil
}

func (e *exported) Decode(src, dst imagetypes.PixelData, _ dicomcodec.Parameters) error {
	if src == nil || dst == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}
	info := src.GetFrameInfo()
	for i := 0; i < src.FrameCount(); i++ {
		frame, err := src.GetFrame(i)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", i, err)
		}
		decoded, _, err := e.codec.Decode(frame, info)
		if err != nil {
			return fmt.Errorf("%s decode failed for frame %d: %w", e.codec.Name(), i, err)
		}
		if err := dst.AddFrame(decoded); err != nil {
			return fmt.Errorf("failed to add decoded frame %d: %w", i, err)
		}
	}
	return nil
}

// external wraps a codec found only in the go-dicom global registry
func external(uid string) (Codec, error) {
	ts := Syntax(uid)
	if ts == nil {
		return nil, ErrCodecNotFound
	}
	c, ok := dicomcodec.GetGlobalRegistry().GetCodec(ts)
	if !ok {
		return nil, ErrCodecNotFound
	}
	if e, ok := c.(*exported); ok {
		return e.codec, nil
	}
	return &imported{codec: c, uid: uid}, nil
}

// imported adapts a go-dicom codec to the frame interface
type imported struct {
	codec dicomcodec.Codec
	uid   string
}

func (i *imported) Name() string { return i.codec.Name() }

func (i *imported) UID() string { return i.uid }

func (i *imported) Encode(frame []byte, info *imagetypes.FrameInfo, p *Parameters) ([]byte, error) {
	src := NewFramePixelData(info, false)
	if err := src.AddFrame(frame); err != nil {
		return nil, err
	}
	dst := NewFramePixelData(info, true)
	if err := i.codec.Encode(src, dst, p); err != nil {
		return nil, err
	}
	return dst.GetFrame(0)
}

func (i *imported) Decode(data []byte, info *imagetypes.FrameInfo) ([]byte, *imagetypes.FrameInfo, error) {
	if info == nil {
		return nil, nil, fmt.Errorf("%w: %s needs the frame geometry to decode", ErrInvalidParameter, i.codec.Name())
	}
	src := NewFramePixelData(info, true)
	if err := src.AddFrame(data); err != nil {
		return nil, nil, err
	}
	dst := NewFramePixelData(info, false)
	if err := i.codec.Decode(src, dst, nil); err != nil {
		return nil, nil, err
	}
	out, err := dst.GetFrame(0)
	return out, info, err
}
