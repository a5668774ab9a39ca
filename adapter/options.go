package adapter

import (
	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/mask"
)

// Option configures an ImageAdapter.
type Option func(*options)

type options struct {
	editor    Editor
	mask      *mask.Area
	registry  *codec.Registry
	deflate   bool
	params    *codec.Parameters
	callingAE string
	calledAE  string
}

// WithEditor runs e on the attributes before the transcoding decision.
func WithEditor(e Editor) Option {
	return func(o *options) { o.editor = e }
}

// WithMask blanks area in every frame it applies to before re-encoding.
func WithMask(area *mask.Area) Option {
	return func(o *options) { o.mask = area }
}

// WithRegistry looks codecs up in r instead of the default registry.
func WithRegistry(r *codec.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithDeflate writes Explicit VR Little Endian output deflated.
func WithDeflate(deflate bool) Option {
	return func(o *options) { o.deflate = deflate }
}

// WithParameters overrides the encoding parameters derived from the
// transfer syntax triple.
func WithParameters(p *codec.Parameters) Option {
	return func(o *options) { o.params = p }
}

// WithAETitles records the association endpoints handed to the editor.
func WithAETitles(calling, called string) Option {
	return func(o *options) {
		o.callingAE = calling
		o.calledAE = called
	}
}
