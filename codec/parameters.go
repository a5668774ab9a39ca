package codec

import (
	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"
)

var _ dicomcodec.Parameters = (*Parameters)(nil)

// Parameter names understood by GetParameter and SetParameter
const (
	ParamQuality          = "quality"
	ParamCompressionRatio = "compressionRatio"
	ParamPredictor        = "predictor"
	ParamNear             = "near"
)

// Parameters holds the encoding options shared by all codecs
type Parameters struct {
	// Quality factor for lossy codecs (1-100, higher is better)
	Quality int

	// CompressionRatio requested from ratio driven codecs, 0 = codec default
	CompressionRatio int

	// Predictor selection value for JPEG Lossless (1-7), 0 = codec default
	Predictor int

	// Near is the JPEG-LS error bound, 0 = lossless
	Near int

	// internal storage for compatibility with generic parameter interface
	params map[string]interface{}
}

// NewParameters creates parameters with default values
func NewParameters() *Parameters {
	return &Parameters{
		Quality: 85,
		params:  make(map[string]interface{}),
	}
}

// GetParameter retrieves a parameter by name (implements codec.Parameters)
func (p *Parameters) GetParameter(name string) interface{} {
	switch name {
	case ParamQuality:
		return p.Quality
	case ParamCompressionRatio:
		return p.CompressionRatio
	case ParamPredictor:
		return p.Predictor
	case ParamNear:
		return p.Near
	default:
		return p.params[name]
	}
}

// SetParameter sets a parameter value (implements codec.Parameters)
func (p *Parameters) SetParameter(name string, value interface{}) {
	v, isInt := value.(int)
	switch {
	case name == ParamQuality && isInt:
		p.Quality = v
	case name == ParamCompressionRatio && isInt:
		p.CompressionRatio = v
	case name == ParamPredictor && isInt:
		p.Predictor = v
	case name == ParamNear && isInt:
		p.Near = v
	default:
		if p.params == nil {
			p.params = make(map[string]interface{})
		}
		p.params[name] = value
	}
}

// Validate checks if the parameters are valid
func (p *Parameters) Validate() error {
	if p.Quality < 1 || p.Quality > 100 {
		return ErrInvalidQuality
	}
	if p.CompressionRatio < 0 || p.Predictor < 0 || p.Predictor > 7 || p.Near < 0 || p.Near > 255 {
		return ErrInvalidParameter
	}
	return nil
}

// WithQuality sets the quality and returns the parameters for chaining
func (p *Parameters) WithQuality(q int) *Parameters {
	p.Quality = q
	return p
}

// WithCompressionRatio sets the compression ratio and returns the parameters for chaining
func (p *Parameters) WithCompressionRatio(r int) *Parameters {
	p.CompressionRatio = r
	return p
}

// WithPredictor sets the predictor and returns the parameters for chaining
func (p *Parameters) WithPredictor(predictor int) *Parameters {
	p.Predictor = predictor
	return p
}

// WithNear sets the JPEG-LS NEAR value and returns the parameters for chaining
func (p *Parameters) WithNear(near int) *Parameters {
	p.Near = near
	return p
}

// FromGeneric copies the known parameters out of any go-dicom parameter set.
func FromGeneric(g dicomcodec.Parameters) *Parameters {
	if p, ok := g.(*Parameters); ok {
		return p
	}
	p := NewParameters()
	if g == nil {
		return p
	}
	for _, name := range []string{ParamQuality, ParamCompressionRatio, ParamPredictor, ParamNear} {
		if v := g.GetParameter(name); v != nil {
			p.SetParameter(name, v)
		}
	}
	return p
}
