package transfersyntax

// DefaultJPEGQuality is the quality used for lossy JPEG unless overridden.
const DefaultJPEGQuality = 85

// Adapt carries the transfer syntax decision for one transcode: the syntax the
// pixel data arrived in, the syntax asked for, and the syntax that can
// actually be produced.
type Adapt struct {
	original         string
	requested        string
	suitable         string
	jpegQuality      int
	compressionRatio int
}

// NewAdapt creates a triple whose suitable syntax starts as requested.
func NewAdapt(original, requested string) *Adapt {
	return &Adapt{
		original:    original,
		requested:   requested,
		suitable:    requested,
		jpegQuality: DefaultJPEGQuality,
	}
}

// Original returns the syntax the data arrived in.
func (a *Adapt) Original() string { return a.original }

// Requested returns the syntax asked for by the caller.
func (a *Adapt) Requested() string { return a.requested }

// Suitable returns the syntax that will be written.
func (a *Adapt) Suitable() string { return a.suitable }

// SetSuitable replaces the suitable syntax when uid is a valid UID and reports
// whether it did.
func (a *Adapt) SetSuitable(uid string) bool {
	if !IsValidUID(uid) {
		return false
	}
	a.suitable = uid
	return true
}

// JPEGQuality returns the lossy quality factor (1-100).
func (a *Adapt) JPEGQuality() int { return a.jpegQuality }

// SetJPEGQuality sets the lossy quality factor. Values outside 1-100 are ignored.
func (a *Adapt) SetJPEGQuality(q int) {
	if q >= 1 && q <= 100 {
		a.jpegQuality = q
	}
}

// CompressionRatio returns the target ratio; 0 lets the codec decide.
func (a *Adapt) CompressionRatio() int { return a.compressionRatio }

// SetCompressionRatio sets the target ratio. Negative values reset it to 0.
func (a *Adapt) SetCompressionRatio(r int) {
	if r < 0 {
		r = 0
	}
	a.compressionRatio = r
}
