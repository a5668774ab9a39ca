package imagedesc

import "strings"

// Photometric is a DICOM photometric interpretation.
type Photometric int

const (
	PhotometricUnknown Photometric = iota
	Monochrome1
	Monochrome2
	PaletteColor
	RGB
	ARGB
	CMYK
	HSV
	YBRFull
	YBRFull422
	YBRPartial422
	YBRPartial420
	YBRICT
	YBRRCT
)

var photometricNames = map[Photometric]string{
	Monochrome1:   "MONOCHROME1",
	Monochrome2:   "MONOCHROME2",
	PaletteColor:  "PALETTE COLOR",
	RGB:           "RGB",
	ARGB:          "ARGB",
	CMYK:          "CMYK",
	HSV:           "HSV",
	YBRFull:       "YBR_FULL",
	YBRFull422:    "YBR_FULL_422",
	YBRPartial422: "YBR_PARTIAL_422",
	YBRPartial420: "YBR_PARTIAL_420",
	YBRICT:        "YBR_ICT",
	YBRRCT:        "YBR_RCT",
}

// ParsePhotometric maps a defined term to a Photometric. Underscores and
// spaces are interchangeable so "PALETTE_COLOR" is accepted.
func ParsePhotometric(s string) Photometric {
	s = strings.ToUpper(strings.TrimSpace(s))
	for p, name := range photometricNames {
		if s == name || s == strings.ReplaceAll(name, " ", "_") {
			return p
		}
	}
	return PhotometricUnknown
}

// String returns the DICOM defined term.
func (p Photometric) String() string {
	if name, ok := photometricNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsMonochrome reports MONOCHROME1 or MONOCHROME2.
func (p Photometric) IsMonochrome() bool {
	return p == Monochrome1 || p == Monochrome2
}

// IsYBR reports any YBR variant.
func (p Photometric) IsYBR() bool {
	return p >= YBRFull && p <= YBRRCT
}

// IsSubsampled reports the chroma subsampled YBR variants.
func (p Photometric) IsSubsampled() bool {
	return p == YBRFull422 || p == YBRPartial422 || p == YBRPartial420
}

// Samples returns the samples per pixel the interpretation implies, or 0 when unknown.
func (p Photometric) Samples() int {
	switch {
	case p.IsMonochrome(), p == PaletteColor:
		return 1
	case p == ARGB, p == CMYK:
		return 4
	case p == PhotometricUnknown:
		return 0
	default:
		return 3
	}
}
