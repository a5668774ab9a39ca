package common

// Markers of ITU-T T.81 and T.87 used by the codecs and the header parsers
const (
	MarkerSOI = 0xFFD8
	MarkerEOI = 0xFFD9
	MarkerSOS = 0xFFDA
	MarkerDQT = 0xFFDB
	MarkerDRI = 0xFFDD
	MarkerDHT = 0xFFC4
	MarkerCOM = 0xFFFE
	MarkerTEM = 0xFF01

	MarkerSOF0 = 0xFFC0 // baseline
	MarkerSOF1 = 0xFFC1 // extended
	MarkerSOF2 = 0xFFC2 // progressive
	MarkerSOF3 = 0xFFC3 // lossless
	MarkerSOF9 = 0xFFC9 // extended, arithmetic

	MarkerSOF55 = 0xFFF7 // JPEG-LS frame
	MarkerLSE   = 0xFFF8 // JPEG-LS preset parameters

	MarkerAPP0  = 0xFFE0
	MarkerAPP14 = 0xFFEE
	MarkerAPP15 = 0xFFEF

	MarkerRST0 = 0xFFD0
	MarkerRST7 = 0xFFD7
)

// IsSOF reports whether marker starts a T.81 frame. 0xFFC4, 0xFFC8 and
// 0xFFCC share the range but are DHT, JPG and DAC.
func IsSOF(marker uint16) bool {
	if marker < MarkerSOF0 || marker > 0xFFCF {
		return false
	}
	return marker != MarkerDHT && marker != 0xFFC8 && marker != 0xFFCC
}

// IsAPP reports whether marker is APP0 through APP15
func IsAPP(marker uint16) bool { return marker >= MarkerAPP0 && marker <= MarkerAPP15 }

// IsRST reports whether marker is a restart marker
func IsRST(marker uint16) bool { return marker >= MarkerRST0 && marker <= MarkerRST7 }

// HasLength reports whether a length field follows marker. SOI, EOI, TEM
// and the restart markers stand alone.
func HasLength(marker uint16) bool {
	switch {
	case marker == MarkerSOI, marker == MarkerEOI, marker == MarkerTEM, IsRST(marker):
		return false
	}
	return true
}
