package transfersyntax

import "strings"

type kind int

const (
	kindNative kind = iota
	kindJPEG
	kindJPEGLS
	kindJPEG2000
	kindRLE
	kindVideo
)

type info struct {
	name      string
	kind      kind
	lossy     bool
	bigEndian bool
	implicit  bool
	deflated  bool
}

var catalog = map[string]info{
	ImplicitVRLittleEndian:              {name: "Implicit VR Little Endian", implicit: true},
	ExplicitVRLittleEndian:              {name: "Explicit VR Little Endian"},
	DeflatedExplicitVRLittleEndian:      {name: "Deflated Explicit VR Little Endian", deflated: true},
	ExplicitVRBigEndian:                 {name: "Explicit VR Big Endian", bigEndian: true},
	JPEGBaseline8Bit:                    {name: "JPEG Baseline (Process 1)", kind: kindJPEG, lossy: true},
	JPEGExtended12Bit:                   {name: "JPEG Extended (Process 2 & 4)", kind: kindJPEG, lossy: true},
	JPEGProgressive:                     {name: "JPEG Full Progression (Process 10 & 12)", kind: kindJPEG, lossy: true},
	JPEGLossless:                        {name: "JPEG Lossless (Process 14)", kind: kindJPEG},
	JPEGLosslessSV1:                     {name: "JPEG Lossless (Process 14, SV1)", kind: kindJPEG},
	JPEGLSLossless:                      {name: "JPEG-LS Lossless", kind: kindJPEGLS},
	JPEGLSNearLossless:                  {name: "JPEG-LS Near-Lossless", kind: kindJPEGLS, lossy: true},
	JPEG2000Lossless:                    {name: "JPEG 2000 (Lossless Only)", kind: kindJPEG2000},
	JPEG2000:                            {name: "JPEG 2000", kind: kindJPEG2000, lossy: true},
	JPEG2000Part2MultiComponentLossless: {name: "JPEG 2000 Part 2 Multi-component (Lossless Only)", kind: kindJPEG2000},
	JPEG2000Part2MultiComponent:         {name: "JPEG 2000 Part 2 Multi-component", kind: kindJPEG2000, lossy: true},
	HTJ2KLossless:                       {name: "HTJ2K (Lossless Only)", kind: kindJPEG2000},
	HTJ2KLosslessRPCL:                   {name: "HTJ2K with RPCL Options (Lossless Only)", kind: kindJPEG2000},
	HTJ2K:                               {name: "HTJ2K", kind: kindJPEG2000, lossy: true},
	MPEG2MainProfileMainLevel:           {name: "MPEG2 Main Profile @ Main Level", kind: kindVideo, lossy: true},
	MPEG2MainProfileHighLevel:           {name: "MPEG2 Main Profile @ High Level", kind: kindVideo, lossy: true},
	MPEG4HighProfileLevel41:             {name: "MPEG-4 AVC/H.264 High Profile / Level 4.1", kind: kindVideo, lossy: true},
	MPEG4BDCompatibleHighProfile:        {name: "MPEG-4 AVC/H.264 BD-compatible High Profile / Level 4.1", kind: kindVideo, lossy: true},
	MPEG4HighProfileLevel42For2D:        {name: "MPEG-4 AVC/H.264 High Profile / Level 4.2 For 2D Video", kind: kindVideo, lossy: true},
	MPEG4HighProfileLevel42For3D:        {name: "MPEG-4 AVC/H.264 High Profile / Level 4.2 For 3D Video", kind: kindVideo, lossy: true},
	MPEG4StereoHighProfileLevel42:       {name: "MPEG-4 AVC/H.264 Stereo High Profile / Level 4.2", kind: kindVideo, lossy: true},
	HEVCMainProfileLevel51:              {name: "HEVC/H.265 Main Profile / Level 5.1", kind: kindVideo, lossy: true},
	HEVCMain10ProfileLevel51:            {name: "HEVC/H.265 Main 10 Profile / Level 5.1", kind: kindVideo, lossy: true},
	RLELossless:                         {name: "RLE Lossless", kind: kindRLE},
}

// Known reports whether uid is in the catalog.
func Known(uid string) bool {
	_, ok := catalog[uid]
	return ok
}

// Name returns a human-readable name, or uid itself when unknown.
func Name(uid string) string {
	if i, ok := catalog[uid]; ok {
		return i.name
	}
	return uid
}

// IsNative reports whether pixel data is stored uncompressed. Unknown UIDs
// are treated as encapsulated.
func IsNative(uid string) bool {
	i, ok := catalog[uid]
	return ok && i.kind == kindNative
}

// IsEncapsulated reports whether pixel data is stored as a fragment sequence.
func IsEncapsulated(uid string) bool {
	return !IsNative(uid)
}

// IsLossy reports whether the syntax may discard information.
func IsLossy(uid string) bool {
	return catalog[uid].lossy
}

// IsVideo reports whether the syntax is an MPEG or HEVC video stream.
func IsVideo(uid string) bool {
	i, ok := catalog[uid]
	return ok && i.kind == kindVideo
}

// IsJPEG reports whether the syntax uses the JPEG (ISO 10918) interchange format.
func IsJPEG(uid string) bool {
	i, ok := catalog[uid]
	return ok && i.kind == kindJPEG
}

// IsJPEGLS reports whether the syntax is JPEG-LS.
func IsJPEGLS(uid string) bool {
	i, ok := catalog[uid]
	return ok && i.kind == kindJPEGLS
}

// IsJPEG2000 reports whether the syntax is JPEG 2000 or HTJ2K.
func IsJPEG2000(uid string) bool {
	i, ok := catalog[uid]
	return ok && i.kind == kindJPEG2000
}

// IsRLE reports whether the syntax is DICOM RLE.
func IsRLE(uid string) bool {
	return uid == RLELossless
}

// IsFrameAligned reports whether each frame of an encapsulated syntax starts
// a new fragment. Video syntaxes carry one bitstream for all frames.
func IsFrameAligned(uid string) bool {
	return IsEncapsulated(uid) && !IsVideo(uid)
}

// IsBigEndian reports whether the dataset is encoded big endian.
func IsBigEndian(uid string) bool {
	return catalog[uid].bigEndian
}

// IsImplicitVR reports whether value representations are implicit.
func IsImplicitVR(uid string) bool {
	return catalog[uid].implicit
}

// IsDeflated reports whether the dataset is deflate compressed.
func IsDeflated(uid string) bool {
	return catalog[uid].deflated
}

// Compatible reports whether pixel data in syntax a can be written under
// syntax b without touching the samples.
func Compatible(a, b string) bool {
	if a == b {
		return true
	}
	return IsNative(a) && IsNative(b) && IsBigEndian(a) == IsBigEndian(b)
}

// IsValidUID reports whether uid follows the DICOM UID grammar: at most 64
// characters, dot separated numeric components without leading zeros.
func IsValidUID(uid string) bool {
	if uid == "" || len(uid) > 64 {
		return false
	}
	for _, part := range strings.Split(uid, ".") {
		if part == "" {
			return false
		}
		if len(part) > 1 && part[0] == '0' {
			return false
		}
		for i := 0; i < len(part); i++ {
			if part[i] < '0' || part[i] > '9' {
				return false
			}
		}
	}
	return true
}
