// Package transfersyntax catalogs the DICOM transfer syntaxes handled by the
// engine and carries the original/requested/suitable decision triple.
package transfersyntax

// Native (uncompressed) syntaxes.
const (
	ImplicitVRLittleEndian         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
	ExplicitVRBigEndian            = "1.2.840.10008.1.2.2"
)

// JPEG syntaxes.
const (
	JPEGBaseline8Bit  = "1.2.840.10008.1.2.4.50"
	JPEGExtended12Bit = "1.2.840.10008.1.2.4.51"
	JPEGProgressive   = "1.2.840.10008.1.2.4.55"
	JPEGLossless      = "1.2.840.10008.1.2.4.57"
	JPEGLosslessSV1   = "1.2.840.10008.1.2.4.70"
)

// JPEG-LS syntaxes.
const (
	JPEGLSLossless     = "1.2.840.10008.1.2.4.80"
	JPEGLSNearLossless = "1.2.840.10008.1.2.4.81"
)

// JPEG 2000 syntaxes.
const (
	JPEG2000Lossless                    = "1.2.840.10008.1.2.4.90"
	JPEG2000                            = "1.2.840.10008.1.2.4.91"
	JPEG2000Part2MultiComponentLossless = "1.2.840.10008.1.2.4.92"
	JPEG2000Part2MultiComponent         = "1.2.840.10008.1.2.4.93"
	HTJ2KLossless                       = "1.2.840.10008.1.2.4.201"
	HTJ2KLosslessRPCL                   = "1.2.840.10008.1.2.4.202"
	HTJ2K                               = "1.2.840.10008.1.2.4.203"
)

// Video syntaxes.
const (
	MPEG2MainProfileMainLevel     = "1.2.840.10008.1.2.4.100"
	MPEG2MainProfileHighLevel     = "1.2.840.10008.1.2.4.101"
	MPEG4HighProfileLevel41       = "1.2.840.10008.1.2.4.102"
	MPEG4BDCompatibleHighProfile  = "1.2.840.10008.1.2.4.103"
	MPEG4HighProfileLevel42For2D  = "1.2.840.10008.1.2.4.104"
	MPEG4HighProfileLevel42For3D  = "1.2.840.10008.1.2.4.105"
	MPEG4StereoHighProfileLevel42 = "1.2.840.10008.1.2.4.106"
	HEVCMainProfileLevel51        = "1.2.840.10008.1.2.4.107"
	HEVCMain10ProfileLevel51      = "1.2.840.10008.1.2.4.108"
)

// RLELossless is DICOM RLE (PS3.5 Annex G).
const RLELossless = "1.2.840.10008.1.2.5"
