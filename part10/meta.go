package part10

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-dicom-imageio/dicomuid"
)

const (
	preambleLength = 128
	magic          = "DICM"
)

// ImplementationVersionName identifies the writer in (0002,0013).
const ImplementationVersionName = "GO-DICOM-IMAGEIO"

// ImplementationClassUID identifies the writer in (0002,0012).
var ImplementationClassUID = dicomuid.Derive("github.com/cocosip/go-dicom-imageio")

// Meta holds the values of the file meta information group.
type Meta struct {
	MediaStorageSOPClassUID    string
	MediaStorageSOPInstanceUID string
	TransferSyntaxUID          string
	SourceApplicationEntity    string
}

// longVR lists the explicit VRs with a reserved field and a 32-bit length.
var longVR = map[string]bool{
	"OB": true, "OD": true, "OF": true, "OL": true, "OV": true, "OW": true,
	"SQ": true, "SV": true, "UC": true, "UN": true, "UR": true, "UT": true, "UV": true,
}

// encode returns preamble, prefix and the group 2 elements in explicit VR
// little endian.
func (m *Meta) encode() []byte {
	var group bytes.Buffer
	putLong(&group, 0x0001, "OB", []byte{0x00, 0x01})
	putShort(&group, 0x0002, "UI", m.MediaStorageSOPClassUID)
	putShort(&group, 0x0003, "UI", m.MediaStorageSOPInstanceUID)
	putShort(&group, 0x0010, "UI", m.TransferSyntaxUID)
	putShort(&group, 0x0012, "UI", ImplementationClassUID)
	putShort(&group, 0x0013, "SH", ImplementationVersionName)
	if m.SourceApplicationEntity != "" {
		putShort(&group, 0x0016, "AE", m.SourceApplicationEntity)
	}

	out := make([]byte, preambleLength, preambleLength+16+group.Len())
	out = append(out, magic...)
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(group.Len()))
	out = appendHeader(out, 0x0000, "UL", 4)
	out = append(out, length[:]...)
	return append(out, group.Bytes()...)
}

func appendHeader(b []byte, elem uint16, vr string, length int) []byte {
	b = binary.LittleEndian.AppendUint16(b, 0x0002)
	b = binary.LittleEndian.AppendUint16(b, elem)
	b = append(b, vr...)
	return binary.LittleEndian.AppendUint16(b, uint16(length))
}

func putShort(buf *bytes.Buffer, elem uint16, vr, value string) {
	v := []byte(value)
	if len(v)%2 == 1 {
		if vr == "UI" {
			v = append(v, 0x00)
		} else {
			v = append(v, ' ')
		}
	}
	buf.Write(appendHeader(nil, elem, vr, len(v)))
	buf.Write(v)
}

func putLong(buf *bytes.Buffer, elem uint16, vr string, value []byte) {
	h := binary.LittleEndian.AppendUint16(nil, 0x0002)
	h = binary.LittleEndian.AppendUint16(h, elem)
	h = append(h, vr...)
	h = append(h, 0, 0)
	h = binary.LittleEndian.AppendUint32(h, uint32(len(value)))
	buf.Write(h)
	buf.Write(value)
}

// StripMeta returns the dataset that follows the preamble, the DICM prefix
// and the group 2 elements of a Part-10 stream. Data without the prefix is
// returned unchanged.
func StripMeta(data []byte) ([]byte, error) {
	if len(data) < preambleLength+len(magic) || string(data[preambleLength:preambleLength+len(magic)]) != magic {
		return data, nil
	}
	off := preambleLength + len(magic)
	for off+8 <= len(data) {
		if binary.LittleEndian.Uint16(data[off:]) != 0x0002 {
			break
		}
		vr := string(data[off+4 : off+6])
		var length int
		if longVR[vr] {
			if off+12 > len(data) {
				return nil, fmt.Errorf("%w: truncated element at offset %d", ErrMalformedMeta, off)
			}
			length = int(binary.LittleEndian.Uint32(data[off+8:]))
			off += 12
		} else {
			length = int(binary.LittleEndian.Uint16(data[off+6:]))
			off += 8
		}
		if length < 0 || off+length > len(data) {
			return nil, fmt.Errorf("%w: value at offset %d overruns the stream", ErrMalformedMeta, off)
		}
		off += length
	}
	return data[off:], nil
}
