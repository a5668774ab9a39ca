package lossless

import (
	"bytes"

	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

// Encoder represents a JPEG Lossless encoder (supporting all 7 predictors)
type Encoder struct {
	width      int
	height     int
	components int
	precision  int // Bit depth (2-16)
	predictor  int // Predictor selection (1-7)

	table *common.HuffmanTable
	codes []common.HuffmanCode
}

// Encode encodes interleaved pixel data to JPEG Lossless format.
// Samples are one byte when bitDepth <= 8 and two little endian bytes
// otherwise; bits above bitDepth are ignored.
// predictor: 0 for auto-select, 1-7 for specific predictor
func Encode(pixelData []byte, width, height, components, bitDepth, predictor int) ([]byte, error) {
	if bitDepth < 2 || bitDepth > 16 {
		return nil, common.ErrInvalidBitDepth
	}
	bytesPerSample := (bitDepth + 7) / 8
	if len(pixelData) < width*height*components*bytesPerSample {
		return nil, common.ErrBufferTooSmall
	}
	return EncodeSamples(unpack(pixelData, width*height, components, bitDepth), width, height, bitDepth, predictor)
}

// EncodeSamples encodes one plane of samples per component.
func EncodeSamples(samples [][]int, width, height, bitDepth, predictor int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF {
		return nil, common.ErrInvalidDimensions
	}
	if len(samples) < 1 || len(samples) > 4 {
		return nil, common.ErrInvalidComponents
	}
	if bitDepth < 2 || bitDepth > 16 {
		return nil, common.ErrInvalidBitDepth
	}
	if predictor < 0 || predictor > 7 {
		return nil, common.ErrInvalidPredictor
	}
	for _, plane := range samples {
		if len(plane) < width*height {
			return nil, common.ErrBufferTooSmall
		}
	}

	enc := &Encoder{
		width:      width,
		height:     height,
		components: len(samples),
		precision:  bitDepth,
		predictor:  predictor,
	}

	if enc.predictor == 0 {
		enc.predictor = selectPredictor(samples, width, height, bitDepth)
	}

	enc.table = common.BuildStandardHuffmanTable(common.LosslessBits, common.LosslessValues)
	enc.codes = common.BuildHuffmanCodes(enc.table)

	var buf bytes.Buffer
	writer := common.NewWriter(&buf)

	if err := writer.WriteMarker(common.MarkerSOI); err != nil {
		return nil, err
	}
	if err := enc.writeSOF3(writer); err != nil {
		return nil, err
	}
	if err := writer.WriteSegment(common.MarkerDHT, enc.table.Segment(0, 0)); err != nil {
		return nil, err
	}
	if err := enc.writeSOS(writer); err != nil {
		return nil, err
	}
	if err := enc.encodeScan(&buf, samples); err != nil {
		return nil, err
	}
	if err := writer.WriteMarker(common.MarkerEOI); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeSOF3 writes the Start of Frame (Lossless) segment
func (enc *Encoder) writeSOF3(writer *common.Writer) error {
	data := make([]byte, 6+enc.components*3)
	data[0] = byte(enc.precision)
	data[1] = byte(enc.height >> 8)
	data[2] = byte(enc.height)
	data[3] = byte(enc.width >> 8)
	data[4] = byte(enc.width)
	data[5] = byte(enc.components)

	for i := 0; i < enc.components; i++ {
		data[6+i*3] = byte(i + 1) // Component ID
		data[6+i*3+1] = 0x11      // H=1, V=1
		data[6+i*3+2] = 0         // Tq (unused for lossless)
	}

	return writer.WriteSegment(common.MarkerSOF3, data)
}

// writeSOS writes the Start of Scan segment
func (enc *Encoder) writeSOS(writer *common.Writer) error {
	data := make([]byte, 1+enc.components*2+3)
	data[0] = byte(enc.components)
	for i := 0; i < enc.components; i++ {
		data[1+i*2] = byte(i + 1) // Component ID
		data[1+i*2+1] = 0x00      // every component uses table 0
	}
	offset := 1 + enc.components*2
	data[offset] = byte(enc.predictor) // Ss: predictor selection value
	data[offset+1] = 0                 // Se: must be 0 for lossless
	data[offset+2] = 0                 // Ah=0, Al=0 (no point transform)

	return writer.WriteSegment(common.MarkerSOS, data)
}

// encodeScan writes the interleaved entropy coded differences
func (enc *Encoder) encodeScan(buf *bytes.Buffer, samples [][]int) error {
	huff := common.NewHuffmanEncoder(buf)
	mask := 1<<uint(enc.precision) - 1
	w := enc.width

	for row := 0; row < enc.height; row++ {
		for col := 0; col < w; col++ {
			for c := 0; c < enc.components; c++ {
				plane := samples[c]
				x := plane[row*w+col] & mask
				pred := predict(plane, row, col, w, enc.predictor, enc.precision, mask)

				diff := (x - pred) & 0xFFFF
				if diff >= 0x8000 {
					diff -= 0x10000
				}
				if diff == -0x8000 {
					// category 16 carries no additional bits
					if err := huff.WriteCode(enc.codes[16], 0, 0); err != nil {
						return err
					}
					continue
				}
				cat, bits := common.EncodeCategory(diff)
				if err := huff.WriteCode(enc.codes[cat], bits, cat); err != nil {
					return err
				}
			}
		}
	}
	return huff.Flush()
}

// predict returns the prediction for sample (row, col) of plane. The first
// row predicts from the left and the first column from above.
func predict(plane []int, row, col, width, predictor, precision, mask int) int {
	switch {
	case row == 0 && col == 0:
		return 1 << uint(precision-1)
	case row == 0:
		return plane[col-1] & mask
	case col == 0:
		return plane[(row-1)*width] & mask
	}
	ra := plane[row*width+col-1] & mask
	rb := plane[(row-1)*width+col] & mask
	rc := plane[(row-1)*width+col-1] & mask
	return Predictor(predictor, ra, rb, rc)
}

// unpack splits interleaved pixel data into component planes
func unpack(pixelData []byte, pixels, components, bitDepth int) [][]int {
	samples := make([][]int, components)
	for c := range samples {
		samples[c] = make([]int, pixels)
	}
	for i := 0; i < pixels; i++ {
		for c := 0; c < components; c++ {
			idx := i*components + c
			if bitDepth <= 8 {
				samples[c][i] = int(pixelData[idx])
			} else {
				samples[c][i] = int(pixelData[2*idx]) | int(pixelData[2*idx+1])<<8
			}
		}
	}
	return samples
}
