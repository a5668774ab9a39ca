package lossless

import (
	"fmt"

	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

// Decoder represents a JPEG Lossless decoder
type Decoder struct {
	width      int
	height     int
	components int
	precision  int

	ids             []byte
	tables          [4]*common.HuffmanTable
	restartInterval int
	samples         [][]int
	decoded         []bool
}

// Decode decodes JPEG Lossless data to interleaved pixel data, one byte per
// sample for bit depths up to 8 and two little endian bytes otherwise.
func Decode(jpegData []byte) (pixelData []byte, width, height, components, bitDepth int, err error) {
	d, err := decode(jpegData)
	if err != nil {
		return nil, 0, 0, 0, 0, err
	}
	return d.pixels(), d.width, d.height, d.components, d.precision, nil
}

// DecodeSamples decodes to one plane of samples per component.
func DecodeSamples(jpegData []byte) (samples [][]int, width, height, bitDepth int, err error) {
	d, err := decode(jpegData)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return d.samples, d.width, d.height, d.precision, nil
}

func decode(jpegData []byte) (*Decoder, error) {
	reader := common.NewReader(jpegData)

	marker, err := reader.ReadMarker()
	if err != nil || marker != common.MarkerSOI {
		return nil, common.ErrInvalidSOI
	}

	d := &Decoder{}
	for {
		marker, err := reader.ReadMarker()
		if err != nil {
			return nil, err
		}
		if marker == common.MarkerEOI {
			break
		}
		if !common.HasLength(marker) {
			continue
		}
		data, err := reader.ReadSegment()
		if err != nil {
			return nil, err
		}

		switch {
		case marker == common.MarkerSOF3:
			if err := d.parseSOF3(data); err != nil {
				return nil, err
			}
		case common.IsSOF(marker):
			return nil, fmt.Errorf("%w: SOF marker 0x%04X", common.ErrUnsupportedFormat, marker)
		case marker == common.MarkerDHT:
			err := common.ParseHuffmanTables(data, func(_, id int, t *common.HuffmanTable) {
				if id < len(d.tables) {
					d.tables[id] = t
				}
			})
			if err != nil {
				return nil, err
			}
		case marker == common.MarkerDRI:
			if len(data) < 2 {
				return nil, common.ErrInvalidData
			}
			d.restartInterval = int(data[0])<<8 | int(data[1])
		case marker == common.MarkerSOS:
			if d.samples == nil {
				return nil, common.ErrInvalidSOF
			}
			consumed, err := d.decodeScan(data, reader.Bytes())
			if err != nil {
				return nil, err
			}
			reader.SetPos(reader.Pos() + consumed)
		}
	}

	if d.samples == nil {
		return nil, common.ErrInvalidSOF
	}
	for _, ok := range d.decoded {
		if !ok {
			return nil, fmt.Errorf("%w: component never scanned", common.ErrInvalidSOS)
		}
	}
	return d, nil
}

// parseSOF3 parses the Start of Frame (Lossless) segment
func (d *Decoder) parseSOF3(data []byte) error {
	if len(data) < 6 {
		return common.ErrInvalidSOF
	}
	d.precision = int(data[0])
	d.height = int(data[1])<<8 | int(data[2])
	d.width = int(data[3])<<8 | int(data[4])
	d.components = int(data[5])

	if d.precision < 2 || d.precision > 16 {
		return common.ErrInvalidBitDepth
	}
	if d.width == 0 || d.height == 0 {
		return common.ErrInvalidDimensions
	}
	if d.components < 1 || d.components > 4 || len(data) < 6+3*d.components {
		return common.ErrInvalidComponents
	}

	d.ids = make([]byte, d.components)
	d.samples = make([][]int, d.components)
	d.decoded = make([]bool, d.components)
	for i := range d.ids {
		d.ids[i] = data[6+3*i]
		if data[6+3*i+1] != 0x11 {
			return fmt.Errorf("%w: sampling factors 0x%02X", common.ErrUnsupportedFormat, data[6+3*i+1])
		}
		d.samples[i] = make([]int, d.width*d.height)
	}
	return nil
}

// decodeScan decodes one scan and returns the number of bytes of scan data
// it consumed.
func (d *Decoder) decodeScan(header, scanData []byte) (int, error) {
	if len(header) < 1 {
		return 0, common.ErrInvalidSOS
	}
	ns := int(header[0])
	if ns < 1 || ns > d.components || len(header) < 1+2*ns+3 {
		return 0, common.ErrInvalidSOS
	}

	comps := make([]int, ns)
	tables := make([]*common.HuffmanTable, ns)
	for i := 0; i < ns; i++ {
		id := header[1+2*i]
		comps[i] = -1
		for c, fid := range d.ids {
			if fid == id {
				comps[i] = c
			}
		}
		if comps[i] < 0 {
			return 0, fmt.Errorf("%w: unknown component %d", common.ErrInvalidSOS, id)
		}
		tables[i] = d.tables[(header[2+2*i]>>4)&0x03]
		if tables[i] == nil {
			return 0, fmt.Errorf("%w: huffman table %d not defined", common.ErrInvalidDHT, header[2+2*i]>>4)
		}
	}
	predictor := int(header[1+2*ns])
	pt := int(header[3+2*ns] & 0x0F)
	if predictor < 1 || predictor > 7 {
		return 0, common.ErrInvalidPredictor
	}
	if pt >= d.precision {
		return 0, common.ErrInvalidSOS
	}

	precision := d.precision - pt
	mask := 1<<uint(precision) - 1
	br := common.NewBitReader(scanData)
	w := d.width
	mcus := 0
	intervalStart := 0 // first sample row index of the current restart interval

	for row := 0; row < d.height; row++ {
		for col := 0; col < w; col++ {
			if d.restartInterval > 0 && mcus > 0 && mcus%d.restartInterval == 0 {
				if err := br.Restart(); err != nil {
					return 0, err
				}
				intervalStart = row*w + col
			}
			mcus++

			for i, c := range comps {
				category, err := br.Decode(tables[i])
				if err != nil {
					return 0, err
				}
				var diff int
				switch {
				case category == 16:
					diff = 0x8000
				case category > 16:
					return 0, common.ErrHuffmanDecode
				case category > 0:
					bits, err := br.ReadBits(int(category))
					if err != nil {
						return 0, err
					}
					diff = common.Extend(bits, int(category))
				}

				plane := d.samples[c]
				var pred int
				switch idx := row*w + col; {
				case idx == intervalStart:
					pred = 1 << uint(precision-1)
				case idx-intervalStart < w:
					// first line of the scan or restart interval
					pred = plane[idx-1]
				default:
					pred = predict(plane, row, col, w, predictor, precision, mask)
				}
				plane[row*w+col] = (pred + diff) & mask
			}
		}
	}

	for _, c := range comps {
		d.decoded[c] = true
		if pt > 0 {
			for j := range d.samples[c] {
				d.samples[c][j] <<= uint(pt)
			}
		}
	}
	return br.Pos(), nil
}

// pixels converts sample planes to interleaved bytes
func (d *Decoder) pixels() []byte {
	n := d.width * d.height
	if d.precision <= 8 {
		out := make([]byte, n*d.components)
		for i := 0; i < n; i++ {
			for c := 0; c < d.components; c++ {
				out[i*d.components+c] = byte(d.samples[c][i])
			}
		}
		return out
	}
	out := make([]byte, 2*n*d.components)
	for i := 0; i < n; i++ {
		for c := 0; c < d.components; c++ {
			v := d.samples[c][i]
			idx := 2 * (i*d.components + c)
			out[idx] = byte(v)
			out[idx+1] = byte(v >> 8)
		}
	}
	return out
}
