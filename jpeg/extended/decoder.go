package extended

import (
	"bytes"
	"fmt"
	"math"

	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

// Image is a decoded sequential DCT frame
type Image struct {
	Width     int
	Height    int
	Precision int
	// Planes holds one plane of samples per component. Three component
	// YCbCr data has already been converted to RGB.
	Planes [][]int
}

// Decoder decodes Huffman coded sequential DCT streams (SOF0 and SOF1)
// whose components are all sampled at full resolution
type Decoder struct {
	width     int
	height    int
	precision int

	ids             []byte
	quantSel        []int
	quant           [4]*[64]int32
	dc              [4]*common.HuffmanTable
	ac              [4]*common.HuffmanTable
	restartInterval int
	adobe           int // APP14 transform flag, -1 when absent

	mcusX   int
	mcusY   int
	blocks  [][][64]float64
	decoded []bool
}

// Decode decodes a baseline or extended sequential JPEG stream
func Decode(data []byte) (*Image, error) {
	reader := common.NewReader(data)
	if marker, err := reader.ReadMarker(); err != nil || marker != common.MarkerSOI {
		return nil, common.ErrInvalidSOI
	}

	d := &Decoder{adobe: -1}
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
		seg, err := reader.ReadSegment()
		if err != nil {
			return nil, err
		}

		switch {
		case marker == common.MarkerSOF0 || marker == common.MarkerSOF1:
			if err := d.parseSOF(seg); err != nil {
				return nil, err
			}
		case common.IsSOF(marker):
			return nil, fmt.Errorf("%w: SOF marker 0x%04X", common.ErrUnsupportedFormat, marker)
		case marker == common.MarkerDQT:
			if err := d.parseDQT(seg); err != nil {
				return nil, err
			}
		case marker == common.MarkerDHT:
			err := common.ParseHuffmanTables(seg, func(class, id int, t *common.HuffmanTable) {
				if id >= 4 {
					return
				}
				if class == 0 {
					d.dc[id] = t
				} else {
					d.ac[id] = t
				}
			})
			if err != nil {
				return nil, err
			}
		case marker == common.MarkerDRI:
			if len(seg) < 2 {
				return nil, common.ErrInvalidData
			}
			d.restartInterval = int(seg[0])<<8 | int(seg[1])
		case marker == common.MarkerAPP14:
			if len(seg) >= 12 && bytes.HasPrefix(seg, []byte("Adobe")) {
				d.adobe = int(seg[11])
			}
		case marker == common.MarkerSOS:
			if d.blocks == nil {
				return nil, common.ErrInvalidSOF
			}
			consumed, err := d.decodeScan(seg, reader.Bytes())
			if err != nil {
				return nil, err
			}
			reader.SetPos(reader.Pos() + consumed)
		}
	}

	if d.blocks == nil {
		return nil, common.ErrInvalidSOF
	}
	for _, ok := range d.decoded {
		if !ok {
			return nil, fmt.Errorf("%w: component never scanned", common.ErrInvalidSOS)
		}
	}
	return d.image(), nil
}

func (d *Decoder) parseSOF(data []byte) error {
	if len(data) < 6 {
		return common.ErrInvalidSOF
	}
	d.precision = int(data[0])
	d.height = int(data[1])<<8 | int(data[2])
	d.width = int(data[3])<<8 | int(data[4])
	n := int(data[5])

	if d.precision != 8 && d.precision != 12 {
		return common.ErrInvalidBitDepth
	}
	if d.width == 0 || d.height == 0 {
		return common.ErrInvalidDimensions
	}
	if (n != 1 && n != 3) || len(data) < 6+3*n {
		return common.ErrInvalidComponents
	}

	d.mcusX = (d.width + 7) / 8
	d.mcusY = (d.height + 7) / 8
	d.ids = make([]byte, n)
	d.quantSel = make([]int, n)
	d.blocks = make([][][64]float64, n)
	d.decoded = make([]bool, n)
	for i := 0; i < n; i++ {
		d.ids[i] = data[6+3*i]
		if data[6+3*i+1] != 0x11 {
			return fmt.Errorf("%w: sampling factors 0x%02X", common.ErrUnsupportedFormat, data[6+3*i+1])
		}
		d.quantSel[i] = int(data[6+3*i+2] & 0x03)
		d.blocks[i] = make([][64]float64, d.mcusX*d.mcusY)
	}
	return nil
}

// parseDQT stores tables in natural order. 16-bit entries (Pq = 1) are
// allowed with 12-bit precision.
func (d *Decoder) parseDQT(data []byte) error {
	for len(data) > 0 {
		pq, tq := data[0]>>4, data[0]&0x03
		size := 64
		if pq == 1 {
			size = 128
		}
		if pq > 1 || len(data) < 1+size {
			return fmt.Errorf("%w: bad quantization table", common.ErrInvalidData)
		}
		t := new([64]int32)
		for k := 0; k < 64; k++ {
			if pq == 1 {
				t[zigzag[k]] = int32(data[1+2*k])<<8 | int32(data[2+2*k])
			} else {
				t[zigzag[k]] = int32(data[1+k])
			}
		}
		d.quant[tq] = t
		data = data[1+size:]
	}
	return nil
}

// decodeScan decodes one scan into dequantized coefficient blocks and
// returns the number of bytes of scan data it consumed.
func (d *Decoder) decodeScan(header, scanData []byte) (int, error) {
	if len(header) < 1 {
		return 0, common.ErrInvalidSOS
	}
	ns := int(header[0])
	if ns < 1 || ns > len(d.ids) || len(header) < 1+2*ns+3 {
		return 0, common.ErrInvalidSOS
	}
	if ss, se, a := header[1+2*ns], header[2+2*ns], header[3+2*ns]; ss != 0 || se != 63 || a != 0 {
		return 0, fmt.Errorf("%w: spectral selection %d-%d", common.ErrUnsupportedFormat, ss, se)
	}

	comps := make([]int, ns)
	dcs := make([]*common.HuffmanTable, ns)
	acs := make([]*common.HuffmanTable, ns)
	quants := make([]*[64]int32, ns)
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
		sel := header[2+2*i]
		dcs[i], acs[i] = d.dc[sel>>4&0x03], d.ac[sel&0x03]
		if dcs[i] == nil || acs[i] == nil {
			return 0, fmt.Errorf("%w: huffman table 0x%02X not defined", common.ErrInvalidDHT, sel)
		}
		quants[i] = d.quant[d.quantSel[comps[i]]]
		if quants[i] == nil {
			return 0, fmt.Errorf("%w: quantization table %d not defined", common.ErrInvalidData, d.quantSel[comps[i]])
		}
	}

	br := common.NewBitReader(scanData)
	preds := make([]int, ns)
	mcus := d.mcusX * d.mcusY
	for m := 0; m < mcus; m++ {
		if d.restartInterval > 0 && m > 0 && m%d.restartInterval == 0 {
			if err := br.Restart(); err != nil {
				return 0, err
			}
			clear(preds)
		}
		for i, c := range comps {
			if err := d.decodeBlock(br, &d.blocks[c][m], &preds[i], dcs[i], acs[i], quants[i]); err != nil {
				return 0, err
			}
		}
	}
	for _, c := range comps {
		d.decoded[c] = true
	}
	return br.Pos(), nil
}

func (d *Decoder) decodeBlock(br *common.BitReader, blk *[64]float64, pred *int, dc, ac *common.HuffmanTable, q *[64]int32) error {
	cat, err := br.Decode(dc)
	if err != nil {
		return err
	}
	if cat > 15 {
		return common.ErrHuffmanDecode
	}
	bits, err := br.ReadBits(int(cat))
	if err != nil {
		return err
	}
	*pred += common.Extend(bits, int(cat))
	blk[0] = float64(*pred * int(q[0]))

	for k := 1; k < 64; {
		rs, err := br.Decode(ac)
		if err != nil {
			return err
		}
		r, s := int(rs>>4), int(rs&0x0F)
		if s == 0 {
			if r != 15 {
				break // EOB
			}
			k += 16
			continue
		}
		k += r
		if k > 63 {
			return fmt.Errorf("%w: coefficient run past block end", common.ErrHuffmanDecode)
		}
		bits, err := br.ReadBits(s)
		if err != nil {
			return err
		}
		n := zigzag[k]
		blk[n] = float64(common.Extend(bits, s) * int(q[n]))
		k++
	}
	return nil
}

// image runs the inverse transform and converts YCbCr to RGB. Three
// components are YCbCr unless an Adobe segment says otherwise or the
// component ids spell R, G, B.
func (d *Decoder) image() *Image {
	img := &Image{Width: d.width, Height: d.height, Precision: d.precision}
	shift := float64(int(1) << uint(d.precision-1))
	maxVal := float64(int(1)<<uint(d.precision) - 1)

	img.Planes = make([][]int, len(d.ids))
	for c := range d.ids {
		plane := make([]int, d.width*d.height)
		for by := 0; by < d.mcusY; by++ {
			for bx := 0; bx < d.mcusX; bx++ {
				b := d.blocks[c][by*d.mcusX+bx]
				idct(&b)
				for y := 0; y < 8 && by*8+y < d.height; y++ {
					for x := 0; x < 8 && bx*8+x < d.width; x++ {
						v := math.Round(b[y*8+x] + shift)
						plane[(by*8+y)*d.width+bx*8+x] = int(math.Max(0, math.Min(maxVal, v)))
					}
				}
			}
		}
		img.Planes[c] = plane
	}

	if len(d.ids) == 3 && d.adobe != 0 && string(d.ids) != "RGB" {
		ycbcrToRGB(img.Planes, shift, maxVal)
	}
	return img
}

// ycbcrToRGB applies the JFIF conversion in place
func ycbcrToRGB(planes [][]int, center, maxVal float64) {
	clamp := func(v float64) int { return int(math.Max(0, math.Min(maxVal, math.Round(v)))) }
	for i := range planes[0] {
		y := float64(planes[0][i])
		cb := float64(planes[1][i]) - center
		cr := float64(planes[2][i]) - center
		planes[0][i] = clamp(y + 1.402*cr)
		planes[1][i] = clamp(y - 0.344136*cb - 0.714136*cr)
		planes[2][i] = clamp(y + 1.772*cb)
	}
}
