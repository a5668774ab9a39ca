package jpegls

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

// Decoder represents a JPEG-LS decoder
type Decoder struct {
	width     int
	height    int
	precision int
	near      int

	ids     []byte
	preset  *Preset
	samples [][]int
	decoded []bool

	traits Traits
	gr     *GolombReader
	ctx    *contexts
}

// Decode decodes JPEG-LS data to interleaved pixel data, one byte per
// sample for bit depths up to 8 and two little endian bytes otherwise.
func Decode(data []byte) (pixelData []byte, width, height, components, bitDepth int, err error) {
	d, err := decode(data)
	if err != nil {
		return nil, 0, 0, 0, 0, err
	}
	return d.pixels(), d.width, d.height, len(d.samples), d.precision, nil
}

// DecodeSamples decodes to one plane of samples per component and reports
// the NEAR value of the last scan.
func DecodeSamples(data []byte) (planes [][]int, width, height, bitDepth, near int, err error) {
	d, err := decode(data)
	if err != nil {
		return nil, 0, 0, 0, 0, err
	}
	return d.samples, d.width, d.height, d.precision, d.near, nil
}

func decode(data []byte) (*Decoder, error) {
	reader := common.NewReader(data)
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
		seg, err := reader.ReadSegment()
		if err != nil {
			return nil, err
		}

		switch {
		case marker == common.MarkerSOF55:
			if err := d.parseSOF(seg); err != nil {
				return nil, err
			}
		case common.IsSOF(marker):
			return nil, fmt.Errorf("%w: SOF marker 0x%04X", common.ErrUnsupportedFormat, marker)
		case marker == common.MarkerLSE:
			if err := d.parseLSE(seg); err != nil {
				return nil, err
			}
		case marker == common.MarkerSOS:
			n, err := d.decodeScan(seg, reader.Bytes())
			if err != nil {
				return nil, err
			}
			reader.SetPos(reader.Pos() + n)
		}
	}

	if d.samples == nil {
		return nil, common.ErrInvalidSOF
	}
	for i, ok := range d.decoded {
		if !ok {
			return nil, fmt.Errorf("%w: component %d has no scan", common.ErrInvalidSOS, d.ids[i])
		}
	}
	return d, nil
}

func (d *Decoder) parseSOF(seg []byte) error {
	if len(seg) < 6 {
		return common.ErrInvalidSOF
	}
	d.precision = int(seg[0])
	d.height = int(binary.BigEndian.Uint16(seg[1:]))
	d.width = int(binary.BigEndian.Uint16(seg[3:]))
	n := int(seg[5])
	if d.precision < 2 || d.precision > 16 {
		return common.ErrInvalidBitDepth
	}
	if d.width == 0 || d.height == 0 {
		return common.ErrInvalidDimensions
	}
	if n < 1 || n > 4 || len(seg) < 6+3*n {
		return common.ErrInvalidComponents
	}
	d.ids = make([]byte, n)
	d.samples = make([][]int, n)
	d.decoded = make([]bool, n)
	for i := 0; i < n; i++ {
		d.ids[i] = seg[6+3*i]
		d.samples[i] = make([]int, d.width*d.height)
	}
	return nil
}

func (d *Decoder) parseLSE(seg []byte) error {
	if len(seg) < 1 {
		return common.ErrInvalidData
	}
	if seg[0] != 1 {
		return fmt.Errorf("%w: LSE id %d", common.ErrUnsupportedFormat, seg[0])
	}
	if len(seg) < 11 {
		return common.ErrInvalidData
	}
	d.preset = &Preset{
		MaxVal: int(binary.BigEndian.Uint16(seg[1:])),
		T1:     int(binary.BigEndian.Uint16(seg[3:])),
		T2:     int(binary.BigEndian.Uint16(seg[5:])),
		T3:     int(binary.BigEndian.Uint16(seg[7:])),
		Reset:  int(binary.BigEndian.Uint16(seg[9:])),
	}
	return nil
}

// decodeScan decodes one single-component scan from data and returns the
// number of bytes it occupied.
func (d *Decoder) decodeScan(seg, data []byte) (int, error) {
	if d.samples == nil {
		return 0, common.ErrInvalidSOS
	}
	if len(seg) < 1 {
		return 0, common.ErrInvalidSOS
	}
	ns := int(seg[0])
	if len(seg) < 1+2*ns+3 {
		return 0, common.ErrInvalidSOS
	}
	near := int(seg[1+2*ns])
	ilv := seg[2+2*ns]
	if ns != 1 || ilv != 0 {
		return 0, fmt.Errorf("%w: interleave mode %d with %d components", common.ErrUnsupportedFormat, ilv, ns)
	}
	if seg[3+2*ns]&0x0F != 0 {
		return 0, fmt.Errorf("%w: point transform", common.ErrUnsupportedFormat)
	}
	if seg[2] != 0 {
		return 0, fmt.Errorf("%w: mapping table", common.ErrUnsupportedFormat)
	}
	comp := -1
	for i, id := range d.ids {
		if id == seg[1] {
			comp = i
		}
	}
	if comp < 0 {
		return 0, fmt.Errorf("%w: unknown component %d", common.ErrInvalidSOS, seg[1])
	}

	d.near = near
	d.traits = NewTraits(1<<uint(d.precision)-1, near, d.preset)
	d.gr = NewGolombReader(data)
	d.ctx = newContexts(d.traits)

	w := d.width
	plane := d.samples[comp]
	prev := make([]int, w+2)
	cur := make([]int, w+2)
	for y := 0; y < d.height; y++ {
		prev[w+1] = prev[w]
		cur[0] = prev[1]
		for x := 0; x < w; {
			ra, rb, rc, rd := cur[x], prev[x+1], prev[x], prev[x+2]
			q1 := d.traits.QuantizeGradient(rd - rb)
			q2 := d.traits.QuantizeGradient(rb - rc)
			q3 := d.traits.QuantizeGradient(rc - ra)
			if q1 == 0 && q2 == 0 && q3 == 0 {
				n, err := d.decodeRun(cur, prev, x)
				if err != nil {
					return 0, err
				}
				x += n
				continue
			}
			v, err := d.decodeRegular(contextID(q1, q2, q3), Predict(ra, rb, rc))
			if err != nil {
				return 0, err
			}
			cur[x+1] = v
			x++
		}
		copy(plane[y*w:(y+1)*w], cur[1:w+1])
		prev, cur = cur, prev
	}
	d.decoded[comp] = true
	return d.gr.End(), nil
}

func (d *Decoder) decodeRegular(qs, predicted int) (int, error) {
	t := d.traits
	s := sign(qs)
	c := &d.ctx.regular[abs(qs)]
	k := c.GolombParameter()
	px := t.CorrectPrediction(predicted + s*c.C)
	m, err := d.gr.DecodeMappedValue(k, t.Limit, t.Qbpp)
	if err != nil {
		return 0, err
	}
	e := unmapError(m) ^ c.errorCorrection(k, t.Near)
	c.Update(e, t.Near, t.Reset)
	return t.Reconstruct(px, s*e), nil
}

func (d *Decoder) decodeRun(cur, prev []int, x int) (int, error) {
	ra := cur[x]
	remaining := d.width - x
	n := 0
	end := false
	for {
		bit, err := d.gr.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			break
		}
		full := 1 << uint(J[d.ctx.runIndex])
		count := min(full, remaining-n)
		n += count
		if count == full {
			d.ctx.incrementRunIndex()
		}
		if n == remaining {
			end = true
			break
		}
	}
	if !end {
		v, err := d.gr.ReadBits(J[d.ctx.runIndex])
		if err != nil {
			return 0, err
		}
		n += v
	}
	if n > remaining {
		return 0, fmt.Errorf("%w: run of %d exceeds line", common.ErrInvalidData, n)
	}
	for i := 0; i < n; i++ {
		cur[x+1+i] = ra
	}
	if n == remaining {
		return n, nil
	}

	i := x + 1 + n
	v, err := d.decodeInterruption(ra, prev[i])
	if err != nil {
		return 0, err
	}
	cur[i] = v
	d.ctx.decrementRunIndex()
	return n + 1, nil
}

func (d *Decoder) decodeInterruption(ra, rb int) (int, error) {
	t := d.traits
	if t.IsNear(ra, rb) {
		e, err := d.decodeInterruptionError(&d.ctx.run[1])
		if err != nil {
			return 0, err
		}
		return t.Reconstruct(ra, e), nil
	}
	e, err := d.decodeInterruptionError(&d.ctx.run[0])
	if err != nil {
		return 0, err
	}
	return t.Reconstruct(rb, e*sign(rb-ra)), nil
}

func (d *Decoder) decodeInterruptionError(c *RunContext) (int, error) {
	t := d.traits
	k := c.GolombParameter()
	em, err := d.gr.DecodeMappedValue(k, t.Limit-J[d.ctx.runIndex]-1, t.Qbpp)
	if err != nil {
		return 0, err
	}
	e := c.errorValue(em+c.RIType, k)
	c.Update(e, em, t.Reset)
	return e, nil
}

// pixels interleaves the decoded planes.
func (d *Decoder) pixels() []byte {
	components := len(d.samples)
	n := d.width * d.height
	bps := 1
	if d.precision > 8 {
		bps = 2
	}
	out := make([]byte, n*components*bps)
	for i := 0; i < n; i++ {
		for c := 0; c < components; c++ {
			idx := i*components + c
			v := d.samples[c][i]
			if bps == 1 {
				out[idx] = byte(v)
			} else {
				binary.LittleEndian.PutUint16(out[2*idx:], uint16(v))
			}
		}
	}
	return out
}
