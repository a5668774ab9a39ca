package jpegls

import (
	"bytes"
	"encoding/binary"

	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

// MaxNear is the largest NEAR value accepted by the encoder.
const MaxNear = 255

// Encoder codes one scan per component with ILV=0.
type Encoder struct {
	width     int
	height    int
	precision int
	near      int
	traits    Traits

	gw  *GolombWriter
	ctx *contexts
}

// Encode encodes interleaved pixel data. Samples are one byte when
// bitDepth <= 8 and two little endian bytes otherwise. near 0 is lossless.
func Encode(pixelData []byte, width, height, components, bitDepth, near int) ([]byte, error) {
	if bitDepth < 2 || bitDepth > 16 {
		return nil, common.ErrInvalidBitDepth
	}
	bytesPerSample := (bitDepth + 7) / 8
	if len(pixelData) < width*height*components*bytesPerSample {
		return nil, common.ErrBufferTooSmall
	}
	return EncodeSamples(unpack(pixelData, width*height, components, bitDepth), width, height, bitDepth, near)
}

// EncodeSamples encodes one plane of samples per component.
func EncodeSamples(planes [][]int, width, height, bitDepth, near int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF {
		return nil, common.ErrInvalidDimensions
	}
	if len(planes) < 1 || len(planes) > 4 {
		return nil, common.ErrInvalidComponents
	}
	if bitDepth < 2 || bitDepth > 16 {
		return nil, common.ErrInvalidBitDepth
	}
	maxVal := 1<<uint(bitDepth) - 1
	if near < 0 || near > MaxNear || near > maxVal/2 {
		return nil, common.ErrInvalidData
	}
	for _, plane := range planes {
		if len(plane) < width*height {
			return nil, common.ErrBufferTooSmall
		}
	}

	enc := &Encoder{
		width:     width,
		height:    height,
		precision: bitDepth,
		near:      near,
		traits:    NewTraits(maxVal, near, nil),
	}

	var buf bytes.Buffer
	writer := common.NewWriter(&buf)
	if err := writer.WriteMarker(common.MarkerSOI); err != nil {
		return nil, err
	}
	if err := writer.WriteSegment(common.MarkerSOF55, enc.sof(len(planes))); err != nil {
		return nil, err
	}
	if err := writer.WriteSegment(common.MarkerLSE, enc.lse()); err != nil {
		return nil, err
	}
	for i, plane := range planes {
		sos := []byte{1, byte(i + 1), 0, byte(near), 0, 0}
		if err := writer.WriteSegment(common.MarkerSOS, sos); err != nil {
			return nil, err
		}
		if err := writer.WriteBytes(enc.encodeScan(plane)); err != nil {
			return nil, err
		}
	}
	if err := writer.WriteMarker(common.MarkerEOI); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (enc *Encoder) sof(components int) []byte {
	data := make([]byte, 6+components*3)
	data[0] = byte(enc.precision)
	binary.BigEndian.PutUint16(data[1:], uint16(enc.height))
	binary.BigEndian.PutUint16(data[3:], uint16(enc.width))
	data[5] = byte(components)
	for i := 0; i < components; i++ {
		data[6+i*3] = byte(i + 1)
		data[6+i*3+1] = 0x11
	}
	return data
}

// lse writes the preset coding parameters actually in use.
func (enc *Encoder) lse() []byte {
	t := enc.traits
	data := make([]byte, 11)
	data[0] = 1
	binary.BigEndian.PutUint16(data[1:], uint16(t.MaxVal))
	binary.BigEndian.PutUint16(data[3:], uint16(t.T1))
	binary.BigEndian.PutUint16(data[5:], uint16(t.T2))
	binary.BigEndian.PutUint16(data[7:], uint16(t.T3))
	binary.BigEndian.PutUint16(data[9:], uint16(t.Reset))
	return data
}

func (enc *Encoder) encodeScan(plane []int) []byte {
	enc.gw = NewGolombWriter()
	enc.ctx = newContexts(enc.traits)
	w := enc.width
	// Line buffers carry one guard sample on each side.
	prev := make([]int, w+2)
	cur := make([]int, w+2)
	for y := 0; y < enc.height; y++ {
		prev[w+1] = prev[w]
		cur[0] = prev[1]
		copy(cur[1:w+1], plane[y*w:(y+1)*w])
		for x := 0; x < w; {
			ra, rb, rc, rd := cur[x], prev[x+1], prev[x], prev[x+2]
			q1 := enc.traits.QuantizeGradient(rd - rb)
			q2 := enc.traits.QuantizeGradient(rb - rc)
			q3 := enc.traits.QuantizeGradient(rc - ra)
			if q1 == 0 && q2 == 0 && q3 == 0 {
				x += enc.encodeRun(cur, prev, x)
				continue
			}
			cur[x+1] = enc.encodeRegular(contextID(q1, q2, q3), cur[x+1], Predict(ra, rb, rc))
			x++
		}
		prev, cur = cur, prev
	}
	return enc.gw.Bytes()
}

func (enc *Encoder) encodeRegular(qs, x, predicted int) int {
	t := enc.traits
	s := sign(qs)
	c := &enc.ctx.regular[abs(qs)]
	k := c.GolombParameter()
	px := t.CorrectPrediction(predicted + s*c.C)
	e := t.ErrorValue(s * (x - px))
	enc.gw.EncodeMappedValue(k, mapError(c.errorCorrection(k, t.Near)^e), t.Limit, t.Qbpp)
	c.Update(e, t.Near, t.Reset)
	return t.Reconstruct(px, s*e)
}

// encodeRun codes the run starting at column x and the sample that ends
// it, returning the number of columns consumed.
func (enc *Encoder) encodeRun(cur, prev []int, x int) int {
	t := enc.traits
	ra := cur[x]
	remaining := enc.width - x
	n := 0
	for t.IsNear(cur[x+1+n], ra) {
		cur[x+1+n] = ra
		n++
		if n == remaining {
			break
		}
	}

	length := n
	for length >= 1<<uint(J[enc.ctx.runIndex]) {
		enc.gw.WriteBit(1)
		length -= 1 << uint(J[enc.ctx.runIndex])
		enc.ctx.incrementRunIndex()
	}
	if n == remaining {
		if length != 0 {
			enc.gw.WriteBit(1)
		}
		return n
	}
	enc.gw.WriteBit(0)
	enc.gw.WriteBits(length, J[enc.ctx.runIndex])

	i := x + 1 + n
	cur[i] = enc.encodeInterruption(cur[i], ra, prev[i])
	enc.ctx.decrementRunIndex()
	return n + 1
}

func (enc *Encoder) encodeInterruption(x, ra, rb int) int {
	t := enc.traits
	if t.IsNear(ra, rb) {
		e := t.ErrorValue(x - ra)
		enc.encodeInterruptionError(&enc.ctx.run[1], e)
		return t.Reconstruct(ra, e)
	}
	s := sign(rb - ra)
	e := t.ErrorValue((x - rb) * s)
	enc.encodeInterruptionError(&enc.ctx.run[0], e)
	return t.Reconstruct(rb, e*s)
}

func (enc *Encoder) encodeInterruptionError(c *RunContext, e int) {
	t := enc.traits
	k := c.GolombParameter()
	mapped := 0
	if c.computeMap(e, k) {
		mapped = 1
	}
	em := 2*abs(e) - c.RIType - mapped
	enc.gw.EncodeMappedValue(k, em, t.Limit-J[enc.ctx.runIndex]-1, t.Qbpp)
	c.Update(e, em, t.Reset)
}

// unpack splits interleaved samples into planes.
func unpack(pixelData []byte, pixels, components, bitDepth int) [][]int {
	planes := make([][]int, components)
	for c := range planes {
		planes[c] = make([]int, pixels)
	}
	mask := 1<<uint(bitDepth) - 1
	for i := 0; i < pixels; i++ {
		for c := 0; c < components; c++ {
			idx := i*components + c
			var v int
			if bitDepth <= 8 {
				v = int(pixelData[idx])
			} else {
				v = int(binary.LittleEndian.Uint16(pixelData[2*idx:]))
			}
			planes[c][i] = v & mask
		}
	}
	return planes
}
