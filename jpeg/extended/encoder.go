package extended

import (
	"bytes"
	"math"

	"github.com/cocosip/go-dicom-imageio/codec"
	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

// Options control Encode
type Options struct {
	// Precision is the sample precision, 8 or 12
	Precision int
	// Quality scales the quantization table (1-100)
	Quality int
	// RestartInterval is the number of MCUs between RSTn markers, 0 for none
	RestartInterval int
	// RGB marks three component data as untransformed with an Adobe APP14
	// segment. Without it decoders treat the components as YCbCr.
	RGB bool
}

// Encoder is a sequential DCT (Process 2 and 4) encoder with Huffman
// tables optimized for the image being coded
type Encoder struct {
	width      int
	height     int
	components int
	opts       Options

	mcusX  int
	mcusY  int
	quant  [64]int32
	blocks [][][64]int32
}

// Encode compresses one plane of unsigned samples per component. All
// components are coded at full resolution in a single interleaved scan.
func Encode(samples [][]int, width, height int, opts Options) ([]byte, error) {
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF {
		return nil, common.ErrInvalidDimensions
	}
	if len(samples) != 1 && len(samples) != 3 {
		return nil, common.ErrInvalidComponents
	}
	if opts.Precision != 8 && opts.Precision != 12 {
		return nil, common.ErrInvalidBitDepth
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, codec.ErrInvalidQuality
	}
	if opts.RestartInterval < 0 || opts.RestartInterval > 0xFFFF {
		return nil, common.ErrInvalidData
	}
	for _, plane := range samples {
		if len(plane) < width*height {
			return nil, common.ErrBufferTooSmall
		}
	}

	e := &Encoder{
		width:      width,
		height:     height,
		components: len(samples),
		opts:       opts,
		mcusX:      (width + 7) / 8,
		mcusY:      (height + 7) / 8,
		quant:      scaleQuantTable(luminanceQuant, opts.Quality),
	}
	e.transform(samples)

	var stats counter
	_ = e.walk(&stats)
	dc := optimalTable(stats.freq[0])
	ac := optimalTable(stats.freq[1])

	var buf bytes.Buffer
	w := common.NewWriter(&buf)
	if err := w.WriteMarker(common.MarkerSOI); err != nil {
		return nil, err
	}
	if opts.RGB && e.components == 3 {
		adobe := []byte{'A', 'd', 'o', 'b', 'e', 0, 100, 0, 0, 0, 0, 0}
		if err := w.WriteSegment(common.MarkerAPP14, adobe); err != nil {
			return nil, err
		}
	}
	if err := e.writeHeaders(w, dc, ac); err != nil {
		return nil, err
	}

	sw := &scanWriter{
		buf:   &buf,
		enc:   common.NewHuffmanEncoder(&buf),
		codes: [2][]common.HuffmanCode{common.BuildHuffmanCodes(dc), common.BuildHuffmanCodes(ac)},
	}
	if err := e.walk(sw); err != nil {
		return nil, err
	}
	if err := sw.enc.Flush(); err != nil {
		return nil, err
	}
	if err := w.WriteMarker(common.MarkerEOI); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// transform level shifts, transforms and quantizes every block. Edge blocks
// repeat the last column and row.
func (e *Encoder) transform(samples [][]int) {
	shift := float64(int(1) << uint(e.opts.Precision-1))
	// largest magnitude a coefficient of this precision can take
	limit := float64(int(1)<<uint(e.opts.Precision+2) - 1)

	e.blocks = make([][][64]int32, e.components)
	for c, plane := range samples {
		e.blocks[c] = make([][64]int32, e.mcusX*e.mcusY)
		for by := 0; by < e.mcusY; by++ {
			for bx := 0; bx < e.mcusX; bx++ {
				var b [64]float64
				for y := 0; y < 8; y++ {
					sy := min(by*8+y, e.height-1)
					for x := 0; x < 8; x++ {
						sx := min(bx*8+x, e.width-1)
						b[y*8+x] = float64(plane[sy*e.width+sx]) - shift
					}
				}
				fdct(&b)
				blk := &e.blocks[c][by*e.mcusX+bx]
				for i, v := range b {
					q := math.Round(v / float64(e.quant[i]))
					blk[i] = int32(math.Max(-limit, math.Min(limit, q)))
				}
			}
		}
	}
}

func (e *Encoder) writeHeaders(w *common.Writer, dc, ac *common.HuffmanTable) error {
	dqt := make([]byte, 65)
	for k := 0; k < 64; k++ {
		dqt[1+k] = byte(e.quant[zigzag[k]])
	}
	if err := w.WriteSegment(common.MarkerDQT, dqt); err != nil {
		return err
	}

	sof := []byte{
		byte(e.opts.Precision),
		byte(e.height >> 8), byte(e.height),
		byte(e.width >> 8), byte(e.width),
		byte(e.components),
	}
	for c := 0; c < e.components; c++ {
		sof = append(sof, byte(c+1), 0x11, 0)
	}
	if err := w.WriteSegment(common.MarkerSOF1, sof); err != nil {
		return err
	}

	dht := append(dc.Segment(0, 0), ac.Segment(1, 0)...)
	if err := w.WriteSegment(common.MarkerDHT, dht); err != nil {
		return err
	}
	if e.opts.RestartInterval > 0 {
		ri := e.opts.RestartInterval
		if err := w.WriteSegment(common.MarkerDRI, []byte{byte(ri >> 8), byte(ri)}); err != nil {
			return err
		}
	}

	sos := []byte{byte(e.components)}
	for c := 0; c < e.components; c++ {
		sos = append(sos, byte(c+1), 0x00)
	}
	sos = append(sos, 0, 63, 0)
	return w.WriteSegment(common.MarkerSOS, sos)
}

// symbolSink receives the entropy coding symbols of a scan. table is 0 for
// DC and 1 for AC; n extra bits follow each symbol.
type symbolSink interface {
	symbol(table, sym int, bits uint32, n int) error
	restart(n int) error
}

// walk emits the symbols of every MCU in scan order
func (e *Encoder) walk(s symbolSink) error {
	preds := make([]int32, e.components)
	mcus := e.mcusX * e.mcusY
	for m := 0; m < mcus; m++ {
		if ri := e.opts.RestartInterval; ri > 0 && m > 0 && m%ri == 0 {
			if err := s.restart((m/ri - 1) & 7); err != nil {
				return err
			}
			clear(preds)
		}
		for c := 0; c < e.components; c++ {
			blk := &e.blocks[c][m]
			cat, bits := common.EncodeCategory(int(blk[0] - preds[c]))
			preds[c] = blk[0]
			if err := s.symbol(0, cat, bits, cat); err != nil {
				return err
			}

			run := 0
			for k := 1; k < 64; k++ {
				v := blk[zigzag[k]]
				if v == 0 {
					run++
					continue
				}
				for run >= 16 {
					if err := s.symbol(1, 0xF0, 0, 0); err != nil {
						return err
					}
					run -= 16
				}
				cat, bits := common.EncodeCategory(int(v))
				if err := s.symbol(1, run<<4|cat, bits, cat); err != nil {
					return err
				}
				run = 0
			}
			if run > 0 {
				if err := s.symbol(1, 0x00, 0, 0); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// counter gathers symbol statistics for optimalTable
type counter struct {
	freq [2][256]int
}

func (c *counter) symbol(table, sym int, _ uint32, _ int) error {
	c.freq[table][sym]++
	return nil
}

func (c *counter) restart(int) error { return nil }

// scanWriter writes Huffman coded symbols
type scanWriter struct {
	buf   *bytes.Buffer
	enc   *common.HuffmanEncoder
	codes [2][]common.HuffmanCode
}

func (w *scanWriter) symbol(table, sym int, bits uint32, n int) error {
	return w.enc.WriteCode(w.codes[table][sym], bits, n)
}

func (w *scanWriter) restart(n int) error {
	if err := w.enc.Flush(); err != nil {
		return err
	}
	_, err := w.buf.Write([]byte{0xFF, byte(0xD0 + n)})
	return err
}
