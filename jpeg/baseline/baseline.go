package baseline

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

// Encode encodes 8-bit interleaved pixel data to a JPEG Baseline stream
func Encode(pixelData []byte, width, height, components, quality int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF {
		return nil, common.ErrInvalidDimensions
	}
	if components != 1 && components != 3 {
		return nil, common.ErrInvalidComponents
	}
	if len(pixelData) < width*height*components {
		return nil, common.ErrBufferTooSmall
	}
	if quality < 1 || quality > 100 {
		quality = 85
	}

	rect := image.Rect(0, 0, width, height)
	var img image.Image
	if components == 1 {
		gray := image.NewGray(rect)
		copy(gray.Pix, pixelData[:width*height])
		img = gray
	} else {
		rgba := image.NewRGBA(rect)
		for i := 0; i < width*height; i++ {
			copy(rgba.Pix[4*i:4*i+3], pixelData[3*i:3*i+3])
			rgba.Pix[4*i+3] = 0xFF
		}
		img = rgba
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decodes a JPEG Baseline stream to 8-bit interleaved pixel data.
// Color images are returned as RGB.
func Decode(jpegData []byte) (pixelData []byte, width, height, components int, err error) {
	img, err := jpeg.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return nil, 0, 0, 0, err
	}
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()

	if gray, ok := img.(*image.Gray); ok {
		pixelData = make([]byte, width*height)
		for y := 0; y < height; y++ {
			copy(pixelData[y*width:(y+1)*width], gray.Pix[y*gray.Stride:y*gray.Stride+width])
		}
		return pixelData, width, height, 1, nil
	}

	pixelData = make([]byte, width*height*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			pixelData[i] = byte(r >> 8)
			pixelData[i+1] = byte(g >> 8)
			pixelData[i+2] = byte(bl >> 8)
			i += 3
		}
	}
	return pixelData, width, height, 3, nil
}
