package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/nfnt/resize"
)

// Preview dimensions shared by the web annotated render and the desk live view.
const (
	DisplayWidth  = 400
	DisplayHeight = 300
)

// Decode reads any supported encoding into an in-memory image.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

func DecodeBytes(data []byte) (image.Image, error) {
	return Decode(bytes.NewReader(data))
}

func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// FromBGR converts a packed BGR camera frame into an RGB image. Cameras
// deliver BGR natively; skipping this swap silently degrades model accuracy,
// so every frame goes through here before anything else sees it.
func FromBGR(frame []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(frame) != width*height*3 {
		return nil, fmt.Errorf("%w: bad BGR frame dimensions %dx%d for %d bytes", ErrDecode, width, height, len(frame))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src := (y*width + x) * 3
			dst := img.PixOffset(x, y)
			img.Pix[dst+0] = frame[src+2]
			img.Pix[dst+1] = frame[src+1]
			img.Pix[dst+2] = frame[src+0]
			img.Pix[dst+3] = 0xff
		}
	}
	return img, nil
}

// DisplaySize produces the fixed-size preview copy.
func DisplaySize(img image.Image) image.Image {
	return resize.Resize(DisplayWidth, DisplayHeight, img, resize.Lanczos3)
}

// ModelSize produces the square model-input copy.
func ModelSize(img image.Image, side int) image.Image {
	return resize.Resize(uint(side), uint(side), img, resize.Lanczos3)
}

// TensorNHWC resizes img to side x side and lays it out as a [1, H, W, 3]
// float32 buffer scaled to [0, 1], the layout the classifier expects.
func TensorNHWC(img image.Image, side int) []float32 {
	resized := ModelSize(img, side)
	data := make([]float32, side*side*3)
	idx := 0
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			data[idx] = float32(r>>8) / 255.0
			data[idx+1] = float32(g>>8) / 255.0
			data[idx+2] = float32(b>>8) / 255.0
			idx += 3
		}
	}
	return data
}

// TensorCHW resizes img to side x side and lays it out as a [1, 3, H, W]
// float32 buffer scaled to [0, 1], the layout the detector expects.
func TensorCHW(img image.Image, side int) []float32 {
	resized := ModelSize(img, side)
	data := make([]float32, side*side*3)
	stride := side * side
	idx := 0
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			data[idx] = float32(r>>8) / 255.0
			data[idx+stride] = float32(g>>8) / 255.0
			data[idx+2*stride] = float32(b>>8) / 255.0
			idx++
		}
	}
	return data
}

// EncodeJPEG re-encodes an image for transport or preview streaming.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
