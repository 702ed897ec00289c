package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func makeTestImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFromBGRSwapsChannelOrder(t *testing.T) {
	// One pixel, B=10 G=20 R=30 in camera order.
	frame := []byte{10, 20, 30}
	img, err := FromBGR(frame, 1, 1)
	require.NoError(t, err)

	got := img.RGBAAt(0, 0)
	require.Equal(t, color.RGBA{R: 30, G: 20, B: 10, A: 255}, got)
}

func TestFromBGRMatchesDecodedSource(t *testing.T) {
	// The same scene delivered as a BGR frame and as an encoded RGB file
	// must normalize to identical pixels.
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{R: 200, G: 50, B: 25, A: 255})
	src.SetRGBA(1, 0, color.RGBA{R: 0, G: 128, B: 255, A: 255})
	src.SetRGBA(0, 1, color.RGBA{R: 17, G: 34, B: 51, A: 255})
	src.SetRGBA(1, 1, color.RGBA{R: 255, G: 255, B: 0, A: 255})

	frame := make([]byte, 0, 12)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			px := src.RGBAAt(x, y)
			frame = append(frame, px.B, px.G, px.R)
		}
	}

	fromCamera, err := FromBGR(frame, 2, 2)
	require.NoError(t, err)

	fromFile, err := DecodeBytes(pngBytes(t, src))
	require.NoError(t, err)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			r1, g1, b1, _ := fromCamera.At(x, y).RGBA()
			r2, g2, b2, _ := fromFile.At(x, y).RGBA()
			require.Equal(t, [3]uint32{r2, g2, b2}, [3]uint32{r1, g1, b1})
		}
	}
}

func TestFromBGRBadDimensions(t *testing.T) {
	_, err := FromBGR([]byte{1, 2, 3}, 2, 2)
	require.ErrorIs(t, err, ErrDecode)

	_, err = FromBGR(nil, 0, 0)
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeBytesRejectsGarbage(t *testing.T) {
	_, err := DecodeBytes([]byte("definitely not an image"))
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeBytesAcceptsPNG(t *testing.T) {
	img, err := DecodeBytes(pngBytes(t, makeTestImage(4, 4, color.RGBA{R: 9, G: 9, B: 9, A: 255})))
	require.NoError(t, err)
	require.Equal(t, 4, img.Bounds().Dx())
}

func TestTensorNHWCShapeAndRange(t *testing.T) {
	img := makeTestImage(10, 7, color.RGBA{R: 255, G: 128, B: 0, A: 255})
	data := TensorNHWC(img, 8)

	require.Len(t, data, 8*8*3)
	for _, v := range data {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}
	// Interleaved layout: first pixel is (r, g, b).
	require.InDelta(t, 1.0, data[0], 0.02)
	require.InDelta(t, 0.5, data[1], 0.02)
	require.InDelta(t, 0.0, data[2], 0.02)
}

func TestTensorCHWLayout(t *testing.T) {
	img := makeTestImage(6, 6, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	side := 4
	data := TensorCHW(img, side)

	require.Len(t, data, side*side*3)
	stride := side * side
	for i := 0; i < stride; i++ {
		require.InDelta(t, 1.0, data[i], 0.02)          // red plane
		require.InDelta(t, 0.0, data[stride+i], 0.02)   // green plane
		require.InDelta(t, 0.0, data[2*stride+i], 0.02) // blue plane
	}
}

func TestDisplaySizeDimensions(t *testing.T) {
	img := makeTestImage(800, 600, color.RGBA{A: 255})
	resized := DisplaySize(img)
	require.Equal(t, DisplayWidth, resized.Bounds().Dx())
	require.Equal(t, DisplayHeight, resized.Bounds().Dy())
}

func TestEncodeJPEGProducesDecodableImage(t *testing.T) {
	data, err := EncodeJPEG(makeTestImage(8, 8, color.RGBA{R: 100, G: 100, B: 100, A: 255}))
	require.NoError(t, err)

	img, err := DecodeBytes(data)
	require.NoError(t, err)
	require.Equal(t, 8, img.Bounds().Dx())
}
