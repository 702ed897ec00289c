package vision

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/AlfredoZC/DentiAI/internal/domain"
)

// UnknownLabel is substituted when the arg-max index falls outside the label
// table. That only happens when the table and the weights disagree, and it
// must not fail the request.
const UnknownLabel = "Unknown"

// FormatClassification resolves the raw score vector into the best class and
// a full position-aligned breakdown, scores as percentages with one decimal.
func FormatClassification(out *Output, labels []string) *domain.ClassificationResult {
	maxIdx, maxVal := 0, float32(0)
	for i, v := range out.Scores {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}

	class := UnknownLabel
	if maxIdx < len(labels) {
		class = labels[maxIdx]
	}

	breakdown := make([]domain.LabelScore, 0, len(labels))
	for i, label := range labels {
		var score float32
		if i < len(out.Scores) {
			score = out.Scores[i]
		}
		breakdown = append(breakdown, domain.LabelScore{
			Label:   label,
			Percent: round1(float64(score) * 100),
		})
	}

	return &domain.ClassificationResult{
		Class:      class,
		Confidence: round1(float64(maxVal) * 100),
		Breakdown:  breakdown,
	}
}

// FormatDetections passes the thresholded boxes through as (class,
// confidence) pairs and renders the annotated copy of the source image,
// re-encoded to JPEG and base64 for transport.
func FormatDetections(out *Output, src image.Image) (*domain.DetectionResult, error) {
	detections := make([]domain.Detection, 0, len(out.Boxes))
	for _, box := range out.Boxes {
		detections = append(detections, domain.Detection{
			Class:      box.Label,
			Confidence: round2(float64(box.Confidence)),
		})
	}

	annotated := Annotate(src, out.Boxes)
	encoded, err := EncodeJPEG(annotated)
	if err != nil {
		return nil, err
	}

	return &domain.DetectionResult{
		Detections:  detections,
		ImageBase64: base64.StdEncoding.EncodeToString(encoded),
	}, nil
}

// Annotate draws detection rectangles on a fresh copy of src.
func Annotate(src image.Image, boxes []Box) *image.RGBA {
	bounds := src.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, src, bounds.Min, draw.Src)

	green := color.RGBA{G: 255, A: 255}
	for _, box := range boxes {
		rect := image.Rect(int(box.X), int(box.Y), int(box.X+box.W), int(box.Y+box.H)).
			Intersect(bounds)
		if rect.Empty() {
			continue
		}
		drawRect(out, rect, green, 2)
	}
	return out
}

func drawRect(img *image.RGBA, rect image.Rectangle, c color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			setPixel(img, x, rect.Min.Y+t, c)
			setPixel(img, x, rect.Max.Y-1-t, c)
		}
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			setPixel(img, rect.Min.X+t, y, c)
			setPixel(img, rect.Max.X-1-t, y, c)
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
