package vision

import (
	"encoding/base64"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

var testLabels = []string{"Calculos", "Caries", "Gingivitis", "Ulcera bucal", "Dientes descoloridos", "Dientes Normales"}

func TestFormatClassificationPicksArgMax(t *testing.T) {
	out := &Output{Scores: []float32{0.02, 0.873, 0.05, 0.03, 0.017, 0.01}}
	result := FormatClassification(out, testLabels)

	require.Equal(t, "Caries", result.Class)
	require.InDelta(t, 87.3, result.Confidence, 0.001)
}

func TestFormatClassificationPercentagesSumToHundred(t *testing.T) {
	out := &Output{Scores: []float32{0.1, 0.2, 0.3, 0.25, 0.1, 0.05}}
	result := FormatClassification(out, testLabels)

	require.Len(t, result.Breakdown, len(testLabels))
	var sum float64
	for _, entry := range result.Breakdown {
		sum += entry.Percent
	}
	// Each entry rounds to one decimal, so the sum can drift by at most
	// 0.05 per label.
	require.InDelta(t, 100.0, sum, 0.05*float64(len(testLabels)))
}

func TestFormatClassificationBreakdownIsPositionAligned(t *testing.T) {
	out := &Output{Scores: []float32{0.5, 0.5}}
	result := FormatClassification(out, testLabels)

	require.Equal(t, "Calculos", result.Breakdown[0].Label)
	require.InDelta(t, 50.0, result.Breakdown[0].Percent, 0.001)
	// Labels beyond the score vector get a zero score, not a crash.
	require.InDelta(t, 0.0, result.Breakdown[2].Percent, 0.001)
}

func TestFormatClassificationOutOfRangeArgMax(t *testing.T) {
	// More scores than labels, arg-max past the table: substitute the
	// sentinel without failing.
	out := &Output{Scores: []float32{0.1, 0.1, 0.8}}
	result := FormatClassification(out, []string{"Caries", "Gingivitis"})

	require.Equal(t, UnknownLabel, result.Class)
	require.InDelta(t, 80.0, result.Confidence, 0.001)
}

func TestFormatDetectionsRoundsToTwoDecimals(t *testing.T) {
	src := makeTestImage(100, 100, color.RGBA{R: 220, G: 220, B: 220, A: 255})
	out := &Output{Boxes: []Box{
		{X: 10, Y: 10, W: 30, H: 30, Label: "Caries", Confidence: 0.87654},
		{X: 60, Y: 60, W: 20, H: 20, Label: "Gingivitis", Confidence: 0.251},
	}}

	result, err := FormatDetections(out, src)
	require.NoError(t, err)
	require.Len(t, result.Detections, 2)
	require.Equal(t, "Caries", result.Detections[0].Class)
	require.InDelta(t, 0.88, result.Detections[0].Confidence, 0.0001)
	require.InDelta(t, 0.25, result.Detections[1].Confidence, 0.0001)
}

func TestFormatDetectionsAnnotatedImageDecodes(t *testing.T) {
	src := makeTestImage(50, 50, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	out := &Output{Boxes: []Box{{X: 5, Y: 5, W: 20, H: 20, Label: "Caries", Confidence: 0.9}}}

	result, err := FormatDetections(out, src)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	require.NoError(t, err)

	img, err := DecodeBytes(raw)
	require.NoError(t, err)
	require.Equal(t, 50, img.Bounds().Dx())
}

func TestAnnotateDoesNotMutateSource(t *testing.T) {
	src := makeTestImage(40, 40, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	before := src.RGBAAt(5, 5)

	annotated := Annotate(src, []Box{{X: 0, Y: 0, W: 40, H: 40, Label: "x", Confidence: 1}})

	require.Equal(t, before, src.RGBAAt(5, 5))
	require.NotEqual(t, before, annotated.RGBAAt(5, 0))
}

func TestAnnotateClipsBoxesToBounds(t *testing.T) {
	src := makeTestImage(20, 20, color.RGBA{A: 255})
	require.NotPanics(t, func() {
		Annotate(src, []Box{{X: -50, Y: -50, W: 500, H: 500, Label: "x", Confidence: 1}})
	})
}
