package vision

import (
	"fmt"
	"image"
	"sort"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	detectorInputSize    = 640
	detectorNumBoxes     = 8400
	detectorConfidence   = 0.25
	detectorIoUThreshold = 0.7
)

// Detector wraps the YOLO export behind the Model contract. Its label table
// comes from the detector's own file and is never shared with the
// classifier's class list; the two orderings have nothing to do with each
// other.
type Detector struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	labels       []string
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

func NewDetector(modelPath, labelsPath string) (*Detector, error) {
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("initializing ONNX environment: %w", err)
	}

	labels, err := LoadLabels(labelsPath)
	if err != nil {
		return nil, err
	}

	inputShape := ort.NewShape(1, 3, detectorInputSize, detectorInputSize)
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("creating input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, int64(4+len(labels)), detectorNumBoxes)
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("creating output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"images"}, []string{"output0"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("creating detector session: %w", err)
	}

	return &Detector{
		session:      session,
		labels:       labels,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func (d *Detector) Infer(img image.Image) (*Output, error) {
	bounds := img.Bounds()
	srcW, srcH := float32(bounds.Dx()), float32(bounds.Dy())
	data := TensorCHW(img, detectorInputSize)

	d.mu.Lock()
	copy(d.inputTensor.GetData(), data)
	if err := d.session.Run(); err != nil {
		d.mu.Unlock()
		return nil, fmt.Errorf("detector inference failed: %w", err)
	}
	raw := d.outputTensor.GetData()
	output := make([]float32, len(raw))
	copy(output, raw)
	d.mu.Unlock()

	boxes := decodeBoxes(output, d.labels, srcW, srcH)
	return &Output{Boxes: boxes}, nil
}

func (d *Detector) Labels() []string {
	return d.labels
}

func (d *Detector) Close() {
	if d.inputTensor != nil {
		d.inputTensor.Destroy()
	}
	if d.outputTensor != nil {
		d.outputTensor.Destroy()
	}
	if d.session != nil {
		d.session.Destroy()
	}
}

// decodeBoxes turns the flat [4+C, N] output into thresholded, NMS-filtered
// boxes in source-image coordinates. Layout: row 0..3 are xc, yc, w, h for
// every candidate, rows 4.. are per-class scores.
func decodeBoxes(output []float32, labels []string, srcW, srcH float32) []Box {
	numClasses := len(labels)
	perRow := len(output) / (numClasses + 4)
	if perRow == 0 || len(output) != perRow*(numClasses+4) {
		return nil
	}

	var candidates []Box
	for i := 0; i < perRow; i++ {
		classID, prob := 0, float32(0)
		for j := 0; j < numClasses; j++ {
			if curr := output[perRow*(j+4)+i]; curr > prob {
				prob = curr
				classID = j
			}
		}
		if prob < detectorConfidence {
			continue
		}

		xc := output[i]
		yc := output[perRow+i]
		w := output[2*perRow+i]
		h := output[3*perRow+i]

		candidates = append(candidates, Box{
			X:          (xc - w/2) / detectorInputSize * srcW,
			Y:          (yc - h/2) / detectorInputSize * srcH,
			W:          w / detectorInputSize * srcW,
			H:          h / detectorInputSize * srcH,
			Label:      labels[classID],
			Confidence: prob,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	var kept []Box
	for _, c := range candidates {
		overlaps := false
		for _, k := range kept {
			if iou(c, k) > detectorIoUThreshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}

func iou(a, b Box) float32 {
	x1 := maxf(a.X, b.X)
	y1 := maxf(a.Y, b.Y)
	x2 := minf(a.X+a.W, b.X+b.W)
	y2 := minf(a.Y+a.H, b.Y+b.H)

	interW := x2 - x1
	interH := y2 - y1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	inter := interW * interH
	union := a.W*a.H + b.W*b.H - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
