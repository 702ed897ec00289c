package vision

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Box is a detector finding in source-image pixel coordinates.
type Box struct {
	X, Y, W, H float32
	Label      string
	Confidence float32
}

// Output is the raw result of one inference call. Exactly one of the two
// fields is populated depending on the model variant that produced it.
type Output struct {
	Scores []float32 // classifier: one score per label, position-aligned
	Boxes  []Box     // detector: findings above the confidence threshold
}

// Model is the uniform inference capability over both pretrained variants.
// The variant is fixed at construction; call sites never branch on it.
type Model interface {
	Infer(img image.Image) (*Output, error)
	Labels() []string
	Close()
}

// Unloaded stands in when weights failed to load at startup. Requests report
// the failure and never attempt inference; the process keeps serving.
type Unloaded struct{}

func (Unloaded) Infer(image.Image) (*Output, error) { return nil, ErrModelNotLoaded }
func (Unloaded) Labels() []string                   { return nil }
func (Unloaded) Close()                             {}

var ortInitOnce sync.Once
var ortInitErr error

// initRuntime initializes the shared ONNX environment once per process.
// It is never destroyed: both model variants run sessions against it for
// the process lifetime.
func initRuntime() error {
	ortInitOnce.Do(func() {
		if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
			ort.SetSharedLibraryPath(p)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// LoadLabels reads an ordered label table, one class per line. Lines in the
// Teachable Machine export carry a numeric index prefix ("0 Caries"); the
// prefix is stripped so the slice index is the only source of ordering.
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening labels file: %w", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				line = fields[1]
			}
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading labels file: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}
