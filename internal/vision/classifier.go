package vision

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Metadata describes a classifier export: tensor shapes, the square input
// side, and the ordered class list aligned with the output score vector.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// Classifier wraps the Teachable-Machine classifier behind the Model
// contract. One session with preallocated tensors serves the whole process;
// the mutex serializes Run calls since the tensors are shared.
type Classifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	meta         Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

func NewClassifier(modelPath, metadataPath string) (*Classifier, error) {
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("initializing ONNX environment: %w", err)
	}

	metaFile, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("reading classifier metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(metaFile, &meta); err != nil {
		return nil, fmt.Errorf("parsing classifier metadata: %w", err)
	}
	if len(meta.Classes) == 0 || meta.ImageSize <= 0 {
		return nil, fmt.Errorf("classifier metadata %s is incomplete", metadataPath)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("creating input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("creating output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("creating classifier session: %w", err)
	}

	return &Classifier{
		session:      session,
		meta:         meta,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func (c *Classifier) Infer(img image.Image) (*Output, error) {
	data := TensorNHWC(img, c.meta.ImageSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.inputTensor.GetData(), data)
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("classifier inference failed: %w", err)
	}

	raw := c.outputTensor.GetData()
	scores := make([]float32, len(raw))
	copy(scores, raw)

	return &Output{Scores: scores}, nil
}

func (c *Classifier) Labels() []string {
	return c.meta.Classes
}

func (c *Classifier) Close() {
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
}
