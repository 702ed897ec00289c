package domain

import "time"

// Detection is a single labeled finding produced by the detector model.
type Detection struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// LabelScore pairs a class name with its score as a percentage.
type LabelScore struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// ClassificationResult is the diagnostic output of the classifier variant:
// the best class plus the full per-label breakdown and an advisory text.
type ClassificationResult struct {
	Class          string       `json:"class"`
	Confidence     float64      `json:"confidence"`
	Breakdown      []LabelScore `json:"breakdown"`
	Recommendation string       `json:"recommendation"`
}

// DetectionResult is the diagnostic output of the detector variant.
// ImageBase64 carries the annotated render, JPEG re-encoded.
type DetectionResult struct {
	Detections  []Detection `json:"detections"`
	ImageBase64 string      `json:"image_base64"`
}

// HistoryRecord is a persisted diagnosis owned by a user. Detections is the
// serialized JSON blob exactly as stored; Timestamp is assigned by the store.
type HistoryRecord struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	ImagePath  string    `json:"image_path"`
	Detections string    `json:"detections"`
	Timestamp  time.Time `json:"timestamp"`
}

// HistoryItemDTO is a history row with the detections blob parsed back.
type HistoryItemDTO struct {
	ID         int         `json:"id"`
	ImagePath  string      `json:"image_path"`
	Detections []Detection `json:"detections"`
	Timestamp  time.Time   `json:"timestamp"`
}
