package service

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/AlfredoZC/DentiAI/internal/domain"
	"github.com/AlfredoZC/DentiAI/internal/repository"
	"github.com/AlfredoZC/DentiAI/internal/vision"

	"github.com/google/uuid"
)

// DiagnosisService runs the inference pipeline: ingest an uploaded image,
// call the model, format the result, and record it against the user's
// history. The model variant is fixed at construction.
type DiagnosisService struct {
	model       vision.Model
	historyRepo repository.HistoryRepository
	uploadsDir  string
}

func NewDiagnosisService(model vision.Model, historyRepo repository.HistoryRepository, uploadsDir string) *DiagnosisService {
	return &DiagnosisService{
		model:       model,
		historyRepo: historyRepo,
		uploadsDir:  uploadsDir,
	}
}

// PredictUpload stores the upload, runs detection and persists the outcome.
// A history write failure is logged and does not invalidate the result the
// caller gets back: inference success and persistence are independent.
func (s *DiagnosisService) PredictUpload(ctx context.Context, userID int, filename string, r io.Reader) (*domain.DetectionResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	img, err := vision.DecodeBytes(data)
	if err != nil {
		return nil, err
	}

	// Uploads are keyed by a fresh UUID so concurrent users can never
	// overwrite each other's files, whatever name the client sent.
	storedName := uuid.NewString() + "_" + filepath.Base(filename)
	storedPath := filepath.Join(s.uploadsDir, storedName)
	if err := os.WriteFile(storedPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("storing upload: %w", err)
	}

	raw, err := s.model.Infer(img)
	if err != nil {
		return nil, err
	}

	result, err := vision.FormatDetections(raw, img)
	if err != nil {
		return nil, err
	}

	detectionsJSON, err := json.Marshal(result.Detections)
	if err != nil {
		return nil, fmt.Errorf("serializing detections: %w", err)
	}

	record := &domain.HistoryRecord{
		UserID:     userID,
		ImagePath:  storedPath,
		Detections: string(detectionsJSON),
	}
	if _, err := s.historyRepo.Create(ctx, record); err != nil {
		log.Printf("DiagnosisService: history write failed for user %d: %v", userID, err)
	}

	return result, nil
}

// Classify runs the classifier variant for the desk client and attaches the
// advisory text for the winning diagnosis.
func (s *DiagnosisService) Classify(img image.Image) (*domain.ClassificationResult, error) {
	raw, err := s.model.Infer(img)
	if err != nil {
		return nil, err
	}
	result := vision.FormatClassification(raw, s.model.Labels())
	result.Recommendation = Recommendation(result.Class)
	return result, nil
}

// History returns the user's records with the detections blob parsed back.
func (s *DiagnosisService) History(ctx context.Context, userID int) ([]domain.HistoryItemDTO, error) {
	records, err := s.historyRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	items := make([]domain.HistoryItemDTO, 0, len(records))
	for _, rec := range records {
		var detections []domain.Detection
		if err := json.Unmarshal([]byte(rec.Detections), &detections); err != nil {
			log.Printf("DiagnosisService: skipping history record %d with bad detections blob: %v", rec.ID, err)
			continue
		}
		items = append(items, domain.HistoryItemDTO{
			ID:         rec.ID,
			ImagePath:  rec.ImagePath,
			Detections: detections,
			Timestamp:  rec.Timestamp,
		})
	}
	return items, nil
}
