package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/AlfredoZC/DentiAI/internal/api/middleware"
	"github.com/AlfredoZC/DentiAI/internal/service"
	"github.com/AlfredoZC/DentiAI/internal/vision"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

type DiagnosisHandler struct {
	diagnosisService *service.DiagnosisService
}

func NewDiagnosisHandler(ds *service.DiagnosisService) *DiagnosisHandler {
	return &DiagnosisHandler{diagnosisService: ds}
}

// POST /predict
func (h *DiagnosisHandler) Predict(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided, use 'file' as the form field name"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer file.Close()

	result, err := h.diagnosisService.PredictUpload(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, vision.ErrDecode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image format, supported: JPEG, PNG"})
		case errors.Is(err, vision.ErrModelNotLoaded):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "model is not loaded"})
		default:
			log.Printf("DiagnosisHandler: prediction failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /history
func (h *DiagnosisHandler) History(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	items, err := h.diagnosisService.History(c.Request.Context(), userID)
	if err != nil {
		log.Printf("DiagnosisHandler: listing history failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list history"})
		return
	}
	c.JSON(http.StatusOK, items)
}
