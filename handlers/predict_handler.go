package handlers

import (
	"errors"
	"log"
	"net/http"

	"legalai-backend/service"

	"github.com/gin-gonic/gin"
)

// PredictHandler handles HTTP requests for text classification and
// prioritization.
type PredictHandler struct {
	classifier  *service.PredictionService
	prioritizer *service.PredictionService
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(classifier, prioritizer *service.PredictionService) *PredictHandler {
	return &PredictHandler{
		classifier:  classifier,
		prioritizer: prioritizer,
	}
}

// PredictRequest represents the request body for classify and prioritize
type PredictRequest struct {
	Text string `json:"text"`
}

// Classify handles POST /api/v1/classify
func (h *PredictHandler) Classify(c *gin.Context) {
	h.predict(c, h.classifier, "category")
}

// Prioritize handles POST /api/v1/prioritize
func (h *PredictHandler) Prioritize(c *gin.Context) {
	h.predict(c, h.prioritizer, "priority")
}

func (h *PredictHandler) predict(c *gin.Context, svc *service.PredictionService, field string) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	label, err := svc.Predict(req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyText):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_TEXT",
					"message": "Input text cannot be empty.",
				},
			})
		case errors.Is(err, service.ErrModelNotReady):
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MODEL_NOT_READY",
					"message": "Model is not loaded. Check server logs.",
				},
			})
		default:
			log.Printf("%s prediction failed: %v", field, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PREDICTION_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{field: label})
}
