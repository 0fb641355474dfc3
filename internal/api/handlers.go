package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/truthlens/internal/logger"
	"github.com/ppiankov/truthlens/internal/model"
)

// Classifier is the inference backend the API serves
type Classifier interface {
	Classify(ctx context.Context, title, content string) (*model.Prediction, error)
	Ready() bool
	Info() model.ModelInfo
}

// NewsInput is the /classify request body. Both fields must be present;
// empty strings are accepted.
type NewsInput struct {
	Title   *string `json:"title" binding:"required"`
	Content *string `json:"content" binding:"required"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type healthResponse struct {
	Status      string           `json:"status"`
	ModelLoaded bool             `json:"model_loaded"`
	Model       *model.ModelInfo `json:"model,omitempty"`
}

// Handler serves the API routes
type Handler struct {
	classifier Classifier
	metrics    *Metrics
	log        logger.Logger
}

// NewHandler creates a handler
func NewHandler(classifier Classifier, metrics *Metrics, log logger.Logger) *Handler {
	return &Handler{
		classifier: classifier,
		metrics:    metrics,
		log:        log,
	}
}

// Root handles GET /
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Fake News Detection API"})
}

// Classify handles POST /classify
func (h *Handler) Classify(c *gin.Context) {
	var input NewsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
		return
	}

	prediction, err := h.classifier.Classify(c.Request.Context(), *input.Title, *input.Content)
	if err != nil {
		h.metrics.Classifications.WithLabelValues("error").Inc()
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		return
	}

	outcome := "real"
	if prediction.IsFake {
		outcome = "fake"
	}
	h.metrics.Classifications.WithLabelValues(outcome).Inc()
	h.log.Debug("Classified news",
		logger.Bool("is_fake", prediction.IsFake),
		logger.Float64("confidence", prediction.Confidence),
	)

	c.JSON(http.StatusOK, prediction)
}

// Health handles GET /health; it reports degraded mode without failing
func (h *Handler) Health(c *gin.Context) {
	resp := healthResponse{Status: "ok", ModelLoaded: h.classifier.Ready()}
	if resp.ModelLoaded {
		info := h.classifier.Info()
		resp.Model = &info
	} else {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}
