package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/truthlens/internal/artifact"
	"github.com/ppiankov/truthlens/internal/linear"
	"github.com/ppiankov/truthlens/internal/logger"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/text"
)

// ErrModelNotLoaded is returned by every classification on a degraded service
var ErrModelNotLoaded = errors.New("Model not loaded. Please train the model first.") //nolint:staticcheck

// Service classifies news with a vectorizer/classifier pair loaded once at startup.
// It is read-only after construction and safe for concurrent use.
type Service struct {
	vectorizer *text.Vectorizer
	classifier *linear.Classifier
	info       model.ModelInfo
	loadErr    error
	log        logger.Logger
}

// Load reads the artifacts named in cfg. A load or validation failure is
// logged and yields a degraded service rather than an error.
func Load(cfg model.ModelConfig, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}

	pair, err := artifact.LoadPair(cfg.VectorizerFile, cfg.ClassifierFile)
	if err != nil {
		log.Error("Failed to load model artifacts; serving in degraded mode",
			logger.String("vectorizer", cfg.VectorizerFile),
			logger.String("classifier", cfg.ClassifierFile),
			logger.Error(err),
		)
		return &Service{loadErr: err, log: log}
	}

	log.Info("Model loaded",
		logger.String("run_id", pair.Info.RunID),
		logger.Int("features", pair.Info.Features),
	)
	return New(pair, log)
}

// New wraps an already loaded pair
func New(pair *artifact.Pair, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if pair == nil {
		return &Service{loadErr: ErrModelNotLoaded, log: log}
	}
	return &Service{
		vectorizer: pair.Vectorizer,
		classifier: pair.Classifier,
		info:       pair.Info,
		log:        log,
	}
}

// Ready reports whether a model is loaded
func (s *Service) Ready() bool {
	return s.vectorizer != nil && s.classifier != nil
}

// LoadError returns why the model is not loaded, or nil
func (s *Service) LoadError() error {
	if s.Ready() {
		return nil
	}
	return s.loadErr
}

// Info describes the loaded model; zero when degraded
func (s *Service) Info() model.ModelInfo {
	return s.info
}

// Classify scores title and content joined by a space
func (s *Service) Classify(ctx context.Context, title, content string) (*model.Prediction, error) {
	if !s.Ready() {
		return nil, ErrModelNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x, err := s.vectorizer.Transform(title + " " + content)
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	class, probs, err := s.classifier.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	isFake := class == model.ClassDeceptive
	confidence := math.Round(probs[class]*100*100) / 100

	return &model.Prediction{
		IsFake:      isFake,
		Confidence:  confidence,
		Explanation: Explain(isFake, confidence),
	}, nil
}

// Explain renders the fixed explanation template
func Explain(isFake bool, confidence float64) string {
	verdict := "real"
	if isFake {
		verdict = "fake"
	}
	return fmt.Sprintf("This news article is classified as %s with %s%% confidence. "+
		"The model analyzed the text content and title to make this determination.",
		verdict, formatPercent(confidence))
}

// formatPercent prints the shortest decimal form, keeping one fractional
// digit for whole numbers (100.0, 87.5, 61.23)
func formatPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Close releases the loaded model
func (s *Service) Close() error {
	s.log.Debug("Inference service closed", logger.Bool("model_loaded", s.Ready()))
	return nil
}
