package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/truthlens/internal/artifact"
	"github.com/ppiankov/truthlens/internal/dataset"
	"github.com/ppiankov/truthlens/internal/linear"
	"github.com/ppiankov/truthlens/internal/logger"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/score"
	"github.com/ppiankov/truthlens/internal/text"
)

// Pipeline orchestrates the training run: split, vectorize, fit, evaluate, persist
type Pipeline struct {
	config *model.Config
	log    logger.Logger
	out    io.Writer
	now    func() time.Time
}

// NewPipeline creates a pipeline. Progress and the classification report are
// written to out; structured events go to log.
func NewPipeline(cfg *model.Config, log logger.Logger, out io.Writer) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Pipeline{
		config: cfg,
		log:    log,
		out:    out,
		now:    time.Now,
	}
}

// Result summarises a completed training run
type Result struct {
	RunID          string
	Rows           int
	DroppedRows    int
	TrainRows      int
	TestRows       int
	Features       int
	Fit            linear.FitInfo
	Report         *score.Report
	VectorizerPath string
	ClassifierPath string
	PlotPath       string
	MetricsPath    string
}

// Metrics is the JSON document written next to the model artifacts
type Metrics struct {
	RunID       string        `json:"run_id"`
	CreatedAt   time.Time     `json:"created_at"`
	TrainRows   int           `json:"train_rows"`
	TestRows    int           `json:"test_rows"`
	DroppedRows int           `json:"dropped_rows"`
	Features    int           `json:"features"`
	Iterations  int           `json:"iterations"`
	Converged   bool          `json:"converged"`
	Report      *score.Report `json:"report"`
}

// Run reads the processed dataset and trains on it
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	statements, err := dataset.ReadProcessed(p.config.Dataset.ProcessedFile)
	if err != nil {
		return nil, fmt.Errorf("read processed dataset: %w", err)
	}
	return p.Train(ctx, statements)
}

// Train runs every stage after loading
func (p *Pipeline) Train(ctx context.Context, statements []model.Statement) (*Result, error) {
	tc := p.config.Training
	runID := artifact.NewRunID()
	started := p.now()

	// 1. Drop rows without a mapped label
	labeled, dropped := dataset.Labeled(statements)
	if dropped > 0 {
		p.log.Warn("Dropped statements without a label",
			logger.Int("dropped", dropped),
			logger.Int("kept", len(labeled)),
		)
	}

	// 2. Split
	train, test, err := dataset.Split(labeled, tc.TestSize, tc.Seed)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}

	// 3. Fit the vectorizer on training text only
	vec, err := text.NewVectorizer(text.Options{
		MaxFeatures: tc.MaxFeatures,
		NGramMin:    tc.NGramMin,
		NGramMax:    tc.NGramMax,
		StopWords:   tc.StopWords,
	})
	if err != nil {
		return nil, fmt.Errorf("create vectorizer: %w", err)
	}
	trainText, yTrain := columns(train)
	testText, yTest := columns(test)
	if err := vec.Fit(trainText); err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}

	workers := p.config.Concurrency.Workers
	XTrain, err := vec.TransformAll(ctx, trainText, workers)
	if err != nil {
		return nil, fmt.Errorf("transform train: %w", err)
	}
	XTest, err := vec.TransformAll(ctx, testText, workers)
	if err != nil {
		return nil, fmt.Errorf("transform test: %w", err)
	}

	fmt.Fprintf(p.out, "Training set shape: (%d, %d)\n", len(XTrain), vec.Dim())
	fmt.Fprintf(p.out, "Test set shape: (%d, %d)\n", len(XTest), vec.Dim())

	// 4. Fit the classifier
	clf := linear.New(linear.Options{
		C:           tc.C,
		MaxIter:     tc.MaxIter,
		Tolerance:   tc.Tolerance,
		ClassWeight: tc.ClassWeight,
	})
	fitInfo, err := clf.Fit(XTrain, yTrain)
	if err != nil {
		return nil, fmt.Errorf("fit classifier: %w", err)
	}
	p.log.Info("Classifier fitted",
		logger.String("run_id", runID),
		logger.Int("iterations", fitInfo.Iterations),
		logger.String("status", fitInfo.Status),
		logger.Float64("loss", fitInfo.Loss),
	)
	if !fitInfo.Converged {
		p.log.Warn("Classifier did not converge", logger.Int("max_iter", tc.MaxIter))
	}

	// 5. Evaluate on the held-out split
	yPred, err := clf.PredictAll(XTest)
	if err != nil {
		return nil, fmt.Errorf("predict test: %w", err)
	}
	report, err := score.Evaluate(yTest, yPred)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	fmt.Fprintf(p.out, "\nClassification Report:\n%s\n", report)

	// 6. Persist
	mc := p.config.Model
	if err := score.RenderConfusionMatrix(mc.ConfusionMatrixFile, report.Confusion); err != nil {
		return nil, fmt.Errorf("render confusion matrix: %w", err)
	}
	if err := artifact.SavePair(mc.VectorizerFile, mc.ClassifierFile, runID, started, vec, clf); err != nil {
		return nil, fmt.Errorf("save artifacts: %w", err)
	}

	metrics := Metrics{
		RunID:       runID,
		CreatedAt:   started.UTC(),
		TrainRows:   len(train),
		TestRows:    len(test),
		DroppedRows: dropped,
		Features:    vec.Dim(),
		Iterations:  fitInfo.Iterations,
		Converged:   fitInfo.Converged,
		Report:      report,
	}
	if mc.MetricsFile != "" {
		if err := artifact.WriteJSON(mc.MetricsFile, metrics); err != nil {
			return nil, fmt.Errorf("write metrics: %w", err)
		}
	}

	p.log.Info("Training complete",
		logger.String("run_id", runID),
		logger.Float64("accuracy", report.Accuracy),
		logger.Duration("elapsed", p.now().Sub(started)),
	)

	return &Result{
		RunID:          runID,
		Rows:           len(statements),
		DroppedRows:    dropped,
		TrainRows:      len(train),
		TestRows:       len(test),
		Features:       vec.Dim(),
		Fit:            fitInfo,
		Report:         report,
		VectorizerPath: mc.VectorizerFile,
		ClassifierPath: mc.ClassifierFile,
		PlotPath:       mc.ConfusionMatrixFile,
		MetricsPath:    mc.MetricsFile,
	}, nil
}

func columns(statements []model.Statement) ([]string, []int) {
	texts := make([]string, len(statements))
	labels := make([]int, len(statements))
	for i, st := range statements {
		texts[i] = st.Text
		labels[i] = st.Label.Value
	}
	return texts, labels
}
