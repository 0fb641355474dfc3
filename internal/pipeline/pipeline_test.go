package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/truthlens/internal/artifact"
	"github.com/ppiankov/truthlens/internal/dataset"
	"github.com/ppiankov/truthlens/internal/model"
)

var (
	truthfulTemplates = []string{
		"Official figures show unemployment fell to %d percent in the state",
		"The city budget grew by %d million dollars according to audited reports",
		"Census data shows the county population reached %d thousand residents",
	}
	deceptiveTemplates = []string{
		"Secret plan will confiscate every gun within %d days says blogger",
		"Vaccines secretly contain %d microchips to control your mind",
		"Aliens rigged the election with %d invisible ballots",
	}
)

func syntheticStatements(n int) []model.Statement {
	statements := make([]model.Statement, 0, n+2)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			tpl := truthfulTemplates[i%len(truthfulTemplates)]
			statements = append(statements, model.Statement{Text: fmt.Sprintf(tpl, i), Label: model.NewLabel(model.ClassTruthful)})
		} else {
			tpl := deceptiveTemplates[i%len(deceptiveTemplates)]
			statements = append(statements, model.Statement{Text: fmt.Sprintf(tpl, i), Label: model.NewLabel(model.ClassDeceptive)})
		}
	}
	// Rows whose raw label had no mapping
	statements = append(statements,
		model.Statement{Text: "Hillary Clinton agrees with John McCain"},
		model.Statement{Text: "The senator changed position on trade"},
	)
	return statements
}

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.Dataset.ProcessedFile = filepath.Join(dir, "dataset", "processed_liar.csv")
	cfg.Model.Dir = filepath.Join(dir, "model")
	cfg.Model.VectorizerFile = filepath.Join(dir, "model", "vectorizer.json")
	cfg.Model.ClassifierFile = filepath.Join(dir, "model", "fake_news_model.json")
	cfg.Model.ConfusionMatrixFile = filepath.Join(dir, "model", "confusion_matrix.png")
	cfg.Model.MetricsFile = filepath.Join(dir, "model", "metrics.json")
	cfg.Concurrency.Workers = 2
	return cfg
}

func TestPipeline_Run(t *testing.T) {
	cfg := testConfig(t)
	if err := dataset.WriteProcessed(cfg.Dataset.ProcessedFile, syntheticStatements(60)); err != nil {
		t.Fatalf("WriteProcessed: %v", err)
	}

	var out bytes.Buffer
	result, err := NewPipeline(cfg, nil, &out).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Rows != 62 || result.DroppedRows != 2 {
		t.Errorf("rows = %d dropped = %d, want 62 and 2", result.Rows, result.DroppedRows)
	}
	if result.TestRows != 12 || result.TrainRows != 48 {
		t.Errorf("split = %d/%d, want 48/12", result.TrainRows, result.TestRows)
	}
	if result.Features == 0 || result.Features > cfg.Training.MaxFeatures {
		t.Errorf("unexpected feature count %d", result.Features)
	}
	if result.Report.Total != 12 {
		t.Errorf("report total = %d, want 12", result.Report.Total)
	}

	for _, path := range []string{result.VectorizerPath, result.ClassifierPath, result.PlotPath, result.MetricsPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to exist: %v", path, err)
		}
	}

	printed := out.String()
	if !strings.Contains(printed, "Training set shape: (48, ") || !strings.Contains(printed, "Test set shape: (12, ") {
		t.Errorf("missing shapes in output:\n%s", printed)
	}
	if !strings.Contains(printed, "Classification Report") {
		t.Errorf("missing report in output:\n%s", printed)
	}

	pair, err := artifact.LoadPair(result.VectorizerPath, result.ClassifierPath)
	if err != nil {
		t.Fatalf("LoadPair: %v", err)
	}
	if pair.Info.RunID != result.RunID {
		t.Errorf("artifact run id %q, want %q", pair.Info.RunID, result.RunID)
	}
}

func TestPipeline_DeterministicSplit(t *testing.T) {
	statements := syntheticStatements(40)

	first, err := NewPipeline(testConfig(t), nil, nil).Train(context.Background(), statements)
	if err != nil {
		t.Fatalf("first Train: %v", err)
	}
	second, err := NewPipeline(testConfig(t), nil, nil).Train(context.Background(), statements)
	if err != nil {
		t.Fatalf("second Train: %v", err)
	}

	if first.TrainRows != second.TrainRows || first.TestRows != second.TestRows {
		t.Errorf("split sizes differ: %d/%d vs %d/%d", first.TrainRows, first.TestRows, second.TrainRows, second.TestRows)
	}
	if first.Report.Confusion != second.Report.Confusion {
		t.Errorf("confusion matrices differ: %v vs %v", first.Report.Confusion, second.Report.Confusion)
	}

	a, err := artifact.LoadPair(first.VectorizerPath, first.ClassifierPath)
	if err != nil {
		t.Fatal(err)
	}
	b, err := artifact.LoadPair(second.VectorizerPath, second.ClassifierPath)
	if err != nil {
		t.Fatal(err)
	}
	if a.Vectorizer.Fingerprint() != b.Vectorizer.Fingerprint() {
		t.Error("vectorizer fitted on the same split should be identical")
	}
}

func TestPipeline_MissingDataset(t *testing.T) {
	cfg := testConfig(t)
	if _, err := NewPipeline(cfg, nil, nil).Run(context.Background()); err == nil {
		t.Error("expected error when processed dataset is missing")
	}
}
