package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/service"
	"github.com/ppiankov/truthlens/internal/worker"
)

var (
	predictTitle   string
	predictContent string
	predictFile    string
	predictJSON    bool
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Classify statements offline with the trained model",
	Long: `Predict classifies a single statement or every line of a file without
starting the HTTP server. File lines are "title<TAB>content" or just content;
blank lines and lines starting with # are skipped.

Example:
  truthlens predict --title "Breaking" --content "Scientists confirm the earth is flat"
  truthlens predict --file statements.txt --workers 8 --json`,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVar(&predictTitle, "title", "", "statement title")
	predictCmd.Flags().StringVar(&predictContent, "content", "", "statement content")
	predictCmd.Flags().StringVarP(&predictFile, "file", "f", "", "file with one statement per line")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "print results as JSON lines")
	predictCmd.Flags().Int("workers", 0, "number of concurrent workers for --file")

	_ = viper.BindPFlag("concurrency.workers", predictCmd.Flags().Lookup("workers"))
}

type predictOutput struct {
	Line    int    `json:"line,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	*model.Prediction
	Error string `json:"error,omitempty"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	if predictFile == "" && predictTitle == "" && predictContent == "" {
		return errors.New("provide --title/--content or --file")
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	svc := service.Load(cfg.Model, log)
	defer func() { _ = svc.Close() }()
	if !svc.Ready() {
		return fmt.Errorf("%w: %v", service.ErrModelNotLoaded, svc.LoadError())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if predictFile == "" {
		prediction, err := svc.Classify(ctx, predictTitle, predictContent)
		if err != nil {
			return err
		}
		return printPrediction(predictOutput{Title: predictTitle, Content: predictContent, Prediction: prediction})
	}

	predictor := worker.NewBatchPredictor(svc, cfg.Concurrency.Workers)
	results, err := predictor.PredictFile(ctx, predictFile)
	if err != nil {
		return err
	}

	failures := 0
	for _, r := range results {
		out := predictOutput{Line: r.Item.Line, Title: r.Item.Title, Content: r.Item.Content, Prediction: r.Prediction}
		if r.Error != nil {
			failures++
			out.Error = r.Error.Error()
		}
		if err := printPrediction(out); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "\n  Total: %d  Failures: %d\n", len(results), failures)
	if failures > 0 {
		return fmt.Errorf("%d of %d statements failed", failures, len(results))
	}
	return nil
}

func printPrediction(out predictOutput) error {
	if predictJSON {
		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	prefix := ""
	if out.Line > 0 {
		prefix = fmt.Sprintf("line %d: ", out.Line)
	}
	if out.Error != "" {
		fmt.Printf("%s✗ %s\n", prefix, out.Error)
		return nil
	}

	verdict := "REAL"
	if out.IsFake {
		verdict = "FAKE"
	}
	fmt.Printf("%s%s (%.2f%%) %s\n", prefix, verdict, out.Confidence, out.Explanation)
	return nil
}
