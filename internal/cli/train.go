package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/truthlens/internal/pipeline"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the classifier on the processed dataset",
	Long: `Train splits the processed dataset (80/20, fixed seed), fits the TF-IDF
vectorizer and the class-balanced logistic regression, prints the
classification report and writes the model artifacts, the confusion
matrix plot and metrics.json to the model directory.`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().Int("max-features", 0, "vocabulary size limit")
	trainCmd.Flags().Int("max-iter", 0, "maximum optimizer iterations")
	trainCmd.Flags().Int64("seed", 0, "train/test split seed")

	_ = viper.BindPFlag("training.max_features", trainCmd.Flags().Lookup("max-features"))
	_ = viper.BindPFlag("training.max_iter", trainCmd.Flags().Lookup("max-iter"))
	_ = viper.BindPFlag("training.seed", trainCmd.Flags().Lookup("seed"))
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "⚙️  Training on %s...\n", cfg.Dataset.ProcessedFile)

	result, err := pipeline.NewPipeline(cfg, log, os.Stdout).Run(ctx)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Model saved to %s\n", result.ClassifierPath)
	fmt.Fprintf(os.Stderr, "✓ Vectorizer saved to %s\n", result.VectorizerPath)
	fmt.Fprintf(os.Stderr, "✓ Confusion matrix saved to %s\n", result.PlotPath)
	if result.MetricsPath != "" {
		fmt.Fprintf(os.Stderr, "✓ Metrics saved to %s\n", result.MetricsPath)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "  Run ID:     %s\n", result.RunID)
		fmt.Fprintf(os.Stderr, "  Iterations: %d (%s)\n", result.Fit.Iterations, result.Fit.Status)
	}
	return nil
}
