package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/truthlens/internal/cache"
	"github.com/ppiankov/truthlens/internal/dataset"
	"github.com/ppiankov/truthlens/internal/logger"
	"github.com/ppiankov/truthlens/internal/model"
)

var (
	noCache        bool
	noRobots       bool
	skipPreprocess bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the LIAR dataset and preprocess it",
	Long: `Download fetches the LIAR dataset archive, extracts it into the dataset
directory and converts train.tsv into the processed text,label CSV.

Example:
  truthlens download
  truthlens download --no-cache --https-proxy http://proxy:3128
  truthlens download --skip-preprocess`,
	RunE: runDownload,
}

// preprocessCmd represents the preprocess command
var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Convert the raw LIAR TSV into the processed CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		return preprocess(cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(preprocessCmd)

	downloadCmd.Flags().String("url", "", "dataset archive URL")
	downloadCmd.Flags().String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	downloadCmd.Flags().String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	downloadCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	downloadCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip the robots.txt check")
	downloadCmd.Flags().BoolVar(&skipPreprocess, "skip-preprocess", false, "only download and extract")

	_ = viper.BindPFlag("dataset.url", downloadCmd.Flags().Lookup("url"))
	_ = viper.BindPFlag("http.http_proxy", downloadCmd.Flags().Lookup("http-proxy"))
	_ = viper.BindPFlag("http.https_proxy", downloadCmd.Flags().Lookup("https-proxy"))
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if noCache {
		cfg.Cache.Enabled = false
	}
	if noRobots {
		cfg.HTTP.RespectRobots = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "⚙️  Downloading dataset from %s...\n", cfg.Dataset.URL)

	downloader := dataset.NewDownloader(dataset.DownloaderOptions{
		HTTP:      cfg.HTTP,
		RateLimit: cfg.RateLimiting,
		Cache:     cache.New(cfg.Cache),
		Logger:    log,
	})
	files, err := downloader.Download(ctx, cfg.Dataset.URL, cfg.Dataset.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to download dataset: %v\n", err)
		return fmt.Errorf("download dataset: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Dataset downloaded and extracted (%d files) into %s\n", len(files), cfg.Dataset.Dir)

	if skipPreprocess {
		return nil
	}
	return preprocess(cfg, log)
}

func preprocess(cfg *model.Config, log logger.Logger) error {
	fmt.Fprintf(os.Stderr, "⚙️  Preprocessing %s...\n", cfg.Dataset.TrainFile)

	stats, err := dataset.Preprocess(cfg.Dataset.TrainFile, cfg.Dataset.ProcessedFile)
	if err != nil {
		log.Error("Preprocessing failed", logger.Error(err))
		return fmt.Errorf("preprocess: %w", err)
	}

	log.Info("Dataset preprocessed",
		logger.String("output", cfg.Dataset.ProcessedFile),
		logger.Int("total", stats.Total),
		logger.Int("missing_labels", stats.Missing),
	)

	fmt.Printf("Processed dataset saved to %s\n", cfg.Dataset.ProcessedFile)
	fmt.Printf("Dataset statistics:\n")
	fmt.Printf("  Total samples:   %d\n", stats.Total)
	fmt.Printf("  Truthful (0):    %d\n", stats.Truthful)
	fmt.Printf("  Deceptive (1):   %d\n", stats.Deceptive)
	if stats.Missing > 0 {
		fmt.Printf("  Unmapped labels: %d (dropped at training time)\n", stats.Missing)
	}
	return nil
}
