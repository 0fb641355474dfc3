package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/truthlens/internal/api"
	"github.com/ppiankov/truthlens/internal/logger"
	"github.com/ppiankov/truthlens/internal/service"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Long: `Serve loads the model artifacts once and exposes:

  GET  /          welcome message
  POST /classify  {"title": "...", "content": "..."} -> {is_fake, confidence, explanation}
  GET  /health    liveness and model status
  GET  /metrics   Prometheus metrics

If the artifacts are missing or do not belong together the server still
starts; /classify then answers 500 until a model is trained and the
server restarted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "listen host")
	serveCmd.Flags().Int("port", 0, "listen port")
	serveCmd.Flags().StringSlice("allowed-origins", nil, "CORS allowed origins")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.allowed_origins", serveCmd.Flags().Lookup("allowed-origins"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	svc := service.Load(cfg.Model, log)
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn("Failed to close inference service", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cfg.Server, svc, log)
	return server.Run(ctx)
}
