package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/truthlens/internal/model"
)

func TestRegisterDefaults_EnvOverride(t *testing.T) {
	v := viper.New()
	if err := registerDefaults(v, model.DefaultConfig()); err != nil {
		t.Fatalf("registerDefaults: %v", err)
	}
	v.SetEnvPrefix("TRUTHLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	t.Setenv("TRUTHLENS_SERVER_PORT", "9100")
	t.Setenv("TRUTHLENS_TRAINING_C", "0.5")

	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("server.port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Training.C != 0.5 {
		t.Errorf("training.c = %v, want 0.5", cfg.Training.C)
	}
	if cfg.Training.MaxFeatures != 5000 || cfg.Training.Seed != 42 {
		t.Errorf("defaults lost: %+v", cfg.Training)
	}
	if cfg.HTTP.Timeout != 2*time.Minute {
		t.Errorf("http.timeout = %v, want 2m", cfg.HTTP.Timeout)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("allowed origins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".truthlens", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "# truthlens configuration") {
		t.Error("missing header comment")
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid YAML: %v", err)
	}
	if cfg.Dataset.URL != model.DefaultConfig().Dataset.URL {
		t.Errorf("dataset url = %q", cfg.Dataset.URL)
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}
}
