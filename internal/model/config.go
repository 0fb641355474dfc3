package model

import "time"

// Config holds all truthlens settings. Field tags serve both viper (mapstructure)
// and the YAML written by `truthlens config init`.
type Config struct {
	Dataset      DatasetConfig      `mapstructure:"dataset" yaml:"dataset"`
	Model        ModelConfig        `mapstructure:"model" yaml:"model"`
	Training     TrainingConfig     `mapstructure:"training" yaml:"training"`
	HTTP         HTTPConfig         `mapstructure:"http" yaml:"http"`
	Cache        CacheConfig        `mapstructure:"cache" yaml:"cache"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting" yaml:"rate_limiting"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Concurrency  ConcurrencyConfig  `mapstructure:"concurrency" yaml:"concurrency"`
}

// DatasetConfig locates the raw and processed LIAR files
type DatasetConfig struct {
	URL           string `mapstructure:"url" yaml:"url"`
	Dir           string `mapstructure:"dir" yaml:"dir"`
	TrainFile     string `mapstructure:"train_file" yaml:"train_file"`
	ProcessedFile string `mapstructure:"processed_file" yaml:"processed_file"`
}

// ModelConfig locates the persisted artifacts and training reports
type ModelConfig struct {
	Dir                 string `mapstructure:"dir" yaml:"dir"`
	ClassifierFile      string `mapstructure:"classifier_file" yaml:"classifier_file"`
	VectorizerFile      string `mapstructure:"vectorizer_file" yaml:"vectorizer_file"`
	ConfusionMatrixFile string `mapstructure:"confusion_matrix_file" yaml:"confusion_matrix_file"`
	MetricsFile         string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

// TrainingConfig carries the vectorizer and classifier hyperparameters
type TrainingConfig struct {
	TestSize    float64 `mapstructure:"test_size" yaml:"test_size"`
	Seed        int64   `mapstructure:"seed" yaml:"seed"`
	MaxFeatures int     `mapstructure:"max_features" yaml:"max_features"`
	NGramMin    int     `mapstructure:"ngram_min" yaml:"ngram_min"`
	NGramMax    int     `mapstructure:"ngram_max" yaml:"ngram_max"`
	StopWords   string  `mapstructure:"stop_words" yaml:"stop_words"` // "english" or "" for none
	C           float64 `mapstructure:"c" yaml:"c"`
	MaxIter     int     `mapstructure:"max_iter" yaml:"max_iter"`
	Tolerance   float64 `mapstructure:"tolerance" yaml:"tolerance"`
	ClassWeight string  `mapstructure:"class_weight" yaml:"class_weight"` // "balanced" or "" for uniform
}

// HTTPConfig configures the dataset download client
type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	HTTPProxy     string        `mapstructure:"http_proxy" yaml:"http_proxy"`
	HTTPSProxy    string        `mapstructure:"https_proxy" yaml:"https_proxy"`
	RespectRobots bool          `mapstructure:"respect_robots" yaml:"respect_robots"`
}

// CacheConfig configures the downloaded archive cache
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// RateLimitingConfig throttles outbound download requests per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size" yaml:"burst_size"`
}

// ServerConfig configures the inference API
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	Debug           bool          `mapstructure:"debug" yaml:"debug"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// ConcurrencyConfig sizes the worker pools used for batch vectorization and prediction
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// DefaultConfig returns the configuration matching the reference training setup
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			URL:           "https://www.cs.ucsb.edu/~william/data/liar_dataset.zip",
			Dir:           "dataset",
			TrainFile:     "dataset/train.tsv",
			ProcessedFile: "dataset/processed_liar.csv",
		},
		Model: ModelConfig{
			Dir:                 "model",
			ClassifierFile:      "model/fake_news_model.json",
			VectorizerFile:      "model/vectorizer.json",
			ConfusionMatrixFile: "model/confusion_matrix.png",
			MetricsFile:         "model/metrics.json",
		},
		Training: TrainingConfig{
			TestSize:    0.2,
			Seed:        42,
			MaxFeatures: 5000,
			NGramMin:    1,
			NGramMax:    2,
			StopWords:   "english",
			C:           1.0,
			MaxIter:     1000,
			Tolerance:   1e-4,
			ClassWeight: "balanced",
		},
		HTTP: HTTPConfig{
			Timeout:       2 * time.Minute,
			UserAgent:     "truthlens/0.1 (+https://github.com/ppiankov/truthlens)",
			MaxBodyBytes:  100 << 20,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".truthlens-cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         1,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			AllowedOrigins:  []string{"http://localhost:3000"},
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}
