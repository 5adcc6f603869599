package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Record store; persistence is off when StoreURL is empty.
	StoreURL    string
	StoreAPIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int
	PageWorkers  int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultChunkSize    int
	DefaultChunkOverlap int

	// Job state
	JobTTL time.Duration

	// Outline
	NormalizeLineFonts bool

	// Rolling window for pipeline timing stats.
	StatsWindow int
}

const (
	defaultPort           = "8090"
	defaultWorkerCount    = 4
	defaultMaxQueueSize   = 100
	defaultPageWorkers    = 4
	defaultMaxUploadBytes = 52428800 // 50MB
	defaultChunkSize      = 1500
	defaultChunkOverlap   = 200
	defaultJobTTL         = time.Hour
	defaultStatsWindow    = 1000
)

// Load reads configuration from the environment.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", defaultPort)
	v.SetDefault("API_KEY", "")
	v.SetDefault("STORE_URL", "")
	v.SetDefault("STORE_API_KEY", "")
	v.SetDefault("WORKER_COUNT", defaultWorkerCount)
	v.SetDefault("MAX_QUEUE_SIZE", defaultMaxQueueSize)
	v.SetDefault("PAGE_WORKERS", defaultPageWorkers)
	v.SetDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	v.SetDefault("DEFAULT_CHUNK_SIZE", defaultChunkSize)
	v.SetDefault("DEFAULT_CHUNK_OVERLAP", defaultChunkOverlap)
	v.SetDefault("JOB_TTL", defaultJobTTL)
	v.SetDefault("NORMALIZE_LINE_FONTS", false)
	v.SetDefault("STATS_WINDOW", defaultStatsWindow)

	cfg := Config{
		Port: v.GetString("PORT"),

		APIKey: v.GetString("API_KEY"),

		StoreURL:    v.GetString("STORE_URL"),
		StoreAPIKey: v.GetString("STORE_API_KEY"),

		WorkerCount:  v.GetInt("WORKER_COUNT"),
		MaxQueueSize: v.GetInt("MAX_QUEUE_SIZE"),
		PageWorkers:  v.GetInt("PAGE_WORKERS"),

		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),

		DefaultChunkSize:    v.GetInt("DEFAULT_CHUNK_SIZE"),
		DefaultChunkOverlap: v.GetInt("DEFAULT_CHUNK_OVERLAP"),

		JobTTL: v.GetDuration("JOB_TTL"),

		NormalizeLineFonts: v.GetBool("NORMALIZE_LINE_FONTS"),

		StatsWindow: v.GetInt("STATS_WINDOW"),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = defaultMaxQueueSize
	}
	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = defaultPageWorkers
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = defaultChunkSize
	}
	if cfg.DefaultChunkOverlap < 0 {
		cfg.DefaultChunkOverlap = defaultChunkOverlap
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = defaultJobTTL
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = defaultStatsWindow
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	if c.StoreURL != "" && c.StoreAPIKey == "" {
		return fmt.Errorf("STORE_API_KEY is required when STORE_URL is set")
	}
	if c.DefaultChunkOverlap >= c.DefaultChunkSize {
		return fmt.Errorf("DEFAULT_CHUNK_OVERLAP (%d) must be smaller than DEFAULT_CHUNK_SIZE (%d)", c.DefaultChunkOverlap, c.DefaultChunkSize)
	}
	return nil
}

// StoreEnabled reports whether records are persisted.
func (c Config) StoreEnabled() bool {
	return c.StoreURL != ""
}
