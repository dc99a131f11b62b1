package config

import "time"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Limits    LimitsConfig    `koanf:"limits"`
	Batch     BatchConfig     `koanf:"batch"`
	Tasks     TasksConfig     `koanf:"tasks"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// Holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimit       int           `koanf:"rate_limit"`        // Uploads per client per window, 0 disables
	RateLimitWindow time.Duration `koanf:"rate_limit_window"` // Window of the upload rate limit
}

type LimitsConfig struct {
	MaxUploadBytes int64 `koanf:"max_upload_bytes"` // Largest single upload
	MaxEntries     int   `koanf:"max_entries"`      // Most entries accepted in one archive
	MaxExpanded    int64 `koanf:"max_expanded"`     // Largest total decompressed archive size
	MaxPixels      int   `koanf:"max_pixels"`       // Largest decoded image
}

type BatchConfig struct {
	MaxFiles     int   `koanf:"max_files"`      // Most files in one batch
	MaxFileBytes int64 `koanf:"max_file_bytes"` // Largest file in a batch
	Workers      int   `koanf:"workers"`        // Archives processed in parallel, 0 = min(GOMAXPROCS, 4)
}

// Holds task registry configuration
type TasksConfig struct {
	Retention     time.Duration `koanf:"retention"`      // Lifetime after the last state change
	SweepInterval time.Duration `koanf:"sweep_interval"` // How often expired tasks are removed
	Backend       string        `koanf:"backend"`        // memory, redis or badger
	RedisURL      string        `koanf:"redis_url"`
	BadgerPath    string        `koanf:"badger_path"` // Empty keeps badger in memory
	Shards        int           `koanf:"shards"`
}

type ArtifactsConfig struct {
	Dir      string `koanf:"dir"`
	OneTime  bool   `koanf:"one_time"` // Remove an artifact once downloaded
	Compress bool   `koanf:"compress"` // zstd at rest
	Level    uint8  `koanf:"level"`    // zstd level, 1-4
	Checksum string `koanf:"checksum"` // crc32-ieee, sha256 or empty
}

type LoggingConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Returns a Config struct with reasonable default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     time.Minute,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
			RateLimit:       30,
			RateLimitWindow: time.Minute,
		},
		Limits: LimitsConfig{
			MaxUploadBytes: 4 << 20,   // 4MB
			MaxEntries:     10000,     // 10k
			MaxExpanded:    512 << 20, // 512MB
			MaxPixels:      40_000_000,
		},
		Batch: BatchConfig{
			MaxFiles:     10,
			MaxFileBytes: 50 << 20, // 50MB
		},
		Tasks: TasksConfig{
			Retention:     5 * time.Minute,
			SweepInterval: time.Minute,
			Backend:       "memory",
			RedisURL:      "redis://localhost:6379/0",
			Shards:        64,
		},
		Artifacts: ArtifactsConfig{
			Dir:      "output",
			OneTime:  true,
			Compress: false,
			Level:    2,
			Checksum: "crc32-ieee",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
