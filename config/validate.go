package config

import "fmt"

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	if err := c.validateLimits(); err != nil {
		return fmt.Errorf("invalid limits configuration: %w", err)
	}

	if err := c.validateBatch(); err != nil {
		return fmt.Errorf("invalid batch configuration: %w", err)
	}

	if err := c.validateTasks(); err != nil {
		return fmt.Errorf("invalid tasks configuration: %w", err)
	}

	if err := c.validateArtifacts(); err != nil {
		return fmt.Errorf("invalid artifacts configuration: %w", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("addr is required")
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("timeouts must be greater than 0")
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}

	if c.Server.RateLimit > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("rate_limit_window must be greater than 0")
	}

	return nil
}

func (c *Config) validateLimits() error {
	if c.Limits.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be greater than 0")
	}

	if c.Limits.MaxEntries <= 0 {
		return fmt.Errorf("max_entries must be greater than 0")
	}

	if c.Limits.MaxExpanded <= 0 {
		return fmt.Errorf("max_expanded must be greater than 0")
	}

	if c.Limits.MaxPixels <= 0 {
		return fmt.Errorf("max_pixels must be greater than 0")
	}

	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be greater than 0")
	}

	if c.Batch.MaxFileBytes <= 0 {
		return fmt.Errorf("max_file_bytes must be greater than 0")
	}

	if c.Batch.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}

	return nil
}

func (c *Config) validateTasks() error {
	if c.Tasks.Retention <= 0 {
		return fmt.Errorf("retention must be greater than 0")
	}

	if c.Tasks.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be greater than 0")
	}

	if c.Tasks.Shards <= 0 {
		return fmt.Errorf("shards must be greater than 0")
	}

	switch c.Tasks.Backend {
	case "memory", "badger":
	case "redis":
		if c.Tasks.RedisURL == "" {
			return fmt.Errorf("redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown backend %q, use memory, redis or badger", c.Tasks.Backend)
	}

	return nil
}

func (c *Config) validateArtifacts() error {
	if c.Artifacts.Dir == "" {
		return fmt.Errorf("dir is required")
	}

	if c.Artifacts.Compress && (c.Artifacts.Level < 1 || c.Artifacts.Level > 4) {
		return fmt.Errorf("level must be between 1 and 4, got %d", c.Artifacts.Level)
	}

	switch c.Artifacts.Checksum {
	case "", "crc32-ieee", "sha256":
		return nil
	default:
		return fmt.Errorf("unsupported checksum %q", c.Artifacts.Checksum)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown level %q", c.Logging.Level)
	}
}
