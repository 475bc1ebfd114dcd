// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Job system configuration: defaults, YAML loading, environment overrides and
// validation.

package control

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-jobs/api"
)

// maxJobSlots bounds MaxJobs so the version table stays a flat array.
const maxJobSlots = 1 << 20

// Config holds parameters immutable per run. Only LogLevel can change at
// runtime, through the Control interface.
type Config struct {
	Workers       int           `yaml:"workers"`         // Number of worker threads
	MaxJobs       int           `yaml:"max_jobs"`        // Job slots (queued + running)
	PollInterval  time.Duration `yaml:"poll_interval"`   // Extra periodic dispatch pass; 0 = event-driven only
	Inline        bool          `yaml:"inline"`          // Run jobs synchronously inside CreateJob
	LockOSThreads bool          `yaml:"lock_os_threads"` // Dedicated, named OS thread per worker
	ThreadName    string        `yaml:"thread_name"`     // Worker thread name
	LogLevel      string        `yaml:"log_level"`       // logrus level name
	RetryRate     float64       `yaml:"retry_rate"`      // CreateJobWait attempts per second
	RetryBurst    int           `yaml:"retry_burst"`     // CreateJobWait burst
	WaitInterval  time.Duration `yaml:"wait_interval"`   // Wait polling period
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		Workers:       16,           // matches the engine default
		MaxJobs:       1024,         // matches the engine default
		PollInterval:  0,            // event-driven dispatch
		Inline:        false,        // threaded by default
		LockOSThreads: true,         // one OS thread per worker
		ThreadName:    "job_worker", // visible in top -H / debuggers
		LogLevel:      "info",
		RetryRate:     1000,
		RetryBurst:    1,
		WaitInterval:  time.Millisecond,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates it.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Env variable names understood by ApplyEnv.
const (
	EnvWorkers      = "JOBS_WORKERS"
	EnvMaxJobs      = "JOBS_MAX_JOBS"
	EnvPollInterval = "JOBS_POLL_INTERVAL"
	EnvInline       = "JOBS_INLINE"
	EnvLogLevel     = "JOBS_LOG_LEVEL"
)

// ApplyEnv overrides fields from JOBS_* environment variables.
func (c *Config) ApplyEnv() error {
	var errs []error
	if v, ok := os.LookupEnv(EnvWorkers); ok {
		if n, err := strconv.Atoi(v); err != nil {
			errs = append(errs, envErr(EnvWorkers, err))
		} else {
			c.Workers = n
		}
	}
	if v, ok := os.LookupEnv(EnvMaxJobs); ok {
		if n, err := strconv.Atoi(v); err != nil {
			errs = append(errs, envErr(EnvMaxJobs, err))
		} else {
			c.MaxJobs = n
		}
	}
	if v, ok := os.LookupEnv(EnvPollInterval); ok {
		if d, err := time.ParseDuration(v); err != nil {
			errs = append(errs, envErr(EnvPollInterval, err))
		} else {
			c.PollInterval = d
		}
	}
	if v, ok := os.LookupEnv(EnvInline); ok {
		if b, err := strconv.ParseBool(v); err != nil {
			errs = append(errs, envErr(EnvInline, err))
		} else {
			c.Inline = b
		}
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	return errors.Join(errs...)
}

func envErr(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}

// Validate checks ranges and returns an *api.Error wrapping api.ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(field string, value any, why string) error {
		return api.WrapError(api.ErrCodeInvalidArgument, api.ErrInvalidConfig, why).
			WithContext("field", field).
			WithContext("value", value)
	}
	if !c.Inline && c.Workers < 1 {
		return invalid("workers", c.Workers, "at least one worker is required")
	}
	if c.MaxJobs < 1 || c.MaxJobs > maxJobSlots {
		return invalid("max_jobs", c.MaxJobs, fmt.Sprintf("must be in [1, %d]", maxJobSlots))
	}
	if c.PollInterval < 0 {
		return invalid("poll_interval", c.PollInterval, "must not be negative")
	}
	if c.RetryRate <= 0 {
		return invalid("retry_rate", c.RetryRate, "must be positive")
	}
	if c.RetryBurst < 1 {
		return invalid("retry_burst", c.RetryBurst, "must be at least 1")
	}
	if c.WaitInterval <= 0 {
		return invalid("wait_interval", c.WaitInterval, "must be positive")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level", c.LogLevel, err.Error())
	}
	return nil
}

// ToMap flattens the config for ConfigStore snapshots.
func (c *Config) ToMap() map[string]any {
	return map[string]any{
		"workers":         c.Workers,
		"max_jobs":        c.MaxJobs,
		"poll_interval":   c.PollInterval.String(),
		"inline":          c.Inline,
		"lock_os_threads": c.LockOSThreads,
		"thread_name":     c.ThreadName,
		"log_level":       c.LogLevel,
		"retry_rate":      c.RetryRate,
		"retry_burst":     c.RetryBurst,
		"wait_interval":   c.WaitInterval.String(),
	}
}
