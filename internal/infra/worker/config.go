// Package worker refreshes cached upstream data on a cron schedule so API
// requests are served from the shared cache.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	pkgconfig "truthlens/pkg/config"
)

// Config controls the cache-warming schedule.
type Config struct {
	// Schedule is a five-field cron expression. Default: "*/10 * * * *"
	Schedule string

	// Timezone is the IANA zone the schedule is evaluated in. Default: UTC
	Timezone string

	// JobTimeout bounds one warming run. Range: 10s-30m. Default: 2m
	JobTimeout time.Duration

	// HealthPort serves /health and /health/ready. Range: 1024-65535.
	// Default: 9091
	HealthPort int
}

// DefaultConfig refreshes every ten minutes, matching the metal prices TTL.
func DefaultConfig() Config {
	return Config{
		Schedule:   "*/10 * * * *",
		Timezone:   "UTC",
		JobTimeout: 2 * time.Minute,
		HealthPort: 9091,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if err := pkgconfig.ValidateCronSchedule(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	}
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := pkgconfig.ValidateDurationRange(c.JobTimeout, 10*time.Second, 30*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the schedule's time zone, UTC when it cannot be loaded.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv never fails: each invalid value is replaced by its
// default, logged and counted in metrics.
//
// Environment variables:
//   - WORKER_SCHEDULE
//   - WORKER_TIMEZONE
//   - WORKER_JOB_TIMEOUT
//   - WORKER_HEALTH_PORT
func LoadConfigFromEnv(logger *slog.Logger, metrics *Metrics) Config {
	def := DefaultConfig()
	cfg := Config{
		Schedule:   pkgconfig.GetEnvString("WORKER_SCHEDULE", def.Schedule),
		Timezone:   pkgconfig.GetEnvString("WORKER_TIMEZONE", def.Timezone),
		JobTimeout: pkgconfig.GetEnvDuration("WORKER_JOB_TIMEOUT", def.JobTimeout),
		HealthPort: pkgconfig.GetEnvInt("WORKER_HEALTH_PORT", def.HealthPort),
	}

	fallback := func(field, envKey string, err error) {
		metrics.RecordConfigFallback(field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("env_key", envKey),
			slog.String("invalid_value", strings.TrimSpace(os.Getenv(envKey))),
			slog.String("error", err.Error()))
	}

	if err := pkgconfig.ValidateCronSchedule(cfg.Schedule); err != nil {
		fallback("schedule", "WORKER_SCHEDULE", err)
		cfg.Schedule = def.Schedule
	}
	if err := pkgconfig.ValidateTimezone(cfg.Timezone); err != nil {
		fallback("timezone", "WORKER_TIMEZONE", err)
		cfg.Timezone = def.Timezone
	}
	if err := pkgconfig.ValidateDurationRange(cfg.JobTimeout, 10*time.Second, 30*time.Minute); err != nil {
		fallback("job_timeout", "WORKER_JOB_TIMEOUT", err)
		cfg.JobTimeout = def.JobTimeout
	}
	if err := pkgconfig.ValidateIntRange(cfg.HealthPort, 1024, 65535); err != nil {
		fallback("health_port", "WORKER_HEALTH_PORT", err)
		cfg.HealthPort = def.HealthPort
	}
	return cfg
}
