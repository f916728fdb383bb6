package config

import (
	"os"
	"strconv"
	"time"
)

// Default delivery window and sweep settings
const (
	DefaultDeliveryWeekday  = time.Monday
	DefaultDeliveryHour     = 9 // Local hour of day (0-23)
	DefaultSweepConcurrency = 4
	DefaultRecipientTimeout = 30 * time.Second
)

// Config holds the runtime configuration for the delivery engine
type Config struct {
	// Local weekday on which weekly deliveries go out
	DeliveryWeekday time.Weekday
	// Local hour (single-hour window) in which deliveries go out
	DeliveryHour int
	// Maximum number of recipients processed in parallel during a sweep
	SweepConcurrency int
	// Per-recipient budget covering generation, send and state advance
	RecipientTimeout time.Duration
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		DeliveryWeekday:  DefaultDeliveryWeekday,
		DeliveryHour:     DefaultDeliveryHour,
		SweepConcurrency: DefaultSweepConcurrency,
		RecipientTimeout: DefaultRecipientTimeout,
	}
}

// FromEnv returns the default configuration with environment overrides applied
func FromEnv() *Config {
	cfg := Default()

	if s := os.Getenv("DELIVERY_WEEKDAY"); s != "" {
		if d, err := strconv.Atoi(s); err == nil && d >= 0 && d <= 6 {
			cfg.DeliveryWeekday = time.Weekday(d)
		}
	}
	if s := os.Getenv("DELIVERY_HOUR"); s != "" {
		if h, err := strconv.Atoi(s); err == nil && h >= 0 && h <= 23 {
			cfg.DeliveryHour = h
		}
	}
	if s := os.Getenv("SWEEP_CONCURRENCY"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.SweepConcurrency = n
		}
	}
	if s := os.Getenv("RECIPIENT_TIMEOUT_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.RecipientTimeout = time.Duration(n) * time.Second
		}
	}

	return cfg
}
