package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            int
	CORSOrigin      string
	KafkaBrokers    []string
	ProcessingDelay time.Duration
	CompletedDelay  time.Duration
	Tracing         bool
}

func Default() Config {
	return Config{
		Port:            4000,
		CORSOrigin:      "*",
		KafkaBrokers:    nil,
		ProcessingDelay: 2 * time.Second,
		CompletedDelay:  10 * time.Second,
		Tracing:         true,
	}
}

// FromEnv layers environment overrides on the defaults. Malformed values
// keep the default rather than failing startup.
func FromEnv() Config {
	return fromEnv(Default())
}

func fromEnv(c Config) Config {
	if v := os.Getenv("ORDERS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("ORDERS_CORS_ORIGIN"); v != "" {
		c.CORSOrigin = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = splitBrokers(v)
	}
	if v := os.Getenv("ORDERS_PROCESSING_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.ProcessingDelay = d
		}
	}
	if v := os.Getenv("ORDERS_COMPLETED_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.CompletedDelay = d
		}
	}
	if v := os.Getenv("ORDERS_TRACING"); v != "" {
		switch v {
		case "1", "true", "TRUE":
			c.Tracing = true
		case "0", "false", "FALSE":
			c.Tracing = false
		}
	}
	return c
}

func splitBrokers(csv string) []string {
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
