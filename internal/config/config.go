package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the triage service's runtime settings, all sourced from the
// environment.
type Config struct {
	Addr        string
	DatabaseURL string

	// AuthSecret enables HS256 bearer auth on intake routes when non-empty.
	AuthSecret string
	AuthIssuer string

	// KafkaBrokers enables result streaming when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// ArchiveBucket enables S3 archiving of classification records when
	// non-empty.
	ArchiveBucket string
	ArchivePrefix string

	// ResponseTablePath points at a YAML override of the response profiles.
	ResponseTablePath string

	FilterByBusinessUnit bool
	FilterByRegion       bool
}

const (
	defaultAddr       = ":8070"
	defaultKafkaTopic = "triage.classifications"
)

func Load() (Config, error) {
	cfg := Config{
		Addr:                 getEnv("TRIAGE_ADDR", defaultAddr),
		DatabaseURL:          firstNonEmpty(os.Getenv("TRIAGE_DATABASE_URL"), os.Getenv("DATABASE_URL")),
		AuthSecret:           os.Getenv("TRIAGE_AUTH_SECRET"),
		AuthIssuer:           os.Getenv("TRIAGE_AUTH_ISSUER"),
		KafkaBrokers:         splitList(os.Getenv("TRIAGE_KAFKA_BROKERS")),
		KafkaTopic:           getEnv("TRIAGE_KAFKA_TOPIC", defaultKafkaTopic),
		ArchiveBucket:        os.Getenv("TRIAGE_ARCHIVE_BUCKET"),
		ArchivePrefix:        os.Getenv("TRIAGE_ARCHIVE_PREFIX"),
		ResponseTablePath:    os.Getenv("TRIAGE_RESPONSE_TABLE"),
		FilterByBusinessUnit: getBool("TRIAGE_FILTER_BUSINESS_UNIT", false),
		FilterByRegion:       getBool("TRIAGE_FILTER_REGION", false),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL or TRIAGE_DATABASE_URL required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
