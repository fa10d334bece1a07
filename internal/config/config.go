// Package config loads runtime configuration with koanf, layering
// defaults, an optional YAML file, then environment variables — the
// same precedence and provider stack as the teacher's own config
// loader, adapted to this system's flat environment variable list.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	Port                 string
	OpenRouterAPIKey     string
	OpenRouterTestKey    string
	YouTubeAPIKey        string
	JWTSecret            string
	DefaultAdminPassword string
	NodeEnv              string

	DatabasePath       string
	OutputRoot         string
	TTSWorkerPath      string
	IngestThreshold    int
	EventRetentionDays int
	SpeechSubject      string // CSpanSource's title filter; empty means unfiltered

	OTelEndpoint string
}

// ConfigPathEnvVar overrides the default config file search, mirroring
// the teacher's CONFIG_PATH convention.
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml"}

func defaults() Config {
	return Config{
		Port:               "3000",
		NodeEnv:            "development",
		DatabasePath:       "./data/archive.db",
		OutputRoot:         "./data",
		TTSWorkerPath:      "tts-worker",
		IngestThreshold:    10,
		EventRetentionDays: 30,
	}
}

// Load resolves configuration in precedence order: defaults, an
// optional YAML config file, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")
	d := defaults()

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyMap), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{
		Port:                 stringOr(k.String("port"), d.Port),
		OpenRouterAPIKey:     k.String("openrouter_api_key"),
		OpenRouterTestKey:    k.String("openrouter_test_key"),
		YouTubeAPIKey:        k.String("youtube_api_key"),
		JWTSecret:            k.String("jwt_secret"),
		DefaultAdminPassword: k.String("default_admin_password"),
		NodeEnv:              stringOr(k.String("node_env"), d.NodeEnv),
		DatabasePath:         stringOr(k.String("database_path"), d.DatabasePath),
		OutputRoot:           stringOr(k.String("output_root"), d.OutputRoot),
		TTSWorkerPath:        stringOr(k.String("tts_worker_path"), d.TTSWorkerPath),
		IngestThreshold:      intOr(k.String("ingest_threshold"), d.IngestThreshold),
		EventRetentionDays:   intOr(k.String("event_retention_days"), d.EventRetentionDays),
		SpeechSubject:        k.String("speech_subject"),
		OTelEndpoint:         k.String("otel_exporter_otlp_endpoint"),
	}

	return cfg, nil
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// envKeyMap maps an UPPER_SNAKE environment variable name directly to
// its lower_snake koanf key; the variable names spec.md §6.1 lists are
// already the config keys, so no structural transform is needed.
func envKeyMap(s string) string {
	return toLower(s)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func intOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// EventRetention returns EventRetentionDays as a duration for pruning.
func (c *Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}
