// Package config holds run configuration. The thresholds the evaluation
// policy depends on are deliberately configuration, not constants: they
// are tunable per deployment and per test.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full run configuration, loadable from YAML with
// defaults for every field.
type Config struct {
	Log    Log    `yaml:"log"`
	Fetch  Fetch  `yaml:"fetch"`
	Judge  Judge  `yaml:"judge"`
	Policy Policy `yaml:"policy"`

	// RegistryPath points at the domain registry JSON file. Empty means
	// run with an empty registry.
	RegistryPath string `yaml:"registry_path"`
}

// Log controls slog setup.
type Log struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Fetch bounds the evidence collector.
type Fetch struct {
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	ReadTimeoutSeconds    int    `yaml:"read_timeout_seconds"`
	PDFTimeoutSeconds     int    `yaml:"pdf_timeout_seconds"`
	SleepMillis           int    `yaml:"sleep_millis"` // politeness delay between fetches
	UserAgent             string `yaml:"user_agent"`
	CachePath             string `yaml:"cache_path"`
	CacheMaxAgeHours      int    `yaml:"cache_max_age_hours"`
	MaxAuxPages           int    `yaml:"max_aux_pages"`
	Browser               bool   `yaml:"browser"` // chromedp fallback for JS-rendered pages
}

// ReadTimeout returns the total per-request deadline.
func (f Fetch) ReadTimeout() time.Duration {
	return time.Duration(f.ConnectTimeoutSeconds+f.ReadTimeoutSeconds) * time.Second
}

// PDFTimeout returns the hard deadline for PDF text extraction.
func (f Fetch) PDFTimeout() time.Duration {
	return time.Duration(f.PDFTimeoutSeconds) * time.Second
}

// CacheMaxAge returns how long cached documents stay fresh.
func (f Fetch) CacheMaxAge() time.Duration {
	return time.Duration(f.CacheMaxAgeHours) * time.Hour
}

// Judge configures the LLM judge adapter. The backend is any
// OpenAI-compatible chat endpoint.
type Judge struct {
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`    // empty = default OpenAI endpoint
	APIKeyEnv      string `yaml:"api_key_env"` // env var holding the key
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// Timeout returns the hard wall-clock deadline for one judge call.
func (j Judge) Timeout() time.Duration {
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// Policy holds the tunable evaluation thresholds. The source's successive
// generations disagreed on several of these, so they are exposed rather
// than hard-coded.
type Policy struct {
	// Gating
	SpamSignalThreshold int `yaml:"spam_signal_threshold"` // reject at >= this many weighted signals
	ThinBodyChars       int `yaml:"thin_body_chars"`       // below this, the thin-body spam signal fires

	// Completeness floors
	FailedTextFloor  int `yaml:"failed_text_floor"`
	PartialTextFloor int `yaml:"partial_text_floor"`

	// Corroboration
	CorroborationMinFeatures int `yaml:"corroboration_min_features"` // own feature set must reach this
	CorroborationOverlap     int `yaml:"corroboration_overlap"`      // shared features for a match

	// Evidence quotes
	QuoteWindow   int `yaml:"quote_window"`    // chars of context each side of a match
	QuoteMaxChars int `yaml:"quote_max_chars"` // hard cap per quote
	QuoteMinChars int `yaml:"quote_min_chars"` // judge quotes shorter than this are rejected

	// Evidence pack clipping
	MainClipChars int `yaml:"main_clip_chars"`
	AuxClipChars  int `yaml:"aux_clip_chars"`
}

// Default returns the configuration used when no file is given. Policy
// numbers follow the latest generation of the evaluation standard.
func Default() Config {
	return Config{
		Log: Log{Level: "info", Format: "text"},
		Fetch: Fetch{
			ConnectTimeoutSeconds: 8,
			ReadTimeoutSeconds:    20,
			PDFTimeoutSeconds:     25,
			SleepMillis:           800,
			UserAgent:             "CredenceBot/1.0 (+research)",
			CachePath:             ".credence/cache.db",
			CacheMaxAgeHours:      24 * 7,
			MaxAuxPages:           4,
		},
		Judge: Judge{
			Model:          "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			TimeoutSeconds: 60,
			MaxRetries:     2,
		},
		Policy: Policy{
			SpamSignalThreshold:      4,
			ThinBodyChars:            200,
			FailedTextFloor:          100,
			PartialTextFloor:         500,
			CorroborationMinFeatures: 20,
			CorroborationOverlap:     18,
			QuoteWindow:              120,
			QuoteMaxChars:            260,
			QuoteMinChars:            6,
			MainClipChars:            14000,
			AuxClipChars:             4500,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
