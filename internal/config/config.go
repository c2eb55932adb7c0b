package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for hiringintel.
type Config struct {
	DataDir string
	Store   StoreConfig
	Scan    ScanConfig
	AI      AIConfig
	Search  SearchConfig
	Profile ProfileConfig
	Sheet   SheetConfig
	Server  ServerConfig
}

// StoreConfig selects the key-value backend.
type StoreConfig struct {
	Backend    string // "sqlite", "redis" or "memory"
	SQLitePath string
	Redis      RedisConfig
}

type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// ScanConfig controls the auto-scan gate.
type ScanConfig struct {
	Auto      bool
	Tick      time.Duration // how often the gate is checked
	Threshold time.Duration // minimum gap between successful scans
}

// AIConfig points at an OpenAI-compatible endpoint.
type AIConfig struct {
	BaseURL       string
	APIKey        string // expanded from env var by Load; may be empty and come from the keychain
	SearchModel   string
	AnalysisModel string
	Timeout       time.Duration
	MinScore      float64
}

// SearchConfig describes what the search round looks for.
type SearchConfig struct {
	Roles     []string `yaml:"roles"`
	Locations string   `yaml:"locations"`
	Companies []string `yaml:"companies"`
}

// ProfileConfig is the user profile postings are scored against.
type ProfileConfig struct {
	Background []string `yaml:"background"`
	Skills     []string `yaml:"skills"`
	Interests  []string `yaml:"interests"`
	Intent     []string `yaml:"intent"`
}

// SheetConfig seeds the sync target when the store has none yet.
type SheetConfig struct {
	WebhookURL string
	SheetID    string
	Timeout    time.Duration
}

type ServerConfig struct {
	Listen string `yaml:"listen"` // empty disables the HTTP API
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultSearchModel   = "gpt-4o-mini-search-preview"
	defaultAnalysisModel = "gpt-4o-mini"
	defaultMinScore      = 0.2
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	DataDir string         `yaml:"data_dir"`
	Store   rawStoreConfig `yaml:"store"`
	Scan    rawScanConfig  `yaml:"scan"`
	AI      rawAIConfig    `yaml:"ai"`
	Search  SearchConfig   `yaml:"search"`
	Profile ProfileConfig  `yaml:"profile"`
	Sheet   rawSheetConfig `yaml:"sheet"`
	Server  ServerConfig   `yaml:"server"`
}

type rawStoreConfig struct {
	Backend    string      `yaml:"backend"`
	SQLitePath string      `yaml:"sqlite_path"`
	Redis      RedisConfig `yaml:"redis"`
}

type rawScanConfig struct {
	Auto      bool   `yaml:"auto"`
	Tick      string `yaml:"tick"`
	Threshold string `yaml:"threshold"`
}

type rawAIConfig struct {
	BaseURL       string   `yaml:"base_url"`
	APIKey        string   `yaml:"api_key"`
	SearchModel   string   `yaml:"search_model"`
	AnalysisModel string   `yaml:"analysis_model"`
	Timeout       string   `yaml:"timeout"`
	MinScore      *float64 `yaml:"min_score"`
}

type rawSheetConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	SheetID    string `yaml:"sheet_id"`
	Timeout    string `yaml:"timeout"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	tick, err := parseDuration("scan.tick", raw.Scan.Tick, time.Minute)
	if err != nil {
		return nil, err
	}
	threshold, err := parseDuration("scan.threshold", raw.Scan.Threshold, 2*time.Hour)
	if err != nil {
		return nil, err
	}
	aiTimeout, err := parseDuration("ai.timeout", raw.AI.Timeout, 90*time.Second)
	if err != nil {
		return nil, err
	}
	sheetTimeout, err := parseDuration("sheet.timeout", raw.Sheet.Timeout, 30*time.Second)
	if err != nil {
		return nil, err
	}

	dataDir := raw.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	backend := raw.Store.Backend
	if backend == "" {
		backend = "sqlite"
	}
	sqlitePath := raw.Store.SQLitePath
	if sqlitePath == "" {
		sqlitePath = filepath.Join(dataDir, "hiringintel.db")
	}

	minScore := defaultMinScore
	if raw.AI.MinScore != nil {
		minScore = *raw.AI.MinScore
	}

	cfg := &Config{
		DataDir: dataDir,
		Store: StoreConfig{
			Backend:    backend,
			SQLitePath: sqlitePath,
			Redis:      raw.Store.Redis,
		},
		Scan: ScanConfig{
			Auto:      raw.Scan.Auto,
			Tick:      tick,
			Threshold: threshold,
		},
		AI: AIConfig{
			BaseURL:       orDefault(raw.AI.BaseURL, defaultOpenAIBaseURL),
			APIKey:        raw.AI.APIKey,
			SearchModel:   orDefault(raw.AI.SearchModel, defaultSearchModel),
			AnalysisModel: orDefault(raw.AI.AnalysisModel, defaultAnalysisModel),
			Timeout:       aiTimeout,
			MinScore:      minScore,
		},
		Search:  raw.Search,
		Profile: raw.Profile,
		Sheet: SheetConfig{
			WebhookURL: raw.Sheet.WebhookURL,
			SheetID:    raw.Sheet.SheetID,
			Timeout:    sheetTimeout,
		},
		Server: raw.Server,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(field, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case "sqlite", "memory":
	case "redis":
		if len(cfg.Store.Redis.Addrs) == 0 {
			return fmt.Errorf("store.redis.addrs is required when store.backend is \"redis\"")
		}
	default:
		return fmt.Errorf("store.backend must be one of sqlite, redis, memory; got %q", cfg.Store.Backend)
	}

	if cfg.Scan.Tick <= 0 {
		return fmt.Errorf("scan.tick must be positive, got %v", cfg.Scan.Tick)
	}
	if cfg.Scan.Threshold < cfg.Scan.Tick {
		return fmt.Errorf("scan.threshold (%v) must not be shorter than scan.tick (%v)", cfg.Scan.Threshold, cfg.Scan.Tick)
	}

	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}
	if cfg.AI.MinScore < 0 || cfg.AI.MinScore > 1 {
		return fmt.Errorf("ai.min_score must be between 0 and 1, got %v", cfg.AI.MinScore)
	}

	if len(cfg.Search.Roles) == 0 {
		return fmt.Errorf("search.roles must list at least one role")
	}
	if cfg.Search.Locations == "" {
		return fmt.Errorf("search.locations is required")
	}

	if (cfg.Sheet.WebhookURL == "") != (cfg.Sheet.SheetID == "") {
		return fmt.Errorf("sheet.webhook_url and sheet.sheet_id must be set together")
	}
	if cfg.Sheet.Timeout <= 0 {
		return fmt.Errorf("sheet.timeout must be positive, got %v", cfg.Sheet.Timeout)
	}

	return nil
}
