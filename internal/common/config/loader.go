// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml over
// it, expands ${VAR} placeholders and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found in the working directory, its
// parents, or the module root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are still empty after expansion
// from their conventional environment variable names.
func overrideEmptyConfig(cfg *Config) {
	overrides := []struct {
		target *string
		envKey string
	}{
		{&cfg.APIs.OpenAI.APIKey, "OPENAI_API_KEY"},
		{&cfg.APIs.Gemini.APIKey, "GEMINI_API_KEY"},
		{&cfg.APIs.LegiScan.APIKey, "LEGISCAN_API_KEY"},
		{&cfg.APIs.BLS.APIKey, "BLS_API_KEY"},
		{&cfg.APIs.WebSearch.APIKey, "WEB_SEARCH_API_KEY"},
		{&cfg.APIs.WebSearch.EngineID, "WEB_SEARCH_ENGINE_ID"},
		{&cfg.Database.Postgres.User, "DB_USER"},
		{&cfg.Database.Postgres.Password, "DB_PASSWORD"},
	}
	for _, o := range overrides {
		if *o.target != "" {
			continue
		}
		if val := os.Getenv(o.envKey); val != "" {
			*o.target = val
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "benefits-assistant"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 150000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	es := &cfg.Database.Elasticsearch
	if es.URL == "" && len(es.Addresses) > 0 {
		es.URL = es.Addresses[0]
	}
	if es.KnowledgeIndex == "" {
		es.KnowledgeIndex = "benefits-knowledge"
	}
	if es.VectorField == "" {
		es.VectorField = "embedding"
	}
	if es.TextField == "" {
		es.TextField = "text"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 120000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	apis := &cfg.APIs
	if apis.OpenAI.Model == "" {
		apis.OpenAI.Model = "gpt-4o-mini"
	}
	if apis.OpenAI.EmbeddingModel == "" {
		apis.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if apis.OpenAI.Timeout == 0 {
		apis.OpenAI.Timeout = 60000
	}
	if apis.Gemini.Model == "" {
		apis.Gemini.Model = "gemini-1.5-flash"
	}
	if apis.Gemini.Timeout == 0 {
		apis.Gemini.Timeout = 60000
	}
	if apis.WebSearch.BaseURL == "" {
		apis.WebSearch.BaseURL = "https://www.googleapis.com/customsearch/v1"
	}
	if apis.WebSearch.Timeout == 0 {
		apis.WebSearch.Timeout = 10000
	}
	if apis.LegiScan.BaseURL == "" {
		apis.LegiScan.BaseURL = "https://api.legiscan.com/"
	}
	if apis.LegiScan.Timeout == 0 {
		apis.LegiScan.Timeout = 20000
	}
	if apis.BLS.BaseURL == "" {
		apis.BLS.BaseURL = "https://api.bls.gov/publicAPI/v2/timeseries/data/"
	}
	if len(apis.BLS.SeriesID) == 0 {
		apis.BLS.SeriesID = []string{"LNS14000000", "LNS11300000"}
	}
	if apis.BLS.Timeout == 0 {
		apis.BLS.Timeout = 10000
	}

	p := &cfg.Pipeline
	if p.HistoryTurns == 0 {
		p.HistoryTurns = 10
	}
	if p.RAGTopK == 0 {
		p.RAGTopK = 5
	}
	if p.MaxSearchTerms == 0 {
		p.MaxSearchTerms = 3
	}
	if p.MaxBillsPerJurisdiction == 0 {
		p.MaxBillsPerJurisdiction = 10
	}
	if p.FederalJurisdiction == "" {
		p.FederalJurisdiction = "US"
	}
	if p.EvidenceTokenBudget == 0 {
		p.EvidenceTokenBudget = 6000
	}
	if p.TokenizerModel == "" {
		p.TokenizerModel = "gpt-4o-mini"
	}
	if p.LegislationCache.Backend == "" {
		p.LegislationCache.Backend = "memory"
	}
	if p.LegislationCache.TTL == 0 {
		p.LegislationCache.TTL = int((24 * time.Hour).Milliseconds())
	}
	if p.LegislationCache.Scope == "" {
		p.LegislationCache.Scope = "process"
	}
	if p.RequestTimeout == 0 {
		p.RequestTimeout = 120000
	}
	if p.AdapterTimeout == 0 {
		p.AdapterTimeout = 20000
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda.enabled is set")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Elasticsearch.GetURL() == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required")
	}

	if cfg.APIs.OpenAI.APIKey == "" && cfg.APIs.Gemini.APIKey == "" {
		return fmt.Errorf("apis.openai.api_key or apis.gemini.api_key is required")
	}

	switch cfg.Pipeline.LegislationCache.Backend {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis legislation cache")
		}
	default:
		return fmt.Errorf("pipeline.legislation_cache.backend must be memory or redis, got %q", cfg.Pipeline.LegislationCache.Backend)
	}

	switch cfg.Pipeline.LegislationCache.Scope {
	case "process", "request":
	default:
		return fmt.Errorf("pipeline.legislation_cache.scope must be process or request, got %q", cfg.Pipeline.LegislationCache.Scope)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig returns the worker's settings or the defaults when the
// task type is not configured.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       120000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
