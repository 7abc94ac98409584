package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/paperdigest/internal/domain/provider"
)

// Config holds the paperdigest configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Arxiv     ArxivConfig     `yaml:"arxiv"`
	Summary   SummaryConfig   `yaml:"summary"`
	Similar   SimilarConfig   `yaml:"similar"`
	Digest    DigestConfig    `yaml:"digest"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path             string `yaml:"path"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds the optional Redis cache for summaries and budget counters.
type CacheConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Addrs           []string `yaml:"addrs"`
	Username        string   `yaml:"username"`
	Password        string   `yaml:"password"`
	DB              int      `yaml:"db"`
	SummaryTTLHours int      `yaml:"summary_ttl_hours"`
	Namespace       string   `yaml:"namespace"`
	ClientCacheSec  int      `yaml:"client_cache_sec"` // 0 disables client-side caching
}

// ArxivConfig holds arXiv API client settings.
type ArxivConfig struct {
	BaseURL           string   `yaml:"base_url"`
	Categories        []string `yaml:"categories"`
	MaxResults        int      `yaml:"max_results"` // per category
	RateLimitMs       int      `yaml:"rate_limit_ms"`
	MaxRetries        int      `yaml:"max_retries"`
	TimeoutSec        int      `yaml:"timeout_sec"`
	BreakerFailures   uint32   `yaml:"breaker_failures"`
	BreakerTimeoutSec int      `yaml:"breaker_timeout_sec"`
}

// SummaryConfig holds LLM summarization settings.
type SummaryConfig struct {
	Enabled       bool                      `yaml:"enabled"`
	Provider      string                    `yaml:"provider"`
	Providers     map[string]ProviderConfig `yaml:"providers"`
	MaxConcurrent int                       `yaml:"max_concurrent"`
	MaxTokens     int                       `yaml:"max_tokens"`
	Temperature   float32                   `yaml:"temperature"`
	Budget        BudgetConfig              `yaml:"budget"`
}

// ProviderConfig holds one LLM provider's settings.
// Kind is only needed for providers missing from the registry (e.g. an OpenAI-compatible gateway).
type ProviderConfig struct {
	Kind    string `yaml:"kind"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// SimilarConfig holds similarity ranking settings.
type SimilarConfig struct {
	MaxCorpus int `yaml:"max_corpus"`
	DefaultK  int `yaml:"default_k"`
}

// DigestConfig holds e-mail digest settings.
type DigestConfig struct {
	Enabled          bool       `yaml:"enabled"`
	CheckIntervalSec int        `yaml:"check_interval_sec"`
	MaxPapers        int        `yaml:"max_papers"`
	SMTP             SMTPConfig `yaml:"smtp"`
}

// SMTPConfig holds the outgoing mail relay.
type SMTPConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	From       string `yaml:"from"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RateLimitConfig holds per-IP API rate limiting.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"` // 0 disables
	WindowSec int `yaml:"window_sec"`
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// DefaultCategories are fetched when none are configured.
var DefaultCategories = []string{"cs.AI", "cs.LG", "cs.CL"}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Database.Path == "" {
		c.Database.Path = "data/paperdigest.db"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.SummaryTTLHours <= 0 {
		c.Cache.SummaryTTLHours = 30 * 24
	}

	if c.Arxiv.BaseURL == "" {
		c.Arxiv.BaseURL = "https://export.arxiv.org/api/query"
	}
	if c.Arxiv.Categories == nil {
		c.Arxiv.Categories = append([]string(nil), DefaultCategories...)
	}
	if c.Arxiv.MaxResults <= 0 {
		c.Arxiv.MaxResults = 50
	}
	if c.Arxiv.RateLimitMs <= 0 {
		c.Arxiv.RateLimitMs = 3000
	}
	if c.Arxiv.MaxRetries <= 0 {
		c.Arxiv.MaxRetries = 3
	}
	if c.Arxiv.TimeoutSec <= 0 {
		c.Arxiv.TimeoutSec = 30
	}
	if c.Arxiv.BreakerFailures == 0 {
		c.Arxiv.BreakerFailures = 5
	}
	if c.Arxiv.BreakerTimeoutSec <= 0 {
		c.Arxiv.BreakerTimeoutSec = 60
	}

	if c.Summary.Provider == "" {
		c.Summary.Provider = "openai"
	}
	c.Summary.Provider = strings.ToLower(c.Summary.Provider)
	if c.Summary.MaxConcurrent <= 0 {
		c.Summary.MaxConcurrent = 5
	}
	if c.Summary.MaxTokens <= 0 {
		c.Summary.MaxTokens = 200
	}
	if c.Summary.Temperature <= 0 {
		c.Summary.Temperature = 0.3
	}
	c.applyProviderEnvKeys()

	if c.Similar.MaxCorpus == 0 {
		c.Similar.MaxCorpus = 5000
	}
	if c.Similar.DefaultK == 0 {
		c.Similar.DefaultK = 5
	}

	if c.Digest.CheckIntervalSec <= 0 {
		c.Digest.CheckIntervalSec = 300
	}
	if c.Digest.MaxPapers <= 0 {
		c.Digest.MaxPapers = 30
	}
	if c.Digest.SMTP.Port == 0 {
		c.Digest.SMTP.Port = 587
	}
	if c.Digest.SMTP.TimeoutSec <= 0 {
		c.Digest.SMTP.TimeoutSec = 30
	}

	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 60
	}
}

// applyProviderEnvKeys makes sure the active provider has an entry and picks up API keys
// from the provider's conventional environment variable when none is configured.
func (c *Config) applyProviderEnvKeys() {
	if c.Summary.Providers == nil {
		c.Summary.Providers = make(map[string]ProviderConfig)
	}
	if _, ok := c.Summary.Providers[c.Summary.Provider]; !ok {
		c.Summary.Providers[c.Summary.Provider] = ProviderConfig{}
	}
	for name, p := range c.Summary.Providers {
		if p.APIKey != "" {
			continue
		}
		if info, ok := provider.Lookup(name); ok && info.EnvKey != "" {
			p.APIKey = os.Getenv(info.EnvKey)
			c.Summary.Providers[name] = p
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Arxiv.Categories) == 0 {
		return fmt.Errorf("arxiv.categories must not be empty")
	}
	if c.Similar.MaxCorpus <= 0 {
		return fmt.Errorf("similar.max_corpus must be positive, got %d", c.Similar.MaxCorpus)
	}
	if c.Similar.DefaultK <= 0 {
		return fmt.Errorf("similar.default_k must be positive, got %d", c.Similar.DefaultK)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when the cache is enabled")
	}
	if c.Digest.Enabled && c.Digest.SMTP.Host == "" {
		return fmt.Errorf("digest.smtp.host is required when digests are enabled")
	}

	names := make([]string, 0, len(c.Summary.Providers))
	for name := range c.Summary.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := c.Summary.Resolve(name); err != nil {
			return err
		}
	}

	switch c.Summary.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"summary.budget.action must be \"warn\" or \"reject\", got %q",
			c.Summary.Budget.Action,
		)
	}
	return nil
}

// ResolvedProvider is a provider's registry entry merged with its configuration.
type ResolvedProvider struct {
	provider.Info
	APIKey string
	Model  string
}

// Resolve merges the registry entry for name with its configuration.
// Providers missing from the registry need an explicit kind.
func (s SummaryConfig) Resolve(name string) (ResolvedProvider, error) {
	pc := s.Providers[name]

	info, known := provider.Lookup(name)
	if !known {
		if pc.Kind == "" {
			return ResolvedProvider{}, fmt.Errorf(
				"summary.providers.%s: unknown provider (known: %s); set kind to use a custom endpoint",
				name, strings.Join(provider.Names(), ", "),
			)
		}
		info = provider.Info{Name: name, DisplayName: name}
	}
	if pc.Kind != "" {
		info.Kind = provider.Kind(pc.Kind)
	}
	switch info.Kind {
	case provider.KindOpenAI, provider.KindAnthropic, provider.KindOllama, provider.KindHuggingFace:
	default:
		return ResolvedProvider{}, fmt.Errorf("summary.providers.%s.kind %q is not supported", name, info.Kind)
	}
	if !known && info.Kind == provider.KindOpenAI && pc.BaseURL == "" {
		return ResolvedProvider{}, fmt.Errorf("summary.providers.%s.base_url is required", name)
	}
	if pc.BaseURL != "" {
		info.BaseURL = pc.BaseURL
	}

	model := pc.Model
	if model == "" {
		model = info.DefaultModel
	}
	return ResolvedProvider{Info: info, APIKey: pc.APIKey, Model: model}, nil
}

// Active resolves the configured summary provider.
func (s SummaryConfig) Active() (ResolvedProvider, error) {
	return s.Resolve(s.Provider)
}

// RequestInterval returns the minimum gap between arXiv requests.
func (c ArxivConfig) RequestInterval() time.Duration {
	return time.Duration(c.RateLimitMs) * time.Millisecond
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
