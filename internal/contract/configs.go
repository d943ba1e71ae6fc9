package contract

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/burndown/schema"
)

// Default values for configuration.
const (
	DefaultPrecision   = 1
	DefaultCacheTTL    = 15 * time.Minute
	DefaultRateLimit   = 2.0
	DefaultHTTPTimeout = 30 * time.Second
	MaxWindowDays      = 365
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the burndown analysis.
// This struct remains the "final, validated" config.
type Config struct {
	Source     string
	Envs       []string
	Now        time.Time
	WindowDays int
	FailOn     []schema.Status

	Detail     bool
	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheTTL    time.Duration
	RateLimit   float64 // HTTP source requests per second
	HTTPTimeout time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	LogLevel  string
	LogFormat string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	SourceArg string

	// --- Fields from rootCmd.PersistentFlags() ---
	Source            string  `mapstructure:"source"`
	Env               string  `mapstructure:"env"`
	Now               string  `mapstructure:"now"`
	WindowDays        int     `mapstructure:"window-days"`
	OutputFile        string  `mapstructure:"output-file"`
	Precision         int     `mapstructure:"precision"`
	Output            string  `mapstructure:"output"`
	Detail            bool    `mapstructure:"detail"`
	Width             int     `mapstructure:"width"`
	Color             string  `mapstructure:"color"`
	CacheTTL          string  `mapstructure:"cache-ttl"`
	RateLimit         float64 `mapstructure:"rate-limit"`
	HTTPTimeout       string  `mapstructure:"http-timeout"`
	CacheBackend      string  `mapstructure:"cache-backend"`
	CacheDBConnect    string  `mapstructure:"cache-db-connect"`
	AnalysisBackend   string  `mapstructure:"analysis-backend"`
	AnalysisDBConnect string  `mapstructure:"analysis-db-connect"`
	LogLevel          string  `mapstructure:"log-level"`
	LogFormat         string  `mapstructure:"log-format"`

	// --- Fields from checkCmd.Flags() ---
	FailOn string `mapstructure:"fail-on"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Envs = slices.Clone(c.Envs)
	clone.FailOn = slices.Clone(c.FailOn)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. clock supplies "now" when --now is unset.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, clock func() time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processNow(cfg, input, clock); err != nil {
		return err
	}
	if err := processEngineInputs(cfg, input); err != nil {
		return err
	}
	if err := processFetchInputs(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// validateSimpleInputs processes and validates output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Source = strings.TrimSpace(input.SourceArg)
	if cfg.Source == "" {
		cfg.Source = strings.TrimSpace(input.Source)
	}
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Width = input.Width
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	cfg.LogFormat = strings.ToLower(input.LogFormat)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	if cfg.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", cfg.Width)
	}
	return nil
}

// processNow resolves the evaluation instant from --now or the clock.
func processNow(cfg *Config, input *ConfigRawInput, clock func() time.Time) error {
	if clock == nil {
		clock = time.Now
	}
	now := clock().UTC()
	if strings.TrimSpace(input.Now) == "" {
		cfg.Now = now
		return nil
	}
	parsed, err := ParseNow(input.Now, now)
	if err != nil {
		return fmt.Errorf("invalid --now value: %w", err)
	}
	cfg.Now = parsed
	return nil
}

// processEngineInputs validates the window, environment filter and gate statuses.
func processEngineInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.WindowDays = input.WindowDays
	if cfg.WindowDays == 0 {
		cfg.WindowDays = schema.DefaultWindowDays
	}
	if cfg.WindowDays < 1 || cfg.WindowDays > MaxWindowDays {
		return fmt.Errorf("window-days must be between 1 and %d (received %d)", MaxWindowDays, input.WindowDays)
	}

	cfg.Envs = ParseList(input.Env)

	failOn, err := parseFailOn(input.FailOn)
	if err != nil {
		return err
	}
	cfg.FailOn = failOn
	return nil
}

// parseFailOn parses a comma separated status list, defaulting to missed.
func parseFailOn(raw string) ([]schema.Status, error) {
	var failOn []schema.Status
	for _, s := range ParseList(raw) {
		status := schema.Status(strings.ToLower(s))
		if _, ok := schema.ValidStatuses[status]; !ok {
			return nil, fmt.Errorf("invalid status '%s' in --fail-on. must be completed, completed_late, on_track, at_risk, missed", s)
		}
		if !slices.Contains(failOn, status) {
			failOn = append(failOn, status)
		}
	}
	if len(failOn) == 0 {
		failOn = []schema.Status{schema.MissedStatus}
	}
	return failOn, nil
}

// RequestOverrides holds per-request values that replace fields of a validated Config.
// Zero values keep the existing setting.
type RequestOverrides struct {
	Source     string
	Env        string
	Now        string
	WindowDays int
	FailOn     string
}

// RevalidateRequest applies overrides to cfg with the same rules as ProcessAndValidate.
// Relative --now values are resolved against clock.
func RevalidateRequest(cfg *Config, o RequestOverrides, clock func() time.Time) error {
	if src := strings.TrimSpace(o.Source); src != "" {
		cfg.Source = src
	}
	if cfg.Source == "" {
		return ErrEmptySource
	}
	if strings.TrimSpace(o.Now) != "" {
		if err := processNow(cfg, &ConfigRawInput{Now: o.Now}, clock); err != nil {
			return err
		}
	}
	if o.WindowDays != 0 {
		if o.WindowDays < 1 || o.WindowDays > MaxWindowDays {
			return fmt.Errorf("window-days must be between 1 and %d (received %d)", MaxWindowDays, o.WindowDays)
		}
		cfg.WindowDays = o.WindowDays
	}
	if o.Env != "" {
		cfg.Envs = ParseList(o.Env)
	}
	if o.FailOn != "" {
		failOn, err := parseFailOn(o.FailOn)
		if err != nil {
			return err
		}
		cfg.FailOn = failOn
	}
	return nil
}

// processFetchInputs validates source fetching and caching knobs.
func processFetchInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid --cache-ttl value: %w", err)
		}
		if ttl < 0 {
			return fmt.Errorf("cache-ttl cannot be negative (received %s)", input.CacheTTL)
		}
		cfg.CacheTTL = ttl
	}

	cfg.HTTPTimeout = DefaultHTTPTimeout
	if input.HTTPTimeout != "" {
		timeout, err := time.ParseDuration(input.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("invalid --http-timeout value: %w", err)
		}
		if timeout <= 0 {
			return fmt.Errorf("http-timeout must be positive (received %s)", input.HTTPTimeout)
		}
		cfg.HTTPTimeout = timeout
	}

	cfg.RateLimit = input.RateLimit
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate-limit cannot be negative (received %g)", input.RateLimit)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for MySQL, PostgreSQL and Redis backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must start with 'redis://' or 'rediss://'")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("%w: cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", ErrUnsupportedBackend, input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		cfg.AnalysisBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidAnalysisBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("%w: analysis backend '%s'. must be sqlite, mysql, postgresql, none", ErrUnsupportedBackend, input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}
