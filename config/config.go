package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/msgbridge/errors"
	"github.com/c360/msgbridge/queue"
)

// Config represents the complete runner configuration
type Config struct {
	Version   string          `json:"version,omitempty" yaml:"version,omitempty"`
	Queue     QueueConfig     `json:"queue" yaml:"queue"`
	Lua       LuaConfig       `json:"lua" yaml:"lua"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Producers ProducersConfig `json:"producers" yaml:"producers"`
	Consumer  ConsumerConfig  `json:"consumer" yaml:"consumer"`
}

// QueueConfig configures the shared queue
type QueueConfig struct {
	Name            string `json:"name" yaml:"name"`
	InitialCapacity int    `json:"initial_capacity" yaml:"initial_capacity"`
	CopyPolicy      string `json:"copy_policy" yaml:"copy_policy"` // before_lock or under_lock
}

// LuaConfig configures the embedded Lua runtime
type LuaConfig struct {
	Script  string        `json:"script,omitempty" yaml:"script,omitempty"` // Path to the script; empty runs none
	Global  string        `json:"global" yaml:"global"`                     // Global name the queue is exposed under
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
	Path    string `json:"path" yaml:"path"`
}

// ProducersConfig configures the native producer goroutines
type ProducersConfig struct {
	Count    int     `json:"count" yaml:"count"`
	Messages int     `json:"messages" yaml:"messages"` // Per producer
	Rate     float64 `json:"rate" yaml:"rate"`         // Messages per second per producer, 0 = unlimited
	Burst    int     `json:"burst" yaml:"burst"`
}

// ConsumerConfig configures the native polling consumer
type ConsumerConfig struct {
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	IdlePolls    int           `json:"idle_polls" yaml:"idle_polls"` // Empty polls tolerated after producers finish
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Queue: QueueConfig{
			Name:            "msgbridge",
			InitialCapacity: 64,
			CopyPolicy:      "before_lock",
		},
		Lua: LuaConfig{
			Global:  "queue",
			Timeout: 30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
			Path:    "/metrics",
		},
		Producers: ProducersConfig{
			Count:    4,
			Messages: 100,
			Rate:     0,
			Burst:    1,
		},
		Consumer: ConsumerConfig{
			PollInterval: 5 * time.Millisecond,
			IdlePolls:    20,
		},
	}
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &SafeConfig{
		config: cfg,
	}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically replaces the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "SafeConfig", "Update", "nil check")
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "SafeConfig", "Update", "validation")
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg.Clone()
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return DefaultConfig()
	}
	// Every field is a value type
	copied := *c
	return &copied
}

// Validate checks the configuration and reports the first problem found
func (c *Config) Validate() error {
	if c.Queue.Name == "" {
		return invalid("queue.name is required")
	}
	if c.Queue.InitialCapacity < 0 {
		return invalid("queue.initial_capacity must be >= 0, got %d", c.Queue.InitialCapacity)
	}
	if _, err := queue.ParseCopyPolicy(c.Queue.CopyPolicy); err != nil {
		return invalid("queue.copy_policy %q must be before_lock or under_lock", c.Queue.CopyPolicy)
	}

	if !isLuaIdentifier(c.Lua.Global) {
		return invalid("lua.global %q is not a valid Lua identifier", c.Lua.Global)
	}
	if c.Lua.Timeout < 0 {
		return invalid("lua.timeout must be >= 0, got %s", c.Lua.Timeout)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Addr == "" {
			return invalid("metrics.addr is required when metrics are enabled")
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return invalid("metrics.path %q must start with /", c.Metrics.Path)
		}
	}

	if c.Producers.Count < 0 {
		return invalid("producers.count must be >= 0, got %d", c.Producers.Count)
	}
	if c.Producers.Messages < 0 {
		return invalid("producers.messages must be >= 0, got %d", c.Producers.Messages)
	}
	if c.Producers.Rate < 0 {
		return invalid("producers.rate must be >= 0, got %g", c.Producers.Rate)
	}
	if c.Producers.Rate > 0 && c.Producers.Burst < 1 {
		return invalid("producers.burst must be >= 1 when rate is set, got %d", c.Producers.Burst)
	}

	if c.Consumer.PollInterval <= 0 {
		return invalid("consumer.poll_interval must be > 0, got %s", c.Consumer.PollInterval)
	}
	if c.Consumer.IdlePolls < 1 {
		return invalid("consumer.idle_polls must be >= 1, got %d", c.Consumer.IdlePolls)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s", errors.ErrInvalidConfig, fmt.Sprintf(format, args...)),
		"Config", "Validate", "check field")
}

var luaKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// isLuaIdentifier reports whether s can be used as a Lua global name
func isLuaIdentifier(s string) bool {
	if s == "" || luaKeywords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: false,
		envPrefix:  "MSGBRIDGE",
	}
}

// AddLayer adds a configuration file layer. Later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load merges all layers over the defaults, then applies environment overrides
func (l *Loader) Load() (*Config, error) {
	merged, err := toMap(DefaultConfig())
	if err != nil {
		return nil, errors.WrapFatal(err, "Loader", "Load", "encode defaults")
	}

	for _, path := range l.layers {
		raw, err := l.loadRaw(path)
		if err != nil {
			return nil, errors.Wrap(err, "Loader", "Load", "load "+path)
		}
		merged = deepMergeMaps(merged, raw)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
			"Loader", "Load", "decode merged layers")
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Load reads and validates the configuration at path. YAML is used for
// .yaml and .yml files, JSON otherwise.
func Load(path string) (*Config, error) {
	loader := NewLoader()
	loader.EnableValidation(true)
	return loader.LoadFile(path)
}

// loadRaw reads one layer into a generic map
func (l *Loader) loadRaw(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
				"Loader", "loadRaw", "parse YAML")
		}
	} else {
		if err := validateJSONDepth(data); err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
				"Loader", "loadRaw", "check JSON structure")
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
				"Loader", "loadRaw", "parse JSON")
		}
	}

	if err := parseDurations(raw); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
			"Loader", "loadRaw", "parse durations")
	}
	return raw, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// durationFields lists the section.field pairs holding time.Duration values
var durationFields = [][2]string{
	{"lua", "timeout"},
	{"consumer", "poll_interval"},
}

// parseDurations converts duration strings such as "250ms" to nanoseconds
// so they decode into time.Duration fields
func parseDurations(data map[string]any) error {
	for _, f := range durationFields {
		section, ok := data[f[0]].(map[string]any)
		if !ok {
			continue
		}
		s, ok := section[f[1]].(string)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", f[0], f[1], err)
		}
		section[f[1]] = d.Nanoseconds()
	}
	return nil
}

// deepMergeMaps merges override into base, recursing into nested sections
func deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseSection, ok := result[k].(map[string]any); ok {
			if overrideSection, ok := v.(map[string]any); ok {
				result[k] = deepMergeMaps(baseSection, overrideSection)
				continue
			}
		}
		result[k] = v
	}
	return result
}

func toMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(m map[string]any) (*Config, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	str := func(name string, dst *string) error {
		val := os.Getenv(l.envPrefix + "_" + name)
		if err := validateEnvVar(name, val); err != nil {
			return err
		}
		if val != "" {
			*dst = val
		}
		return nil
	}
	num := func(name string, dst *int) error {
		val := os.Getenv(l.envPrefix + "_" + name)
		if val == "" {
			return nil
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s_%s: %w", l.envPrefix, name, err)
		}
		*dst = n
		return nil
	}

	for _, apply := range []func() error{
		func() error { return str("QUEUE_NAME", &cfg.Queue.Name) },
		func() error { return str("QUEUE_COPY_POLICY", &cfg.Queue.CopyPolicy) },
		func() error { return str("LUA_SCRIPT", &cfg.Lua.Script) },
		func() error { return str("LUA_GLOBAL", &cfg.Lua.Global) },
		func() error { return str("METRICS_ADDR", &cfg.Metrics.Addr) },
		func() error { return num("PRODUCERS_COUNT", &cfg.Producers.Count) },
		func() error { return num("PRODUCERS_MESSAGES", &cfg.Producers.Messages) },
	} {
		if err := apply(); err != nil {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
				"Loader", "applyEnvOverrides", "environment override")
		}
	}
	return nil
}

// SaveToFile writes the configuration as YAML or JSON depending on the
// file extension
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.WrapFatal(err, "Config", "SaveToFile", "encode")
	}

	return safeWriteFile(path, data)
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
