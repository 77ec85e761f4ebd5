package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/kestrel/pkg/patterns"
)

const (
	// FileName is the settings file looked up in the working directory
	FileName = "kestrel.yml"
	// EnvPrefix prefixes environment overrides, e.g. KESTREL_DETECTION_FILTER
	EnvPrefix = "KESTREL"
)

// Recognised keys
const (
	KeyDetectionEnabled = "detection.enabled"
	KeyDetectionFilter  = "detection.filter"
	KeyAdvancedPatterns = "advancedPatterns"
	KeyCostEstimates    = "costEstimates"
	KeyReportFormat     = "report.format"
	KeyLogLevel         = "log.level"

	legacyDetectionEnabled = "detectionActive"
	legacyDetectionFilter  = "detectionFilter"
)

// Settings resolves every setting the scanner reads. Each logical setting has
// exactly one accessor that knows its key, legacy fallback and default.
// Settings is not safe for concurrent use; reload by calling Load again.
type Settings struct {
	v    *viper.Viper
	path string
}

// New returns Settings with nothing configured, so every accessor yields its default
func New() *Settings {
	return &Settings{v: newViper()}
}

// FromMap builds Settings from literal values. Keys use dotted notation.
func FromMap(values map[string]any) *Settings {
	s := New()
	for k, val := range values {
		s.v.Set(k, val)
	}
	return s
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings from path, or from kestrel.yml in dir when path is empty.
// A missing file is not an error.
func Load(dir, path string) (*Settings, error) {
	v := newViper()

	if path == "" {
		path = filepath.Join(dir, FileName)
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return &Settings{v: v, path: path}, nil
}

// Path returns the file the settings were loaded from
func (s *Settings) Path() string {
	return s.path
}

func (s *Settings) resolveBool(key, legacy string, def bool) bool {
	if s.v.IsSet(key) {
		return s.v.GetBool(key)
	}
	if legacy != "" && s.v.IsSet(legacy) {
		return s.v.GetBool(legacy)
	}
	return def
}

func (s *Settings) resolveString(key, legacy, def string) string {
	if s.v.IsSet(key) {
		return s.v.GetString(key)
	}
	if legacy != "" && s.v.IsSet(legacy) {
		return s.v.GetString(legacy)
	}
	return def
}

// DetectionEnabled is the master switch
func (s *Settings) DetectionEnabled() bool {
	return s.resolveBool(KeyDetectionEnabled, legacyDetectionEnabled, true)
}

// Filter returns the raw result filter name
func (s *Settings) Filter() string {
	return s.resolveString(KeyDetectionFilter, legacyDetectionFilter, "all")
}

// LanguageEnabled reports whether files of a language are scanned
func (s *Settings) LanguageEnabled(lang patterns.Language) bool {
	return s.resolveBool(LanguageKey(lang), "", true)
}

// ProviderEnabled reports whether a provider's patterns are evaluated
func (s *Settings) ProviderEnabled(p patterns.Provider) bool {
	return s.resolveBool(ProviderKey(p), "", true)
}

// AdvancedPatterns is reserved; no pattern is gated on it.
func (s *Settings) AdvancedPatterns() bool {
	return s.resolveBool(KeyAdvancedPatterns, "", false)
}

// CostEstimates reports whether findings are annotated with spend estimates
func (s *Settings) CostEstimates() bool {
	return s.resolveBool(KeyCostEstimates, "", false)
}

// ReportFormat is markdown or html
func (s *Settings) ReportFormat() string {
	return s.resolveString(KeyReportFormat, "", "markdown")
}

// LogLevel is the minimum level for diagnostic logging
func (s *Settings) LogLevel() string {
	return s.resolveString(KeyLogLevel, "", "warn")
}

// LanguageKey returns the toggle key for a language
func LanguageKey(lang patterns.Language) string {
	return "languages." + string(lang)
}

// ProviderKey returns the toggle key for a provider
func ProviderKey(p patterns.Provider) string {
	return "providers." + string(p)
}

// Keys lists every recognised key with its resolved value
func (s *Settings) Keys() map[string]any {
	out := map[string]any{
		KeyDetectionEnabled: s.DetectionEnabled(),
		KeyDetectionFilter:  s.Filter(),
		KeyAdvancedPatterns: s.AdvancedPatterns(),
		KeyCostEstimates:    s.CostEstimates(),
		KeyReportFormat:     s.ReportFormat(),
		KeyLogLevel:         s.LogLevel(),
	}
	for _, lang := range patterns.Languages {
		out[LanguageKey(lang)] = s.LanguageEnabled(lang)
	}
	for _, p := range patterns.AllProviders {
		out[ProviderKey(p)] = s.ProviderEnabled(p)
	}
	return out
}

// SortedKeys returns the recognised keys in a stable order
func (s *Settings) SortedKeys() []string {
	keys := make([]string, 0)
	for k := range s.Keys() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the resolved value of a recognised key
func (s *Settings) Get(key string) (any, bool) {
	val, ok := s.Keys()[key]
	return val, ok
}

// Set stores a value, parsing booleans from their string form
func (s *Settings) Set(key, raw string) error {
	current, ok := s.Get(key)
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if _, isBool := current.(bool); isBool {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("setting %s expects true or false: %w", key, err)
		}
		s.v.Set(key, b)
		return nil
	}
	s.v.Set(key, raw)
	return nil
}

// Toggle flips a boolean setting and returns the new value
func (s *Settings) Toggle(key string) (bool, error) {
	current, ok := s.Get(key)
	if !ok {
		return false, fmt.Errorf("unknown setting %q", key)
	}
	b, isBool := current.(bool)
	if !isBool {
		return false, fmt.Errorf("setting %s is not a toggle", key)
	}
	s.v.Set(key, !b)
	return !b, nil
}

// Save writes explicitly set values to the settings file
func (s *Settings) Save() error {
	if s.path == "" {
		return errors.New("settings were not loaded from a file")
	}

	data, err := yaml.Marshal(s.v.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// AffectsMatching reports whether changing key can change raw match results,
// as opposed to only changing the filtered view.
func AffectsMatching(key string) bool {
	return key == KeyDetectionEnabled ||
		strings.HasPrefix(key, "languages.") ||
		strings.HasPrefix(key, "providers.")
}
