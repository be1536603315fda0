// Package config provides application configuration.
package config

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/kittclouds/ephyrapart/pkg/offsetmap"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Default values.
const (
	DefaultDir         = "."
	DefaultLexiconDSN  = ":memory:"
	DefaultLogLevel    = "INFO"
	DefaultLogFormat   = LogFormatText
	DefaultInitWorkers = 4
	DefaultPolicy      = "collapse"
)

// Default resource locations, relative to the resource directory.
const (
	DefaultNELists          = "res/nlp/netagger/lists"
	DefaultNEPatterns       = "res/nlp/netagger/patterns.lst"
	DefaultWordNet          = "res/ontologies/wordnet/dict"
	DefaultFunctionWords    = "res/indices/functionwords_nonumbers"
	DefaultPrepositions     = "res/indices/prepositions"
	DefaultIrregularVerbs   = "res/indices/irregularverbs"
	DefaultWordFrequencies  = "res/indices/wordfrequencies"
	DefaultQuestionPatterns = "res/patternlearning/questionpatterns"
)

// Resources locates every resource file, relative to the resource directory.
type Resources struct {
	NELists          string
	NEPatterns       string
	WordNet          string
	FunctionWords    string
	Prepositions     string
	IrregularVerbs   string
	WordFrequencies  string
	QuestionPatterns string
}

// DefaultResources returns the standard bundle layout.
func DefaultResources() Resources {
	return Resources{
		NELists:          DefaultNELists,
		NEPatterns:       DefaultNEPatterns,
		WordNet:          DefaultWordNet,
		FunctionWords:    DefaultFunctionWords,
		Prepositions:     DefaultPrepositions,
		IrregularVerbs:   DefaultIrregularVerbs,
		WordFrequencies:  DefaultWordFrequencies,
		QuestionPatterns: DefaultQuestionPatterns,
	}
}

// AppConfig holds the resolved application configuration.
type AppConfig struct {
	dir         string
	resources   Resources
	lexiconDSN  string
	logLevel    string
	logFormat   LogFormat
	initWorkers int
	policy      offsetmap.Policy
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		dir:         DefaultDir,
		resources:   DefaultResources(),
		lexiconDSN:  DefaultLexiconDSN,
		logLevel:    DefaultLogLevel,
		logFormat:   DefaultLogFormat,
		initWorkers: DefaultInitWorkers,
		policy:      offsetmap.Collapse,
	}
}

// NewAppConfigWithOptions creates an AppConfig with defaults and applies options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithDir sets the resource directory.
func WithDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.dir = dir }
}

// WithResources sets resource locations.
func WithResources(r Resources) AppConfigOption {
	return func(c *AppConfig) { c.resources = r }
}

// WithLexiconDSN sets the lexicon database DSN.
func WithLexiconDSN(dsn string) AppConfigOption {
	return func(c *AppConfig) { c.lexiconDSN = dsn }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithInitWorkers bounds how many resources load concurrently.
func WithInitWorkers(n int) AppConfigOption {
	return func(c *AppConfig) { c.initWorkers = n }
}

// WithPolicy sets the whitespace policy.
func WithPolicy(p offsetmap.Policy) AppConfigOption {
	return func(c *AppConfig) { c.policy = p }
}

// Dir returns the resource directory.
func (c AppConfig) Dir() string { return c.dir }

// Resources returns the resource locations relative to Dir.
func (c AppConfig) Resources() Resources { return c.resources }

// LexiconDSN returns the lexicon database DSN.
func (c AppConfig) LexiconDSN() string { return c.lexiconDSN }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// InitWorkers returns the concurrent load limit.
func (c AppConfig) InitWorkers() int { return c.initWorkers }

// Policy returns the whitespace policy.
func (c AppConfig) Policy() offsetmap.Policy { return c.policy }

// OSPath resolves a resource path against Dir for use with the os package.
func (c AppConfig) OSPath(rel string) string {
	return filepath.Join(c.dir, filepath.FromSlash(rel))
}

// FSPath cleans a resource path for a filesystem rooted at Dir.
func FSPath(rel string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")
}

func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatText
	}
}
