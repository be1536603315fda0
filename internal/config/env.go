package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/kittclouds/ephyrapart/pkg/offsetmap"
)

// Prefix is the environment variable prefix.
const Prefix = "EPHYRA"

// EnvConfig holds all environment-based configuration.
// Field names map to environment variables with the EPHYRA_ prefix.
type EnvConfig struct {
	// Dir is the resource directory.
	// Env: EPHYRA_DIR (default: .)
	Dir string `envconfig:"DIR" default:"."`

	// Resource locations relative to Dir.
	Resources ResourcesEnv `envconfig:"RES"`

	// LexiconDSN is the SQLite DSN of the WordNet store.
	// Env: EPHYRA_LEXICON_DSN (default: :memory:)
	LexiconDSN string `envconfig:"LEXICON_DSN" default:":memory:"`

	// LogLevel is the log verbosity level.
	// Env: EPHYRA_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (text or json).
	// Env: EPHYRA_LOG_FORMAT (default: text)
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// InitWorkers bounds concurrent resource loading.
	// Env: EPHYRA_INIT_WORKERS (default: 4)
	InitWorkers int `envconfig:"INIT_WORKERS" default:"4"`

	// Policy is the whitespace policy (collapse or remove).
	// Env: EPHYRA_POLICY (default: collapse)
	Policy string `envconfig:"POLICY" default:"collapse"`
}

// ResourcesEnv holds resource paths. Env: EPHYRA_RES_*
type ResourcesEnv struct {
	NELists          string `envconfig:"NE_LISTS" default:"res/nlp/netagger/lists"`
	NEPatterns       string `envconfig:"NE_PATTERNS" default:"res/nlp/netagger/patterns.lst"`
	WordNet          string `envconfig:"WORDNET" default:"res/ontologies/wordnet/dict"`
	FunctionWords    string `envconfig:"FUNCTION_WORDS" default:"res/indices/functionwords_nonumbers"`
	Prepositions     string `envconfig:"PREPOSITIONS" default:"res/indices/prepositions"`
	IrregularVerbs   string `envconfig:"IRREGULAR_VERBS" default:"res/indices/irregularverbs"`
	WordFrequencies  string `envconfig:"WORD_FREQUENCIES" default:"res/indices/wordfrequencies"`
	QuestionPatterns string `envconfig:"QUESTION_PATTERNS" default:"res/patternlearning/questionpatterns"`
}

// LoadFromEnv loads configuration from EPHYRA_* environment variables.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix(Prefix)
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() (AppConfig, error) {
	cfg := NewAppConfig()

	if e.Dir != "" {
		cfg = applyOption(cfg, WithDir(e.Dir))
	}
	cfg = applyOption(cfg, WithResources(e.Resources.ToResources()))
	if e.LexiconDSN != "" {
		cfg = applyOption(cfg, WithLexiconDSN(e.LexiconDSN))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.InitWorkers > 0 {
		cfg = applyOption(cfg, WithInitWorkers(e.InitWorkers))
	}
	if e.Policy != "" {
		p, err := offsetmap.ParsePolicy(e.Policy)
		if err != nil {
			return AppConfig{}, fmt.Errorf("%s_POLICY: %w", Prefix, err)
		}
		cfg = applyOption(cfg, WithPolicy(p))
	}

	return cfg, nil
}

// ToResources converts ResourcesEnv, falling back to defaults for blanks.
func (r ResourcesEnv) ToResources() Resources {
	d := DefaultResources()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return FSPath(v)
	}
	return Resources{
		NELists:          pick(r.NELists, d.NELists),
		NEPatterns:       pick(r.NEPatterns, d.NEPatterns),
		WordNet:          pick(r.WordNet, d.WordNet),
		FunctionWords:    pick(r.FunctionWords, d.FunctionWords),
		Prepositions:     pick(r.Prepositions, d.Prepositions),
		IrregularVerbs:   pick(r.IrregularVerbs, d.IrregularVerbs),
		WordFrequencies:  pick(r.WordFrequencies, d.WordFrequencies),
		QuestionPatterns: pick(r.QuestionPatterns, d.QuestionPatterns),
	}
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}
