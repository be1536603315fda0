// Package main is the entry point for the ephyra CLI.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kittclouds/ephyrapart/internal/config"
	"github.com/kittclouds/ephyrapart/internal/log"
	"github.com/kittclouds/ephyrapart/pkg/ephyra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type options struct {
	envFile string
	dir     string
	format  string
	color   string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "ephyra",
		Short: "Ephyra NLP toolkit",
		Long: `Ephyra tokenizes, tags, chunks and parses English text, finds named entities,
looks words up in WordNet and matches questions against answer patterns. Every span
it prints is a byte range into the input exactly as given.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case formatText, formatJSON, formatYAML:
				return nil
			}
			return fmt.Errorf("unknown output format: %s", opts.format)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	flags.StringVar(&opts.dir, "dir", "", "Resource directory (overrides EPHYRA_DIR)")
	flags.StringVarP(&opts.format, "output", "o", formatText, "Output format: text, json, yaml")
	flags.StringVar(&opts.color, "color", "auto", "Color output: auto, always, never")

	cmd.AddCommand(tokenizeCmd(opts))
	cmd.AddCommand(tagCmd(opts))
	cmd.AddCommand(parseCmd(opts))
	cmd.AddCommand(entitiesCmd(opts))
	cmd.AddCommand(stemCmd(opts))
	cmd.AddCommand(wordnetCmd(opts))
	cmd.AddCommand(questionCmd(opts))
	cmd.AddCommand(statsCmd(opts))
	cmd.AddCommand(mapCmd(opts))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(opts *options) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(opts.envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	if opts.dir != "" {
		cfg = config.NewAppConfigWithOptions(
			config.WithDir(opts.dir),
			config.WithResources(cfg.Resources()),
			config.WithLexiconDSN(cfg.LexiconDSN()),
			config.WithLogLevel(cfg.LogLevel()),
			config.WithLogFormat(cfg.LogFormat()),
			config.WithInitWorkers(cfg.InitWorkers()),
			config.WithPolicy(cfg.Policy()),
		)
	}
	return cfg, nil
}

// openPart loads configuration and initializes every service. Steps that
// fail are logged; commands report ErrNotInitialized if they need one.
func openPart(ctx context.Context, opts *options) (*ephyra.Part, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	fsys, err := cfg.ResourceFS()
	if err != nil {
		return nil, err
	}

	part := ephyra.New(cfg, log.NewLogger(cfg), fsys)
	if _, err := part.Init(ctx); err != nil {
		part.Close()
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return part, nil
}

// readInput joins args, or reads stdin when there are none.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

// readLines returns the non-empty lines of args or stdin.
func readLines(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var out []string
	sc := bufio.NewScanner(cmd.InOrStdin())
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, sc.Text())
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return out, nil
}

// render writes v in the selected format; text uses the command's own
// writer.
func render(cmd *cobra.Command, opts *options, v any, text func(w io.Writer) error) error {
	out := cmd.OutOrStdout()
	switch opts.format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		return writeYAML(out, v)
	default:
		return text(out)
	}
}

// writeYAML encodes v through its JSON form so field names and custom
// marshalers match the JSON output.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
