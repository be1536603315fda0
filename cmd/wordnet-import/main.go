// Command wordnet-import loads the WordNet data files into a SQLite lexicon
// so later runs can open it with EPHYRA_LEXICON_DSN instead of parsing the
// dictionary on every start.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kittclouds/ephyrapart/internal/config"
	"github.com/kittclouds/ephyrapart/internal/lexicon"
	"github.com/kittclouds/ephyrapart/internal/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		envFile string
		dsn     string
		replace bool
	)

	cmd := &cobra.Command{
		Use:          "wordnet-import <lexicon.db>",
		Short:        "Import WordNet data files into a SQLite lexicon",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(envFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if len(args) == 1 {
				dsn = "file:" + args[0]
			}
			if dsn == "" {
				dsn = cfg.LexiconDSN()
			}
			if dsn == config.DefaultLexiconDSN {
				return fmt.Errorf("refusing to import into an in-memory lexicon; pass a database file")
			}

			fsys, err := cfg.ResourceFS()
			if err != nil {
				return err
			}

			logger := log.NewLogger(cfg).With("dsn", dsn)
			out := cmd.OutOrStdout()

			store, err := lexicon.NewSQLiteStoreWithDSN(dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.CountSynsets()
			if err != nil {
				return err
			}
			if n > 0 && !replace {
				fmt.Fprintf(out, "Lexicon already holds %d synsets; use --replace to import again\n", n)
				return nil
			}

			logger.Info("Importing WordNet", "dir", cfg.Resources().WordNet)
			stats, err := lexicon.LoadWordNet(cmd.Context(), fsys, cfg.Resources().WordNet, store)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			fmt.Fprintf(out, "  ✓ %d data files\n", stats.Files)
			fmt.Fprintf(out, "  ✓ %d synsets\n", stats.Synsets)
			fmt.Fprintf(out, "  ✓ %d relations\n", stats.Relations)

			synsets, err := store.CountSynsets()
			if err != nil {
				return err
			}
			relations, err := store.CountRelations()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nLexicon now holds %d synsets and %d relations\n", synsets, relations)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "SQLite DSN to import into (default: EPHYRA_LEXICON_DSN)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Import even if the lexicon already has synsets")
	return cmd
}
