package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kittclouds/ephyrapart/pkg/ephyra"
	"github.com/kittclouds/ephyrapart/pkg/nlp"
)

// parsesSuffix is appended to an input file name to name its output.
const parsesSuffix = ".parses"

type parsed struct {
	Sentence string           `json:"sentence"`
	Parse    string           `json:"parse"`
	Result   *nlp.ParseResult `json:"result"`
}

func parseCmd(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "parse [sentence...]",
		Short: "Parse sentences into constituency trees",
		Long: `Parse each argument, or each line of stdin, into a bracketed tree.
With --file, every line of the file is parsed and the trees are written to
<file>.parses, one per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			part, err := openPart(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer part.Close()

			if file != "" {
				return parseFile(cmd, part, file)
			}

			lines, err := readLines(cmd, args)
			if err != nil {
				return err
			}
			out, err := parseAll(cmd, part, lines)
			if err != nil {
				return err
			}
			return render(cmd, opts, out, func(w io.Writer) error {
				for _, p := range out {
					if _, err := fmt.Fprintln(w, p.Parse); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Parse every line of this file into <file>.parses")
	return cmd
}

func parseAll(cmd *cobra.Command, part *ephyra.Part, lines []string) ([]parsed, error) {
	out := make([]parsed, 0, len(lines))
	for _, line := range lines {
		res, err := part.Parse(cmd.Context(), line)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", line, err)
		}
		out = append(out, parsed{Sentence: line, Parse: res.Tree.String(), Result: res})
	}
	return out, nil
}

// parseFile parses each non-empty line of name and writes the trees to
// name.parses.
func parseFile(cmd *cobra.Command, part *ephyra.Part, name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}

	out, err := parseAll(cmd, part, lines)
	if err != nil {
		return err
	}

	var b strings.Builder
	for _, p := range out {
		b.WriteString(p.Parse)
		b.WriteByte('\n')
	}

	target := name + parsesSuffix
	if err := os.WriteFile(target, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Parsed %d sentences into %s\n", len(out), target)
	return nil
}
