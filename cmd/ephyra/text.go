package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kittclouds/ephyrapart/pkg/nlp"
	"github.com/kittclouds/ephyrapart/pkg/offsetmap"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

func tokenizeCmd(opts *options) *cobra.Command {
	var chunks bool

	cmd := &cobra.Command{
		Use:   "tokenize [text...]",
		Short: "Split text into sentences and tokens",
		Long: `Split text into sentences and tokens. Reads stdin when no text is given.
Text output prints one sentence per line. With --chunks it prints one
"word TAG CHUNK" line per token with B-/I-/O chunk tags and a blank line
after each sentence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			part, err := openPart(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer part.Close()

			doc, err := part.Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}
			return render(cmd, opts, doc, func(w io.Writer) error {
				if chunks {
					return writeChunks(w, doc.Sentences)
				}
				for _, s := range doc.Sentences {
					if _, err := fmt.Fprintln(w, strings.Join(nlp.Words(s.Tokens), " ")); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&chunks, "chunks", false, "Print tagged tokens with their chunk tags")
	return cmd
}

// writeChunks prints sentences in the word/tag/chunk column format.
func writeChunks(w io.Writer, sentences []nlp.Sentence) error {
	for _, s := range sentences {
		iob := chunker.IOB(chunker.ChunkResult{Chunks: s.Chunks, Tokens: s.Tokens})
		for i, tok := range s.Tokens {
			if _, err := fmt.Fprintf(w, "%s %s %s\n", tok.Text, tok.Tag, iob[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

type taggedLine struct {
	Text   string `json:"text"`
	Tagged string `json:"tagged"`
}

func tagCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tag [sentence...]",
		Short: "Tag words with Penn Treebank part-of-speech tags",
		Long:  "Tag each argument, or each line of stdin, as word/TAG pairs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(cmd, args)
			if err != nil {
				return err
			}

			part, err := openPart(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer part.Close()

			out := make([]taggedLine, 0, len(lines))
			for _, line := range lines {
				tagged, err := part.TagPos(line)
				if err != nil {
					return err
				}
				out = append(out, taggedLine{Text: line, Tagged: tagged})
			}
			return render(cmd, opts, out, func(w io.Writer) error {
				for _, l := range out {
					if _, err := fmt.Fprintln(w, l.Tagged); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

type stemmed struct {
	Word string `json:"word"`
	Stem string `json:"stem"`
}

func stemCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stem [word...]",
		Short: "Reduce words to their Porter2 stems",
		RunE: func(cmd *cobra.Command, args []string) error {
			var words []string
			if len(args) > 0 {
				words = args
			} else {
				text, err := readInput(cmd, nil)
				if err != nil {
					return err
				}
				words = strings.Fields(text)
			}

			part, err := openPart(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer part.Close()

			stems, err := part.Stem(words...)
			if err != nil {
				return err
			}
			out := make([]stemmed, len(words))
			for i := range words {
				out[i] = stemmed{Word: words[i], Stem: stems[i]}
			}
			return render(cmd, opts, out, func(w io.Writer) error {
				for _, s := range out {
					if _, err := fmt.Fprintf(w, "%s\t%s\n", s.Word, s.Stem); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

type mapResult struct {
	Original string             `json:"original"`
	Derived  string             `json:"derived"`
	Policy   string             `json:"policy"`
	Mapping  *offsetmap.Mapping `json:"mapping"`
}

func mapCmd(opts *options) *cobra.Command {
	var policy string

	cmd := &cobra.Command{
		Use:   "map [text...]",
		Short: "Normalize whitespace and print the offset mapping",
		Long: `Normalize whitespace and print the derived text with its offset mapping.
Each interval [start,end) +delta maps derived offsets in it to offset+delta in the input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			p, err := resolvePolicy(opts, policy)
			if err != nil {
				return err
			}

			derived, mapping := offsetmap.Build(text, p)
			res := mapResult{Original: text, Derived: derived, Policy: p.String(), Mapping: mapping}
			return render(cmd, opts, res, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "%q\n", derived); err != nil {
					return err
				}
				for _, iv := range mapping.Intervals() {
					if _, err := fmt.Fprintf(w, "[%d,%d) %+d\n", iv.DerivedStart, iv.DerivedEnd, iv.Delta); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "Whitespace policy: collapse, remove (default from EPHYRA_POLICY)")
	return cmd
}

// resolvePolicy prefers the flag and falls back to the configured policy.
func resolvePolicy(opts *options, flag string) (offsetmap.Policy, error) {
	if flag != "" {
		return offsetmap.ParsePolicy(flag)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return offsetmap.Collapse, err
	}
	return cfg.Policy(), nil
}
