package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kittclouds/ephyrapart/internal/lexicon"
	"github.com/kittclouds/ephyrapart/pkg/analysis"
	"github.com/kittclouds/ephyrapart/pkg/ephyra"
	"github.com/kittclouds/ephyrapart/pkg/question"
)

type wordnetResult struct {
	Word      string            `json:"word"`
	POS       string            `json:"pos"`
	Synsets   []*lexicon.Synset `json:"synsets"`
	Synonyms  []string          `json:"synonyms"`
	Hypernyms []string          `json:"hypernyms"`
	Hyponyms  []string          `json:"hyponyms"`
	Antonyms  []string          `json:"antonyms"`
}

func wordnetCmd(opts *options) *cobra.Command {
	var pos string

	cmd := &cobra.Command{
		Use:   "wordnet <word>",
		Short: "Look a word up in WordNet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			part, err := openPart(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer part.Close()

			dict := part.Dictionary()
			if dict == nil {
				return fmt.Errorf("wordnet: %w", ephyra.ErrNotInitialized)
			}
			res, err := lookupWord(dict, strings.Join(args, " "), pos)
			if err != nil {
				return err
			}
			return render(cmd, opts, res, func(w io.Writer) error {
				return writeWordnet(w, res)
			})
		},
	}

	cmd.Flags().StringVarP(&pos, "pos", "p", lexicon.Noun, "Part of speech: n, v, a, r")
	return cmd
}

func lookupWord(dict *lexicon.Dictionary, word, pos string) (wordnetResult, error) {
	res := wordnetResult{Word: word, POS: pos}
	var err error
	if res.Synsets, err = dict.Synsets(word, pos); err != nil {
		return res, err
	}
	if res.Synonyms, err = dict.Synonyms(word, pos); err != nil {
		return res, err
	}
	if res.Hypernyms, err = dict.Hypernyms(word, pos); err != nil {
		return res, err
	}
	if res.Hyponyms, err = dict.Hyponyms(word, pos); err != nil {
		return res, err
	}
	if res.Antonyms, err = dict.Antonyms(word, pos); err != nil {
		return res, err
	}
	return res, nil
}

func writeWordnet(w io.Writer, res wordnetResult) error {
	if len(res.Synsets) == 0 {
		_, err := fmt.Fprintf(w, "%q is not in WordNet as %s\n", res.Word, res.POS)
		return err
	}
	for _, syn := range res.Synsets {
		lemmas := make([]string, len(syn.Lemmas))
		for i, l := range syn.Lemmas {
			lemmas[i] = lexicon.DisplayLemma(l)
		}
		fmt.Fprintf(w, "%s  %s\n    %s\n", syn.ID, strings.Join(lemmas, ", "), syn.Gloss)
	}
	for _, row := range []struct {
		name  string
		words []string
	}{
		{"synonyms", res.Synonyms},
		{"hypernyms", res.Hypernyms},
		{"hyponyms", res.Hyponyms},
		{"antonyms", res.Antonyms},
	} {
		if len(row.words) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", row.name, strings.Join(row.words, ", ")); err != nil {
			return err
		}
	}
	return nil
}

type questionResult struct {
	Question        string                    `json:"question"`
	Interpretations []question.Interpretation `json:"interpretations"`
}

func questionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "question [question...]",
		Short: "Interpret questions with the question patterns",
		Long:  "Match each argument, or each line of stdin, against the question patterns and print the property asked for and its target.",
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

			out := make([]questionResult, 0, len(lines))
			for _, q := range lines {
				interps, err := part.Interpret(q)
				if err != nil {
					return err
				}
				out = append(out, questionResult{Question: q, Interpretations: interps})
			}
			return render(cmd, opts, out, func(w io.Writer) error {
				for _, r := range out {
					fmt.Fprintln(w, r.Question)
					if len(r.Interpretations) == 0 {
						fmt.Fprintln(w, "    no interpretation")
					}
					for _, in := range r.Interpretations {
						if _, err := fmt.Fprintf(w, "    %s: %s\n", in.Property, in.Target); err != nil {
							return err
						}
					}
				}
				return nil
			})
		},
	}
}

func statsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [text...]",
		Short: "Compute readability metrics",
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

			res, err := part.Stats(cmd.Context(), text)
			if err != nil {
				return err
			}
			return render(cmd, opts, res, func(w io.Writer) error {
				return writeStats(w, res)
			})
		},
	}
}

func writeStats(w io.Writer, r analysis.MetricResult) error {
	_, err := fmt.Fprintf(w, `words:              %d
characters:         %d
sentences:          %d
reading time:       %.1f min
content word ratio: %.2f
mean rarity:        %.2f bits
flow:               %.0f %v
sentence variety:   %.0f
`, r.WordCount, r.CharacterCount, r.SentenceCount, r.ReadingTimeMin,
		r.ContentWordRatio, r.MeanRarity, r.FlowScore, r.FlowTrend, r.SentenceVarScore)
	return err
}
