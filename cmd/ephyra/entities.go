package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kittclouds/ephyrapart/pkg/netagger"
)

// styles holds color formatters for entity output
type styles struct {
	entity *color.Color
	typ    *color.Color
	source *color.Color
}

// newStyles creates color formatters
// enabled=false respects --color=never and NO_COLOR env var
func newStyles(enabled bool) *styles {
	s := &styles{
		entity: color.New(color.Bold, color.FgYellow),
		typ:    color.New(color.FgHiBlue),
		source: color.New(color.FgHiBlack),
	}
	if !enabled {
		s.entity.DisableColor()
		s.typ.DisableColor()
		s.source.DisableColor()
	}
	return s
}

// colorEnabled resolves the --color flag.
func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
	}
}

type entitiesResult struct {
	Text     string            `json:"text"`
	Entities []netagger.Entity `json:"entities"`
}

func entitiesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "entities [text...]",
		Short: "Find named entities",
		Long: `Find named entities with the gazetteer lists, the regex patterns and the
statistical name chunker. Text output highlights each entity in the input and lists
its type and byte range.`,
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

			entities, err := part.Entities(text)
			if err != nil {
				return err
			}
			res := entitiesResult{Text: text, Entities: entities}
			return render(cmd, opts, res, func(w io.Writer) error {
				return writeEntities(w, newStyles(colorEnabled(opts.color)), text, entities)
			})
		},
	}
}

// writeEntities prints text with the outermost entities highlighted, then
// one line per entity.
func writeEntities(w io.Writer, s *styles, text string, entities []netagger.Entity) error {
	pos := 0
	for _, e := range entities {
		if e.Range.Start < pos {
			continue // nested or overlapping; listed below
		}
		fmt.Fprint(w, text[pos:e.Range.Start])
		s.entity.Fprint(w, text[e.Range.Start:e.Range.End])
		pos = e.Range.End
	}
	if _, err := fmt.Fprintln(w, text[pos:]); err != nil {
		return err
	}

	for _, e := range entities {
		_, err := fmt.Fprintf(w, "%s\t%q\t[%d,%d)\t%s\n",
			s.typ.Sprint(e.Type), e.Text, e.Range.Start, e.Range.End, s.source.Sprint(e.Source))
		if err != nil {
			return err
		}
	}
	return nil
}
