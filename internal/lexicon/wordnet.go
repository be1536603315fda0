package lexicon

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/hack-pad/hackpadfs"
)

// ErrNoWordNet is returned by LoadWordNet when dir holds none of the data files.
var ErrNoWordNet = errors.New("lexicon: no WordNet data files found")

// batchSize bounds how many synsets are written per UpsertBatch call.
const batchSize = 1000

var dataFiles = []struct {
	name string
	pos  string
}{
	{"data.noun", Noun},
	{"data.verb", Verb},
	{"data.adj", Adjective},
	{"data.adv", Adverb},
}

// pointerTypes maps WordNet pointer symbols to relation types. Unknown
// symbols are stored verbatim.
var pointerTypes = map[string]string{
	"@":  RelHypernym,
	"@i": RelInstanceHypernym,
	"~":  RelHyponym,
	"~i": RelInstanceHyponym,
	"!":  RelAntonym,
	"&":  RelSimilar,
	"#m": RelMemberHolonym,
	"#s": RelSubstanceHolonym,
	"#p": RelPartHolonym,
	"%m": RelMemberMeronym,
	"%s": RelSubstanceMeronym,
	"%p": RelPartMeronym,
	"=":  RelAttribute,
	"+":  RelDerivation,
	"*":  RelEntailment,
	">":  RelCause,
	"^":  RelAlso,
	"\\": RelPertainym,
	"<":  RelParticiple,
	"$":  RelVerbGroup,
}

// LoadStats reports what LoadWordNet wrote.
type LoadStats struct {
	Files     int `json:"files"`
	Synsets   int `json:"synsets"`
	Relations int `json:"relations"`
}

// LoadWordNet reads the WordNet data files in dir into store. Missing files
// are skipped; ctx is checked between batches.
func LoadWordNet(ctx context.Context, fsys hackpadfs.FS, dir string, store Storer) (LoadStats, error) {
	var stats LoadStats

	for _, df := range dataFiles {
		name := path.Join(dir, df.name)
		data, err := hackpadfs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("read %s: %w", name, err)
		}
		stats.Files++

		if err := loadDataFile(ctx, name, data, store, &stats); err != nil {
			return stats, err
		}
	}

	if stats.Files == 0 {
		return stats, fmt.Errorf("%w in %s", ErrNoWordNet, dir)
	}
	return stats, nil
}

func loadDataFile(ctx context.Context, name string, data []byte, store Storer, stats *LoadStats) error {
	var synsets []*Synset
	var relations []*Relation

	flush := func() error {
		if len(synsets) == 0 && len(relations) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := store.UpsertBatch(synsets, relations); err != nil {
			return fmt.Errorf("store %s: %w", name, err)
		}
		stats.Synsets += len(synsets)
		stats.Relations += len(relations)
		synsets, relations = synsets[:0], relations[:0]
		return nil
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		// licence header lines start with spaces
		if line == "" || line[0] == ' ' {
			continue
		}

		syn, rels, err := ParseDataLine(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		synsets = append(synsets, syn)
		relations = append(relations, rels...)

		if len(synsets) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", name, err)
	}
	return flush()
}

// ParseDataLine parses one line of a WordNet data file:
//
//	offset lex_filenum ss_type w_cnt word lex_id [word lex_id...] p_cnt [ptr...] [frames...] | gloss
//
// w_cnt is two hex digits; p_cnt is decimal; each pointer is
// "symbol offset pos source/target".
func ParseDataLine(line string) (*Synset, []*Relation, error) {
	head, gloss, _ := strings.Cut(line, "|")
	f := strings.Fields(head)
	if len(f) < 4 {
		return nil, nil, fmt.Errorf("too few fields")
	}

	offset, ssType := f[0], f[2]
	if _, err := strconv.ParseUint(offset, 10, 32); err != nil {
		return nil, nil, fmt.Errorf("bad synset offset %q", offset)
	}
	pos, err := normalizePOS(ssType)
	if err != nil {
		return nil, nil, err
	}
	syn := &Synset{ID: pos + offset, POS: pos, Gloss: strings.TrimSpace(gloss)}

	wcnt, err := strconv.ParseUint(f[3], 16, 16)
	if err != nil {
		return nil, nil, fmt.Errorf("bad w_cnt %q", f[3])
	}
	i := 4
	if len(f) < i+int(wcnt)*2+1 {
		return nil, nil, fmt.Errorf("truncated word list")
	}
	for w := 0; w < int(wcnt); w++ {
		syn.Lemmas = append(syn.Lemmas, stripMarker(f[i]))
		i += 2
	}

	pcnt, err := strconv.Atoi(f[i])
	if err != nil {
		return nil, nil, fmt.Errorf("bad p_cnt %q", f[i])
	}
	i++
	if len(f) < i+pcnt*4 {
		return nil, nil, fmt.Errorf("truncated pointer list")
	}

	var rels []*Relation
	for p := 0; p < pcnt; p++ {
		symbol, target, targetPOS := f[i], f[i+1], f[i+2]
		i += 4

		tpos, err := normalizePOS(targetPOS)
		if err != nil {
			return nil, nil, err
		}
		typ, ok := pointerTypes[symbol]
		if !ok {
			typ = symbol
		}
		rel := &Relation{SourceID: syn.ID, TargetID: tpos + target, Type: typ}
		if !containsRelation(rels, rel) {
			rels = append(rels, rel)
		}
	}
	return syn, rels, nil
}

func normalizePOS(p string) (string, error) {
	switch p {
	case Noun, Verb, Adjective, Adverb:
		return p, nil
	case "s":
		return Adjective, nil
	}
	return "", fmt.Errorf("unknown part of speech %q", p)
}

// stripMarker removes adjective position markers: "abaxial(p)" -> "abaxial".
func stripMarker(word string) string {
	if i := strings.IndexByte(word, '('); i > 0 && strings.HasSuffix(word, ")") {
		return word[:i]
	}
	return word
}

func containsRelation(rels []*Relation, rel *Relation) bool {
	for _, r := range rels {
		if *r == *rel {
			return true
		}
	}
	return false
}
