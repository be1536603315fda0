package indices

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hack-pad/hackpadfs"
)

// VerbForms are the principal parts of an irregular verb.
type VerbForms struct {
	Infinitive     string   `json:"infinitive"`
	SimplePast     []string `json:"simplePast"`
	PastParticiple []string `json:"pastParticiple"`
}

// IrregularVerbs maps irregular verb forms to their infinitives.
type IrregularVerbs struct {
	forms map[string]*VerbForms
	// inflected form -> infinitives
	infinitives map[string][]string
}

// LoadIrregularVerbs reads lines "infinitive<TAB>simple past<TAB>past
// participle". Alternatives within a column are separated by "/".
func LoadIrregularVerbs(fsys hackpadfs.FS, name string) (*IrregularVerbs, error) {
	v := newIrregularVerbs()
	err := readLines(fsys, name, func(_ int, line string) error {
		cols := strings.Split(line, "\t")
		if len(cols) != 3 {
			return fmt.Errorf("expected 3 tab-separated columns, got %d", len(cols))
		}
		return v.add(cols[0], splitAlternatives(cols[1]), splitAlternatives(cols[2]))
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func newIrregularVerbs() *IrregularVerbs {
	return &IrregularVerbs{
		forms:       make(map[string]*VerbForms),
		infinitives: make(map[string][]string),
	}
}

func splitAlternatives(col string) []string {
	var out []string
	for _, alt := range strings.Split(col, "/") {
		if a := normalize(alt); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func (v *IrregularVerbs) add(infinitive string, past, participle []string) error {
	inf := normalize(infinitive)
	if inf == "" || len(past) == 0 || len(participle) == 0 {
		return fmt.Errorf("incomplete entry for %q", infinitive)
	}

	vf, ok := v.forms[inf]
	if !ok {
		vf = &VerbForms{Infinitive: inf}
		v.forms[inf] = vf
	}
	vf.SimplePast = appendNew(vf.SimplePast, past...)
	vf.PastParticiple = appendNew(vf.PastParticiple, participle...)

	for _, f := range append(past, participle...) {
		v.infinitives[f] = appendNew(v.infinitives[f], inf)
	}
	return nil
}

// Infinitive returns the infinitive of an irregular past or participle form.
// Forms shared by several verbs ("found": find, found) return the first listed.
func (v *IrregularVerbs) Infinitive(form string) (string, bool) {
	infs := v.infinitives[normalize(form)]
	if len(infs) == 0 {
		return "", false
	}
	return infs[0], true
}

// Infinitives returns every infinitive form may belong to.
func (v *IrregularVerbs) Infinitives(form string) []string {
	return append([]string(nil), v.infinitives[normalize(form)]...)
}

// Forms returns the principal parts of an irregular infinitive.
func (v *IrregularVerbs) Forms(infinitive string) (VerbForms, bool) {
	vf, ok := v.forms[normalize(infinitive)]
	if !ok {
		return VerbForms{}, false
	}
	return VerbForms{
		Infinitive:     vf.Infinitive,
		SimplePast:     append([]string(nil), vf.SimplePast...),
		PastParticiple: append([]string(nil), vf.PastParticiple...),
	}, true
}

// IsIrregular reports whether word is an irregular infinitive or inflection.
func (v *IrregularVerbs) IsIrregular(word string) bool {
	w := normalize(word)
	_, isInf := v.forms[w]
	return isInf || len(v.infinitives[w]) > 0
}

// Len returns the number of verbs.
func (v *IrregularVerbs) Len() int {
	return len(v.forms)
}

// Verbs returns the infinitives, sorted.
func (v *IrregularVerbs) Verbs() []string {
	out := make([]string, 0, len(v.forms))
	for inf := range v.forms {
		out = append(out, inf)
	}
	sort.Strings(out)
	return out
}

func appendNew(slice []string, items ...string) []string {
outer:
	for _, it := range items {
		for _, s := range slice {
			if s == it {
				continue outer
			}
		}
		slice = append(slice, it)
	}
	return slice
}
