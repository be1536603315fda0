package nlp

import "strings"

// Tree is a constituency tree node. Preterminals carry a Word; Begin and End
// are byte offsets into the sentence the tree was built from.
type Tree struct {
	Label    string  `json:"label"`
	Word     string  `json:"word,omitempty"`
	Begin    int     `json:"begin"`
	End      int     `json:"end"`
	Children []*Tree `json:"children,omitempty"`
}

// IsPreterminal reports whether the node is a tag over a single word
func (t *Tree) IsPreterminal() bool {
	return len(t.Children) == 0 && t.Word != ""
}

// Leaves returns the preterminals in order
func (t *Tree) Leaves() []*Tree {
	var out []*Tree
	t.walk(func(n *Tree) {
		if n.IsPreterminal() {
			out = append(out, n)
		}
	})
	return out
}

// Find returns every node with the given label, in pre-order.
func (t *Tree) Find(label string) []*Tree {
	var out []*Tree
	t.walk(func(n *Tree) {
		if n.Label == label {
			out = append(out, n)
		}
	})
	return out
}

func (t *Tree) walk(fn func(*Tree)) {
	fn(t)
	for _, c := range t.Children {
		c.walk(fn)
	}
}

// String renders Penn Treebank bracket notation.
func (t *Tree) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Tree) write(b *strings.Builder) {
	b.WriteByte('(')
	b.WriteString(escapeWord(t.Label))
	if t.IsPreterminal() {
		b.WriteByte(' ')
		b.WriteString(escapeWord(t.Word))
	}
	for _, c := range t.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}

var bracketEscapes = strings.NewReplacer(
	"(", "-LRB-",
	")", "-RRB-",
	"[", "-LSB-",
	"]", "-RSB-",
	"{", "-LCB-",
	"}", "-RCB-",
)

func escapeWord(w string) string {
	return bracketEscapes.Replace(w)
}
