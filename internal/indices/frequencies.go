package indices

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hack-pad/hackpadfs"
)

// WordFrequencies holds corpus counts per word.
type WordFrequencies struct {
	counts map[string]int64
	total  int64
}

// LoadWordFrequencies reads lines "word<whitespace>count". A word listed
// twice has its counts summed.
func LoadWordFrequencies(fsys hackpadfs.FS, name string) (*WordFrequencies, error) {
	wf := &WordFrequencies{counts: make(map[string]int64)}
	err := readLines(fsys, name, func(_ int, line string) error {
		f := strings.Fields(line)
		if len(f) < 2 {
			return fmt.Errorf("expected word and count")
		}
		count, err := strconv.ParseInt(f[len(f)-1], 10, 64)
		if err != nil || count < 0 {
			return fmt.Errorf("bad count %q", f[len(f)-1])
		}
		word := normalize(strings.Join(f[:len(f)-1], " "))
		wf.counts[word] += count
		wf.total += count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wf, nil
}

// Lookup returns the count of word, 0 if unknown.
func (wf *WordFrequencies) Lookup(word string) int64 {
	if wf == nil {
		return 0
	}
	return wf.counts[normalize(word)]
}

// Total returns the sum of all counts.
func (wf *WordFrequencies) Total() int64 {
	if wf == nil {
		return 0
	}
	return wf.total
}

// RelativeFrequency returns count/total, 0 for an empty index.
func (wf *WordFrequencies) RelativeFrequency(word string) float64 {
	if wf.Total() == 0 {
		return 0
	}
	return float64(wf.Lookup(word)) / float64(wf.total)
}

// Len returns the number of distinct words.
func (wf *WordFrequencies) Len() int {
	if wf == nil {
		return 0
	}
	return len(wf.counts)
}
