// Package analysis provides document-level readability metrics.
package analysis

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/kittclouds/ephyrapart/internal/indices"
	"github.com/kittclouds/ephyrapart/pkg/netagger"
	"github.com/kittclouds/ephyrapart/pkg/nlp"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

// wordsPerMinute is the assumed average reading speed.
const wordsPerMinute = 250.0

// MetricResult holds the computed stats
type MetricResult struct {
	WordCount        int     `json:"wordCount"`
	CharacterCount   int     `json:"charCount"`
	SentenceCount    int     `json:"sentCount"`
	ReadingTimeMin   float64 `json:"readingTimeMin"`
	ContentWordRatio float64 `json:"contentWordRatio"` // 0-1, function words excluded
	MeanRarity       float64 `json:"meanRarity"`       // bits, -log2 relative frequency
	FlowScore        float64 `json:"flowScore"`        // 0-100
	FlowTrend        []int   `json:"flowTrend"`        // Sparkline data
	SentenceVarScore float64 `json:"sentenceVarScore"` // 0-100
}

// Linker reports whether two words are semantically related, e.g. synonyms
// or hypernyms in a dictionary.
type Linker interface {
	Linked(word, other string) bool
}

// Analyzer computes metrics from an analyzed document. Every dependency is
// optional; missing ones leave their metrics at zero.
type Analyzer struct {
	FunctionWords *indices.FunctionWords
	Frequencies   *indices.WordFrequencies
	Links         Linker
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(fw *indices.FunctionWords, wf *indices.WordFrequencies, links Linker) *Analyzer {
	return &Analyzer{FunctionWords: fw, Frequencies: wf, Links: links}
}

// Analyze computes the full suite of metrics
func (a *Analyzer) Analyze(doc *nlp.Document, entities []netagger.Entity) MetricResult {
	var words []nlp.Token
	for _, tok := range doc.Tokens() {
		if tok.POS != chunker.Punctuation {
			words = append(words, tok)
		}
	}

	res := MetricResult{
		WordCount:      len(words),
		CharacterCount: utf8.RuneCountInString(doc.Text),
		SentenceCount:  len(doc.Sentences),
		ReadingTimeMin: float64(len(words)) / wordsPerMinute,
	}
	if len(words) == 0 {
		return res
	}

	res.ContentWordRatio, res.MeanRarity = a.lexicalStats(words)
	res.FlowScore, res.FlowTrend = a.computeFlow(doc, entities)
	res.SentenceVarScore = sentenceVariety(doc)
	return res
}

func (a *Analyzer) isFunctionWord(w string) bool {
	return a.FunctionWords != nil && a.FunctionWords.Contains(w)
}

func (a *Analyzer) lexicalStats(words []nlp.Token) (ratio, rarity float64) {
	content := 0
	bits := 0.0
	for _, w := range words {
		if a.isFunctionWord(w.Text) {
			continue
		}
		content++
		if a.Frequencies != nil && a.Frequencies.Total() > 0 {
			// unseen words count as seen once
			count := math.Max(float64(a.Frequencies.Lookup(w.Text)), 1)
			bits += -math.Log2(count / float64(a.Frequencies.Total()+1))
		}
	}
	ratio = float64(content) / float64(len(words))
	if content > 0 && a.Frequencies != nil {
		rarity = bits / float64(content)
	}
	return ratio, rarity
}

// computeFlow scores continuity between consecutive sentences: shared
// entities or noun heads keep the score high, related words (through Links)
// keep it moderate, and a jump between unrelated subjects lowers it.
func (a *Analyzer) computeFlow(doc *nlp.Document, entities []netagger.Entity) (float64, []int) {
	if len(doc.Sentences) < 2 {
		return 100.0, []int{100}
	}

	sentTerms := make([]map[string]bool, len(doc.Sentences))
	for i, s := range doc.Sentences {
		sentTerms[i] = make(map[string]bool)
		for _, ch := range s.Chunks {
			if ch.Kind == chunker.NounPhrase {
				if head := strings.ToLower(ch.HeadText(doc.Text)); !a.isFunctionWord(head) {
					sentTerms[i][head] = true
				}
			}
		}
	}
	for _, e := range entities {
		if idx := findSentenceIndex(e.Range.Start, doc.Sentences); idx != -1 {
			sentTerms[idx][strings.ToLower(strings.Join(strings.Fields(e.Text), " "))] = true
		}
	}

	var scores []int
	totalScore := 0.0

	scores = append(scores, 100)
	totalScore += 100

	for i := 1; i < len(doc.Sentences); i++ {
		prevSet := sentTerms[i-1]
		currSet := sentTerms[i]

		// Base friction
		score := 70

		overlap := 0
		for term := range currSet {
			if prevSet[term] {
				overlap++
			}
		}
		if overlap > 0 {
			score += 30
		} else if a.linked(currSet, prevSet) {
			score += 15
		} else if len(currSet) > 0 && len(prevSet) > 0 {
			score -= 20
		}

		score = clamp(score, 0, 100)

		// Smoothing (weighted moving average)
		prevFinal := scores[len(scores)-1]
		smoothed := int(0.7*float64(score) + 0.3*float64(prevFinal))

		scores = append(scores, smoothed)
		totalScore += float64(smoothed)
	}

	return totalScore / float64(len(scores)), scores
}

func (a *Analyzer) linked(curr, prev map[string]bool) bool {
	if a.Links == nil {
		return false
	}
	for c := range curr {
		for p := range prev {
			if a.Links.Linked(c, p) {
				return true
			}
		}
	}
	return false
}

// sentenceVariety is the coefficient of variation of sentence lengths in
// words, as a percentage capped at 100.
func sentenceVariety(doc *nlp.Document) float64 {
	if len(doc.Sentences) < 2 {
		return 0
	}

	lengths := make([]float64, len(doc.Sentences))
	sum := 0.0
	for i, s := range doc.Sentences {
		for _, tok := range s.Tokens {
			if tok.POS != chunker.Punctuation {
				lengths[i]++
			}
		}
		sum += lengths[i]
	}
	mean := sum / float64(len(lengths))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	variance /= float64(len(lengths))
	return math.Min(100, math.Sqrt(variance)/mean*100)
}

func findSentenceIndex(offset int, sentences []nlp.Sentence) int {
	for i, s := range sentences {
		if offset >= s.Range.Start && offset < s.Range.End {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
