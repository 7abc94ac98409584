package similar

import (
	"math"
	"slices"
)

// Vector is a sparse term-weight vector. A missing term has weight zero.
type Vector map[string]float64

// Corpus holds document frequencies for one ranking call.
type Corpus struct {
	docFreq map[string]int
	numDocs int
	tokens  [][]string
}

// NewCorpus tokenizes every text once and counts, per term, how many texts contain it.
func NewCorpus(texts []string) *Corpus {
	c := &Corpus{
		docFreq: make(map[string]int),
		numDocs: len(texts),
		tokens:  make([][]string, len(texts)),
	}
	for i, text := range texts {
		toks := Tokenize(text)
		c.tokens[i] = toks

		seen := make(map[string]struct{}, len(toks))
		for _, t := range toks {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			c.docFreq[t]++
		}
	}
	return c
}

// Len returns the number of documents in the corpus.
func (c *Corpus) Len() int { return c.numDocs }

// Tokens returns the tokens of the i-th document.
func (c *Corpus) Tokens(i int) []string { return c.tokens[i] }

// IDF returns ln((1+N)/(1+df)). It decreases with df, is zero for a term present
// in every document and is never negative. Unseen terms return 0.
func (c *Corpus) IDF(term string) float64 {
	df := c.docFreq[term]
	if df == 0 {
		return 0
	}
	return math.Log(float64(1+c.numDocs) / float64(1+df))
}

// Vectorize weights tokens by tf * idf. tf is the token count divided by len(tokens).
// Zero-weight terms are omitted.
func (c *Corpus) Vectorize(tokens []string) Vector {
	vec := make(Vector)
	if len(tokens) == 0 {
		return vec
	}

	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}

	total := float64(len(tokens))
	for term, n := range counts {
		w := float64(n) / total * c.IDF(term)
		if w > 0 {
			vec[term] = w
		}
	}
	return vec
}

// Vectorize builds corpus statistics over corpusTexts and returns the vector of text.
// text should itself be one of corpusTexts.
func Vectorize(text string, corpusTexts []string) Vector {
	return NewCorpus(corpusTexts).Vectorize(Tokenize(text))
}

// Magnitude returns the Euclidean norm of v.
func (v Vector) Magnitude() float64 {
	var sum float64
	for _, term := range v.terms() {
		sum += v[term] * v[term]
	}
	return math.Sqrt(sum)
}

// terms returns the keys of v in sorted order so float sums do not depend on map iteration.
func (v Vector) terms() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Cosine returns the cosine similarity of a and b in [0, 1].
// Zero-magnitude input yields 0.
func Cosine(a, b Vector) float64 {
	return cosineWithNorms(a, a.terms(), b, a.Magnitude(), b.Magnitude())
}
