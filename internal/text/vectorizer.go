package text

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/truthlens/internal/worker"
)

// ErrNotFitted is returned when transforming with a vectorizer that has no vocabulary
var ErrNotFitted = errors.New("vectorizer is not fitted")

// Options configures a TF-IDF vectorizer
type Options struct {
	MaxFeatures int    `json:"max_features"`
	NGramMin    int    `json:"ngram_min"`
	NGramMax    int    `json:"ngram_max"`
	StopWords   string `json:"stop_words"`
}

// State is the frozen, serializable part of a fitted vectorizer.
// Terms are in feature index order.
type State struct {
	Options Options   `json:"options"`
	Terms   []string  `json:"terms"`
	IDF     []float64 `json:"idf"`
}

// Vectorizer converts text into L2-normalised TF-IDF vectors over a vocabulary
// of unigrams and bigrams. It is read-only once fitted.
type Vectorizer struct {
	opts  Options
	stop  map[string]struct{}
	vocab map[string]int
	terms []string
	idf   []float64
}

// NewVectorizer creates an unfitted vectorizer
func NewVectorizer(opts Options) (*Vectorizer, error) {
	if opts.NGramMin <= 0 {
		opts.NGramMin = 1
	}
	if opts.NGramMax < opts.NGramMin {
		return nil, fmt.Errorf("invalid n-gram range [%d, %d]", opts.NGramMin, opts.NGramMax)
	}
	stop, err := StopWords(opts.StopWords)
	if err != nil {
		return nil, err
	}
	return &Vectorizer{opts: opts, stop: stop}, nil
}

// FromState restores a fitted vectorizer
func FromState(s State) (*Vectorizer, error) {
	if len(s.Terms) != len(s.IDF) {
		return nil, fmt.Errorf("vectorizer state has %d terms but %d idf weights", len(s.Terms), len(s.IDF))
	}
	v, err := NewVectorizer(s.Options)
	if err != nil {
		return nil, err
	}

	v.vocab = make(map[string]int, len(s.Terms))
	for i, term := range s.Terms {
		if _, dup := v.vocab[term]; dup {
			return nil, fmt.Errorf("duplicate term %q in vectorizer state", term)
		}
		v.vocab[term] = i
	}
	v.terms = append([]string(nil), s.Terms...)
	v.idf = append([]float64(nil), s.IDF...)
	return v, nil
}

// State returns a copy of the fitted state
func (v *Vectorizer) State() State {
	return State{
		Options: v.opts,
		Terms:   append([]string(nil), v.terms...),
		IDF:     append([]float64(nil), v.idf...),
	}
}

// Fitted reports whether a vocabulary has been learned
func (v *Vectorizer) Fitted() bool {
	return v.vocab != nil
}

// Dim returns the vocabulary size
func (v *Vectorizer) Dim() int {
	return len(v.terms)
}

// Terms returns the vocabulary in feature index order
func (v *Vectorizer) Terms() []string {
	return append([]string(nil), v.terms...)
}

func (v *Vectorizer) analyze(doc string) []string {
	return NGrams(Tokenize(doc), v.opts.NGramMin, v.opts.NGramMax, v.stop)
}

// Fit learns the vocabulary and IDF weights from docs.
// The vocabulary keeps the MaxFeatures most frequent terms across the corpus,
// ties broken alphabetically, and indexes them in alphabetical order.
func (v *Vectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return errors.New("fit: no documents")
	}

	total := make(map[string]int)
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, gram := range v.analyze(doc) {
			total[gram]++
			if _, ok := seen[gram]; !ok {
				seen[gram] = struct{}{}
				df[gram]++
			}
		}
	}
	if len(total) == 0 {
		return errors.New("fit: empty vocabulary; documents contain only stop words")
	}

	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	if v.opts.MaxFeatures > 0 && len(terms) > v.opts.MaxFeatures {
		sort.SliceStable(terms, func(i, j int) bool {
			return total[terms[i]] > total[terms[j]]
		})
		terms = terms[:v.opts.MaxFeatures]
		sort.Strings(terms)
	}

	n := float64(len(docs))
	v.terms = terms
	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return nil
}

// Transform maps doc onto the fitted vocabulary. Unknown terms are ignored.
func (v *Vectorizer) Transform(doc string) (Vector, error) {
	if !v.Fitted() {
		return Vector{}, ErrNotFitted
	}

	counts := make(map[int]float64)
	for _, gram := range v.analyze(doc) {
		if idx, ok := v.vocab[gram]; ok {
			counts[idx]++
		}
	}

	vec := Vector{
		Dim:     len(v.terms),
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := counts[idx] * v.idf[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range vec.Values {
			vec.Values[k] /= norm
		}
	}
	return vec, nil
}

// TransformAll transforms docs on a worker pool, preserving input order
func (v *Vectorizer) TransformAll(ctx context.Context, docs []string, workers int) ([]Vector, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}
	return worker.Map(ctx, workers, docs, func(_ context.Context, doc string) (Vector, error) {
		return v.Transform(doc)
	})
}

// Fingerprint identifies the fitted feature space. Two vectorizers with the
// same fingerprint produce identical vectors for every input.
func (v *Vectorizer) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte

	writeInt := func(n int) {
		binary.BigEndian.PutUint64(buf[:], uint64(n))
		h.Write(buf[:])
	}

	writeInt(v.opts.NGramMin)
	writeInt(v.opts.NGramMax)
	h.Write([]byte(v.opts.StopWords))
	h.Write([]byte{0})
	writeInt(len(v.terms))
	for i, term := range v.terms {
		h.Write([]byte(term))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v.idf[i]))
		h.Write(buf[:])
	}

	return hex.EncodeToString(h.Sum(nil))
}
