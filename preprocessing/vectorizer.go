package preprocessing

import (
	"regexp"
	"sort"
	"strings"

	"github.com/YuminosukeSato/gdlogit/core/model"
	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultMaxFeatures caps the vocabulary size.
	DefaultMaxFeatures = 3000
	// DefaultTokenPattern matches words of two or more word characters.
	DefaultTokenPattern = `\b\w\w+\b`
)

// CountVectorizer turns documents into term-count rows over a fixed
// vocabulary learned from a training corpus.
type CountVectorizer struct {
	state *model.StateManager

	maxFeatures int
	token       *regexp.Regexp
	binary      bool

	vocabulary map[string]int
	terms      []string
}

// VectorizerOption is a functional option for CountVectorizer
type VectorizerOption func(*CountVectorizer)

// WithMaxFeatures keeps only the n most frequent terms (n <= 0 keeps all).
func WithMaxFeatures(n int) VectorizerOption {
	return func(v *CountVectorizer) {
		v.maxFeatures = n
	}
}

// WithTokenPattern replaces the token regular expression.
func WithTokenPattern(re *regexp.Regexp) VectorizerOption {
	return func(v *CountVectorizer) {
		if re != nil {
			v.token = re
		}
	}
}

// WithBinary records presence (0/1) instead of counts.
func WithBinary(binary bool) VectorizerOption {
	return func(v *CountVectorizer) {
		v.binary = binary
	}
}

// NewCountVectorizer creates an unfitted vectorizer.
func NewCountVectorizer(opts ...VectorizerOption) *CountVectorizer {
	v := &CountVectorizer{
		state:       model.NewStateManager(),
		maxFeatures: DefaultMaxFeatures,
		token:       regexp.MustCompile(DefaultTokenPattern),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// FitVectorizer creates a vectorizer and fits it on corpus.
func FitVectorizer(corpus []string, opts ...VectorizerOption) (*CountVectorizer, error) {
	v := NewCountVectorizer(opts...)
	if err := v.Fit(corpus); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *CountVectorizer) tokenize(doc string) []string {
	return v.token.FindAllString(strings.ToLower(doc), -1)
}

// Fit learns the vocabulary. When the corpus has more distinct terms than
// the feature cap, the most frequent ones are kept, ties broken
// alphabetically. Column indices follow alphabetical term order.
func (v *CountVectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.NewModelError("CountVectorizer.Fit", "empty data", errors.ErrEmptyData)
	}

	counts := make(map[string]int)
	for _, doc := range corpus {
		for _, tok := range v.tokenize(doc) {
			counts[tok]++
		}
	}
	if len(counts) == 0 {
		return errors.NewValueError("CountVectorizer.Fit", "corpus contains no tokens")
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	if v.maxFeatures > 0 && len(terms) > v.maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if counts[terms[i]] != counts[terms[j]] {
				return counts[terms[i]] > counts[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.maxFeatures]
	}
	sort.Strings(terms)

	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
	}
	v.state.SetFitted(len(terms), len(corpus))
	return nil
}

// Transform returns one row per document with the count of every
// vocabulary term. Terms outside the vocabulary are ignored.
func (v *CountVectorizer) Transform(docs []string) (*mat.Dense, error) {
	if err := v.state.RequireFitted("CountVectorizer", "Transform"); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, errors.NewModelError("CountVectorizer.Transform", "empty data", errors.ErrEmptyData)
	}

	out := mat.NewDense(len(docs), len(v.terms), nil)
	for i, doc := range docs {
		row := out.RawRowView(i)
		for _, tok := range v.tokenize(doc) {
			j, ok := v.vocabulary[tok]
			if !ok {
				continue
			}
			if v.binary {
				row[j] = 1
			} else {
				row[j]++
			}
		}
	}
	return out, nil
}

// FitTransform fits on corpus and transforms it.
func (v *CountVectorizer) FitTransform(corpus []string) (*mat.Dense, error) {
	if err := v.Fit(corpus); err != nil {
		return nil, err
	}
	return v.Transform(corpus)
}

// Vocabulary returns the terms in column order.
func (v *CountVectorizer) Vocabulary() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Index returns the column of term, if it is in the vocabulary.
func (v *CountVectorizer) Index(term string) (int, bool) {
	j, ok := v.vocabulary[term]
	return j, ok
}
