package ngram

import (
	"fmt"
	"strings"
)

const (
	// MinOrder is the smallest supported model order (bigram).
	MinOrder = 2
	// MaxOrder is the largest supported model order (trigram).
	MaxOrder = 3
)

// Continuation is a single observed next token for some context, together
// with the number of times it followed that context in the training corpus.
type Continuation struct {
	Token string
	Count int
}

// followSet holds the continuations observed for one context. The items
// slice preserves first-observed order, which is what makes tie-breaking
// between equal-count tokens deterministic instead of map-order dependent.
type followSet struct {
	items []Continuation
	index map[string]int // token -> position in items
	total int
}

func (f *followSet) add(token string) {
	if i, ok := f.index[token]; ok {
		f.items[i].Count++
	} else {
		f.index[token] = len(f.items)
		f.items = append(f.items, Continuation{Token: token, Count: 1})
	}
	f.total++
}

// Model is an immutable frequency table mapping every context of order-1
// consecutive tokens to the multiset of tokens observed to follow it.
// Build is the only way to obtain one; after that it is read-only.
type Model struct {
	order       int
	contexts    map[string]*followSet
	transitions int
}

// Build constructs a Model of the given order from an ordered token
// sequence by sliding a window of width order across it with stride one.
// The first order-1 tokens of each window form the context, the last is
// the continuation. Order must be MinOrder or MaxOrder, and the corpus
// must contain at least order tokens.
func Build(tokens []string, order int) (*Model, error) {
	if order < MinOrder || order > MaxOrder {
		return nil, fmt.Errorf("%w: order must be %d or %d, got %d", ErrInvalidParameter, MinOrder, MaxOrder, order)
	}
	if len(tokens) < order {
		return nil, fmt.Errorf("%w: need at least %d tokens for order %d, got %d", ErrInsufficientData, order, order, len(tokens))
	}

	m := &Model{
		order:    order,
		contexts: make(map[string]*followSet),
	}
	width := order - 1
	for i := 0; i+order <= len(tokens); i++ {
		key := contextKey(tokens[i : i+width])
		fs, ok := m.contexts[key]
		if !ok {
			fs = &followSet{index: make(map[string]int)}
			m.contexts[key] = fs
		}
		fs.add(tokens[i+width])
		m.transitions++
	}
	return m, nil
}

// Order returns the n-gram order of the model.
func (m *Model) Order() int { return m.order }

// Contexts returns the number of distinct contexts observed in training.
func (m *Model) Contexts() int { return len(m.contexts) }

// Transitions returns the total continuation count across all contexts.
// For a corpus of L tokens this is always L - order + 1.
func (m *Model) Transitions() int { return m.transitions }

// Continuations returns a copy of the observed continuations for the given
// context, in first-observed order, and whether the context exists at all.
func (m *Model) Continuations(context []string) ([]Continuation, bool) {
	fs, ok := m.lookup(context)
	if !ok {
		return nil, false
	}
	out := make([]Continuation, len(fs.items))
	copy(out, fs.items)
	return out, true
}

func (m *Model) lookup(context []string) (*followSet, bool) {
	fs, ok := m.contexts[contextKey(context)]
	return fs, ok
}

// contextKey flattens a context tuple into a map key. Tokens are
// whitespace-normalized upstream, so a space join is unambiguous.
func contextKey(tokens []string) string {
	return strings.Join(tokens, " ")
}
