package ngram

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
)

// Sampler draws next-token predictions from a Model. It owns the random
// source used for every draw, so two samplers created with the same seed
// produce identical output for identical inputs.
type Sampler struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// NewSampler returns a Sampler backed by a randomly seeded PCG source.
func NewSampler() *Sampler {
	return newSampler(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewSeededSampler returns a Sampler with a deterministic random source,
// intended for tests and reproducible generation runs.
func NewSeededSampler(seed uint64) *Sampler {
	return newSampler(rand.New(rand.NewPCG(seed, seed)))
}

func newSampler(rng *rand.Rand) *Sampler {
	return &Sampler{
		rng:    rng,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Sampler. By default, all logs are
// discarded.
func (s *Sampler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Predict draws a single next token for the given prefix. Only the last
// order-1 tokens of the prefix are used as the lookup context; a shorter
// prefix is looked up as-is and will simply miss if the model has no such
// context. A context with no observed continuations yields
// ErrUnknownContext; handling that (e.g. by stopping early) is the
// caller's job, never Predict's.
func (s *Sampler) Predict(m *Model, prefix []string, temperature float64) (string, error) {
	if temperature <= 0 {
		return "", fmt.Errorf("%w: temperature must be positive, got %g", ErrInvalidParameter, temperature)
	}
	if len(prefix) == 0 {
		return "", ErrEmptyPrefix
	}

	context := prefix
	if width := m.order - 1; len(context) > width {
		context = context[len(context)-width:]
	}

	fs, ok := m.lookup(context)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownContext, contextKey(context))
	}
	return s.sample(fs, temperature), nil
}

// sample performs one temperature-scaled categorical draw over a context's
// continuations. Each candidate is weighted by count^(1/T), computed in the
// log domain with the maximum subtracted before exponentiation so extreme
// counts and small temperatures stay finite. Equal counts receive equal
// weight, and the draw walks candidates in first-observed order, so ties
// resolve to a uniform choice among the tied tokens rather than depending
// on map iteration order.
func (s *Sampler) sample(fs *followSet, temperature float64) string {
	if len(fs.items) == 1 {
		return fs.items[0].Token
	}

	weights := make([]float64, len(fs.items))
	maxLog := math.Inf(-1)
	for i, c := range fs.items {
		lw := math.Log(float64(c.Count)) / temperature
		weights[i] = lw
		if lw > maxLog {
			maxLog = lw
		}
	}

	var total float64
	for i, lw := range weights {
		w := math.Exp(lw - maxLog)
		weights[i] = w
		total += w
	}

	draw := s.rng.Float64() * total
	for i, c := range fs.items {
		draw -= weights[i]
		if draw < 0 {
			return c.Token
		}
	}
	// Floating point rounding can leave draw marginally above zero after
	// the final subtraction; the last candidate owns that sliver.
	return fs.items[len(fs.items)-1].Token
}
