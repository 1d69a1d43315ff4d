package ngram

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

const (
	// DefaultLength is the number of tokens Generate appends beyond the
	// seed when WithLength is not given.
	DefaultLength = 10
	// DefaultTemperature is the sampling temperature Generate uses when
	// WithTemperature is not given.
	DefaultTemperature = 0.8
)

// generateOptions is used by Generate to configure default options.
type generateOptions struct {
	length      int
	temperature float64
}

// GenerateOption is a function that configures generation parameters. It's
// used as a variadic argument to Generate.
type GenerateOption func(*generateOptions)

// WithLength sets how many tokens to append beyond the seed. Zero is valid
// and returns the seed unchanged; negative values are rejected.
func WithLength(n int) GenerateOption {
	return func(o *generateOptions) { o.length = n }
}

// WithTemperature sets the sampling temperature for every step of the
// generation. Values approaching zero make each step deterministic
// (highest-count continuation wins); large values flatten the draw toward
// uniform over the observed continuations. Non-positive values are rejected.
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

// Generate extends the seed with up to the configured number of sampled
// tokens and returns the full sequence, seed included. At every step the
// trailing order-1 tokens of the in-progress sequence form the next lookup
// context.
//
// A dead end (unknown context) after at least one successful step
// terminates generation early and returns the partial sequence as a valid,
// shorter-than-requested result. If even the initial seed context is
// unknown, no prediction was ever possible and the whole call fails with
// ErrUnknownContext.
//
// Cycles such as "a b a b ..." are valid output when the corpus statistics
// produce them; Generate applies no repetition suppression.
func (s *Sampler) Generate(m *Model, seed []string, opts ...GenerateOption) ([]string, error) {
	options := &generateOptions{
		length:      DefaultLength,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.length < 0 {
		return nil, fmt.Errorf("%w: length must be non-negative, got %d", ErrInvalidParameter, options.length)
	}
	if options.temperature <= 0 {
		return nil, fmt.Errorf("%w: temperature must be positive, got %g", ErrInvalidParameter, options.temperature)
	}
	if len(seed) == 0 {
		return nil, ErrEmptyPrefix
	}

	sequence := slices.Clone(seed)
	for appended := 0; appended < options.length; appended++ {
		next, err := s.Predict(m, sequence, options.temperature)
		if err != nil {
			if errors.Is(err, ErrUnknownContext) && appended > 0 {
				s.logger.Debug("generation terminated at dead end",
					slog.Int("requested_length", options.length),
					slog.Int("appended", appended),
				)
				return sequence, nil
			}
			return nil, err
		}
		sequence = append(sequence, next)
	}
	return sequence, nil
}
