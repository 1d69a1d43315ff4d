package ngram

import "errors"

var (
	// ErrInsufficientData is returned by Build when the corpus is too short
	// to form even one context/continuation pair for the requested order.
	ErrInsufficientData = errors.New("ngram: insufficient training data")

	// ErrUnknownContext is returned by Predict when the lookup context was
	// never observed during training. Generate converts this into early
	// termination once at least one token has been appended.
	ErrUnknownContext = errors.New("ngram: unknown context")

	// ErrInvalidParameter is returned for malformed direct arguments such as
	// a non-positive temperature, a negative length, or an unsupported order.
	ErrInvalidParameter = errors.New("ngram: invalid parameter")

	// ErrEmptyPrefix is returned when a prediction is requested with no
	// prefix tokens at all, leaving nothing to form a context from.
	ErrEmptyPrefix = errors.New("ngram: empty prefix")
)
