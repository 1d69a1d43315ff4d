// Package rating adjusts generation parameters from user feedback.
//
// A Controller owns a single bounded parameter set (currently just the
// sampling temperature) and folds discrete or numeric feedback signals
// into it. Positive feedback sharpens future generations by lowering the
// temperature; negative feedback raises it toward more exploration. Every
// adjustment, including how clamping changed it, lands in an append-only
// history.
package rating

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrInvalidFeedback is returned for feedback that is neither "good",
// "bad", nor an integer between 1 and 10. The current parameters are left
// unchanged.
var ErrInvalidFeedback = errors.New("rating: invalid feedback")

// Feedback rating scale boundaries and the neutral midpoint of the numeric
// mapping: ratings above the midpoint pull the temperature down, ratings
// below push it up.
const (
	MinRating      = 1
	MaxRating      = 10
	ratingMidpoint = 5.5
)

// Params is a snapshot of the generation parameters the controller manages.
// Callers always receive a copy, never a live handle.
type Params struct {
	Temperature float64 `json:"temperature"`
}

// Adjustment records a single applied feedback event. Requested is the
// pre-clamp delta the feedback asked for; Applied is the delta that
// actually took effect after clamping to the configured bounds.
type Adjustment struct {
	Feedback  string    `json:"feedback"`
	Requested float64   `json:"requested_delta"`
	Applied   float64   `json:"applied_delta"`
	Before    float64   `json:"temperature_before"`
	After     float64   `json:"temperature_after"`
	At        time.Time `json:"at"`
}

// Config holds the tunables for a Controller.
type Config struct {
	// Step is the fixed temperature delta for categorical feedback.
	Step float64 `json:"step"`
	// Scale converts a numeric rating's distance from the midpoint into a
	// temperature delta: delta = (midpoint - rating) * Scale.
	Scale float64 `json:"scale"`
	// MinTemperature and MaxTemperature bound the temperature after every
	// adjustment. Clamping is silent.
	MinTemperature float64 `json:"min_temperature"`
	MaxTemperature float64 `json:"max_temperature"`
	// InitialTemperature is the temperature before any feedback arrives.
	InitialTemperature float64 `json:"initial_temperature"`
}

// DefaultConfig returns the standard controller tuning.
func DefaultConfig() Config {
	return Config{
		Step:               0.1,
		Scale:              0.05,
		MinTemperature:     0.1,
		MaxTemperature:     2.0,
		InitialTemperature: 0.8,
	}
}

// Controller maintains bounded generation parameters and an adjustment
// history. Feedback applications are serialized by a write lock; parameter
// reads may proceed concurrently against the last committed snapshot.
type Controller struct {
	mu      sync.RWMutex
	cfg     Config
	params  Params
	history []Adjustment
	logger  *slog.Logger
}

// NewController returns a Controller using the given config. Zero-valued
// fields fall back to DefaultConfig, and the initial temperature is
// clamped into the configured bounds.
func NewController(cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.Scale <= 0 {
		cfg.Scale = def.Scale
	}
	if cfg.MinTemperature <= 0 {
		cfg.MinTemperature = def.MinTemperature
	}
	if cfg.MaxTemperature <= cfg.MinTemperature {
		cfg.MaxTemperature = def.MaxTemperature
	}
	if cfg.InitialTemperature <= 0 {
		cfg.InitialTemperature = def.InitialTemperature
	}
	return &Controller{
		cfg:    cfg,
		params: Params{Temperature: clamp(cfg.InitialTemperature, cfg.MinTemperature, cfg.MaxTemperature)},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Controller. By default, all logs are
// discarded.
func (c *Controller) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// ApplyFeedback folds a single feedback token into the parameters and
// returns the post-adjustment snapshot. Accepted values are "good", "bad",
// or a string parseable as an integer in [1,10]; anything else fails with
// ErrInvalidFeedback and leaves the parameters untouched.
func (c *Controller) ApplyFeedback(feedback string) (Params, error) {
	delta, err := feedbackDelta(c.cfg, feedback)
	if err != nil {
		return c.Params(), err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.params.Temperature
	after := clamp(before+delta, c.cfg.MinTemperature, c.cfg.MaxTemperature)
	c.params.Temperature = after
	c.history = append(c.history, Adjustment{
		Feedback:  feedback,
		Requested: delta,
		Applied:   after - before,
		Before:    before,
		After:     after,
		At:        time.Now(),
	})

	c.logger.Debug("feedback applied",
		slog.String("feedback", feedback),
		slog.Float64("requested_delta", delta),
		slog.Float64("temperature", after),
	)
	return c.params, nil
}

// Params returns an immutable snapshot of the current parameters.
func (c *Controller) Params() Params {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params
}

// History returns a copy of the adjustment history, oldest first.
func (c *Controller) History() []Adjustment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Adjustment, len(c.history))
	copy(out, c.history)
	return out
}

// ClearHistory discards all recorded adjustments. Current parameters are
// not reset.
func (c *Controller) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
}

// feedbackDelta maps a raw feedback token onto a temperature delta.
func feedbackDelta(cfg Config, feedback string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(feedback)) {
	case "good":
		return -cfg.Step, nil
	case "bad":
		return cfg.Step, nil
	}

	rating, err := strconv.Atoi(strings.TrimSpace(feedback))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not good/bad or a number", ErrInvalidFeedback, feedback)
	}
	if rating < MinRating || rating > MaxRating {
		return 0, fmt.Errorf("%w: rating %d outside [%d,%d]", ErrInvalidFeedback, rating, MinRating, MaxRating)
	}
	return (ratingMidpoint - float64(rating)) * cfg.Scale, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
