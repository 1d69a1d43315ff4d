package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/smartbot-tech/smartbot/pkg/history"
	"github.com/smartbot-tech/smartbot/pkg/ngram"
	"github.com/smartbot-tech/smartbot/pkg/rating"
	"github.com/smartbot-tech/smartbot/pkg/textproc"
)

// ErrModelNotBuilt is returned when an operation needs an n-gram model of
// an order that hasn't been built in this session yet.
var ErrModelNotBuilt = errors.New("model not built")

// Session owns all mutable state for one console or server instance: the
// built n-gram models per order, the rating controller, the text cleaner,
// the sampler, and the conversation history store. Everything the REPL and
// the HTTP API do goes through it.
type Session struct {
	mu         sync.Mutex
	cfg        *Config
	cleaner    *textproc.Cleaner
	sampler    *ngram.Sampler
	controller *rating.Controller
	store      *history.Store
	models     map[int]*ngram.Model
	vocab      []string
	vocabSeen  map[string]struct{}
	logger     *slog.Logger
}

// NewSession wires a Session from its collaborators.
func NewSession(cfg *Config, store *history.Store, logger *slog.Logger) *Session {
	controller := rating.NewController(*cfg.Rating)
	controller.SetLogger(logger)
	sampler := ngram.NewSampler()
	sampler.SetLogger(logger)

	return &Session{
		cfg:        cfg,
		cleaner:    textproc.NewCleaner(),
		sampler:    sampler,
		controller: controller,
		store:      store,
		models:     make(map[int]*ngram.Model),
		vocabSeen:  make(map[string]struct{}),
		logger:     logger,
	}
}

// Preprocess exposes the cleaner for the preprocess command.
func (s *Session) Preprocess(text string) string {
	return s.cleaner.Clean(text)
}

// SpellCorrect corrects each word of text against the vocabulary gathered
// from previously built models.
func (s *Session) SpellCorrect(text string) (string, error) {
	s.mu.Lock()
	vocab := s.vocab
	s.mu.Unlock()
	if len(vocab) == 0 {
		return "", fmt.Errorf("%w: build a model first to establish a vocabulary", ErrModelNotBuilt)
	}
	words := s.cleaner.Tokens(text)
	return strings.Join(textproc.CorrectAll(words, vocab), " "), nil
}

// BuildModel cleans and tokenizes text and builds an n-gram model of the
// given order, replacing any previous model of that order in the session.
func (s *Session) BuildModel(text string, order int) (*ngram.Model, error) {
	tokens := s.cleaner.Tokens(text)
	model, err := ngram.Build(tokens, order)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.models[order] = model
	for _, tok := range tokens {
		if _, ok := s.vocabSeen[tok]; !ok {
			s.vocabSeen[tok] = struct{}{}
			s.vocab = append(s.vocab, tok)
		}
	}
	s.mu.Unlock()

	s.logger.Info("Model built",
		slog.Int("order", order),
		slog.Int("contexts", model.Contexts()),
		slog.Int("transitions", model.Transitions()),
	)
	return model, nil
}

// BuildModelFromHistory builds a model of the given order from the
// concatenated conversation history.
func (s *Session) BuildModelFromHistory(ctx context.Context, order int) (*ngram.Model, error) {
	corpus, err := s.store.Corpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read history corpus: %w", err)
	}
	return s.BuildModel(corpus, order)
}

// Model returns the built model of the given order, or ErrModelNotBuilt.
func (s *Session) Model(order int) (*ngram.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.models[order]
	if !ok {
		return nil, fmt.Errorf("%w: no order-%d model in this session", ErrModelNotBuilt, order)
	}
	return m, nil
}

// Models returns the orders of all models built in this session.
func (s *Session) Models() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]int, 0, len(s.models))
	for order := range s.models {
		orders = append(orders, order)
	}
	return orders
}

// Temperature returns the controller's current temperature snapshot.
func (s *Session) Temperature() float64 {
	return s.controller.Params().Temperature
}

// Predict cleans the prefix text and draws a single next token from the
// model of the given order at the given temperature. A non-positive
// temperature selects the controller's current value. The returned
// temperature is the resolved one the draw actually used, which can differ
// from the controller's by the time the caller reads it again.
func (s *Session) Predict(prefixText string, order int, temperature float64) (string, float64, error) {
	m, err := s.Model(order)
	if err != nil {
		return "", 0, err
	}
	if temperature <= 0 {
		temperature = s.Temperature()
	}
	prefix := s.cleaner.Tokens(prefixText)

	// The sampler's random source is not safe for concurrent draws.
	s.mu.Lock()
	defer s.mu.Unlock()
	token, err := s.sampler.Predict(m, prefix, temperature)
	return token, temperature, err
}

// Generate cleans the seed text and extends it by length tokens using the
// model of the given order. A non-positive temperature selects the
// controller's current value.
func (s *Session) Generate(seedText string, order, length int, temperature float64) ([]string, error) {
	m, err := s.Model(order)
	if err != nil {
		return nil, err
	}
	if temperature <= 0 {
		temperature = s.Temperature()
	}
	seed := s.cleaner.Tokens(seedText)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampler.Generate(m, seed,
		ngram.WithLength(length),
		ngram.WithTemperature(temperature),
	)
}

// Respond generates a reply to the input using the default-order model and
// the controller's current temperature, and records the exchange in the
// conversation history. The reply is the generated continuation only, not
// the echoed input.
func (s *Session) Respond(ctx context.Context, input string) (string, error) {
	seed := s.cleaner.Tokens(input)
	sequence, err := s.Generate(input, s.cfg.Generation.DefaultOrder, s.cfg.Generation.DefaultLength, 0)
	if err != nil {
		return "", err
	}

	response := strings.Join(sequence[len(seed):], " ")
	if _, err := s.store.Append(ctx, input, response); err != nil {
		return "", fmt.Errorf("failed to record exchange: %w", err)
	}
	return response, nil
}

// ApplyFeedback forwards a feedback token to the rating controller.
func (s *Session) ApplyFeedback(feedback string) (rating.Params, error) {
	return s.controller.ApplyFeedback(feedback)
}

// Params returns the current generation parameter snapshot.
func (s *Session) Params() rating.Params {
	return s.controller.Params()
}

// Adjustments returns the rating controller's adjustment history.
func (s *Session) Adjustments() []rating.Adjustment {
	return s.controller.History()
}

// History returns up to limit recent exchanges.
func (s *Session) History(ctx context.Context, limit int) ([]history.Exchange, error) {
	return s.store.Recent(ctx, limit)
}

// ClearHistory removes all stored exchanges.
func (s *Session) ClearHistory(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Store exposes the history store for export operations.
func (s *Session) Store() *history.Store {
	return s.store
}
