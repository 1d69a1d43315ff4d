package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/smartbot-tech/smartbot/pkg/history"
	"github.com/smartbot-tech/smartbot/pkg/ngram"
	"github.com/smartbot-tech/smartbot/pkg/rating"
)

// APIServer exposes a Session over a JSON HTTP API.
type APIServer struct {
	session *Session
	logger  *slog.Logger
}

// NewAPIServer creates a new instance of the APIServer.
func NewAPIServer(session *Session, logger *slog.Logger) *APIServer {
	return &APIServer{
		session: session,
		logger:  logger,
	}
}

// Register sets up the routing for all /api/v1 endpoints.
func (a *APIServer) Register(e *echo.Echo) {
	e.POST("/api/v1/models", a.handleBuildModel)
	e.GET("/api/v1/models", a.handleListModels)
	e.POST("/api/v1/predict", a.handlePredict)
	e.POST("/api/v1/generate", a.handleGenerate)
	e.POST("/api/v1/respond", a.handleRespond)
	e.POST("/api/v1/feedback", a.handleFeedback)
	e.GET("/api/v1/params", a.handleParams)
	e.GET("/api/v1/params/adjustments", a.handleAdjustments)
	e.GET("/api/v1/history", a.handleHistory)
	e.DELETE("/api/v1/history", a.handleClearHistory)
	e.GET("/api/v1/version", a.handleVersion)
}

type BuildModelRequest struct {
	Order int    `json:"order"`
	Text  string `json:"text"` // empty: build from the conversation history
}

type ModelResponse struct {
	Order       int `json:"order"`
	Contexts    int `json:"contexts"`
	Transitions int `json:"transitions"`
}

type PredictRequest struct {
	Prefix      string   `json:"prefix"`
	Order       int      `json:"order"`
	Temperature *float64 `json:"temperature,omitempty"` // omitted: controller's current value
}

type PredictResponse struct {
	Token       string  `json:"token"`
	Temperature float64 `json:"temperature"`
}

type GenerateRequest struct {
	Seed        string   `json:"seed"`
	Order       int      `json:"order"`
	Length      *int     `json:"length,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type GenerateResponse struct {
	Tokens []string `json:"tokens"`
	Text   string   `json:"text"`
}

type RespondRequest struct {
	Input string `json:"input"`
}

type RespondResponse struct {
	Input    string `json:"input"`
	Response string `json:"response"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

func (a *APIServer) handleBuildModel(c *echo.Context) error {
	req, err := decodeJSON[BuildModelRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	var model *ngram.Model
	if req.Text == "" {
		model, err = a.session.BuildModelFromHistory(c.Request().Context(), req.Order)
	} else {
		model, err = a.session.BuildModel(req.Text, req.Order)
	}
	if err != nil {
		return a.writeDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, ModelResponse{
		Order:       model.Order(),
		Contexts:    model.Contexts(),
		Transitions: model.Transitions(),
	})
}

func (a *APIServer) handleListModels(c *echo.Context) error {
	orders := a.session.Models()
	models := make([]ModelResponse, 0, len(orders))
	for _, order := range orders {
		m, err := a.session.Model(order)
		if err != nil {
			continue
		}
		models = append(models, ModelResponse{
			Order:       m.Order(),
			Contexts:    m.Contexts(),
			Transitions: m.Transitions(),
		})
	}
	return c.JSON(http.StatusOK, models)
}

func (a *APIServer) handlePredict(c *echo.Context) error {
	req, err := decodeJSON[PredictRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	temperature, err := resolveTemperature(req.Temperature)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	token, used, err := a.session.Predict(req.Prefix, req.Order, temperature)
	if err != nil {
		return a.writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, PredictResponse{Token: token, Temperature: used})
}

func (a *APIServer) handleGenerate(c *echo.Context) error {
	req, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	temperature, err := resolveTemperature(req.Temperature)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	length := a.session.cfg.Generation.DefaultLength
	if req.Length != nil {
		length = *req.Length
	}

	tokens, err := a.session.Generate(req.Seed, req.Order, length, temperature)
	if err != nil {
		return a.writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, GenerateResponse{
		Tokens: tokens,
		Text:   strings.Join(tokens, " "),
	})
}

func (a *APIServer) handleRespond(c *echo.Context) error {
	req, err := decodeJSON[RespondRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Input == "" {
		return writeBadRequest(c, "input is required")
	}

	response, err := a.session.Respond(c.Request().Context(), req.Input)
	if err != nil {
		return a.writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, RespondResponse{Input: req.Input, Response: response})
}

func (a *APIServer) handleFeedback(c *echo.Context) error {
	req, err := decodeJSON[FeedbackRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	params, err := a.session.ApplyFeedback(req.Feedback)
	if err != nil {
		return a.writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, params)
}

func (a *APIServer) handleParams(c *echo.Context) error {
	return c.JSON(http.StatusOK, a.session.Params())
}

func (a *APIServer) handleAdjustments(c *echo.Context) error {
	adjustments := a.session.Adjustments()
	if adjustments == nil {
		adjustments = []rating.Adjustment{}
	}
	return c.JSON(http.StatusOK, adjustments)
}

func (a *APIServer) handleHistory(c *echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return writeBadRequest(c, fmt.Sprintf("limit must be an integer, got %q", raw))
		}
		limit = n
	}

	exchanges, err := a.session.History(c.Request().Context(), limit)
	if err != nil {
		a.logger.Error("Failed to load history", "error", err)
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
	if exchanges == nil {
		exchanges = []history.Exchange{}
	}
	return c.JSON(http.StatusOK, exchanges)
}

func (a *APIServer) handleClearHistory(c *echo.Context) error {
	if err := a.session.ClearHistory(c.Request().Context()); err != nil {
		a.logger.Error("Failed to clear history", "error", err)
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *APIServer) handleVersion(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
	})
}

// writeDomainError maps the library error kinds onto HTTP statuses.
// Invalid inputs are the client's fault; an unknown context means the
// request was well-formed but unanswerable from the trained corpus.
func (a *APIServer) writeDomainError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrModelNotBuilt):
		return writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ngram.ErrUnknownContext):
		return writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ngram.ErrInvalidParameter),
		errors.Is(err, ngram.ErrInsufficientData),
		errors.Is(err, ngram.ErrEmptyPrefix),
		errors.Is(err, rating.ErrInvalidFeedback):
		return writeBadRequest(c, err.Error())
	default:
		a.logger.Error("Request failed", "error", err)
		return writeError(c, http.StatusInternalServerError, err.Error())
	}
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, msg)
}

func writeError(c *echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// resolveTemperature distinguishes an omitted temperature (use the rating
// controller's current value) from an explicitly invalid one, which is an
// error rather than a silent fallback.
func resolveTemperature(t *float64) (float64, error) {
	if t == nil {
		return 0, nil
	}
	if *t <= 0 {
		return 0, fmt.Errorf("temperature must be positive, got %g", *t)
	}
	return *t, nil
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("invalid JSON request body: %w", err)
	}
	return v, nil
}

