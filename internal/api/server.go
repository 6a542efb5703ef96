// Package api exposes the noise-injection drivers over HTTP for remote
// experiment runners.
package api

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/dkempner/noiselab/internal/driver"
	"github.com/dkempner/noiselab/internal/logger"
	"github.com/dkempner/noiselab/internal/model"
	"github.com/dkempner/noiselab/internal/tensor"
)

type Server struct {
	driver *driver.Driver
	log    logger.Logger
}

func NewServer(d *driver.Driver, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{driver: d, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/generate", s.handleGenerate)
	e.POST("/v1/score", s.handleScore)
	e.POST("/v1/choices", s.handleChoices)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(c *echo.Context) error {
	req, err := decodeJSON[GenerateRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if len(req.Prompts) == 0 {
		return writeBadRequest(c, "prompts is required")
	}

	var windows []model.NoiseWindow
	for _, w := range req.Windows {
		windows = append(windows, model.NoiseWindow{Start: w.Start, End: w.End, Scale: w.Scale})
	}

	id := "gen_" + uuid.NewString()
	outputs, err := s.driver.Generate(c.Request().Context(), driver.GenerateRequest{
		Prompts: req.Prompts,
		Window: model.NoiseWindow{
			Start: req.StartNoiseIdx,
			End:   req.EndNoiseIdx,
			Scale: req.NoiseScale,
		},
		Windows:      windows,
		ExtraPrompt:  req.ExtraPrompt,
		MaxNewTokens: req.MaxNewTokens,
	})
	if err != nil {
		return s.writeDriverError(c, id, err)
	}
	return c.JSON(http.StatusOK, GenerateResponse{ID: id, Outputs: outputs})
}

func (s *Server) handleScore(c *echo.Context) error {
	req, err := decodeJSON[ScoreRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if len(req.Prompts) == 0 {
		return writeBadRequest(c, "prompts is required")
	}

	id := "score_" + uuid.NewString()
	probs, err := s.driver.ScoreTexts(c.Request().Context(), req.Prompts)
	if err != nil {
		return s.writeDriverError(c, id, err)
	}
	return c.JSON(http.StatusOK, ScoreResponse{ID: id, Probs: gridRows(probs)})
}

func (s *Server) handleChoices(c *echo.Context) error {
	req, err := decodeJSON[ChoicesRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Prompt == "" {
		return writeBadRequest(c, "prompt is required")
	}
	if len(req.AnswerTokenIDs) == 0 {
		return writeBadRequest(c, "answer_token_ids is required")
	}

	input, err := s.driver.Tokenizer().EncodeBatch([]string{req.Prompt})
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	id := "choices_" + uuid.NewString()
	res, err := s.driver.ForwardReplicated(c.Request().Context(), driver.ReplicateRequest{
		Input: input,
		Window: model.NoiseWindow{
			Start: req.StartNoiseIdx,
			End:   req.EndNoiseIdx,
			Scale: req.NoiseScale,
		},
		Level:          req.NoiseLevel,
		NumCopies:      req.NumCopies,
		SubBatchSize:   req.SubBatchSize,
		AnswerTokenIDs: req.AnswerTokenIDs,
	})
	if err != nil {
		return s.writeDriverError(c, id, err)
	}
	return c.JSON(http.StatusOK, ChoicesResponse{ID: id, Choices: gridRows(res.Choices)})
}

// writeDriverError maps driver failures onto the wire. Model-side
// failures are 502s: the orchestration layer is fine, the engine call is
// not. Everything else is a caller error.
func (s *Server) writeDriverError(c *echo.Context, id string, err error) error {
	var genErr *driver.GenerationError
	var fwdErr *driver.ForwardError
	switch {
	case errors.As(err, &genErr):
		s.log.Error("generation failed", "id", id, "err", err)
		return writeError(c, http.StatusBadGateway, "generation_error", err.Error())
	case errors.As(err, &fwdErr):
		s.log.Error("forward failed", "id", id, "err", err)
		return writeError(c, http.StatusBadGateway, "forward_error", err.Error())
	default:
		return writeBadRequest(c, err.Error())
	}
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{Message: msg, Type: errType},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

func gridRows(g *tensor.Grid) [][]float32 {
	rows := make([][]float32, g.Rows)
	for i := range rows {
		rows[i] = append([]float32(nil), g.Row(i)...)
	}
	return rows
}
