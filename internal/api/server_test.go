package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/dkempner/noiselab/internal/driver"
	"github.com/dkempner/noiselab/internal/logger"
	"github.com/dkempner/noiselab/internal/tokenizer"
	"github.com/dkempner/noiselab/internal/toy"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	m := toy.NewModel(42)
	m.UnstableScale = 100

	adapter, err := tokenizer.NewAdapter(toy.NewCodec(), "toy")
	if err != nil {
		t.Fatal(err)
	}
	log := logger.JSON(&bytes.Buffer{}, slog.LevelError)
	d, err := driver.New(m, adapter, driver.Options{Logger: log})
	if err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	NewServer(d, log).Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGenerateEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/generate",
		`{"prompts":["hello"],"start_noise_idx":0,"end_noise_idx":2,"noise_scale":0.5,"max_new_tokens":4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Outputs) != 1 {
		t.Fatalf("expected one output, got %d", len(resp.Outputs))
	}
	if !strings.HasPrefix(resp.ID, "gen_") {
		t.Fatalf("unexpected id %q", resp.ID)
	}
}

func TestGenerateEndpointRejectsEmptyPrompts(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/generate", `{"prompts":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateEndpointMapsModelFailure(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	// Scale 100 trips the toy model's instability threshold.
	rec := doJSON(t, e, http.MethodPost, "/v1/generate",
		`{"prompts":["hello"],"start_noise_idx":0,"end_noise_idx":2,"noise_scale":100}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "generation_error") {
		t.Fatalf("expected generation_error type, got %s", rec.Body.String())
	}
}

func TestScoreEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/score", `{"prompts":["hello","hi"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Probs) != 2 {
		t.Fatalf("expected 2 probability rows, got %d", len(resp.Probs))
	}
	for i, row := range resp.Probs {
		if row[0] != 1 {
			t.Fatalf("row %d: expected sentinel 1 at position 0, got %v", i, row[0])
		}
	}
}

func TestChoicesEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/choices",
		`{"prompt":"is water wet?","answer_token_ids":[5,9,2],"num_copies":8,"sub_batch_size":4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ChoicesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Choices) != 8 {
		t.Fatalf("expected 8 replica rows, got %d", len(resp.Choices))
	}
	for i, row := range resp.Choices {
		if len(row) != 3 {
			t.Fatalf("row %d: expected 3 candidates, got %d", i, len(row))
		}
	}
}

func TestChoicesEndpointValidation(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/choices", `{"prompt":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without answer ids, got %d", rec.Code)
	}
	rec = doJSON(t, e, http.MethodPost, "/v1/choices", `{"answer_token_ids":[1]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without prompt, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	e := newTestEcho(t)
	e.Use(RateLimit(rate.Limit(1), 1))

	first := doJSON(t, e, http.MethodGet, "/healthz", "")
	if first.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", first.Code)
	}
	second := doJSON(t, e, http.MethodGet, "/healthz", "")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", second.Code)
	}
}
