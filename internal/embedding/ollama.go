package embedding

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/actuallystonmai/restaurant-recommender/internal/logging"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "nomic-embed-text"
	defaultOllamaDim   = 768
)

type OllamaConfig struct {
	BaseURL   string
	Model     string
	Dimension int
	// RequestsPerSecond caps outbound calls. Zero means unlimited.
	RequestsPerSecond float64
	Timeout           time.Duration
	// FailureThreshold is the number of consecutive failures that opens the
	// circuit. Default: 3
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open. Default: 30s
	OpenTimeout time.Duration
}

// OllamaEncoder embeds text batches through Ollama's /api/embed endpoint.
type OllamaEncoder struct {
	baseURL string
	model   string
	dim     int
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[][]float32]
}

func NewOllamaEncoder(cfg OllamaConfig) *OllamaEncoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOllamaModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = defaultOllamaDim
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	logger := logging.With("ollama")
	breaker := gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:    "ollama-embed",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit state changed")
		},
	})

	return &OllamaEncoder{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		dim:     cfg.Dimension,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
	}
}

func (o *OllamaEncoder) Dimension() int  { return o.dim }
func (o *OllamaEncoder) ModelID() string { return o.model }

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Encode sends all texts in one request. Every returned vector has the
// configured dimension or the call fails.
func (o *OllamaEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}
	return o.breaker.Execute(func() ([][]float32, error) {
		return o.embed(ctx, texts)
	})
}

func (o *OllamaEncoder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d texts", len(out.Embeddings), len(texts))
	}
	for i, vec := range out.Embeddings {
		if len(vec) != o.dim {
			return nil, fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(vec), o.dim)
		}
	}
	return out.Embeddings, nil
}
