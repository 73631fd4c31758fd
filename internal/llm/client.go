package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"medisense/internal/domain"
)

var (
	// ErrTransport cubre DNS, timeouts, cancelaciones y conexiones cortadas.
	ErrTransport = errors.New("llm transport error")
	// ErrMalformedPayload indica un body 2xx que no es un array JSON de registros.
	ErrMalformedPayload = errors.New("llm malformed payload")
)

// maxResponseBytes acota el body leído del endpoint; maxErrorBodyBytes lo que se guarda en StatusError.
const (
	maxResponseBytes  = 1 << 20
	maxErrorBodyBytes = 512
)

// StatusError se devuelve cuando el endpoint responde con un status no exitoso.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm http error: status=%d", e.StatusCode)
}

// TextGenerationClient define la interfaz para pedir texto a un endpoint de inferencia.
type TextGenerationClient interface {
	Generate(ctx context.Context, apiKey string, req domain.GenerationRequest) ([]domain.GenerationRecord, error)
}

// HTTPClient implementa TextGenerationClient contra la API de inferencia de Hugging Face.
type HTTPClient struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPClient construye un cliente HTTP apuntando al endpoint del modelo.
func NewHTTPClient(endpoint string, httpClient *http.Client, logger *zap.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   httpClient,
		logger:   logger,
	}
}

// Generate hace un único POST; nunca reintenta.
func (c *HTTPClient) Generate(ctx context.Context, apiKey string, in domain.GenerationRequest) ([]domain.GenerationRecord, error) {
	reqBody := inferenceRequest{
		Inputs:     in.Inputs(),
		Parameters: in.Parameters,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := truncate(string(respBody), maxErrorBodyBytes)
		c.logger.Warn("llm error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", body),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	var records []domain.GenerationRecord
	if err := json.Unmarshal(respBody, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return records, nil
}

type inferenceRequest struct {
	Inputs     string                      `json:"inputs"`
	Parameters domain.GenerationParameters `json:"parameters"`
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
