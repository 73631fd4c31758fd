package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"medisense/internal/domain"
	"medisense/internal/llm"
)

const defaultGenerationTimeout = 15 * time.Second

var (
	errEmptyRecords  = errors.New("generation returned no records")
	errMissingText   = errors.New("first record has no generated_text")
	errEmptyResponse = errors.New("assistant reply is empty")
)

// Generator produce la respuesta del modelo para un mensaje ya clasificado como de salud.
type Generator interface {
	Generate(ctx context.Context, message, apiKey string) domain.GenerationOutcome
}

// RemoteGenerator traduce las respuestas del cliente de inferencia a GenerationOutcome.
type RemoteGenerator struct {
	client  llm.TextGenerationClient
	params  domain.GenerationParameters
	timeout time.Duration
	logger  *zap.Logger
}

func NewRemoteGenerator(client llm.TextGenerationClient, params domain.GenerationParameters, timeout time.Duration, logger *zap.Logger) *RemoteGenerator {
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteGenerator{
		client:  client,
		params:  params,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate hace a lo sumo una llamada de red y nunca devuelve error: toda falla va en el outcome.
func (g *RemoteGenerator) Generate(ctx context.Context, message, apiKey string) domain.GenerationOutcome {
	if strings.TrimSpace(apiKey) == "" {
		return domain.GenerationFailed(domain.FailureMissingCredentials, nil)
	}
	if g == nil || g.client == nil {
		return domain.GenerationFailed(domain.FailureTransport, errors.New("generator not configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := domain.GenerationRequest{
		SystemPrompt: symptomSystemPrompt,
		UserMessage:  message,
		Parameters:   g.params,
	}

	records, err := g.client.Generate(ctx, apiKey, req)
	if err != nil {
		return classifyGenerationError(err)
	}

	if len(records) == 0 {
		return domain.GenerationFailed(domain.FailureEmptyOrMalformedPayload, errEmptyRecords)
	}
	first := records[0]
	if first.GeneratedText == nil || *first.GeneratedText == "" {
		return domain.GenerationFailed(domain.FailureEmptyOrMalformedPayload, errMissingText)
	}

	reply := extractAssistantReply(*first.GeneratedText)
	if reply == "" {
		return domain.GenerationFailed(domain.FailureEmptyOrMalformedPayload, errEmptyResponse)
	}
	g.logger.Debug("llm generation succeeded", zap.Int("reply_chars", len(reply)))
	return domain.GenerationSucceeded(reply)
}

func classifyGenerationError(err error) domain.GenerationOutcome {
	var statusErr *llm.StatusError
	switch {
	case errors.As(err, &statusErr):
		return domain.GenerationRejected(statusErr.StatusCode, err)
	case errors.Is(err, llm.ErrMalformedPayload):
		return domain.GenerationFailed(domain.FailureEmptyOrMalformedPayload, err)
	default:
		// Cancelaciones y timeouts del contexto también caen acá.
		return domain.GenerationFailed(domain.FailureTransport, err)
	}
}
