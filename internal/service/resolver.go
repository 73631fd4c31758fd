package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"medisense/internal/domain"
)

// SymptomResolver produce la respuesta de un turno del chat de síntomas.
// No guarda estado entre llamadas y se puede usar concurrentemente.
type SymptomResolver struct {
	generator Generator
	fallback  FallbackSynthesizer
	logger    *zap.Logger
}

func NewSymptomResolver(generator Generator, fallback FallbackSynthesizer, logger *zap.Logger) *SymptomResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SymptomResolver{
		generator: generator,
		fallback:  fallback,
		logger:    logger,
	}
}

// Resolve siempre devuelve texto no vacío; las fallas del generador terminan en el fallback.
func (r *SymptomResolver) Resolve(ctx context.Context, message, apiKey string) string {
	if !IsHealthcareRelated(message) {
		return RedirectResponse
	}
	if r == nil {
		return NewFallbackSynthesizer().Synthesize(message)
	}

	outcome := r.generate(ctx, message, apiKey)
	if outcome.OK() && outcome.Text != "" {
		return outcome.Text
	}
	if outcome.OK() {
		outcome = domain.GenerationFailed(domain.FailureEmptyOrMalformedPayload, errEmptyResponse)
	}

	r.logFailure(outcome.Failure, message)
	return r.fallback.Synthesize(message)
}

func (r *SymptomResolver) generate(ctx context.Context, message, apiKey string) (outcome domain.GenerationOutcome) {
	if r.generator == nil {
		return domain.GenerationFailed(domain.FailureMissingCredentials, nil)
	}
	defer func() {
		if p := recover(); p != nil {
			outcome = domain.GenerationFailed(domain.FailureEmptyOrMalformedPayload, fmt.Errorf("generator panic: %v", p))
		}
	}()
	return r.generator.Generate(ctx, message, apiKey)
}

func (r *SymptomResolver) logFailure(failure *domain.GenerationFailure, message string) {
	if r.logger == nil || failure == nil {
		return
	}
	fields := []zap.Field{
		zap.String("reason", failure.Reason.String()),
		zap.String("fallback_rule", r.fallback.RuleName(message)),
	}
	if failure.StatusCode != 0 {
		fields = append(fields, zap.Int("status", failure.StatusCode))
	}
	if failure.Cause != nil {
		fields = append(fields, zap.Error(failure.Cause))
	}
	if failure.Reason == domain.FailureMissingCredentials {
		r.logger.Debug("llm credentials not configured, using fallback response", fields...)
		return
	}
	r.logger.Warn("llm generation failed, using fallback response", fields...)
}
