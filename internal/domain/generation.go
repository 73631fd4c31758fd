package domain

import "fmt"

// GenerationParameters son los parámetros de muestreo enviados al endpoint de generación.
type GenerationParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
	DoSample    bool    `json:"do_sample"`
	TopP        float64 `json:"top_p"`
}

// DefaultGenerationParameters replica los valores usados por el asistente web.
func DefaultGenerationParameters() GenerationParameters {
	return GenerationParameters{
		MaxLength:   500,
		Temperature: 0.7,
		DoSample:    true,
		TopP:        0.9,
	}
}

// GenerationRequest se construye de cero en cada llamada al generador remoto.
type GenerationRequest struct {
	SystemPrompt string
	UserMessage  string
	Parameters   GenerationParameters
}

// Inputs arma el texto completo que recibe el modelo.
func (r GenerationRequest) Inputs() string {
	return r.SystemPrompt + "\n\nUser: " + r.UserMessage + "\nAssistant:"
}

// GenerationRecord es un elemento del array devuelto por la API de inferencia.
type GenerationRecord struct {
	GeneratedText *string `json:"generated_text,omitempty"`
	Error         string  `json:"error,omitempty"`
}

type FailureReason int

const (
	FailureMissingCredentials FailureReason = iota + 1
	FailureTransport
	FailureNonOKStatus
	FailureEmptyOrMalformedPayload
)

func (r FailureReason) String() string {
	switch r {
	case FailureMissingCredentials:
		return "missing_credentials"
	case FailureTransport:
		return "transport_error"
	case FailureNonOKStatus:
		return "non_ok_status"
	case FailureEmptyOrMalformedPayload:
		return "empty_or_malformed_payload"
	default:
		return "unknown"
	}
}

// GenerationFailure describe por qué el generador remoto no produjo texto.
// StatusCode solo se completa para FailureNonOKStatus.
type GenerationFailure struct {
	Reason     FailureReason
	StatusCode int
	Cause      error
}

func (f *GenerationFailure) Error() string {
	msg := f.Reason.String()
	if f.Reason == FailureNonOKStatus {
		msg = fmt.Sprintf("%s (status=%d)", msg, f.StatusCode)
	}
	if f.Cause != nil {
		msg += ": " + f.Cause.Error()
	}
	return msg
}

func (f *GenerationFailure) Unwrap() error {
	return f.Cause
}

// GenerationOutcome es Success(Text) cuando Failure es nil, Failure(reason) en otro caso.
type GenerationOutcome struct {
	Text    string
	Failure *GenerationFailure
}

func GenerationSucceeded(text string) GenerationOutcome {
	return GenerationOutcome{Text: text}
}

func GenerationFailed(reason FailureReason, cause error) GenerationOutcome {
	return GenerationOutcome{Failure: &GenerationFailure{Reason: reason, Cause: cause}}
}

func GenerationRejected(statusCode int, cause error) GenerationOutcome {
	return GenerationOutcome{Failure: &GenerationFailure{
		Reason:     FailureNonOKStatus,
		StatusCode: statusCode,
		Cause:      cause,
	}}
}

func (o GenerationOutcome) OK() bool {
	return o.Failure == nil
}
