package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// DefaultLLMEndpoint es el modelo de Hugging Face usado cuando LLM_ENDPOINT no está definido.
const DefaultLLMEndpoint = "https://api-inference.huggingface.co/models/microsoft/DialoGPT-medium"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	// HuggingFaceAPIKey puede quedar vacío: el resolver responde en modo offline.
	HuggingFaceAPIKey string        `env:"HUGGINGFACE_API_KEY"`
	LLMEndpoint       string        `env:"LLM_ENDPOINT" envDefault:"https://api-inference.huggingface.co/models/microsoft/DialoGPT-medium"`
	LLMTimeout        time.Duration `env:"LLM_TIMEOUT" envDefault:"15s"`
	LLMMaxLength      int           `env:"LLM_MAX_LENGTH" envDefault:"500"`
	LLMTemperature    float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMTopP           float64       `env:"LLM_TOP_P" envDefault:"0.9"`
	LLMDoSample       bool          `env:"LLM_DO_SAMPLE" envDefault:"true"`

	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret       string        `env:"JWT_SECRET"`
	ConversationTTL time.Duration `env:"CONVERSATION_TTL" envDefault:"24h"`
	InFlightTTL     time.Duration `env:"INFLIGHT_TTL" envDefault:"30s"`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"20"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HasLLMCredentials indica si hay una API key utilizable para el generador remoto.
func (c *Config) HasLLMCredentials() bool {
	return c != nil && strings.TrimSpace(c.HuggingFaceAPIKey) != ""
}
