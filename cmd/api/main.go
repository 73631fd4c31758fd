package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"medisense/internal/config"
	"medisense/internal/db"
	"medisense/internal/domain"
	apihttp "medisense/internal/http"
	"medisense/internal/llm"
	"medisense/internal/repository"
	"medisense/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		conversationRepo repository.ConversationRepository
		messageRepo      repository.MessageRepository
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		conversationRepo = repository.NewPgConversationRepository(pool)
		messageRepo = repository.NewPgMessageRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, conversations are kept in memory")
		store := repository.NewMemoryStore()
		conversationRepo = store.Conversations()
		messageRepo = store.Messages()
	}

	var (
		guard   service.InFlightGuard
		limiter service.MessageRateLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			guard = service.NewRedisInFlightGuard(redisClient, cfg.InFlightTTL)
			limiter = service.NewRedisMessageRateLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitMax)
		}
		cancel()
	}

	if !cfg.HasLLMCredentials() {
		logger.Warn("HUGGINGFACE_API_KEY not set, symptom chat runs in offline mode")
	}
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		logger.Warn("jwt secret not configured, conversation tokens will not survive a restart")
		jwtSecret = uuid.NewString() + uuid.NewString()
	}

	params := domain.GenerationParameters{
		MaxLength:   cfg.LLMMaxLength,
		Temperature: cfg.LLMTemperature,
		DoSample:    cfg.LLMDoSample,
		TopP:        cfg.LLMTopP,
	}
	llmClient := llm.NewHTTPClient(cfg.LLMEndpoint, nil, logger)
	generator := service.NewRemoteGenerator(llmClient, params, cfg.LLMTimeout, logger)
	resolver := service.NewSymptomResolver(generator, service.NewFallbackSynthesizer(), logger)
	tokens := service.NewConversationTokenService(jwtSecret)
	conversationSvc := service.NewConversationService(conversationRepo, messageRepo, resolver, guard, cfg.HuggingFaceAPIKey, cfg.ConversationTTL, logger)

	symptomHandler := apihttp.NewSymptomHandler(logger, resolver, cfg.HuggingFaceAPIKey)
	chatHandler := apihttp.NewChatHandler(logger, conversationSvc, tokens)
	router := apihttp.NewRouter(logger, symptomHandler, chatHandler, tokens, limiter)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
