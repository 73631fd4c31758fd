package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"medisense/internal/config"
	"medisense/internal/domain"
	"medisense/internal/llm"
	"medisense/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		offline  bool
		verbose  bool
		endpoint string
	)

	cmd := &cobra.Command{
		Use:   "cli_chat",
		Short: "Chat de síntomas en la terminal",
		Long:  "Lee mensajes desde stdin y responde con el mismo resolver que usa la API.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if endpoint != "" {
				cfg.LLMEndpoint = endpoint
			}

			logger := zap.NewNop()
			if verbose {
				logger = zap.NewExample()
			}
			defer logger.Sync()

			apiKey := cfg.HuggingFaceAPIKey
			if offline {
				apiKey = ""
			}

			params := domain.GenerationParameters{
				MaxLength:   cfg.LLMMaxLength,
				Temperature: cfg.LLMTemperature,
				DoSample:    cfg.LLMDoSample,
				TopP:        cfg.LLMTopP,
			}
			client := llm.NewHTTPClient(cfg.LLMEndpoint, nil, logger)
			generator := service.NewRemoteGenerator(client, params, cfg.LLMTimeout, logger)
			resolver := service.NewSymptomResolver(generator, service.NewFallbackSynthesizer(), logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if apiKey == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "(offline mode: answers come from the built-in symptom guide)")
			}
			return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), resolver, apiKey)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "ignora HUGGINGFACE_API_KEY y usa solo respuestas locales")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "loguea las fallas del generador")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "endpoint de generación (por defecto LLM_ENDPOINT)")
	return cmd
}
