// Command research-assistant runs the search API server or a one-shot
// notification digest.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sinnsyakai/research-assistant/internal/ai"
	"github.com/sinnsyakai/research-assistant/internal/bot"
	"github.com/sinnsyakai/research-assistant/internal/config"
	"github.com/sinnsyakai/research-assistant/internal/history"
	"github.com/sinnsyakai/research-assistant/internal/history/filebackend"
	"github.com/sinnsyakai/research-assistant/internal/history/postgres"
	"github.com/sinnsyakai/research-assistant/internal/history/sqlite"
	"github.com/sinnsyakai/research-assistant/internal/logger"
	"github.com/sinnsyakai/research-assistant/internal/metrics"
	"github.com/sinnsyakai/research-assistant/internal/notify"
	"github.com/sinnsyakai/research-assistant/internal/pipeline"
	"github.com/sinnsyakai/research-assistant/internal/search"
	"github.com/sinnsyakai/research-assistant/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "research-assistant",
		Short:        "Multi-source search pipeline and news digest bot",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newNotifyCmd(&configPath))
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the search API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			assistant, closeAI := buildAssistant(ctx, cfg, log)
			defer closeAI()

			pipe := pipeline.New(pipeline.Config{
				Web:       buildWebSearcher(cfg, log),
				Academic:  search.NewAcademicClient(search.AcademicClientConfig{}),
				Assistant: assistant,
				Log:       log,
			})

			metricsSrv := metrics.Start(cfg.Server.MetricsPort)
			defer func() { _ = metricsSrv.Stop(context.Background()) }()

			srv := server.New(pipe, cfg.Server.Port, log)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case <-ctx.Done():
				log.Info("shutting down")
				return srv.Stop(context.Background())
			case err := <-errCh:
				return err
			}
		},
	}
}

func newNotifyCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Run one notification digest and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.ValidateBot(); err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level)
			if !cfg.Bot.Enabled {
				log.Info("notifications disabled by configuration")
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := buildHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			sender, err := notify.NewTelegram(cfg.Bot.TelegramToken, cfg.Bot.TelegramChatID)
			if err != nil {
				return err
			}

			assistant, closeAI := buildAssistant(ctx, cfg, log)
			defer closeAI()

			runner, err := bot.New(bot.Config{
				Web:       buildWebSearcher(cfg, log),
				Assistant: assistant,
				History:   store,
				Sender:    sender,
				Genres:    cfg.Bot.Genres,
				Period:    cfg.Bot.SearchPeriod,
				Log:       log,
			})
			if err != nil {
				return err
			}
			return runner.Run(ctx)
		},
	}
}

func buildWebSearcher(cfg *config.Config, log *slog.Logger) search.WebSearcher {
	client, err := search.NewWebClient(search.WebClientConfig{
		APIKey:   cfg.Search.APIKey,
		EngineID: cfg.Search.EngineID,
	})
	if err != nil {
		log.Warn("web search disabled", "err", err)
		return nil
	}
	return client
}

func buildAssistant(ctx context.Context, cfg *config.Config, log *slog.Logger) (ai.Assistant, func()) {
	if cfg.Gemini.APIKey == "" {
		log.Info("gemini not configured, AI features disabled")
		return ai.Noop{}, func() {}
	}
	gem, err := ai.NewGemini(ctx, ai.GeminiConfig{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
		RPS:    cfg.Gemini.RPS,
	})
	if err != nil {
		log.Warn("gemini unavailable, AI features disabled", "err", err)
		return ai.Noop{}, func() {}
	}
	return gem, func() { _ = gem.Close() }
}

func buildHistory(ctx context.Context, cfg *config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case "sqlite":
		return sqlite.New(cfg.History.Path, cfg.History.Cap)
	case "postgres":
		return postgres.New(ctx, cfg.History.DSN, cfg.History.Cap)
	default:
		return filebackend.New(cfg.History.Path, cfg.History.Cap)
	}
}
