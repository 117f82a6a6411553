package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"video-convert-bot/internal/bot"
	"video-convert-bot/internal/discord"
	"video-convert-bot/internal/log"
	"video-convert-bot/internal/mux"
	"video-convert-bot/internal/pkg/config"
	"video-convert-bot/internal/poller"
	"video-convert-bot/internal/server"
	"video-convert-bot/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	// 1. Загрузка и валидация конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to validate config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера с маскировкой токенов
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)
	discordgo.Logger = log.DiscordgoLogger(logger)

	telemetry.Init()

	// 3. Инициализация зависимостей
	session, err := discordgo.New("Bot " + cfg.Secrets.DiscordBotToken)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("connected to discord", slog.String("user", r.User.Username))
	})

	chat := discord.NewSession(session)
	muxClient := mux.NewClient(cfg.Secrets.MuxTokenID, cfg.Secrets.MuxTokenSecret,
		mux.WithBaseURL(cfg.Mux.BaseURL),
		mux.WithMP4Quality(cfg.Mux.MP4Quality),
		mux.WithHTTPClient(&http.Client{Timeout: cfg.Mux.HTTPTimeout}),
	)
	p := poller.New(
		poller.WithInterval(cfg.Polling.Interval),
		poller.WithMaxAttempts(cfg.Polling.MaxAttempts),
		poller.WithLogger(logger.With(slog.String("component", "poller"))),
	)
	waiter := poller.NewAssetWaiter(muxClient, p, logger.With(slog.String("component", "poller")), telemetry.PollAttempt)
	locator := discord.NewLocator(chat, logger.With(slog.String("component", "locator")))
	store := server.NewConversionStore(cfg.Server.ConversionTTL)

	b, err := bot.NewBot(bot.Config{
		CommandPrefix: cfg.Bot.CommandPrefix,
		StreamBaseURL: cfg.Mux.StreamBaseURL,
		MP4Quality:    cfg.Mux.MP4Quality,
	}, bot.Dependencies{
		Chat:    chat,
		Locator: locator,
		Assets:  muxClient,
		Waiter:  waiter,
		Tracker: store,
	}, logger.With(slog.String("component", "bot")))
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// 4. Запуск и graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	session.AddHandler(b.MessageCreateHandler(gctx))
	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	logger.Info("bot started", slog.String("prefix", cfg.Bot.CommandPrefix))

	if cfg.Server.Enabled {
		srv := server.New(cfg, store, logger.With(slog.String("component", "server")))
		store.StartCleanupTicker(gctx, cfg.Server.CleanupInterval)

		g.Go(func() error {
			logger.Info("starting status server", slog.String("addr", cfg.Address()))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down bot...")
		// Сначала закрываем сессию, чтобы не принимать новые команды.
		if err := session.Close(); err != nil {
			logger.Warn("failed to close discord session", slog.String("error", err.Error()))
		}
		b.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("bot stopped gracefully")
	return nil
}

func newLogger(cfg config.Logging) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return log.NewMaskedLogger(handler)
}
