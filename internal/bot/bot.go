// Package bot реализует обработку команд Discord-бота.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"video-convert-bot/internal/domain"
	"video-convert-bot/internal/poller"
	"video-convert-bot/internal/ports"
	"video-convert-bot/internal/telemetry"
)

const (
	pingCommand    = "ping"
	convertCommand = "convert"
)

// Config содержит настройки, которые бот использует при формировании ответов.
type Config struct {
	CommandPrefix string
	StreamBaseURL string
	MP4Quality    string
}

// Dependencies — внешние компоненты, которыми владеет бот.
type Dependencies struct {
	Chat    ports.ChatAPI
	Locator ports.VideoLocator
	Assets  ports.AssetService
	Waiter  ports.ReadinessWaiter
	// Tracker необязателен.
	Tracker ports.ConversionTracker
}

// IncomingMessage — входящее сообщение чата.
type IncomingMessage struct {
	ChannelID string
	AuthorID  string
	Author    string
	IsBot     bool
	Content   string
}

// Bot представляет собой диспетчер команд бота.
type Bot struct {
	cfg     Config
	chat    ports.ChatAPI
	locator ports.VideoLocator
	assets  ports.AssetService
	waiter  ports.ReadinessWaiter
	tracker ports.ConversionTracker
	logger  *slog.Logger

	newID func() string

	// mu защищает stopping и вызовы inflight.Add от гонки со Stop.
	mu       sync.Mutex
	stopping bool
	inflight sync.WaitGroup
}

// NewBot создает и инициализирует новый экземпляр бота.
func NewBot(cfg Config, deps Dependencies, logger *slog.Logger) (*Bot, error) {
	if deps.Chat == nil || deps.Locator == nil || deps.Assets == nil || deps.Waiter == nil {
		return nil, errors.New("bot: chat, locator, assets and waiter are required")
	}
	if cfg.CommandPrefix == "" {
		return nil, errors.New("bot: command prefix is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = noopTracker{}
	}

	return &Bot{
		cfg:     cfg,
		chat:    deps.Chat,
		locator: deps.Locator,
		assets:  deps.Assets,
		waiter:  deps.Waiter,
		tracker: tracker,
		logger:  logger,
		newID:   uuid.NewString,
	}, nil
}

// MessageCreateHandler возвращает обработчик события MESSAGE_CREATE для discordgo.
// discordgo вызывает обработчики в отдельных горутинах, поэтому команды
// выполняются независимо друг от друга.
func (b *Bot) MessageCreateHandler(ctx context.Context) func(*discordgo.Session, *discordgo.MessageCreate) {
	return func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m == nil || m.Message == nil || m.Author == nil {
			return
		}
		b.HandleMessage(ctx, IncomingMessage{
			ChannelID: m.ChannelID,
			AuthorID:  m.Author.ID,
			Author:    m.Author.Username,
			IsBot:     m.Author.Bot,
			Content:   m.Content,
		})
	}
}

// HandleMessage обрабатывает входящее сообщение. Сообщения ботов и
// неизвестные команды игнорируются.
func (b *Bot) HandleMessage(ctx context.Context, msg IncomingMessage) {
	if msg.IsBot {
		return
	}
	name, args, ok := splitCommand(b.cfg.CommandPrefix, msg.Content)
	if !ok {
		return
	}

	logger := b.logger.With(
		slog.String("channel_id", msg.ChannelID),
		slog.String("author", msg.Author),
		slog.String("command", name))

	if !b.begin() {
		logger.Debug("bot is stopping, command ignored")
		return
	}
	defer b.inflight.Done()

	switch name {
	case pingCommand:
		logger.Info("ping command called")
		b.send(ctx, logger, msg.ChannelID, msgPong)
	case convertCommand:
		b.handleConvert(ctx, logger, msg, args)
	default:
		logger.Debug("unknown command ignored")
	}
}

// Stop запрещает запуск новых команд и ждет завершения выполняющихся.
func (b *Bot) Stop() {
	b.mu.Lock()
	b.stopping = true
	b.mu.Unlock()
	b.inflight.Wait()
}

// begin регистрирует выполняющуюся команду. Возвращает false после Stop.
func (b *Bot) begin() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopping {
		return false
	}
	b.inflight.Add(1)
	return true
}

func (b *Bot) handleConvert(ctx context.Context, logger *slog.Logger, msg IncomingMessage, rawArgs []string) {
	args, err := parseConvertArgs(rawArgs)
	switch {
	case errors.Is(err, errMissingLink):
		b.send(ctx, logger, msg.ChannelID, fmt.Sprintf(msgConvertUsage, b.cfg.CommandPrefix))
		return
	case errors.Is(err, errInvalidBool):
		b.send(ctx, logger, msg.ChannelID, fmt.Sprintf(msgInvalidBoolArg, rawArgs[1]))
		return
	}

	id := b.newID()
	logger = logger.With(slog.String("conversion_id", id))
	logger.Info("convert command called",
		slog.String("link", args.link),
		slog.Bool("generate_mp4", args.generateMP4))

	b.tracker.Create(domain.Conversion{
		ID:          id,
		ChannelID:   msg.ChannelID,
		Author:      msg.Author,
		MessageLink: args.link,
		GenerateMP4: args.generateMP4,
		State:       domain.ConversionStarted,
	})
	telemetry.ConversionStarted()

	err = b.runConversion(ctx, logger, id, msg.ChannelID, args)
	if err == nil {
		b.track(logger, id, func(c *domain.Conversion) { c.State = domain.ConversionDone })
		telemetry.ConversionFinished(telemetry.OutcomeDone)
		logger.Info("conversion finished")
		return
	}

	text, outcome, unexpected := userMessage(err)
	b.track(logger, id, func(c *domain.Conversion) {
		c.State = domain.ConversionFailed
		c.ErrorMessage = err.Error()
	})
	telemetry.ConversionFinished(outcome)

	if ctx.Err() != nil {
		logger.Warn("conversion interrupted by shutdown", slog.String("error", err.Error()))
		return
	}
	if unexpected {
		logger.Error("error in convert command", slog.String("error", err.Error()))
	} else {
		logger.Info("conversion stopped", slog.String("reason", err.Error()))
	}
	b.send(ctx, logger, msg.ChannelID, text)
}

// runConversion проводит одну конвертацию через все состояния.
// Ошибка означает переход в Failed; сообщения об успехе отправляются по ходу.
func (b *Bot) runConversion(ctx context.Context, logger *slog.Logger, id, channelID string, args convertArgs) error {
	b.send(ctx, logger, channelID, msgAck)

	b.track(logger, id, func(c *domain.Conversion) { c.State = domain.ConversionLocatingVideo })
	sourceURL, err := b.locator.Locate(ctx, args.link)
	if err != nil {
		return err
	}

	b.track(logger, id, func(c *domain.Conversion) {
		c.State = domain.ConversionSubmittingAsset
		c.SourceURL = sourceURL
	})
	if args.generateMP4 {
		b.send(ctx, logger, channelID, msgCreatingAssetMP4)
	} else {
		b.send(ctx, logger, channelID, msgCreatingAsset)
	}

	asset, err := b.assets.CreateAsset(ctx, sourceURL, args.generateMP4)
	if err != nil {
		return err
	}
	logger = logger.With(slog.String("asset_id", asset.ID))
	logger.Info("asset created")

	b.track(logger, id, func(c *domain.Conversion) {
		c.State = domain.ConversionAwaitingAssetReady
		c.AssetID = asset.ID
	})
	submitted := time.Now()
	ready, err := b.waiter.WaitForAsset(ctx, asset.ID)
	if errors.Is(err, poller.ErrTimeout) {
		return fmt.Errorf("%w: %w", errAssetTimeout, err)
	}
	if err != nil {
		return err
	}
	telemetry.ObserveAssetReady(time.Since(submitted))

	playbackID, err := ready.PrimaryPlaybackID()
	if err != nil {
		// Ответ на создание тоже содержит playback ID.
		if playbackID, err = asset.PrimaryPlaybackID(); err != nil {
			return err
		}
	}

	playbackURL := domain.PlaybackURL(b.cfg.StreamBaseURL, playbackID)
	b.send(ctx, logger, channelID, fmt.Sprintf(msgStreamingURL, playbackURL))
	b.track(logger, id, func(c *domain.Conversion) { c.PlaybackURL = playbackURL })

	if !args.generateMP4 {
		return nil
	}

	b.track(logger, id, func(c *domain.Conversion) { c.State = domain.ConversionAwaitingRenditionReady })
	_, err = b.waiter.WaitForStaticRenditions(ctx, asset.ID)
	if errors.Is(err, poller.ErrTimeout) {
		return fmt.Errorf("%w: %w", errRenditionTimeout, err)
	}
	if err != nil {
		return err
	}

	mp4URL := domain.MP4URL(b.cfg.StreamBaseURL, playbackID, b.cfg.MP4Quality)
	logger.Info("mp4 url generated", slog.String("url", mp4URL))
	b.send(ctx, logger, channelID, fmt.Sprintf(msgMP4URL, mp4URL))
	b.track(logger, id, func(c *domain.Conversion) { c.MP4URL = mp4URL })
	return nil
}

func (b *Bot) send(ctx context.Context, logger *slog.Logger, channelID, text string) {
	if err := b.chat.SendMessage(ctx, channelID, text); err != nil {
		logger.Error("failed to send message", slog.String("error", err.Error()))
	}
}

func (b *Bot) track(logger *slog.Logger, id string, fn func(*domain.Conversion)) {
	if err := b.tracker.Update(id, fn); err != nil {
		logger.Warn("failed to update conversion", slog.String("error", err.Error()))
	}
}

type noopTracker struct{}

func (noopTracker) Create(domain.Conversion) {}

func (noopTracker) Update(string, func(*domain.Conversion)) error { return nil }
