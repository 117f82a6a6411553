package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"video-convert-bot/internal/domain"
	"video-convert-bot/internal/ports"
)

// Исходы поиска видео, которые пользователь видит как отдельные сообщения.
var (
	ErrChannelNotFound  = errors.New("channel not found")
	ErrChannelForbidden = errors.New("no permission to access channel")
	ErrMessageNotFound  = errors.New("message not found")
	ErrMessageForbidden = errors.New("no permission to read messages in channel")
	// ErrNoVideo — пустой результат: в сообщении нет видеовложений.
	ErrNoVideo = errors.New("no video attachment in message")
)

// Locator находит прямую ссылку на первое видео в сообщении по ссылке на него.
type Locator struct {
	chat   ports.ChatAPI
	logger *slog.Logger
}

// NewLocator создает новый Locator.
func NewLocator(chat ports.ChatAPI, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Locator{chat: chat, logger: logger}
}

// Locate разбирает ссылку, находит канал и сообщение и возвращает URL первого видео.
// При неверном формате ссылки обращений к Discord не происходит.
func (l *Locator) Locate(ctx context.Context, link string) (string, error) {
	ref, err := domain.ParseMessageLink(link)
	if err != nil {
		return "", err
	}
	logger := l.logger.With(
		slog.String("server_id", ref.ServerID),
		slog.String("channel_id", ref.ChannelID),
		slog.String("message_id", ref.MessageID),
	)
	logger.Info("message link parsed")

	channel, ok := l.chat.CachedChannel(ref.ChannelID)
	if !ok {
		logger.Info("channel not found in cache, fetching from API")
		channel, err = l.chat.FetchChannel(ctx, ref.ChannelID)
		switch {
		case errors.Is(err, ErrForbidden):
			return "", fmt.Errorf("%w: %w", ErrChannelForbidden, err)
		case errors.Is(err, ErrNotFound):
			return "", fmt.Errorf("%w: %w", ErrChannelNotFound, err)
		case err != nil:
			return "", err
		}
	}

	msg, err := l.chat.FetchMessage(ctx, channel.ID, ref.MessageID)
	switch {
	case errors.Is(err, ErrNotFound):
		return "", fmt.Errorf("%w: %w", ErrMessageNotFound, err)
	case errors.Is(err, ErrForbidden):
		return "", fmt.Errorf("%w: %w", ErrMessageForbidden, err)
	case err != nil:
		return "", err
	}
	logger.Info("message fetched", slog.Int("attachments", len(msg.Attachments)))

	video, ok := domain.FirstVideoAttachment(msg.Attachments)
	if !ok {
		return "", ErrNoVideo
	}

	logger.Info("video attachment found", slog.String("url", video.URL), slog.String("content_type", video.ContentType))
	return video.URL, nil
}
