package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"video-convert-bot/internal/domain"
)

var (
	// ErrNotFound возвращается, если Discord ответил, что ресурс не существует.
	ErrNotFound = errors.New("discord resource not found")
	// ErrForbidden возвращается, если у бота нет прав на ресурс.
	ErrForbidden = errors.New("discord access forbidden")
)

// discordSession описывает методы *discordgo.Session, которые мы используем.
// Это позволяет подменять сессию в тестах.
type discordSession interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Session адаптирует *discordgo.Session к интерфейсу ports.ChatAPI.
type Session struct {
	api   discordSession
	state *discordgo.State
}

// NewSession оборачивает готовую сессию discordgo.
func NewSession(s *discordgo.Session) *Session {
	return &Session{api: s, state: s.State}
}

// CachedChannel ищет канал в локальном состоянии сессии.
func (s *Session) CachedChannel(channelID string) (*domain.Channel, bool) {
	if s.state == nil {
		return nil, false
	}
	ch, err := s.state.Channel(channelID)
	if err != nil || ch == nil {
		return nil, false
	}
	return toDomainChannel(ch), true
}

// FetchChannel запрашивает канал через REST API.
func (s *Session) FetchChannel(ctx context.Context, channelID string) (*domain.Channel, error) {
	ch, err := s.api.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, classifyError(err))
	}
	return toDomainChannel(ch), nil
}

// FetchMessage запрашивает сообщение через REST API.
func (s *Session) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	msg, err := s.api.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", messageID, classifyError(err))
	}

	out := &domain.Message{
		ID:          msg.ID,
		ChannelID:   msg.ChannelID,
		Attachments: make([]domain.Attachment, 0, len(msg.Attachments)),
	}
	for _, a := range msg.Attachments {
		if a == nil {
			continue
		}
		out.Attachments = append(out.Attachments, domain.Attachment{
			URL:         a.URL,
			ContentType: a.ContentType,
			Filename:    a.Filename,
		})
	}
	return out, nil
}

// SendMessage отправляет текст в канал, разбивая его на части по лимиту Discord.
func (s *Session) SendMessage(ctx context.Context, channelID, content string) error {
	for _, chunk := range splitMessage(content, maxMessageLength) {
		if _, err := s.api.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send message to %s: %w", channelID, classifyError(err))
		}
	}
	return nil
}

func toDomainChannel(ch *discordgo.Channel) *domain.Channel {
	return &domain.Channel{ID: ch.ID, ServerID: ch.GuildID, Name: ch.Name}
}

// classifyError приводит ошибки REST API Discord к ErrNotFound/ErrForbidden,
// сохраняя исходную ошибку в цепочке.
func classifyError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownMessage:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
			return fmt.Errorf("%w: %w", ErrForbidden, err)
		}
	}

	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrForbidden, err)
		}
	}
	return err
}
