package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"video-convert-bot/internal/domain"
)

// MockChatAPI - мок-реализация ports.ChatAPI для тестирования
type MockChatAPI struct {
	CachedChannelFunc func(channelID string) (*domain.Channel, bool)
	FetchChannelFunc  func(ctx context.Context, channelID string) (*domain.Channel, error)
	FetchMessageFunc  func(ctx context.Context, channelID, messageID string) (*domain.Message, error)
	SendMessageFunc   func(ctx context.Context, channelID, content string) error

	calls int
}

func (m *MockChatAPI) CachedChannel(channelID string) (*domain.Channel, bool) {
	m.calls++
	if m.CachedChannelFunc != nil {
		return m.CachedChannelFunc(channelID)
	}
	return nil, false
}

func (m *MockChatAPI) FetchChannel(ctx context.Context, channelID string) (*domain.Channel, error) {
	m.calls++
	if m.FetchChannelFunc != nil {
		return m.FetchChannelFunc(ctx, channelID)
	}
	return &domain.Channel{ID: channelID}, nil
}

func (m *MockChatAPI) FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error) {
	m.calls++
	if m.FetchMessageFunc != nil {
		return m.FetchMessageFunc(ctx, channelID, messageID)
	}
	return &domain.Message{ID: messageID, ChannelID: channelID}, nil
}

func (m *MockChatAPI) SendMessage(ctx context.Context, channelID, content string) error {
	m.calls++
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, channelID, content)
	}
	return nil
}

// fakeDiscordSession - мок для discordSession
type fakeDiscordSession struct {
	channelFunc func(channelID string) (*discordgo.Channel, error)
	messageFunc func(channelID, messageID string) (*discordgo.Message, error)
	sent        []string
	sendErr     error
}

func (f *fakeDiscordSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return f.channelFunc(channelID)
}

func (f *fakeDiscordSession) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.messageFunc(channelID, messageID)
}

func (f *fakeDiscordSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}
