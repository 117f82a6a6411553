package ports

import (
	"context"

	"video-convert-bot/internal/domain"
)

// ChatAPI определяет операции чат-платформы, которые нужны боту.
type ChatAPI interface {
	// CachedChannel возвращает канал из локального кэша сессии.
	// Второе значение равно false, если канала в кэше нет.
	CachedChannel(channelID string) (*domain.Channel, bool)
	// FetchChannel запрашивает канал через REST API.
	FetchChannel(ctx context.Context, channelID string) (*domain.Channel, error)
	// FetchMessage запрашивает сообщение по идентификатору внутри канала.
	FetchMessage(ctx context.Context, channelID, messageID string) (*domain.Message, error)
	// SendMessage отправляет текстовое сообщение в канал.
	SendMessage(ctx context.Context, channelID, content string) error
}

// AssetService определяет операции сервиса транскодирования.
type AssetService interface {
	CreateAsset(ctx context.Context, sourceURL string, generateMP4 bool) (*domain.Asset, error)
	GetAsset(ctx context.Context, assetID string) (*domain.Asset, error)
}

// VideoLocator находит URL видео по ссылке на сообщение.
type VideoLocator interface {
	Locate(ctx context.Context, link string) (string, error)
}

// ReadinessWaiter ожидает готовности ассета и его MP4-рендеров.
type ReadinessWaiter interface {
	WaitForAsset(ctx context.Context, assetID string) (*domain.Asset, error)
	WaitForStaticRenditions(ctx context.Context, assetID string) (*domain.Asset, error)
}

// ConversionTracker хранит состояние вызовов команды конвертации.
type ConversionTracker interface {
	Create(conv domain.Conversion)
	Update(id string, fn func(*domain.Conversion)) error
}
