package poller

import (
	"context"
	"log/slog"

	"video-convert-bot/internal/domain"
	"video-convert-bot/internal/ports"
)

// Фазы опроса, используются в логах и метриках.
const (
	PhaseAsset            = "asset"
	PhaseStaticRenditions = "static_renditions"
)

// AttemptObserver получает уведомление о каждой попытке опроса.
type AttemptObserver func(phase string)

// AssetWaiter ожидает готовности ассета, опрашивая сервис через общий Poller.
type AssetWaiter struct {
	assets    ports.AssetService
	poller    *Poller
	logger    *slog.Logger
	onAttempt AttemptObserver
}

// NewAssetWaiter создает AssetWaiter.
func NewAssetWaiter(assets ports.AssetService, p *Poller, logger *slog.Logger, onAttempt AttemptObserver) *AssetWaiter {
	if p == nil {
		p = New()
	}
	if logger == nil {
		logger = p.logger
	}
	return &AssetWaiter{assets: assets, poller: p, logger: logger, onAttempt: onAttempt}
}

// WaitForAsset ждет, пока статус ассета станет "ready".
func (w *AssetWaiter) WaitForAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	logger := w.logger.With(slog.String("asset_id", assetID), slog.String("phase", PhaseAsset))

	return w.wait(ctx, PhaseAsset, assetID, func(asset *domain.Asset) bool {
		if asset.IsReady() {
			logger.Info("asset is ready")
			return true
		}
		logger.Info("asset not ready", slog.String("status", string(asset.Status)))
		return false
	})
}

// WaitForStaticRenditions ждет, пока готовы и ассет, и его MP4-рендеры.
// Отсутствующий или неготовый статус рендеров не является ошибкой, опрос продолжается.
func (w *AssetWaiter) WaitForStaticRenditions(ctx context.Context, assetID string) (*domain.Asset, error) {
	logger := w.logger.With(slog.String("asset_id", assetID), slog.String("phase", PhaseStaticRenditions))

	return w.wait(ctx, PhaseStaticRenditions, assetID, func(asset *domain.Asset) bool {
		switch {
		case asset.StaticRenditionsReady():
			logger.Info("static renditions are ready")
			return true
		case !asset.IsReady():
			logger.Info("asset not ready", slog.String("status", string(asset.Status)))
		case asset.StaticRenditions != nil:
			logger.Info("waiting for static renditions", slog.String("status", asset.StaticRenditions.Status))
		default:
			logger.Info("static renditions not available yet")
		}
		return false
	})
}

func (w *AssetWaiter) wait(ctx context.Context, phase, assetID string, done func(*domain.Asset) bool) (*domain.Asset, error) {
	var last *domain.Asset
	err := w.poller.Until(ctx, func(ctx context.Context, attempt int) (bool, error) {
		if w.onAttempt != nil {
			w.onAttempt(phase)
		}
		asset, err := w.assets.GetAsset(ctx, assetID)
		if err != nil {
			return false, err
		}
		last = asset
		return done(asset), nil
	})
	if err != nil {
		w.logger.Warn("polling finished without success",
			slog.String("asset_id", assetID),
			slog.String("phase", phase),
			slog.String("error", err.Error()))
		return last, err
	}
	return last, nil
}
