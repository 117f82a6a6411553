package poller

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-convert-bot/internal/domain"
)

// mockAssetService возвращает заранее заданную последовательность состояний.
type mockAssetService struct {
	states []*domain.Asset
	err    error
	calls  int
}

func (m *mockAssetService) CreateAsset(ctx context.Context, sourceURL string, generateMP4 bool) (*domain.Asset, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAssetService) GetAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	i := m.calls - 1
	if i >= len(m.states) {
		i = len(m.states) - 1
	}
	return m.states[i], nil
}

func newTestWaiter(svc *mockAssetService, observed *[]string) *AssetWaiter {
	timer := newFakeTimer()
	p := New(withTimer(func() backoff.Timer { return timer }))
	return NewAssetWaiter(svc, p, nil, func(phase string) {
		if observed != nil {
			*observed = append(*observed, phase)
		}
	})
}

func TestAssetWaiter_WaitForAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("ждет статуса ready", func(t *testing.T) {
		svc := &mockAssetService{states: []*domain.Asset{
			{ID: "a", Status: domain.AssetStatusPreparing},
			{ID: "a", Status: "unknown-status"},
			{ID: "a", Status: domain.AssetStatusReady, PlaybackIDs: []string{"p"}},
		}}
		var phases []string

		asset, err := newTestWaiter(svc, &phases).WaitForAsset(ctx, "a")
		require.NoError(t, err)
		assert.True(t, asset.IsReady())
		assert.Equal(t, 3, svc.calls)
		assert.Equal(t, []string{PhaseAsset, PhaseAsset, PhaseAsset}, phases)
	})

	t.Run("таймаут, если ассет не готов", func(t *testing.T) {
		svc := &mockAssetService{states: []*domain.Asset{{ID: "a", Status: domain.AssetStatusErrored}}}

		_, err := newTestWaiter(svc, nil).WaitForAsset(ctx, "a")
		assert.ErrorIs(t, err, ErrTimeout)
		assert.Equal(t, DefaultMaxAttempts, svc.calls)
	})

	t.Run("ошибка сервиса пробрасывается", func(t *testing.T) {
		boom := errors.New("503")
		svc := &mockAssetService{err: boom}

		_, err := newTestWaiter(svc, nil).WaitForAsset(ctx, "a")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, svc.calls)
	})
}

func TestAssetWaiter_WaitForStaticRenditions(t *testing.T) {
	ctx := context.Background()

	t.Run("готовый ассет без рендеров продолжает ожидание", func(t *testing.T) {
		svc := &mockAssetService{states: []*domain.Asset{
			{ID: "a", Status: domain.AssetStatusPreparing},
			{ID: "a", Status: domain.AssetStatusReady},
			{ID: "a", Status: domain.AssetStatusReady, StaticRenditions: &domain.StaticRenditions{Status: "preparing"}},
			{ID: "a", Status: domain.AssetStatusReady, StaticRenditions: &domain.StaticRenditions{Status: "ready"}},
		}}
		var phases []string

		asset, err := newTestWaiter(svc, &phases).WaitForStaticRenditions(ctx, "a")
		require.NoError(t, err)
		assert.True(t, asset.StaticRenditionsReady())
		assert.Equal(t, 4, svc.calls)
		assert.Len(t, phases, 4)
		assert.Equal(t, PhaseStaticRenditions, phases[0])
	})

	t.Run("таймаут рендеров", func(t *testing.T) {
		svc := &mockAssetService{states: []*domain.Asset{
			{ID: "a", Status: domain.AssetStatusReady, StaticRenditions: &domain.StaticRenditions{Status: "preparing"}},
		}}

		asset, err := newTestWaiter(svc, nil).WaitForStaticRenditions(ctx, "a")
		assert.ErrorIs(t, err, ErrTimeout)
		assert.Equal(t, DefaultMaxAttempts, svc.calls)
		require.NotNil(t, asset)
		assert.Equal(t, "preparing", asset.StaticRenditions.Status)
	})
}
