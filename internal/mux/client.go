package mux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"video-convert-bot/internal/domain"
)

const (
	// DefaultBaseURL — адрес Video API по умолчанию.
	DefaultBaseURL = "https://api.mux.com"
	// DefaultMP4Quality — уровень качества скачиваемого MP4-рендера.
	DefaultMP4Quality = "capped-1080p"

	playbackPolicyPublic = "public"
)

// Client — клиент для взаимодействия с Video API сервиса транскодирования.
type Client struct {
	baseURL     string
	tokenID     string
	tokenSecret string
	mp4Quality  string
	httpClient  *http.Client
}

// Option определяет функциональную опцию для настройки клиента.
type Option func(*Client)

// WithBaseURL задает адрес API (используется в тестах).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient задает собственный HTTP-клиент.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMP4Quality задает уровень качества MP4-рендера.
func WithMP4Quality(q string) Option {
	return func(c *Client) {
		if q != "" {
			c.mp4Quality = q
		}
	}
}

// NewClient создает новый экземпляр Client.
func NewClient(tokenID, tokenSecret string, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		tokenID:     tokenID,
		tokenSecret: tokenSecret,
		mp4Quality:  DefaultMP4Quality,
		httpClient: &http.Client{
			Timeout: 30 * time.Second, // Общий таймаут для запросов
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// API-запросы и ответы
type inputSettings struct {
	URL string `json:"url"`
}

type createAssetRequest struct {
	Input          []inputSettings `json:"input"`
	PlaybackPolicy []string        `json:"playback_policy"`
	MP4Support     string          `json:"mp4_support,omitempty"`
}

type playbackIDDTO struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

type staticRenditionsDTO struct {
	Status string `json:"status"`
}

// AssetDTO представляет ассет в ответе API.
type AssetDTO struct {
	ID               string               `json:"id"`
	Status           string               `json:"status"`
	PlaybackIDs      []playbackIDDTO      `json:"playback_ids"`
	MP4Support       string               `json:"mp4_support,omitempty"`
	StaticRenditions *staticRenditionsDTO `json:"static_renditions,omitempty"`
}

type assetResponse struct {
	Data AssetDTO `json:"data"`
}

type errorResponse struct {
	Error struct {
		Type     string   `json:"type"`
		Messages []string `json:"messages"`
	} `json:"error"`
}

// APIError — ошибка, которую вернул сервис.
type APIError struct {
	StatusCode int
	Type       string
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("mux api: unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("mux api: %s (%d): %s", e.Type, e.StatusCode, strings.Join(e.Messages, "; "))
}

// CreateAsset создает ассет из видео по sourceURL с публичной политикой воспроизведения.
// MP4-рендер запрашивается только при generateMP4. Запрос не повторяется при ошибке.
func (c *Client) CreateAsset(ctx context.Context, sourceURL string, generateMP4 bool) (*domain.Asset, error) {
	body := createAssetRequest{
		Input:          []inputSettings{{URL: sourceURL}},
		PlaybackPolicy: []string{playbackPolicyPublic},
	}
	if generateMP4 {
		body.MP4Support = c.mp4Quality
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var result assetResponse
	if err := c.do(ctx, http.MethodPost, "/video/v1/assets", bytes.NewReader(payload), &result); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return result.Data.toDomain(), nil
}

// GetAsset запрашивает текущее состояние ассета.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	var result assetResponse
	if err := c.do(ctx, http.MethodGet, "/video/v1/assets/"+url.PathEscape(assetID), nil, &result); err != nil {
		return nil, fmt.Errorf("get asset %s: %w", assetID, err)
	}
	return result.Data.toDomain(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.tokenID, c.tokenSecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Создание возвращает 201, чтение — 200.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er errorResponse
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); readErr == nil && json.Unmarshal(data, &er) == nil {
			apiErr.Type = er.Error.Type
			apiErr.Messages = er.Error.Messages
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (a AssetDTO) toDomain() *domain.Asset {
	asset := &domain.Asset{
		ID:         a.ID,
		Status:     domain.AssetStatus(a.Status),
		MP4Support: a.MP4Support,
	}
	for _, p := range a.PlaybackIDs {
		asset.PlaybackIDs = append(asset.PlaybackIDs, p.ID)
	}
	if a.StaticRenditions != nil {
		asset.StaticRenditions = &domain.StaticRenditions{Status: a.StaticRenditions.Status}
	}
	return asset
}
