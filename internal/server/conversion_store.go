package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"video-convert-bot/internal/domain"
)

// ErrConversionNotFound возвращается для неизвестного или уже удаленного ID.
var ErrConversionNotFound = errors.New("conversion not found")

// ConversionStore — потокобезопасное in-memory хранилище вызовов команды конвертации.
// Записи удаляются по истечении TTL.
type ConversionStore struct {
	conversions map[string]*domain.Conversion
	mutex       sync.RWMutex
	ttl         time.Duration
	now         func() time.Time
}

// NewConversionStore создает новый экземпляр ConversionStore
func NewConversionStore(ttl time.Duration) *ConversionStore {
	return &ConversionStore{
		conversions: make(map[string]*domain.Conversion),
		ttl:         ttl,
		now:         time.Now,
	}
}

// Create сохраняет новую запись. Пустое состояние заменяется на "started".
func (s *ConversionStore) Create(conv domain.Conversion) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	if conv.State == "" {
		conv.State = domain.ConversionStarted
	}
	conv.CreatedAt = now
	conv.UpdatedAt = now
	conv.ExpiresAt = now.Add(s.ttl)
	s.conversions[conv.ID] = &conv
}

// Update применяет fn к записи под блокировкой.
func (s *ConversionStore) Update(id string, fn func(*domain.Conversion)) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	conv, exists := s.conversions[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrConversionNotFound, id)
	}

	fn(conv)
	conv.UpdatedAt = s.now()
	return nil
}

// Get возвращает копию записи по ID
func (s *ConversionStore) Get(id string) (domain.Conversion, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	conv, exists := s.conversions[id]
	if !exists {
		return domain.Conversion{}, fmt.Errorf("%w: %s", ErrConversionNotFound, id)
	}
	return *conv, nil
}

// List возвращает копии всех записей, новые первыми.
func (s *ConversionStore) List() []domain.Conversion {
	s.mutex.RLock()
	out := make([]domain.Conversion, 0, len(s.conversions))
	for _, conv := range s.conversions {
		out = append(out, *conv)
	}
	s.mutex.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// CleanupExpired удаляет просроченные записи. Незавершенные конвертации не удаляются.
func (s *ConversionStore) CleanupExpired() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	removed := 0
	for id, conv := range s.conversions {
		if conv.State.IsTerminal() && now.After(conv.ExpiresAt) {
			delete(s.conversions, id)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker запускает тикер для периодической очистки до отмены ctx.
func (s *ConversionStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired()
			}
		}
	}()
}
