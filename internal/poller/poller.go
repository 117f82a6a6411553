// Package poller реализует опрос удаленного состояния с фиксированным интервалом
// и ограниченным числом попыток.
package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Значения по умолчанию для обеих фаз опроса.
const (
	DefaultInterval    = 10 * time.Second
	DefaultMaxAttempts = 30
)

// ErrTimeout возвращается, если условие не выполнилось за отведенное число попыток.
var ErrTimeout = errors.New("polling timed out")

// errNotYet сигнализирует backoff, что нужно повторить проверку.
var errNotYet = errors.New("condition not satisfied yet")

// CheckFunc выполняет одну проверку. Возвращает true, если цель достигнута.
// Ошибка прерывает опрос и возвращается вызывающему без изменений.
type CheckFunc func(ctx context.Context, attempt int) (bool, error)

// Poller опрашивает состояние с фиксированной паузой между попытками.
type Poller struct {
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
	timer       func() backoff.Timer
}

// Option определяет функциональную опцию для конфигурации Poller.
type Option func(*Poller)

// WithInterval задает паузу между попытками.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithMaxAttempts задает максимальное число проверок.
func WithMaxAttempts(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithLogger задает логгер.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// withTimer подменяет таймер backoff (используется в тестах).
func withTimer(f func() backoff.Timer) Option {
	return func(p *Poller) {
		p.timer = f
	}
}

// New создает Poller с параметрами по умолчанию (30 попыток, 10 секунд).
func New(opts ...Option) *Poller {
	p := &Poller{
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval возвращает паузу между попытками.
func (p *Poller) Interval() time.Duration { return p.interval }

// MaxAttempts возвращает максимальное число проверок.
func (p *Poller) MaxAttempts() int { return p.maxAttempts }

// Until вызывает check до первого успеха, но не более maxAttempts раз,
// выдерживая interval между вызовами. После успеха проверок больше нет.
// При исчерпании попыток возвращает ErrTimeout.
func (p *Poller) Until(ctx context.Context, check CheckFunc) error {
	attempt := 0
	operation := func() error {
		attempt++
		ok, err := check(ctx, attempt)
		if err != nil {
			return backoff.Permanent(err)
		}
		if ok {
			return nil
		}
		return errNotYet
	}

	// maxAttempts проверок означает maxAttempts-1 повторов.
	var b backoff.BackOff = backoff.NewConstantBackOff(p.interval)
	b = backoff.WithMaxRetries(b, uint64(p.maxAttempts-1))
	b = backoff.WithContext(b, ctx)

	notify := func(_ error, next time.Duration) {
		p.logger.Debug("condition not met, waiting", slog.Int("attempt", attempt), slog.Duration("next_in", next))
	}

	var err error
	if p.timer != nil {
		err = backoff.RetryNotifyWithTimer(operation, b, notify, p.timer())
	} else {
		err = backoff.RetryNotify(operation, b, notify)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errNotYet):
		return fmt.Errorf("%w after %d attempts", ErrTimeout, attempt)
	default:
		return err
	}
}
