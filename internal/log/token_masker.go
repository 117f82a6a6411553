package log

import (
	"context"
	"log/slog"
	"regexp"
)

const maskedToken = "***masked-token***"

// maskRule — шаблон секрета и строка замены для него.
type maskRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Правила применяются по порядку: сначала заголовки авторизации, чтобы
// сохранить схему (Bot/Bearer/Basic), затем голые токены Discord-бота.
var maskRules = []maskRule{
	{
		pattern:     regexp.MustCompile(`\b(Bot|Bearer|Basic) [A-Za-z0-9._~+/=-]{20,}`),
		replacement: "$1 " + maskedToken,
	},
	{
		// Три base64url-сегмента через точку.
		pattern:     regexp.MustCompile(`\b[MNO][A-Za-z0-9_-]{23,27}\.[A-Za-z0-9_-]{6}\.[A-Za-z0-9_-]{27,40}\b`),
		replacement: maskedToken,
	},
}

func maskTokens(text string) string {
	for _, rule := range maskRules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text
}

// TokenMaskerHandler скрывает токены Discord и значения авторизации
// в сообщении и во всех атрибутах записи до передачи во вложенный handler.
type TokenMaskerHandler struct {
	next slog.Handler
}

// NewTokenMaskerHandler оборачивает next.
func NewTokenMaskerHandler(next slog.Handler) *TokenMaskerHandler {
	return &TokenMaskerHandler{next: next}
}

// NewMaskedLogger создает slog.Logger, который не пропускает токены в вывод.
func NewMaskedLogger(next slog.Handler) *slog.Logger {
	return slog.New(NewTokenMaskerHandler(next))
}

func (h *TokenMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle собирает новую запись только из замаскированных данных.
// Исходная запись не изменяется и во вложенный handler не попадает.
func (h *TokenMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, maskTokens(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(a))
		return true
	})
	return h.next.Handle(ctx, masked)
}

func (h *TokenMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TokenMaskerHandler{next: h.next.WithAttrs(maskAttrs(attrs))}
}

func (h *TokenMaskerHandler) WithGroup(name string) slog.Handler {
	return &TokenMaskerHandler{next: h.next.WithGroup(name)}
}

func maskAttrs(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = maskAttr(a)
	}
	return out
}

func maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: maskValue(a.Value)}
}

// maskValue обрабатывает строки, ошибки, Stringer и группы.
// LogValuer раскрывается до маскировки.
func maskValue(v slog.Value) slog.Value {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.StringValue(maskTokens(v.String()))
	case slog.KindGroup:
		return slog.GroupValue(maskAttrs(v.Group())...)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return slog.StringValue(maskTokens(x.Error()))
		case interface{ String() string }:
			return slog.StringValue(maskTokens(x.String()))
		}
	}
	return v
}
