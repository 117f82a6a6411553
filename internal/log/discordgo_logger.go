package log

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// DiscordgoLogger возвращает функцию, совместимую с discordgo.Logger,
// которая направляет внутренние сообщения библиотеки в slog.
// Сообщения проходят через маскировщик, если logger создан через NewMaskedLogger.
func DiscordgoLogger(logger *slog.Logger) func(msgL, caller int, format string, a ...interface{}) {
	return func(msgL, caller int, format string, a ...interface{}) {
		msg := strings.TrimSpace(fmt.Sprintf(format, a...))
		attrs := []any{slog.String("source", "discordgo")}

		switch msgL {
		case discordgo.LogError:
			logger.Error(msg, attrs...)
		case discordgo.LogWarning:
			logger.Warn(msg, attrs...)
		case discordgo.LogInformational:
			logger.Info(msg, attrs...)
		default:
			logger.Debug(msg, attrs...)
		}
	}
}
