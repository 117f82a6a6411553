package bot

import (
	"errors"
	"fmt"

	"video-convert-bot/internal/discord"
	"video-convert-bot/internal/domain"
	"video-convert-bot/internal/telemetry"
)

// Тексты ответов пользователю.
const (
	msgPong             = "Pong!"
	msgAck              = "Fetching video from message, please wait..."
	msgCreatingAsset    = "Creating asset on Mux..."
	msgCreatingAssetMP4 = "Creating asset on Mux with MP4 support..."
	msgStreamingURL     = "Streaming URL: %s"
	msgMP4URL           = "MP4 download URL: `%s`"
	msgInvalidLink      = "Invalid message link format. Please use a full Discord message link."
	msgChannelNotFound  = "The specified channel was not found."
	msgChannelForbidden = "I don't have permission to access that channel."
	msgMessageNotFound  = "The specified message was not found."
	msgMessageForbidden = "I don't have permission to read messages in that channel."
	msgNoVideo          = "No video found in the linked message."
	msgAssetTimeout     = "Asset processing timed out. Please try again later."
	msgRenditionTimeout = "MP4 processing timed out. Please try again later."
	msgGenericError     = "An error occurred: %s"
	msgConvertUsage     = "Usage: %sconvert <message_link> [generate_mp4]"
	msgInvalidBoolArg   = "Invalid value for generate_mp4: %q. Use true/false, yes/no, on/off or 1/0."
)

var (
	errAssetTimeout     = errors.New("asset processing timed out")
	errRenditionTimeout = errors.New("static renditions processing timed out")
)

// userMessage переводит ошибку конвертации в текст для пользователя и исход для метрик.
// unexpected равен true для ошибок, не имеющих отдельного текста.
func userMessage(err error) (text, outcome string, unexpected bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidMessageLink):
		return msgInvalidLink, telemetry.OutcomeFailed, false
	case errors.Is(err, discord.ErrChannelNotFound):
		return msgChannelNotFound, telemetry.OutcomeFailed, false
	case errors.Is(err, discord.ErrChannelForbidden):
		return msgChannelForbidden, telemetry.OutcomeFailed, false
	case errors.Is(err, discord.ErrMessageNotFound):
		return msgMessageNotFound, telemetry.OutcomeFailed, false
	case errors.Is(err, discord.ErrMessageForbidden):
		return msgMessageForbidden, telemetry.OutcomeFailed, false
	case errors.Is(err, discord.ErrNoVideo):
		return msgNoVideo, telemetry.OutcomeNoVideo, false
	case errors.Is(err, errAssetTimeout):
		return msgAssetTimeout, telemetry.OutcomeTimeout, false
	case errors.Is(err, errRenditionTimeout):
		return msgRenditionTimeout, telemetry.OutcomeTimeout, false
	default:
		return fmt.Sprintf(msgGenericError, err.Error()), telemetry.OutcomeFailed, true
	}
}
