package domain

import "time"

// ConversionState — шаг обработки команды конвертации.
type ConversionState string

const (
	ConversionStarted                ConversionState = "started"
	ConversionLocatingVideo          ConversionState = "locating_video"
	ConversionSubmittingAsset        ConversionState = "submitting_asset"
	ConversionAwaitingAssetReady     ConversionState = "awaiting_asset_ready"
	ConversionAwaitingRenditionReady ConversionState = "awaiting_rendition_ready"
	ConversionDone                   ConversionState = "done"
	ConversionFailed                 ConversionState = "failed"
)

// IsTerminal сообщает, завершена ли обработка.
func (s ConversionState) IsTerminal() bool {
	return s == ConversionDone || s == ConversionFailed
}

// Conversion описывает один вызов команды конвертации.
type Conversion struct {
	ID           string          `json:"id"`
	ChannelID    string          `json:"channel_id"`
	Author       string          `json:"author"`
	MessageLink  string          `json:"message_link"`
	GenerateMP4  bool            `json:"generate_mp4"`
	State        ConversionState `json:"state"`
	SourceURL    string          `json:"source_url,omitempty"`
	AssetID      string          `json:"asset_id,omitempty"`
	PlaybackURL  string          `json:"playback_url,omitempty"`
	MP4URL       string          `json:"mp4_url,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	ExpiresAt    time.Time       `json:"-"`
}
