package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidMessageLink возвращается, если ссылка не содержит трех последних сегментов server/channel/message.
	ErrInvalidMessageLink = errors.New("invalid message link format")
	// ErrNoPlaybackID возвращается, если у готового ассета нет ни одного playback ID.
	ErrNoPlaybackID = errors.New("asset has no playback id")
)

// directMessageServerID используется Discord в ссылках на сообщения из личных каналов.
const directMessageServerID = "@me"

// MessageReference указывает на конкретное сообщение в чате.
type MessageReference struct {
	ServerID  string
	ChannelID string
	MessageID string
}

// ParseMessageLink разбирает ссылку вида .../server/channel/message.
// Идентификаторы должны быть числовыми; для server допускается "@me".
func ParseMessageLink(link string) (MessageReference, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return MessageReference{}, ErrInvalidMessageLink
	}

	path := link
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		path = u.Path
	}

	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 3 {
		return MessageReference{}, ErrInvalidMessageLink
	}

	tail := segments[len(segments)-3:]
	ref := MessageReference{ServerID: tail[0], ChannelID: tail[1], MessageID: tail[2]}

	if ref.ServerID != directMessageServerID && !isSnowflake(ref.ServerID) {
		return MessageReference{}, fmt.Errorf("%w: bad server id %q", ErrInvalidMessageLink, ref.ServerID)
	}
	if !isSnowflake(ref.ChannelID) {
		return MessageReference{}, fmt.Errorf("%w: bad channel id %q", ErrInvalidMessageLink, ref.ChannelID)
	}
	if !isSnowflake(ref.MessageID) {
		return MessageReference{}, fmt.Errorf("%w: bad message id %q", ErrInvalidMessageLink, ref.MessageID)
	}

	return ref, nil
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Channel — канал чата, в котором ищется сообщение.
type Channel struct {
	ID       string
	ServerID string
	Name     string
}

// Attachment представляет вложение сообщения.
type Attachment struct {
	URL         string
	ContentType string
	Filename    string
}

// IsVideo сообщает, объявлено ли вложение как видео.
func (a Attachment) IsVideo() bool {
	return strings.HasPrefix(a.ContentType, "video/")
}

// Message — минимальное представление сообщения, достаточное для поиска видео.
type Message struct {
	ID          string
	ChannelID   string
	Attachments []Attachment
}

// FirstVideoAttachment возвращает первое видеовложение в исходном порядке.
func FirstVideoAttachment(attachments []Attachment) (Attachment, bool) {
	for _, a := range attachments {
		if a.IsVideo() {
			return a, true
		}
	}
	return Attachment{}, false
}

// AssetStatus — статус ассета на стороне сервиса транскодирования.
type AssetStatus string

const (
	AssetStatusPreparing AssetStatus = "preparing"
	AssetStatusReady     AssetStatus = "ready"
	AssetStatusErrored   AssetStatus = "errored"
)

// StaticRenditions описывает состояние скачиваемых MP4-рендеров ассета.
type StaticRenditions struct {
	Status string
}

// Asset представляет ассет, созданный на стороне сервиса.
// Все статусы, кроме "ready", считаются незавершенной обработкой.
type Asset struct {
	ID          string
	Status      AssetStatus
	PlaybackIDs []string
	MP4Support  string
	// StaticRenditions равен nil, пока сервис не начал готовить рендеры.
	StaticRenditions *StaticRenditions
}

// IsReady сообщает, готов ли ассет к воспроизведению.
func (a *Asset) IsReady() bool {
	return a != nil && a.Status == AssetStatusReady
}

// StaticRenditionsReady сообщает, готовы ли и ассет, и его MP4-рендеры.
func (a *Asset) StaticRenditionsReady() bool {
	return a.IsReady() && a.StaticRenditions != nil && a.StaticRenditions.Status == string(AssetStatusReady)
}

// PrimaryPlaybackID возвращает первый playback ID ассета.
func (a *Asset) PrimaryPlaybackID() (string, error) {
	if a == nil || len(a.PlaybackIDs) == 0 || a.PlaybackIDs[0] == "" {
		return "", ErrNoPlaybackID
	}
	return a.PlaybackIDs[0], nil
}

// PlaybackURL строит HLS-ссылку для воспроизведения.
func PlaybackURL(streamBase, playbackID string) string {
	return fmt.Sprintf("%s/%s.m3u8", strings.TrimRight(streamBase, "/"), playbackID)
}

// MP4URL строит ссылку на скачиваемый MP4-рендер заданного качества.
func MP4URL(streamBase, playbackID, quality string) string {
	return fmt.Sprintf("%s/%s/%s.mp4", strings.TrimRight(streamBase, "/"), playbackID, quality)
}
