package relay

import (
	"fmt"
	"strings"

	"github.com/flemzord/transbridge/pkg/event"
)

// notificationText synthesizes the fixed-shape textual stand-in for a
// non-text message. Media bytes are never relayed; the counterpart receives
// this notification translated like any text message. Shapes per kind:
//
//	image    📷 image message
//	video    🎬 video message
//	audio    🎤 voice message (12s)
//	file     📎 file: report.pdf
//	location 📍 location: Shibuya, Tokyo  (or lat,lon when no address)
//	sticker  😊 sticker: smile wave
func notificationText(ev *event.InboundEvent) string {
	media := ev.Media
	if media == nil {
		media = &event.MediaInfo{}
	}

	switch ev.MessageKind {
	case event.MessageImage:
		return "📷 image message"
	case event.MessageVideo:
		return "🎬 video message"
	case event.MessageAudio:
		if media.DurationMillis > 0 {
			return fmt.Sprintf("🎤 voice message (%ds)", (media.DurationMillis+999)/1000)
		}
		return "🎤 voice message"
	case event.MessageFile:
		if media.FileName != "" {
			return "📎 file: " + media.FileName
		}
		return "📎 file message"
	case event.MessageLocation:
		if media.Address != "" {
			return "📍 location: " + media.Address
		}
		if media.Latitude != nil && media.Longitude != nil {
			return fmt.Sprintf("📍 location: %.4f,%.4f", *media.Latitude, *media.Longitude)
		}
		return "📍 location message"
	case event.MessageSticker:
		if len(media.StickerKeywords) > 0 {
			return "😊 sticker: " + strings.Join(media.StickerKeywords, " ")
		}
		return "😊 sticker"
	default:
		return ""
	}
}

// messageText returns the relayable textual representation of a message
// event: the text itself, or the synthesized media notification.
func messageText(ev *event.InboundEvent) string {
	if ev.MessageKind == event.MessageText {
		return ev.Text
	}
	return notificationText(ev)
}
