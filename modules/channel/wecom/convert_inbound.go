package wecom

import (
	"time"

	"github.com/flemzord/transbridge/pkg/event"
)

// Media relay from WeCom is notification-only: image and voice messages
// normalize to a text message carrying a fixed notification string instead
// of a media descriptor, because media bytes are never fetched or
// re-uploaded. This is current behavior, not an oversight.
const (
	imageNotification = "📷 image message"
	voiceNotification = "🎤 voice message"
)

// convertMessage transforms one decrypted (or plaintext) message into a
// canonical InboundEvent. Unknown message types map to MessageOther and
// unknown events to KindUnknown.
func convertMessage(msg *inlineMessage) event.InboundEvent {
	ev := event.InboundEvent{
		Platform:  event.PlatformWecom,
		Timestamp: time.Unix(msg.CreateTime, 0),
		UserID:    msg.FromUserName,
	}

	switch msg.MsgType {
	case "text":
		ev.Kind = event.KindMessage
		ev.MessageKind = event.MessageText
		ev.Text = msg.Content
	case "image":
		ev.Kind = event.KindMessage
		ev.MessageKind = event.MessageText
		ev.Text = imageNotification
	case "voice":
		ev.Kind = event.KindMessage
		ev.MessageKind = event.MessageText
		ev.Text = voiceNotification
	case "event":
		ev.Kind = mapEventKind(msg.Event)
	default:
		ev.Kind = event.KindMessage
		ev.MessageKind = event.MessageOther
		// Empty descriptor keeps the message content invariant satisfied
		// so the relay acks the sender instead of dropping the event.
		ev.Media = &event.MediaInfo{}
	}

	return ev
}

func mapEventKind(wireEvent string) event.Kind {
	switch wireEvent {
	case "subscribe":
		return event.KindFollow
	case "unsubscribe":
		return event.KindUnfollow
	default:
		return event.KindUnknown
	}
}
