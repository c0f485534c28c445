package line

import (
	"time"

	"github.com/flemzord/transbridge/pkg/event"
)

// convertEvent transforms one wire event into a canonical InboundEvent.
// Unknown event or message types map to KindUnknown / MessageOther rather
// than erroring; new wire types must not break the pipeline.
func convertEvent(we *webhookEvent) event.InboundEvent {
	ev := event.InboundEvent{
		Platform:   event.PlatformLine,
		Kind:       mapEventKind(we.Type),
		Timestamp:  time.UnixMilli(we.Timestamp),
		UserID:     we.Source.UserID,
		GroupID:    groupID(we.Source),
		ReplyToken: we.ReplyToken,
	}

	if ev.Kind == event.KindMessage && we.Message != nil {
		ev.MessageKind = mapMessageKind(we.Message.Type)
		if ev.MessageKind == event.MessageText {
			ev.Text = we.Message.Text
		} else {
			ev.Media = convertMedia(we.Message)
		}
	}

	if ev.Kind == event.KindPostback && we.Postback != nil {
		ev.PostbackData = we.Postback.Data
	}

	return ev
}

// groupID returns the chat container id for group and room sources.
// LINE rooms are multi-person chats without the group structure; both
// behave as a group context for relay purposes.
func groupID(src eventSource) string {
	switch src.Type {
	case "group":
		return src.GroupID
	case "room":
		return src.RoomID
	default:
		return ""
	}
}

func mapEventKind(wireType string) event.Kind {
	switch wireType {
	case "message":
		return event.KindMessage
	case "follow":
		return event.KindFollow
	case "unfollow":
		return event.KindUnfollow
	case "join":
		return event.KindJoin
	case "leave":
		return event.KindLeave
	case "postback":
		return event.KindPostback
	case "unsend":
		return event.KindUnsend
	default:
		return event.KindUnknown
	}
}

func mapMessageKind(wireType string) event.MessageKind {
	switch wireType {
	case "text":
		return event.MessageText
	case "image":
		return event.MessageImage
	case "video":
		return event.MessageVideo
	case "audio":
		return event.MessageAudio
	case "file":
		return event.MessageFile
	case "location":
		return event.MessageLocation
	case "sticker":
		return event.MessageSticker
	default:
		return event.MessageOther
	}
}

func convertMedia(msg *eventMessage) *event.MediaInfo {
	return &event.MediaInfo{
		FileName:        msg.FileName,
		DurationMillis:  msg.Duration,
		Latitude:        msg.Latitude,
		Longitude:       msg.Longitude,
		Address:         msg.Address,
		StickerKeywords: msg.Keywords,
	}
}
