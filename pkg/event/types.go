// Package event defines the platform-agnostic data contract between webhook
// channels and the relay engine. Every inbound platform payload — LINE JSON
// envelopes, WeCom encrypted XML callbacks — normalizes into an InboundEvent
// before the relay engine sees it.
package event

// Platform identifies the messaging platform an event originated from.
type Platform string

// Supported platforms.
const (
	PlatformLine  Platform = "line"
	PlatformWecom Platform = "wecom"
)

// Counterpart returns the opposite platform, the relay destination for
// events originating on p.
func (p Platform) Counterpart() Platform {
	if p == PlatformLine {
		return PlatformWecom
	}
	return PlatformLine
}

// Kind discriminates the logical event type.
type Kind string

// Supported event kinds. Wire event types with no mapping normalize to
// KindUnknown rather than failing, so new platform event types degrade
// gracefully instead of breaking the webhook.
const (
	KindMessage  Kind = "message"
	KindFollow   Kind = "follow"
	KindUnfollow Kind = "unfollow"
	KindJoin     Kind = "join"
	KindLeave    Kind = "leave"
	KindPostback Kind = "postback"
	KindUnsend   Kind = "unsend"
	KindUnknown  Kind = "unknown"
)

// MessageKind discriminates the content variant of a KindMessage event.
type MessageKind string

// Supported message kinds. Unrecognized wire message types normalize to
// MessageOther.
const (
	MessageText     MessageKind = "text"
	MessageImage    MessageKind = "image"
	MessageVideo    MessageKind = "video"
	MessageAudio    MessageKind = "audio"
	MessageFile     MessageKind = "file"
	MessageLocation MessageKind = "location"
	MessageSticker  MessageKind = "sticker"
	MessageOther    MessageKind = "other"
)
