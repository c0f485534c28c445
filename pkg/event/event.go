package event

import "time"

// InboundEvent is the canonical form of one inbound platform event.
//
// For KindMessage events, exactly one of Text (non-empty) and Media
// (non-nil) is set: text messages carry Text, every other message kind
// carries a Media descriptor used to synthesize a notification string.
type InboundEvent struct {
	Platform  Platform  `json:"platform"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// UserID identifies the sending user on the origin platform. Required
	// for message, follow, and postback events; may be empty for leave.
	UserID string `json:"user_id,omitempty"`

	// GroupID is set when the event happened in a group or room context.
	GroupID string `json:"group_id,omitempty"`

	// ReplyToken is a single-use token permitting one reply to this event.
	// LINE only; always empty for WeCom, which has no reply-token concept.
	ReplyToken string `json:"reply_token,omitempty"`

	// MessageKind is set when Kind is KindMessage.
	MessageKind MessageKind `json:"message_kind,omitempty"`

	// Text is the message text for MessageText events.
	Text string `json:"text,omitempty"`

	// Media describes non-text message content. Used only to synthesize a
	// textual notification; media bytes are never relayed.
	Media *MediaInfo `json:"media,omitempty"`

	// PostbackData carries the payload of a KindPostback event.
	PostbackData string `json:"postback_data,omitempty"`
}

// MediaInfo is the structured metadata of a non-text message.
type MediaInfo struct {
	FileName        string   `json:"file_name,omitempty"`
	DurationMillis  int      `json:"duration_ms,omitempty"`
	Latitude        *float64 `json:"lat,omitempty"`
	Longitude       *float64 `json:"lon,omitempty"`
	Address         string   `json:"address,omitempty"`
	StickerKeywords []string `json:"sticker_keywords,omitempty"`
}

// NewTextMessage creates a canonical text message event.
func NewTextMessage(platform Platform, userID, text string) InboundEvent {
	return InboundEvent{
		Platform:    platform,
		Kind:        KindMessage,
		Timestamp:   time.Now(),
		UserID:      userID,
		MessageKind: MessageText,
		Text:        text,
	}
}

// NewMediaMessage creates a canonical non-text message event.
func NewMediaMessage(platform Platform, userID string, kind MessageKind, media *MediaInfo) InboundEvent {
	if media == nil {
		media = &MediaInfo{}
	}
	return InboundEvent{
		Platform:    platform,
		Kind:        KindMessage,
		Timestamp:   time.Now(),
		UserID:      userID,
		MessageKind: kind,
		Media:       media,
	}
}

// IsMessage reports whether the event is a message event.
func (e *InboundEvent) IsMessage() bool {
	return e.Kind == KindMessage
}

// IsGroup reports whether the event happened in a group context.
func (e *InboundEvent) IsGroup() bool {
	return e.GroupID != ""
}

// Valid reports whether a message event satisfies the content invariant:
// exactly one of Text and Media is set. Non-message events are always valid.
func (e *InboundEvent) Valid() bool {
	if e.Kind != KindMessage {
		return true
	}
	hasText := e.Text != ""
	hasMedia := e.Media != nil
	return hasText != hasMedia
}
