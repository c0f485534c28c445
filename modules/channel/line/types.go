package line

import "fmt"

// webhookRequest is the envelope LINE delivers to the webhook endpoint.
// One envelope may carry multiple independent events.
type webhookRequest struct {
	Destination string         `json:"destination"`
	Events      []webhookEvent `json:"events"`
}

// webhookEvent is one event inside a webhook envelope.
type webhookEvent struct {
	Type       string         `json:"type"`
	Timestamp  int64          `json:"timestamp"` // milliseconds since epoch
	ReplyToken string         `json:"replyToken"`
	Source     eventSource    `json:"source"`
	Message    *eventMessage  `json:"message"`
	Postback   *eventPostback `json:"postback"`
}

// eventSource identifies who and where an event came from.
type eventSource struct {
	Type    string `json:"type"` // "user", "group", or "room"
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
	RoomID  string `json:"roomId"`
}

// eventMessage is the message payload of a "message" event.
type eventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`

	// File messages.
	FileName string `json:"fileName"`

	// Audio and video messages, milliseconds.
	Duration int `json:"duration"`

	// Location messages.
	Title     string   `json:"title"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Sticker messages.
	PackageID string   `json:"packageId"`
	StickerID string   `json:"stickerId"`
	Keywords  []string `json:"keywords"`
}

// eventPostback is the payload of a "postback" event.
type eventPostback struct {
	Data string `json:"data"`
}

// textMessage is an outbound text message object.
type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// replyRequest is the body for POST /v2/bot/message/reply.
type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

// pushRequest is the body for POST /v2/bot/message/push.
type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// Profile is the response of GET /v2/bot/profile/{userId}.
type Profile struct {
	DisplayName string `json:"displayName"`
	UserID      string `json:"userId"`
	PictureURL  string `json:"pictureUrl"`
}

// errorResponse is the Messaging API error body.
type errorResponse struct {
	Message string `json:"message"`
	Details []struct {
		Message  string `json:"message"`
		Property string `json:"property"`
	} `json:"details"`
}

// APIError is a non-2xx response from the Messaging API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("line: api status %d: %s", e.Status, e.Message)
}
