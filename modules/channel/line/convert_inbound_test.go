package line

import (
	"testing"
	"time"

	"github.com/flemzord/transbridge/pkg/event"
)

func TestConvertTextMessage(t *testing.T) {
	t.Parallel()

	we := &webhookEvent{
		Type:       "message",
		Timestamp:  1700000000000,
		ReplyToken: "tok1",
		Source:     eventSource{Type: "user", UserID: "u1"},
		Message:    &eventMessage{ID: "m1", Type: "text", Text: "こんにちは"},
	}

	ev := convertEvent(we)
	if ev.Platform != event.PlatformLine || ev.Kind != event.KindMessage {
		t.Errorf("platform/kind = %q/%q", ev.Platform, ev.Kind)
	}
	if ev.MessageKind != event.MessageText || ev.Text != "こんにちは" {
		t.Errorf("message = %q/%q", ev.MessageKind, ev.Text)
	}
	if ev.Media != nil {
		t.Error("text message carries Media")
	}
	if ev.UserID != "u1" || ev.ReplyToken != "tok1" || ev.GroupID != "" {
		t.Errorf("identity = %q/%q/%q", ev.UserID, ev.ReplyToken, ev.GroupID)
	}
	if !ev.Timestamp.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("timestamp = %v", ev.Timestamp)
	}
	if !ev.Valid() {
		t.Error("converted event invalid")
	}
}

func TestConvertGroupAndRoomSources(t *testing.T) {
	t.Parallel()

	group := convertEvent(&webhookEvent{
		Type:    "message",
		Source:  eventSource{Type: "group", UserID: "u1", GroupID: "g1"},
		Message: &eventMessage{Type: "text", Text: "hi"},
	})
	if group.GroupID != "g1" {
		t.Errorf("group GroupID = %q, want g1", group.GroupID)
	}

	// Rooms are multi-person chats; they relay like groups.
	room := convertEvent(&webhookEvent{
		Type:    "message",
		Source:  eventSource{Type: "room", UserID: "u1", RoomID: "r1"},
		Message: &eventMessage{Type: "text", Text: "hi"},
	})
	if room.GroupID != "r1" {
		t.Errorf("room GroupID = %q, want r1", room.GroupID)
	}

	user := convertEvent(&webhookEvent{
		Type:    "message",
		Source:  eventSource{Type: "user", UserID: "u1"},
		Message: &eventMessage{Type: "text", Text: "hi"},
	})
	if user.GroupID != "" {
		t.Errorf("user GroupID = %q, want empty", user.GroupID)
	}
}

func TestConvertMediaMessages(t *testing.T) {
	t.Parallel()

	lat, lon := 35.0, 139.0

	tests := []struct {
		name     string
		msg      *eventMessage
		wantKind event.MessageKind
	}{
		{"image", &eventMessage{Type: "image"}, event.MessageImage},
		{"video", &eventMessage{Type: "video", Duration: 8000}, event.MessageVideo},
		{"audio", &eventMessage{Type: "audio", Duration: 12000}, event.MessageAudio},
		{"file", &eventMessage{Type: "file", FileName: "report.pdf"}, event.MessageFile},
		{"location", &eventMessage{Type: "location", Address: "Tokyo", Latitude: &lat, Longitude: &lon}, event.MessageLocation},
		{"sticker", &eventMessage{Type: "sticker", Keywords: []string{"smile"}}, event.MessageSticker},
		{"unknown type", &eventMessage{Type: "flex"}, event.MessageOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev := convertEvent(&webhookEvent{
				Type:    "message",
				Source:  eventSource{Type: "user", UserID: "u1"},
				Message: tt.msg,
			})
			if ev.MessageKind != tt.wantKind {
				t.Errorf("MessageKind = %q, want %q", ev.MessageKind, tt.wantKind)
			}
			if ev.Media == nil {
				t.Fatal("Media is nil for non-text message")
			}
			if ev.Text != "" {
				t.Errorf("Text = %q, want empty", ev.Text)
			}
		})
	}
}

func TestConvertMediaFields(t *testing.T) {
	t.Parallel()

	ev := convertEvent(&webhookEvent{
		Type:   "message",
		Source: eventSource{Type: "user", UserID: "u1"},
		Message: &eventMessage{
			Type:     "audio",
			Duration: 12500,
		},
	})
	if ev.Media.DurationMillis != 12500 {
		t.Errorf("DurationMillis = %d, want 12500", ev.Media.DurationMillis)
	}

	ev = convertEvent(&webhookEvent{
		Type:   "message",
		Source: eventSource{Type: "user", UserID: "u1"},
		Message: &eventMessage{
			Type:     "file",
			FileName: "report.pdf",
		},
	})
	if ev.Media.FileName != "report.pdf" {
		t.Errorf("FileName = %q", ev.Media.FileName)
	}
}

func TestConvertEventKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wire string
		want event.Kind
	}{
		{"message", event.KindMessage},
		{"follow", event.KindFollow},
		{"unfollow", event.KindUnfollow},
		{"join", event.KindJoin},
		{"leave", event.KindLeave},
		{"postback", event.KindPostback},
		{"unsend", event.KindUnsend},
		{"videoPlayComplete", event.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			t.Parallel()
			ev := convertEvent(&webhookEvent{Type: tt.wire, Source: eventSource{Type: "user", UserID: "u1"}})
			if ev.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", ev.Kind, tt.want)
			}
		})
	}
}

func TestConvertPostback(t *testing.T) {
	t.Parallel()

	ev := convertEvent(&webhookEvent{
		Type:       "postback",
		ReplyToken: "tok1",
		Source:     eventSource{Type: "user", UserID: "u1"},
		Postback:   &eventPostback{Data: "action=confirm"},
	})
	if ev.Kind != event.KindPostback || ev.PostbackData != "action=confirm" {
		t.Errorf("postback = %q/%q", ev.Kind, ev.PostbackData)
	}
}
