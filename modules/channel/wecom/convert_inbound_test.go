package wecom

import (
	"testing"
	"time"

	"github.com/flemzord/transbridge/pkg/event"
)

func TestConvertTextMessage(t *testing.T) {
	t.Parallel()

	ev := convertMessage(&inlineMessage{
		FromUserName: "w1",
		CreateTime:   1700000000,
		MsgType:      "text",
		Content:      "你好",
	})

	if ev.Platform != event.PlatformWecom || ev.Kind != event.KindMessage {
		t.Errorf("platform/kind = %q/%q", ev.Platform, ev.Kind)
	}
	if ev.MessageKind != event.MessageText || ev.Text != "你好" {
		t.Errorf("message = %q/%q", ev.MessageKind, ev.Text)
	}
	if ev.UserID != "w1" {
		t.Errorf("UserID = %q", ev.UserID)
	}
	if ev.ReplyToken != "" {
		t.Errorf("ReplyToken = %q, must always be empty for wecom", ev.ReplyToken)
	}
	if !ev.Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("Timestamp = %v", ev.Timestamp)
	}
}

func TestConvertMediaNotifications(t *testing.T) {
	t.Parallel()

	// Media from WeCom normalizes to a notification text message, not a
	// media descriptor.
	img := convertMessage(&inlineMessage{FromUserName: "w1", MsgType: "image", MediaID: "m1"})
	if img.MessageKind != event.MessageText || img.Text != "📷 image message" {
		t.Errorf("image = %q/%q", img.MessageKind, img.Text)
	}

	voice := convertMessage(&inlineMessage{FromUserName: "w1", MsgType: "voice", MediaID: "m2"})
	if voice.MessageKind != event.MessageText || voice.Text != "🎤 voice message" {
		t.Errorf("voice = %q/%q", voice.MessageKind, voice.Text)
	}
}

func TestConvertEvents(t *testing.T) {
	t.Parallel()

	sub := convertMessage(&inlineMessage{FromUserName: "w1", MsgType: "event", Event: "subscribe"})
	if sub.Kind != event.KindFollow {
		t.Errorf("subscribe kind = %q, want follow", sub.Kind)
	}

	unsub := convertMessage(&inlineMessage{FromUserName: "w1", MsgType: "event", Event: "unsubscribe"})
	if unsub.Kind != event.KindUnfollow {
		t.Errorf("unsubscribe kind = %q, want unfollow", unsub.Kind)
	}

	odd := convertMessage(&inlineMessage{FromUserName: "w1", MsgType: "event", Event: "enter_agent"})
	if odd.Kind != event.KindUnknown {
		t.Errorf("unknown event kind = %q, want unknown", odd.Kind)
	}
}

func TestConvertUnknownMsgType(t *testing.T) {
	t.Parallel()

	ev := convertMessage(&inlineMessage{FromUserName: "w1", MsgType: "video"})
	if ev.MessageKind != event.MessageOther {
		t.Errorf("MessageKind = %q, want other", ev.MessageKind)
	}
	// The event must still satisfy the content invariant so the relay
	// acknowledges instead of dropping it.
	if !ev.Valid() {
		t.Error("unknown msgtype event fails Valid()")
	}
}
