package relay

import (
	"testing"

	"github.com/flemzord/transbridge/pkg/event"
)

func TestNotificationText(t *testing.T) {
	t.Parallel()

	lat, lon := 35.6595, 139.7004

	tests := []struct {
		name  string
		kind  event.MessageKind
		media *event.MediaInfo
		want  string
	}{
		{"image", event.MessageImage, nil, "📷 image message"},
		{"video", event.MessageVideo, nil, "🎬 video message"},
		{"audio with duration", event.MessageAudio, &event.MediaInfo{DurationMillis: 12000}, "🎤 voice message (12s)"},
		{"audio rounds up", event.MessageAudio, &event.MediaInfo{DurationMillis: 12001}, "🎤 voice message (13s)"},
		{"audio without duration", event.MessageAudio, nil, "🎤 voice message"},
		{"file with name", event.MessageFile, &event.MediaInfo{FileName: "report.pdf"}, "📎 file: report.pdf"},
		{"file without name", event.MessageFile, nil, "📎 file message"},
		{"location with address", event.MessageLocation, &event.MediaInfo{Address: "Shibuya, Tokyo"}, "📍 location: Shibuya, Tokyo"},
		{"location with coordinates", event.MessageLocation, &event.MediaInfo{Latitude: &lat, Longitude: &lon}, "📍 location: 35.6595,139.7004"},
		{"location bare", event.MessageLocation, nil, "📍 location message"},
		{"sticker with keywords", event.MessageSticker, &event.MediaInfo{StickerKeywords: []string{"smile", "wave"}}, "😊 sticker: smile wave"},
		{"sticker bare", event.MessageSticker, nil, "😊 sticker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev := event.NewMediaMessage(event.PlatformLine, "u1", tt.kind, tt.media)
			if got := notificationText(&ev); got != tt.want {
				t.Errorf("notificationText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageText(t *testing.T) {
	t.Parallel()

	text := event.NewTextMessage(event.PlatformLine, "u1", "hello")
	if got := messageText(&text); got != "hello" {
		t.Errorf("messageText(text) = %q, want hello", got)
	}

	img := event.NewMediaMessage(event.PlatformWecom, "w1", event.MessageImage, nil)
	if got := messageText(&img); got != "📷 image message" {
		t.Errorf("messageText(image) = %q", got)
	}
}
