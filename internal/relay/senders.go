package relay

import "context"

// Service names for cross-module wiring.
const (
	// EngineService is the registry name the relay module publishes its
	// Engine under; channel modules resolve it to deliver inbound events.
	EngineService = "relay.engine"

	// LineSenderService is the registry name the LINE channel publishes
	// its sender under.
	LineSenderService = "channel.line.sender"

	// WecomSenderService is the registry name the WeCom channel publishes
	// its sender under.
	WecomSenderService = "channel.wecom.sender"
)

// LineSender delivers outbound text to LINE users.
type LineSender interface {
	// Reply sends a message using a single-use reply token. A token is
	// consumed by the attempt whether or not it succeeds.
	Reply(ctx context.Context, replyToken, text string) error

	// Push sends a message directly to a user, independent of any reply
	// token.
	Push(ctx context.Context, userID, text string) error
}

// WecomSender delivers outbound text to WeChat Work users or chats.
// WeCom has no reply-token concept; every send is a directed push.
type WecomSender interface {
	Send(ctx context.Context, userID, text string) error
}
