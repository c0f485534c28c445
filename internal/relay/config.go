package relay

import (
	"fmt"
	"time"

	"github.com/flemzord/transbridge/internal/translate"
)

// Config holds the relay engine configuration. The deployment this bridge
// grew out of links Japanese LINE users with Chinese WeCom users, hence the
// default languages and reply strings; every value is overridable.
type Config struct {
	// LineLanguage is the language messages are translated into before
	// delivery to LINE users.
	LineLanguage translate.Lang `yaml:"line_language"`

	// WecomLanguage is the language messages are translated into before
	// delivery to WeCom users.
	WecomLanguage translate.Lang `yaml:"wecom_language"`

	// CallTimeout bounds every outbound network call. Zero means 10s.
	CallTimeout time.Duration `yaml:"call_timeout"`

	// ConfirmToLine is the reply sent to a LINE user after a successful
	// forward.
	ConfirmToLine string `yaml:"confirm_to_line"`

	// ConfirmToWecom is the push sent to a WeCom user after a successful
	// forward.
	ConfirmToWecom string `yaml:"confirm_to_wecom"`

	// UnsupportedToLine acknowledges LINE message kinds the bridge cannot
	// relay.
	UnsupportedToLine string `yaml:"unsupported_to_line"`

	// UnsupportedToWecom acknowledges WeCom message kinds the bridge
	// cannot relay.
	UnsupportedToWecom string `yaml:"unsupported_to_wecom"`

	// FollowWelcome is the reply to a LINE follow event.
	FollowWelcome string `yaml:"follow_welcome"`

	// SubscribeWelcome is the directed message sent when a WeCom user
	// subscribes to the agent.
	SubscribeWelcome string `yaml:"subscribe_welcome"`

	// JoinWelcome is the reply when the bot joins a LINE group.
	JoinWelcome string `yaml:"join_welcome"`
}

// defaults fills zero values with the ja↔zh deployment defaults.
func (c *Config) defaults() {
	if c.LineLanguage == "" {
		c.LineLanguage = translate.LangJapanese
	}
	if c.WecomLanguage == "" {
		c.WecomLanguage = translate.LangChinese
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = defaultCallTimeout
	}
	if c.ConfirmToLine == "" {
		c.ConfirmToLine = "✓ 転送しました"
	}
	if c.ConfirmToWecom == "" {
		c.ConfirmToWecom = "✓ 已转发"
	}
	if c.UnsupportedToLine == "" {
		c.UnsupportedToLine = "このメッセージ形式は転送できません"
	}
	if c.UnsupportedToWecom == "" {
		c.UnsupportedToWecom = "暂不支持转发该类型的消息"
	}
	if c.FollowWelcome == "" {
		c.FollowWelcome = "友だち追加ありがとうございます。メッセージを送ると翻訳して相手に届けます。"
	}
	if c.SubscribeWelcome == "" {
		c.SubscribeWelcome = "感谢关注。发送消息即可翻译并转发给对方。"
	}
	if c.JoinWelcome == "" {
		c.JoinWelcome = "グループに追加ありがとうございます。メッセージを翻訳して転送します。"
	}
}

// validate checks configuration constraints beyond defaults.
func (c *Config) validate() error {
	if c.LineLanguage == translate.LangAuto || c.WecomLanguage == translate.LangAuto {
		return fmt.Errorf("relay: target languages must be concrete, not %q", translate.LangAuto)
	}
	if c.CallTimeout > time.Minute {
		return fmt.Errorf("relay: call_timeout must be at most 1m, got %s", c.CallTimeout)
	}
	return nil
}
