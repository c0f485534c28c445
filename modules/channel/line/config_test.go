package line

import "testing"

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{ChannelSecret: "s", AccessToken: "t"}, false},
		{"missing access token", Config{ChannelSecret: "s"}, true},
		{"missing secret", Config{AccessToken: "t"}, true},
		{"missing secret with skip", Config{AccessToken: "t", SkipSignatureCheck: true}, false},
		{"bad api url", Config{ChannelSecret: "s", AccessToken: "t", APIURL: "not a url"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := tt.cfg
			cfg.defaults()
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	var c Config
	c.defaults()
	if c.APIURL != "https://api.line.me" {
		t.Errorf("APIURL = %q", c.APIURL)
	}

	c = Config{APIURL: "http://localhost:9999"}
	c.defaults()
	if c.APIURL != "http://localhost:9999" {
		t.Errorf("APIURL = %q, explicit value overwritten", c.APIURL)
	}
}
