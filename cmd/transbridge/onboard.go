package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// onboardCmd walks through an interactive setup and writes a starter
// configuration file.
func onboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Interactive setup: generate a starter configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("output")
			return runOnboard(out)
		},
	}
	cmd.Flags().StringP("output", "o", "transbridge.yaml", "Where to write the generated configuration")
	return cmd
}

type onboardAnswers struct {
	lineSecret  string
	lineToken   string
	corpID      string
	corpSecret  string
	agentID     string
	wecomToken  string
	aesKey      string
	translator  string
	openaiKey   string
	openaiModel string
	persistent  bool
}

func runOnboard(outPath string) error {
	if _, err := os.Stat(outPath); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", outPath)
	}

	answers := onboardAnswers{
		translator:  "openai",
		openaiModel: "gpt-4o-mini",
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("LINE channel secret").
				Description("From the LINE Developers console, Messaging API tab.").
				Value(&answers.lineSecret),
			huh.NewInput().
				Title("LINE channel access token").
				Value(&answers.lineToken),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("WeCom corp id").
				Value(&answers.corpID),
			huh.NewInput().
				Title("WeCom app secret").
				Value(&answers.corpSecret),
			huh.NewInput().
				Title("WeCom agent id").
				Validate(func(s string) error {
					if _, err := strconv.Atoi(s); err != nil {
						return fmt.Errorf("must be a number")
					}
					return nil
				}).
				Value(&answers.agentID),
			huh.NewInput().
				Title("WeCom callback token").
				Value(&answers.wecomToken),
			huh.NewInput().
				Title("WeCom EncodingAESKey (43 characters)").
				Value(&answers.aesKey),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Translation provider").
				Options(
					huh.NewOption("OpenAI-compatible LLM", "openai"),
					huh.NewOption("Deterministic (testing, tags text instead of translating)", "deterministic"),
				).
				Value(&answers.translator),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API key").
				Value(&answers.openaiKey),
			huh.NewInput().
				Title("Model").
				Value(&answers.openaiModel),
		).WithHideFunc(func() bool { return answers.translator != "openai" }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Persist mappings to SQLite?").
				Description("Otherwise mappings live in memory and reset on restart.").
				Value(&answers.persistent),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg := renderConfig(answers)
	if err := os.WriteFile(outPath, []byte(cfg), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote %s. Start the bridge with: transbridge start -c %s\n", outPath, outPath)
	return nil
}

func renderConfig(a onboardAnswers) string {
	mappingModule := "mapping.memory"
	if a.persistent {
		mappingModule = "mapping.sqlite"
	}

	cfg := "version: \"1\"\n\nmodules:\n"
	cfg += "  gateway.http:\n    bind: 127.0.0.1:8080\n\n"
	cfg += "  channel.line:\n"
	cfg += "    channel_secret: " + quote(a.lineSecret) + "\n"
	cfg += "    access_token: " + quote(a.lineToken) + "\n\n"
	cfg += "  channel.wecom:\n"
	cfg += "    corp_id: " + quote(a.corpID) + "\n"
	cfg += "    corp_secret: " + quote(a.corpSecret) + "\n"
	cfg += "    agent_id: " + a.agentID + "\n"
	cfg += "    token: " + quote(a.wecomToken) + "\n"
	cfg += "    aes_key: " + quote(a.aesKey) + "\n\n"
	cfg += "  " + mappingModule + ":\n    mappings:\n      users: []\n      groups: []\n\n"

	switch a.translator {
	case "openai":
		cfg += "  translator.openai:\n"
		cfg += "    api_key: " + quote(a.openaiKey) + "\n"
		cfg += "    model: " + quote(a.openaiModel) + "\n\n"
	default:
		cfg += "  translator.deterministic: {}\n\n"
	}

	cfg += "  relay.engine:\n    line_language: ja\n    wecom_language: zh\n"
	return cfg
}

func quote(s string) string {
	return strconv.Quote(s)
}
