package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/everydev1618/parley"
	"github.com/everydev1618/parley/llm"
	"gopkg.in/yaml.v3"
)

// initCmd asks for API keys and tokens and saves them to the config file.
func initCmd() {
	fmt.Println(`
  ✦  Parley Setup
  ─────────────────────────────`)

	path := parley.DefaultConfigPath()
	cfg := parley.DefaultConfig()
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "\n  Error parsing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Println("\n  Found existing configuration at", path)
		printKey("openai_api_key", cfg.Router.OpenAIKey)
		printKey("anthropic_api_key", cfg.Router.AnthropicKey)
		printKey("telegram token", cfg.Telegram.Token)
		fmt.Println()
		if !confirm("  Reconfigure?") {
			fmt.Println("\n  Keeping existing configuration. You're all set!")
			printNextSteps()
			return
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	ask := func(prompt string) string {
		fmt.Print(prompt)
		if scanner.Scan() {
			return strings.TrimSpace(scanner.Text())
		}
		return ""
	}

	// Router backend keys are optional: without one the keyword router is used.
	fmt.Println("\n  OpenAI-compatible API key (optional, press Enter to skip)")
	fmt.Println("  Used to classify intents; the keyword router is the fallback")
	if key := ask("\n  OPENAI_API_KEY: "); key != "" {
		cfg.Router.OpenAIKey = key
		if url := ask("  Base URL (Enter for https://api.openai.com/v1): "); url != "" {
			cfg.Router.BaseURL = url
		}
	}

	fmt.Println("\n  Anthropic API key (optional, press Enter to skip)")
	if key := ask("\n  ANTHROPIC_API_KEY: "); key != "" {
		fmt.Print("  Validating key... ")
		client := llm.NewAnthropic(llm.WithAPIKey(key))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := client.ValidateKey(ctx)
		cancel()
		if err != nil {
			fmt.Println("failed")
			fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "  Please check the key and try again.")
			os.Exit(1)
		}
		fmt.Println("valid!")
		cfg.Router.AnthropicKey = key
		if cfg.Router.OpenAIKey == "" {
			cfg.Router.Backend = parley.BackendAnthropic
		}
	}

	// Telegram bot token (optional).
	fmt.Println("\n  Telegram bot token (optional, press Enter to skip)")
	fmt.Println("  Create a bot via @BotFather on Telegram")
	if token := ask("\n  TELEGRAM_BOT_TOKEN: "); token != "" {
		cfg.Telegram.Token = token
	}

	if err := parley.EnsureHome(); err != nil {
		fmt.Fprintf(os.Stderr, "\n  Error creating %s: %v\n", parley.Home(), err)
		os.Exit(1)
	}
	if err := writeConfig(path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "\n  Error writing %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("\n  Configuration saved to %s\n", path)
	printNextSteps()
}

func printNextSteps() {
	fmt.Print(`
  Next steps:
    parley repl <script>      Chat with a script
    parley validate <script>  Check a script for mistakes
    parley serve <script>     Start the HTTP session API
`)
}

func printKey(name, value string) {
	if value != "" {
		fmt.Printf("    %s = %s\n", name, maskKey(value))
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		ans := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return ans == "y" || ans == "yes"
	}
	return false
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// writeConfig saves cfg as YAML. The file holds secrets, so it is private
// to the user.
func writeConfig(path string, cfg parley.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	header := "# Parley configuration, managed by 'parley init'\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o600)
}
