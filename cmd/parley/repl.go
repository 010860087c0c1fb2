package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/everydev1618/parley"
	"github.com/everydev1618/parley/dsl"
	"github.com/fatih/color"
	"github.com/peterh/liner"
)

// replCmd starts an interactive chat against a script.
func replCmd(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file (default ~/.parley/config.yaml)")
	trace := fs.Bool("trace", false, "Show the label, intent and outcome of each turn")

	fs.Usage = func() {
		fmt.Println(`Usage: parley repl <script> [options]

Chat with a script. Each line is one user turn.

Commands:
  /session         Show the session state
  /intents         List the script's intents
  /reset           Start a fresh session
  /help            Show REPL help
  exit, quit, q    Exit the REPL

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	file := scriptPath(fs, cfg)
	prog := parseScript(file)
	conv := parley.NewConversation(parley.StaticProgram(prog), newRouter(cfg), conversationOptions(cfg)...)

	fmt.Printf("Loaded: %s (%d intents, %d rules)\n", file, len(prog.Intents), prog.RuleCount())
	fmt.Println("Parley REPL - Type /help for commands, exit to quit")
	fmt.Println()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if err := parley.EnsureHome(); err == nil {
		if f, err := os.Open(parley.HistoryPath()); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer saveHistory(line)
	}

	bot := color.New(color.FgCyan)
	dim := color.New(color.Faint)

	for {
		input, err := line.Prompt("you> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			os.Exit(1)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if parley.IsExitCommand(input) {
			break
		}

		if isReplCommand(input) {
			replCommand(input, conv, prog)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		res, err := conv.Turn(ctx, input)
		cancel()
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		bot.Printf("bot> %s\n", res.Reply)
		if *trace {
			dim.Printf("     [%s → %s, %s, %d effects, %s]\n",
				res.Label, res.Intent, res.Outcome, res.Effects, res.Duration.Round(time.Millisecond))
		}
	}

	fmt.Println("Goodbye!")
}

var replCommands = map[string]bool{
	"/help": true, "/h": true, "/session": true, "/intents": true, "/reset": true,
}

// isReplCommand reports whether input names a REPL command. Other lines,
// including ones that merely start with a slash, are user turns.
func isReplCommand(input string) bool {
	fields := strings.Fields(input)
	return len(fields) > 0 && replCommands[fields[0]]
}

func replCommand(input string, conv *parley.Conversation, prog *dsl.Program) {
	switch strings.Fields(input)[0] {
	case "/help", "/h":
		printReplHelp()

	case "/session":
		s := conv.Session()
		current := s.CurrentIntent
		if current == "" {
			current = "(none)"
		}
		fmt.Printf("Intent: %s\n", current)
		for k, v := range s.Vars {
			fmt.Printf("  %s = %q\n", k, v)
		}
		if s.LastReply != "" {
			fmt.Printf("Last reply: %s\n", s.LastReply)
		}

	case "/intents":
		for _, def := range prog.Intents {
			fmt.Printf("  %s - %d rules\n", def.Name, len(def.Rules))
		}

	case "/reset":
		conv.Reset()
		fmt.Println("Session reset.")
	}
}

func printReplHelp() {
	fmt.Println(`REPL Commands:
  /session         Show the session state
  /intents         List the script's intents
  /reset           Start a fresh session
  /help            Show this help
  exit, quit, q    Exit the REPL

Anything else, including other lines starting with /, is sent to the
script as one user turn.`)
}

func saveHistory(line *liner.State) {
	f, err := os.Create(parley.HistoryPath())
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
