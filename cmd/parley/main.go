// Package main provides the parley CLI.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/everydev1618/parley"
	"github.com/everydev1618/parley/dsl"
	"github.com/everydev1618/parley/intent"
)

var (
	version = "dev"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "repl":
		replCmd(args)
	case "run":
		runCmd(args)
	case "validate":
		validateCmd(args)
	case "fmt":
		fmtCmd(args)
	case "serve":
		serveCmd(args)
	case "init":
		initCmd()
	case "reset":
		resetCmd(args)
	case "version":
		fmt.Printf("parley %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Parley - rule-scripted customer-service dialogue

Usage:
  parley <command> [options]

Commands:
  repl      Chat with a script interactively
  run       Feed utterances to a script, one per line
  validate  Check a script for errors and likely mistakes
  fmt       Print a script in canonical form
  serve     Start the HTTP session API
  init      Write API keys and tokens to the config file
  reset     Delete recorded transcripts and events
  version   Print version information
  help      Show this help message

Examples:
  parley repl support.parley
  parley run support.parley --input lines.txt
  parley validate support.parley
  parley serve support.parley --addr :8080 --watch

Run 'parley <command> --help' for more information on a command.`)
}

// loadConfig reads the config file and environment, then installs the
// configured logger as the slog default.
func loadConfig(path string) parley.Config {
	cfg, err := parley.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger, err := parley.NewLogger(os.Stderr, cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	return cfg
}

// scriptPath returns the script named on the command line, falling back to
// the configured one.
func scriptPath(fs *flag.FlagSet, cfg parley.Config) string {
	if fs.NArg() > 0 {
		return fs.Arg(0)
	}
	if cfg.Script != "" {
		return cfg.Script
	}
	fmt.Fprintln(os.Stderr, "Error: no script specified")
	fs.Usage()
	os.Exit(1)
	return ""
}

func parseScript(path string) *dsl.Program {
	prog, err := dsl.NewParser().ParseFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}
	return prog
}

// conversationOptions turns reply overrides from the config into
// conversation options.
func conversationOptions(cfg parley.Config) []parley.ConversationOption {
	var opts []dsl.InterpreterOption
	if cfg.Replies.UndefinedIntent != "" {
		opts = append(opts, dsl.WithUndefinedIntentReply(cfg.Replies.UndefinedIntent))
	}
	if cfg.Replies.NoMatch != "" {
		opts = append(opts, dsl.WithNoMatchReply(cfg.Replies.NoMatch))
	}
	if len(opts) == 0 {
		return nil
	}
	return []parley.ConversationOption{parley.WithInterpreterOptions(opts...)}
}

func newRouter(cfg parley.Config) intent.Router {
	router, err := parley.NewRouter(cfg.Router)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating router: %v\n", err)
		os.Exit(1)
	}
	return router
}

// runCmd feeds utterances to a script and prints each reply.
func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file (default ~/.parley/config.yaml)")
	inputFile := fs.String("input", "", "File of utterances, one per line (default stdin)")
	startIntent := fs.String("intent", "", "Initial intent of the session")
	jsonOut := fs.Bool("json", false, "Print one JSON turn result per line")

	fs.Usage = func() {
		fmt.Println(`Usage: parley run <script> [options]

Run each input line as one user turn and print the reply. Blank lines are
skipped; exit, quit or q ends the run.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  parley run support.parley --input lines.txt
  echo "我的快递到哪了" | parley run support.parley --json`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	prog := parseScript(scriptPath(fs, cfg))

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	opts := conversationOptions(cfg)
	if *startIntent != "" {
		s := dsl.NewSession()
		s.CurrentIntent = *startIntent
		opts = append(opts, parley.WithSession(s))
	}
	conv := parley.NewConversation(parley.StaticProgram(prog), newRouter(cfg), opts...)

	if err := runLines(context.Background(), conv, in, os.Stdout, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runLines runs one turn per non-blank line of in.
func runLines(ctx context.Context, conv *parley.Conversation, in io.Reader, out io.Writer, jsonOut bool) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if parley.IsExitCommand(line) {
			break
		}

		res, err := conv.Turn(ctx, line)
		if err != nil {
			return err
		}
		if jsonOut {
			if err := enc.Encode(res); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(out, res.Reply)
	}
	return scanner.Err()
}

// validateCmd parses a script and reports lint warnings.
func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Show intent details")
	strict := fs.Bool("strict", false, "Treat warnings as errors")

	fs.Usage = func() {
		fmt.Println(`Usage: parley validate <script> [options]

Check a script for syntax errors and likely mistakes.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no script specified")
		fs.Usage()
		os.Exit(1)
	}

	file := fs.Arg(0)
	prog := parseScript(file)

	if *verbose {
		fmt.Printf("Intents (%d):\n", len(prog.Intents))
		for _, def := range prog.Intents {
			fmt.Printf("  - %s: %d rules (line %d)\n", def.Name, len(def.Rules), def.Line)
		}
		fmt.Println()
	}

	warns := dsl.Lint(prog)
	for _, w := range warns {
		fmt.Fprintf(os.Stderr, "%s:%s\n", file, w)
	}
	if len(warns) > 0 && *strict {
		os.Exit(1)
	}

	fmt.Printf("Valid: %s\n", file)
}

// fmtCmd prints a script in canonical form.
func fmtCmd(args []string) {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	write := fs.Bool("w", false, "Write result to the source file instead of stdout")
	check := fs.Bool("check", false, "Exit with status 1 if the script is not formatted")

	fs.Usage = func() {
		fmt.Println(`Usage: parley fmt <script> [options]

Print a script in canonical form. Comments are not preserved.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: no script specified")
		fs.Usage()
		os.Exit(1)
	}

	file := fs.Arg(0)
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	formatted := dsl.Format(parseScript(file))

	switch {
	case *check:
		if string(src) != formatted {
			fmt.Println(file)
			os.Exit(1)
		}
	case *write:
		if string(src) == formatted {
			return
		}
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Print(formatted)
	}
}
