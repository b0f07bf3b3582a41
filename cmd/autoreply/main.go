package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kalambet/autoreply/internal/config"
	"github.com/kalambet/autoreply/internal/conversation"
)

var (
	version = "dev"
	noColor bool

	// logOutput receives slog output. stdout is reserved for the reply.
	logOutput io.Writer = os.Stderr
)

// apology is printed in place of a reply when something unexpected fails.
const apology = "Sorry, I'm having trouble responding right now. Will get back to you soon!"

const usage = `Usage: autoreply <message> <contact_name> [previous_messages_json]

previous_messages_json is a JSON array of {"text": "...", "fromMe": true|false}
objects, oldest first. Use "autoreply -- <message> ..." when the message is
the name of a subcommand.`

var errUsage = errors.New("too few arguments")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// A missing .env is the common case.
	_ = godotenv.Load()

	logOutput = stderr
	setupLogging(slog.LevelWarn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	if args == nil {
		// cobra reads os.Args when given nil.
		args = []string{}
	}
	if !subcommandCall(root, args) {
		args = append([]string{"--"}, args...)
	}
	root.SetArgs(args)

	return guard(stdout, func() int {
		err := root.ExecuteContext(ctx)
		switch {
		case err == nil:
			return 0
		case errors.Is(err, errUsage):
			fmt.Fprintln(stderr, usage)
			return 1
		default:
			printError("%v", err)
			return 1
		}
	})
}

// guard runs fn and converts a panic into the apology and exit code 1.
func guard(stdout io.Writer, fn func() int) (code int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("unexpected failure", "panic", r)
			fmt.Fprintln(stdout, apology)
			code = 1
		}
	}()
	return fn()
}

func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: level})))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "autoreply <message> <contact_name> [previous_messages_json]",
		Short: "Reply to a chat message in your own style",
		Long: `autoreply drafts a short reply to an incoming chat message.

It learns your communication style from your own past messages, estimates how
close you are to the contact, and asks a generative model for a reply. When the
model is unavailable a canned reply is used instead.`,
		Version: version,
		// Messages may start with "-"; they are never flags.
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// run prefixes every message invocation with "--".
			if len(args) > 0 && args[0] == "--" {
				args = args[1:]
			}
			if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}
			if len(args) == 1 && args[0] == "--version" {
				fmt.Fprintf(stdout, "autoreply %s\n", version)
				return nil
			}
			if len(args) < 2 {
				return errUsage
			}
			raw := ""
			if len(args) > 2 {
				raw = args[2]
			}
			return runReply(cmd.Context(), stdout, args[0], args[1], raw)
		},
	}
	root.SetOut(stderr)
	root.SetErr(stderr)
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")

	root.AddCommand(
		newConfigCmd(stdout),
		newProfileCmd(stdout),
		newRepliesCmd(stdout),
		newRulesCmd(stdout),
		newServeCmd(),
		newMCPCmd(),
		newStatusCmd(),
	)
	return root
}

// subcommandCall reports whether args are a complete, valid invocation of a
// subcommand. Anything else is an incoming message, even when its first word
// is a command name: "status Bob" replies to "status".
func subcommandCall(root *cobra.Command, args []string) bool {
	cmd, rest, err := root.Find(args)
	if err != nil || cmd == root {
		return false
	}
	cmd.InitDefaultHelpFlag()
	if err := cmd.ParseFlags(rest); err != nil {
		return false
	}
	if help, _ := cmd.Flags().GetBool("help"); help {
		return true
	}
	positional := cmd.Flags().Args()
	if !cmd.Runnable() {
		// Command groups only print their help.
		return len(positional) == 0
	}
	return cmd.ValidateArgs(positional) == nil
}

// loadConfig loads configuration and applies the log level. A broken config
// file degrades to built-in defaults.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config, using defaults", "error", err)
		cfg = config.Defaults()
	}
	setupLogging(cfg.Log.SlogLevel())
	return cfg
}

func runReply(ctx context.Context, stdout io.Writer, message, contact, rawHistory string) error {
	cfg := loadConfig()

	history, err := conversation.ParseHistory(rawHistory)
	if err != nil {
		slog.Error("ignoring invalid message history", "error", err)
		history = nil
	}

	a := newApp(cfg)
	defer a.Close()

	res := a.generator.Generate(ctx, message, contact, history)
	if ctx.Err() != nil {
		// Interrupted: exit quietly without a reply.
		return nil
	}

	fmt.Fprintln(stdout, oneLine(res.Text))
	return nil
}

// oneLine joins the non-blank lines of s with single spaces.
func oneLine(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
