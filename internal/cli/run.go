package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gratitude5dee/tendril"
	"github.com/gratitude5dee/tendril/internal/config"
	"github.com/gratitude5dee/tendril/internal/presentation/tui"
	"github.com/gratitude5dee/tendril/pkg/domain"
)

// RunOptions contains the configuration for the interactive run command.
type RunOptions struct {
	ConfigPath string
	Verbose    bool
	Headless   bool
}

// RunSession starts the interactive prompt loop: initialize the credential,
// then read prompts from stdin until EOF or an exit command. Prompts become
// generations; ":" lines are session commands (":help" lists them).
func RunSession(opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger := createLogger(cfg, opts.Verbose)

	if !opts.Headless {
		tui.PrintBanner(os.Stdout)
	}

	node, err := BuildNode(cfg, logger,
		tendril.WithNotifier(tui.NoticePrinter(os.Stderr)),
	)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	// A failed initialization is not fatal to the session: the notices have
	// already told the user what to do (sign in, or set a key with
	// `tendril credential set`), and a locally stored credential still works.
	if err := node.Initialize(sigCtx); err != nil {
		logger.Debug("initialization incomplete", "err", err)
	}

	if opts.Verbose {
		events, cancel := node.Subscribe()
		defer cancel()
		go relayProgress(os.Stderr, events)
	}

	err = promptLoop(sigCtx, node, opts.Headless)

	if sigCtx.Err() != nil {
		if !opts.Headless && sigCtx.Signal() == os.Interrupt {
			fmt.Println("[CTRL+C]")
		}
		printSystemMessage("Interrupted.")
		return nil
	}

	return handleExecutionError(err)
}

// relayProgress prints queue log lines while a request is outstanding.
func relayProgress(w io.Writer, events <-chan domain.ProgressEvent) {
	for event := range events {
		if event.Kind == domain.EventLog {
			fmt.Fprintf(w, "  … %s\n", event.Message)
		}
	}
}

func promptLoop(ctx context.Context, node *tendril.Node, headless bool) error {
	reader := bufio.NewReader(os.Stdin)
	renderer := tui.NewRenderer()

	if !headless {
		fmt.Printf("Model: %s. Type a prompt, \":help\" for commands, or \"exit\" to leave.\n", node.Model())
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !headless {
			fmt.Print("> ")
		}

		text, readErr := reader.ReadString('\n')
		line := strings.TrimSpace(text)

		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("input error: %w", readErr)
		}

		switch {
		case line == "exit" || line == "quit":
			if !headless {
				fmt.Println("Bye!")
			}
			return nil
		case strings.HasPrefix(line, ":"):
			runCommand(node, line)
		case line != "":
			generateAndRender(ctx, node, renderer, line, headless)
		}

		if readErr != nil {
			// EOF after handling any trailing line.
			return nil
		}
	}
}

// runCommand executes a ":" session command.
func runCommand(node *tendril.Node, line string) {
	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")

	switch cmd {
	case "model":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			fmt.Printf("Selected model: %s\n", node.Model())
			return
		}
		if err := node.SelectModel(domain.Model(arg)); err != nil {
			printSystemMessage("Unknown model %q. Use :models to list the catalog.", arg)
			return
		}
		printSystemMessage("Model switched to %s.", arg)
	case "models":
		for _, model := range node.Models() {
			marker := " "
			if model == node.Model() {
				marker = "*"
			}
			fmt.Printf(" %s %s\n", marker, model)
		}
	case "state":
		state := node.State()
		fmt.Printf("phase=%s model=%s", state.Phase, state.Model)
		if state.RequestID != "" {
			fmt.Printf(" request=%s", state.RequestID)
		}
		fmt.Println()
	case "help":
		fmt.Println("  :model [id]   show or switch the selected model")
		fmt.Println("  :models       list the catalog (* marks selection)")
		fmt.Println("  :state        show the node state")
		fmt.Println("  exit          leave the session")
	default:
		printSystemMessage("Unknown command %q. Try :help.", cmd)
	}
}

func generateAndRender(ctx context.Context, node *tendril.Node, render func(string) (string, error), prompt string, headless bool) {
	state, err := node.Generate(ctx, prompt)
	switch {
	case errors.Is(err, domain.ErrPromptEmpty):
		return
	case errors.Is(err, domain.ErrBusy):
		printSystemMessage("A generation is already running.")
		return
	case err != nil:
		printSystemMessage("Generate failed: %v", err)
		return
	}

	switch state.Phase {
	case domain.PhaseSucceeded:
		output := state.Output
		if !headless {
			if rendered, renderErr := render(output); renderErr == nil {
				output = rendered
			}
		}
		fmt.Println(strings.TrimSpace(output))
	case domain.PhaseFailed:
		fmt.Printf("Error: %s\n", state.Error)
	}
}
