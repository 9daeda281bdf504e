package tendril

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// Runner drives a Node interactively using the provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer transforms generated output before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner with unset IO. Callers wire Input and Output
// explicitly (os.Stdin/os.Stdout for a CLI, buffers for tests).
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the prompt loop until EOF or an exit command. Each line is
// submitted as one generation; blank lines are skipped silently.
func (r *Runner) Run(ctx context.Context, node *Node) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	lineReader := bufio.NewReader(r.Input)
	writer := r.Output

	if !r.Headless {
		fmt.Fprintf(writer, "--- %s ---\n", node.Name)
		fmt.Fprintf(writer, "Model: %s. Type a prompt, or \"exit\" to leave.\n", node.Model())
	}

	for {
		if !r.Headless {
			fmt.Fprint(writer, "> ")
		}

		text, readErr := lineReader.ReadString('\n')
		prompt := strings.TrimSpace(text)

		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("input error: %w", readErr)
		}

		if prompt == "exit" || prompt == "quit" {
			if !r.Headless {
				fmt.Fprintln(writer, "Bye!")
			}
			return nil
		}

		if prompt != "" {
			if err := r.generate(ctx, node, writer, prompt); err != nil {
				return err
			}
		}

		if readErr != nil {
			// EOF after handling any trailing line.
			return nil
		}
	}
}

func (r *Runner) generate(ctx context.Context, node *Node, writer io.Writer, prompt string) error {
	state, err := node.Generate(ctx, prompt)
	switch {
	case errors.Is(err, domain.ErrPromptEmpty):
		return nil
	case errors.Is(err, domain.ErrBusy):
		fmt.Fprintln(writer, "A generation is already running.")
		return nil
	case err != nil:
		return fmt.Errorf("generate: %w", err)
	}

	switch state.Phase {
	case domain.PhaseSucceeded:
		output := state.Output
		if r.Renderer != nil {
			if rendered, renderErr := r.Renderer(output); renderErr == nil {
				output = rendered
			}
		}
		fmt.Fprintln(writer, strings.TrimSpace(output))
	case domain.PhaseFailed:
		fmt.Fprintf(writer, "Error: %s\n", state.Error)
	}
	return nil
}
