package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/loom/internal/config"
	"github.com/aretw0/loom/internal/demo/app"
	"github.com/aretw0/loom/internal/presentation/tui"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/effect"
	"github.com/aretw0/loom/pkg/registry"
	"github.com/aretw0/loom/pkg/store"
)

// DefaultSessionID is the session the run command opens without --session.
const DefaultSessionID = "default"

// RunOptions configures the run command.
type RunOptions struct {
	SessionID string
	// Fresh discards the saved session before opening it.
	Fresh bool
	// Headless prints neither banner nor prompt, for piped input.
	Headless bool
	// JSON prints every state as one JSON line instead of the text view.
	JSON bool
	// Markdown renders states and help through glamour. It is meant for
	// terminals and ignored with JSON.
	Markdown bool
	In   io.Reader
	Out  io.Writer
}

// Run drives one demo app session from line-based input until the input ends,
// the user quits or ctx is done. Effect results are applied on this goroutine,
// between input lines.
func Run(ctx context.Context, cfg config.Config, opts RunOptions, logger *slog.Logger) error {
	if opts.SessionID == "" {
		opts.SessionID = DefaultSessionID
	}

	storage, err := OpenStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	main := effect.NewQueue()
	manager := newManager(storage, main, logger)
	defer func() {
		if err := manager.CloseAll(context.Background()); err != nil {
			logger.Error("Failed to save sessions", "err", err)
		}
	}()

	if opts.Fresh {
		if err := manager.Delete(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	st, err := manager.Open(ctx, opts.SessionID)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	r := &repl{
		store:   st,
		actions: app.Actions(),
		out:     opts.Out,
		opts:    opts,
		view:    newView(opts, logger),
	}
	if !opts.Headless && !opts.JSON {
		tui.PrintBanner(opts.Out)
		r.printf(">>> Session '%s' active. Type 'help' for commands.\n", opts.SessionID)
	}
	r.render(st.Value())

	sub := st.Subscribe(r.render)
	defer sub.Cancel()

	return r.loop(ctx, main, opts.In)
}

type repl struct {
	store   *store.Store[app.State, app.Action]
	actions *registry.Registry[app.Action]
	out     io.Writer
	opts    RunOptions
	view    tui.View
}

// markdownWidth is the wrap width of the markdown view.
const markdownWidth = 80

func newView(opts RunOptions, logger *slog.Logger) tui.View {
	if opts.Markdown && !opts.JSON {
		md, err := tui.NewMarkdownRenderer(opts.Out, markdownWidth)
		if err == nil {
			return md
		}
		logger.Warn("Markdown view unavailable, using plain text", "err", err)
	}
	return tui.NewRenderer(opts.Out)
}

func (r *repl) loop(ctx context.Context, main *effect.Queue, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	r.prompt()
	for {
		select {
		case <-ctx.Done():
			r.printf("\n>>> Interrupted.\n")
			return nil
		case <-main.Pending():
			main.Drain()
		case err := <-readErr:
			// Apply whatever the last commands started before leaving.
			r.settle(ctx, main)
			return err
		case line := <-lines:
			quit, err := r.handle(line)
			if err != nil {
				r.printf("error: %v\n", err)
			}
			if quit {
				return nil
			}
			r.prompt()
		}
	}
}

// settle drains main until the store has no effects in flight.
func (r *repl) settle(ctx context.Context, main *effect.Queue) {
	done := make(chan struct{})
	go func() {
		_ = r.store.Wait(ctx)
		close(done)
	}()
	for {
		select {
		case <-done:
			main.Drain()
			return
		case <-ctx.Done():
			return
		case <-main.Pending():
			main.Drain()
		}
	}
}

// handle runs one input line: a built-in command or "<action> [json payload]".
func (r *repl) handle(line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	name, rest, _ := strings.Cut(line, " ")

	switch name {
	case "q", "quit", "exit":
		return true, nil
	case "help":
		r.view.Help(r.actions.Names())
		return false, nil
	case "state":
		r.render(r.store.Value())
		return false, nil
	}

	var payload map[string]any
	if rest = strings.TrimSpace(rest); rest != "" {
		if err := json.Unmarshal([]byte(rest), &payload); err != nil {
			return false, fmt.Errorf("payload must be a JSON object: %w", err)
		}
	}
	action, err := r.actions.Decode(name, payload)
	if err != nil {
		return false, err
	}
	if err := r.store.Send(action); err != nil {
		if errors.Is(err, domain.ErrStoreClosed) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func (r *repl) render(state app.State) {
	if r.opts.JSON {
		data, err := json.Marshal(state)
		if err != nil {
			r.printf("error: %v\n", err)
			return
		}
		r.printf("%s\n", data)
		return
	}
	r.view.Render(state)
}

func (r *repl) prompt() {
	if !r.opts.Headless && !r.opts.JSON {
		r.printf("> ")
	}
}

func (r *repl) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}
