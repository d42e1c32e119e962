package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"mockup/internal/domain"
	"mockup/internal/storage"
	"mockup/internal/studio"
)

// Studio is the session surface the REPL drives.
type Studio interface {
	State() studio.State
	Upload(data []byte, mediaType, name string) error
	SetEnhance(on bool)
	Generate(ctx context.Context, userPrompt string) error
	Rerun(ctx context.Context, newPrompt string) error
	Refine(ctx context.Context, instruction string) error
	Undo() error
	Redo() error
	RefreshInitialSuggestions()
	CurrentImage() (domain.ResultImage, bool)
	Records() []domain.GenerationRecord
}

type REPL struct {
	in       io.Reader
	out      io.Writer
	err      io.Writer
	studio   Studio
	store    *storage.FileStore
	now      func() time.Time
	readFile func(string) ([]byte, error)
	commands map[string]Command
	running  bool

	// Working text that suggestions are appended to.
	sceneDraft  string
	refineDraft string
}

type Config struct {
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
	Studio   Studio
	Store    *storage.FileStore
	Now      func() time.Time
	ReadFile func(string) ([]byte, error)
}

func New(cfg *Config) *REPL {
	r := &REPL{
		in:       cfg.In,
		out:      cfg.Out,
		err:      cfg.Err,
		studio:   cfg.Studio,
		store:    cfg.Store,
		now:      cfg.Now,
		readFile: cfg.ReadFile,
		commands: make(map[string]Command),
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.readFile == nil {
		r.readFile = os.ReadFile
	}
	r.registerCommands()
	return r
}

func (r *REPL) Run(ctx context.Context) error {
	r.running = true
	r.printWelcome()

	scanner := bufio.NewScanner(r.in)
	for r.running {
		r.printPrompt()
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.err, "Error: %v\n", err)
		}
	}

	return scanner.Err()
}

func (r *REPL) execute(ctx context.Context, line string) error {
	cmdName, arg := splitCommand(line)
	if cmdName == "" {
		return nil
	}

	cmd, ok := r.commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmdName)
	}

	return cmd.Execute(ctx, r, arg)
}

func (r *REPL) Stop() {
	r.running = false
}

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, "mockup studio")
	fmt.Fprintln(r.out, "Upload a product photo with 'upload <path>', then 'generate <scene>'.")
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'quit' to exit.")
	fmt.Fprintln(r.out)
}

func (r *REPL) printPrompt() {
	st := r.studio.State()
	if st.HasGenerated {
		fmt.Fprintf(r.out, "mockup [%d/%d]> ", st.Cursor+1, len(st.History))
		return
	}
	fmt.Fprint(r.out, "mockup> ")
}

func (r *REPL) printOutcome() {
	st := r.studio.State()
	if st.CurrentID == "" {
		return
	}
	fmt.Fprintf(r.out, "Result %d/%d: %s\n", st.Cursor+1, len(st.History), st.CurrentPrompt)
}

// splitCommand separates the command word from its free-text argument.
// Prompts are passed through verbatim so quotes and apostrophes survive.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	name, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(rest)
}
