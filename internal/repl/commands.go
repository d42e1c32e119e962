package repl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"mockup/internal/domain"
	"mockup/internal/providers/prompt"
)

type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Usage() string
	Execute(ctx context.Context, r *REPL, arg string) error
}

func allCommands() []Command {
	return []Command{
		&UploadCommand{},
		&EnhanceCommand{},
		&IdeasCommand{},
		&UseCommand{},
		&GenerateCommand{},
		&RerunCommand{},
		&RefineCommand{},
		&UndoCommand{},
		&RedoCommand{},
		&ShowCommand{},
		&HistoryCommand{},
		&SaveCommand{},
		&HelpCommand{},
		&QuitCommand{},
	}
}

func (r *REPL) registerCommands() {
	for _, cmd := range allCommands() {
		r.commands[cmd.Name()] = cmd
		for _, alias := range cmd.Aliases() {
			r.commands[alias] = cmd
		}
	}
}

// UploadCommand loads the product image from disk.
type UploadCommand struct{}

func (c *UploadCommand) Name() string        { return "upload" }
func (c *UploadCommand) Aliases() []string   { return []string{"load", "l"} }
func (c *UploadCommand) Description() string { return "Load the product image" }
func (c *UploadCommand) Usage() string       { return "upload <path>" }

func (c *UploadCommand) Execute(_ context.Context, r *REPL, arg string) error {
	if arg == "" {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	data, err := r.readFile(arg)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if err := r.studio.Upload(data, "", filepath.Base(arg)); err != nil {
		if errors.Is(err, domain.ErrNotAnImage) {
			return fmt.Errorf("%s is not an image", arg)
		}
		return err
	}
	src := r.studio.State().Source
	fmt.Fprintf(r.out, "Loaded %s (%s, %d bytes)\n", src.Name, src.MIMEType, src.Size)
	return nil
}

type EnhanceCommand struct{}

func (c *EnhanceCommand) Name() string        { return "enhance" }
func (c *EnhanceCommand) Aliases() []string   { return nil }
func (c *EnhanceCommand) Description() string { return "Toggle the prompt enhancement pass" }
func (c *EnhanceCommand) Usage() string       { return "enhance [on|off]" }

func (c *EnhanceCommand) Execute(_ context.Context, r *REPL, arg string) error {
	switch strings.ToLower(arg) {
	case "":
		r.studio.SetEnhance(!r.studio.State().Enhance)
	case "on", "true", "yes":
		r.studio.SetEnhance(true)
	case "off", "false", "no":
		r.studio.SetEnhance(false)
	default:
		return fmt.Errorf("usage: %s", c.Usage())
	}
	fmt.Fprintf(r.out, "Prompt enhancement: %s\n", onOff(r.studio.State().Enhance))
	return nil
}

// IdeasCommand lists scene ideas before the first result and refinement
// ideas afterwards.
type IdeasCommand struct{}

func (c *IdeasCommand) Name() string        { return "ideas" }
func (c *IdeasCommand) Aliases() []string   { return []string{"i"} }
func (c *IdeasCommand) Description() string { return "List suggestions (ideas refresh fetches new scene ideas)" }
func (c *IdeasCommand) Usage() string       { return "ideas [refresh]" }

func (c *IdeasCommand) Execute(_ context.Context, r *REPL, arg string) error {
	if strings.EqualFold(arg, "refresh") {
		r.studio.RefreshInitialSuggestions()
		fmt.Fprintln(r.out, "Fetching new scene ideas...")
		return nil
	}
	st := r.studio.State()
	set, title := r.activeSuggestions()
	if set.Empty() {
		if st.FetchingSuggestions {
			fmt.Fprintln(r.out, "Suggestions are still loading.")
		} else {
			fmt.Fprintln(r.out, "No suggestions yet.")
		}
		return nil
	}
	fmt.Fprintln(r.out, title)
	n := 0
	for _, g := range set.Groups {
		if len(g.Phrases) == 0 {
			continue
		}
		fmt.Fprintf(r.out, "  %s\n", g.Category)
		for _, phrase := range g.Phrases {
			n++
			fmt.Fprintf(r.out, "    %d. %s\n", n, phrase)
		}
	}
	return nil
}

// UseCommand appends a numbered suggestion to the working text.
type UseCommand struct{}

func (c *UseCommand) Name() string        { return "use" }
func (c *UseCommand) Aliases() []string   { return nil }
func (c *UseCommand) Description() string { return "Append suggestion n to the working prompt" }
func (c *UseCommand) Usage() string       { return "use <n>" }

func (c *UseCommand) Execute(_ context.Context, r *REPL, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	set, _ := r.activeSuggestions()
	var phrases []string
	for _, g := range set.Groups {
		phrases = append(phrases, g.Phrases...)
	}
	if n > len(phrases) {
		return fmt.Errorf("no suggestion %d (have %d)", n, len(phrases))
	}
	if r.studio.State().HasGenerated {
		r.refineDraft = prompt.AppendSuggestion(r.refineDraft, phrases[n-1])
		fmt.Fprintf(r.out, "Refinement: %s\n", r.refineDraft)
		return nil
	}
	r.sceneDraft = prompt.AppendSuggestion(r.sceneDraft, phrases[n-1])
	fmt.Fprintf(r.out, "Scene: %s\n", r.sceneDraft)
	return nil
}

// GenerateCommand starts a fresh timeline from the uploaded product.
type GenerateCommand struct{}

func (c *GenerateCommand) Name() string        { return "generate" }
func (c *GenerateCommand) Aliases() []string   { return []string{"gen", "g"} }
func (c *GenerateCommand) Description() string { return "Generate a mockup from a scene description" }
func (c *GenerateCommand) Usage() string       { return "generate [scene]" }

func (c *GenerateCommand) Execute(ctx context.Context, r *REPL, arg string) error {
	if arg != "" {
		r.sceneDraft = arg
	}
	if r.studio.State().Enhance {
		fmt.Fprintln(r.out, "Enhancing prompt and generating...")
	} else {
		fmt.Fprintln(r.out, "Generating...")
	}
	if err := r.studio.Generate(ctx, r.sceneDraft); err != nil {
		return err
	}
	r.printOutcome()
	return nil
}

// RerunCommand regenerates from the original upload with an edited prompt.
type RerunCommand struct{}

func (c *RerunCommand) Name() string        { return "rerun" }
func (c *RerunCommand) Aliases() []string   { return nil }
func (c *RerunCommand) Description() string { return "Regenerate from the original upload (defaults to the last prompt)" }
func (c *RerunCommand) Usage() string       { return "rerun [prompt]" }

func (c *RerunCommand) Execute(ctx context.Context, r *REPL, arg string) error {
	if arg == "" {
		arg = r.studio.State().LastUsedPrompt
	}
	fmt.Fprintln(r.out, "Generating...")
	if err := r.studio.Rerun(ctx, arg); err != nil {
		return err
	}
	r.printOutcome()
	return nil
}

// RefineCommand edits the displayed result. The refinement draft is cleared
// whatever the outcome.
type RefineCommand struct{}

func (c *RefineCommand) Name() string        { return "refine" }
func (c *RefineCommand) Aliases() []string   { return []string{"r", "edit"} }
func (c *RefineCommand) Description() string { return "Refine the displayed result" }
func (c *RefineCommand) Usage() string       { return "refine [instruction]" }

func (c *RefineCommand) Execute(ctx context.Context, r *REPL, arg string) error {
	if arg != "" {
		r.refineDraft = arg
	}
	instruction := r.refineDraft
	if strings.TrimSpace(instruction) != "" && r.studio.State().HasGenerated {
		fmt.Fprintln(r.out, "Refining...")
	}
	err := r.studio.Refine(ctx, instruction)
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		r.refineDraft = ""
	}
	if err != nil {
		return err
	}
	r.printOutcome()
	return nil
}

type UndoCommand struct{}

func (c *UndoCommand) Name() string        { return "undo" }
func (c *UndoCommand) Aliases() []string   { return []string{"u", "back"} }
func (c *UndoCommand) Description() string { return "Step back to the previous result" }
func (c *UndoCommand) Usage() string       { return "undo" }

func (c *UndoCommand) Execute(_ context.Context, r *REPL, _ string) error {
	if !r.studio.State().CanUndo {
		fmt.Fprintln(r.out, "Nothing to undo.")
		return nil
	}
	if err := r.studio.Undo(); err != nil {
		return err
	}
	r.printOutcome()
	return nil
}

type RedoCommand struct{}

func (c *RedoCommand) Name() string        { return "redo" }
func (c *RedoCommand) Aliases() []string   { return []string{"forward"} }
func (c *RedoCommand) Description() string { return "Step forward to the next result" }
func (c *RedoCommand) Usage() string       { return "redo" }

func (c *RedoCommand) Execute(_ context.Context, r *REPL, _ string) error {
	if !r.studio.State().CanRedo {
		fmt.Fprintln(r.out, "Nothing to redo.")
		return nil
	}
	if err := r.studio.Redo(); err != nil {
		return err
	}
	r.printOutcome()
	return nil
}

type ShowCommand struct{}

func (c *ShowCommand) Name() string        { return "show" }
func (c *ShowCommand) Aliases() []string   { return []string{"status"} }
func (c *ShowCommand) Description() string { return "Show the session status" }
func (c *ShowCommand) Usage() string       { return "show" }

func (c *ShowCommand) Execute(_ context.Context, r *REPL, _ string) error {
	st := r.studio.State()
	fmt.Fprintf(r.out, "Status: %s\n", st.Status)
	if st.Error != "" {
		fmt.Fprintf(r.out, "Error: %s\n", st.Error)
	}
	if st.Source != nil {
		fmt.Fprintf(r.out, "Product: %s (%s)\n", st.Source.Name, st.Source.MIMEType)
	} else {
		fmt.Fprintln(r.out, "Product: none")
	}
	fmt.Fprintf(r.out, "Enhancement: %s\n", onOff(st.Enhance))
	if st.CurrentID != "" {
		fmt.Fprintf(r.out, "Showing %d/%d: %s\n", st.Cursor+1, len(st.History), st.CurrentPrompt)
	}
	if r.sceneDraft != "" {
		fmt.Fprintf(r.out, "Scene draft: %s\n", r.sceneDraft)
	}
	if r.refineDraft != "" {
		fmt.Fprintf(r.out, "Refinement draft: %s\n", r.refineDraft)
	}
	return nil
}

type HistoryCommand struct{}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Aliases() []string   { return []string{"h", "hist"} }
func (c *HistoryCommand) Description() string { return "List the results in this session" }
func (c *HistoryCommand) Usage() string       { return "history" }

func (c *HistoryCommand) Execute(_ context.Context, r *REPL, _ string) error {
	st := r.studio.State()
	if len(st.History) == 0 {
		fmt.Fprintln(r.out, "No results yet.")
		return nil
	}
	for i, e := range st.History {
		marker := " "
		if i == st.Cursor {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %d. %s\n", marker, i+1, e.Prompt)
	}
	return nil
}

// SaveCommand exports the displayed result.
type SaveCommand struct{}

func (c *SaveCommand) Name() string        { return "save" }
func (c *SaveCommand) Aliases() []string   { return []string{"s", "download"} }
func (c *SaveCommand) Description() string { return "Save the displayed result, or the whole history as a zip" }
func (c *SaveCommand) Usage() string       { return "save [all]" }

func (c *SaveCommand) Execute(ctx context.Context, r *REPL, arg string) error {
	if r.store == nil {
		return errors.New("no export directory configured")
	}
	if strings.EqualFold(strings.TrimSpace(arg), "all") {
		path, err := r.store.ExportArchive(ctx, r.studio.Records(), r.now())
		if err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
		fmt.Fprintf(r.out, "Saved history: %s\n", path)
		return nil
	}
	img, ok := r.studio.CurrentImage()
	if !ok {
		return errors.New("nothing to save yet")
	}
	path, err := r.store.Export(ctx, img, r.now())
	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	fmt.Fprintf(r.out, "Saved: %s\n", path)
	return nil
}

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"?"} }
func (c *HelpCommand) Description() string { return "Show available commands" }
func (c *HelpCommand) Usage() string       { return "help" }

func (c *HelpCommand) Execute(_ context.Context, r *REPL, _ string) error {
	fmt.Fprintln(r.out, "Available commands:")
	for _, cmd := range allCommands() {
		fmt.Fprintf(r.out, "  %-22s %s\n", cmd.Usage(), cmd.Description())
	}
	return nil
}

type QuitCommand struct{}

func (c *QuitCommand) Name() string        { return "quit" }
func (c *QuitCommand) Aliases() []string   { return []string{"exit", "q"} }
func (c *QuitCommand) Description() string { return "Exit the studio" }
func (c *QuitCommand) Usage() string       { return "quit" }

func (c *QuitCommand) Execute(_ context.Context, r *REPL, _ string) error {
	fmt.Fprintln(r.out, "Goodbye!")
	r.Stop()
	return nil
}

func (r *REPL) activeSuggestions() (domain.SuggestionSet, string) {
	st := r.studio.State()
	if st.HasGenerated {
		return st.RefinementSuggestions, "Refinement ideas:"
	}
	return st.InitialSuggestions, "Scene ideas:"
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
