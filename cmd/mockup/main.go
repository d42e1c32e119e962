package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mockup/internal/domain"
	"mockup/internal/infra"
	"mockup/internal/providers"
	"mockup/internal/providers/image"
	"mockup/internal/repl"
	"mockup/internal/storage"
	"mockup/internal/studio"
)

var (
	version = "dev"
	commit  = "none"
)

// Services is what a command needs from the generation backend.
type Services struct {
	Images  image.Service
	Prompts studio.PromptService
}

type App struct {
	In          io.Reader
	Out         io.Writer
	Err         io.Writer
	LoadConfig  func() (*infra.Config, error)
	NewServices func(cfg *infra.Config, logger *infra.Logger) (*Services, error)
	ReadFile    func(string) ([]byte, error)
	Now         func() time.Time
}

func DefaultApp() *App {
	return &App{
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
		LoadConfig: infra.LoadConfig,
		NewServices: func(cfg *infra.Config, logger *infra.Logger) (*Services, error) {
			g, err := providers.NewGemini(cfg, logger)
			if err != nil {
				return nil, err
			}
			return &Services{Images: g.Images, Prompts: g.Prompts}, nil
		},
		ReadFile: os.ReadFile,
		Now:      time.Now,
	}
}

type globalOptions struct {
	apiKey    string
	exportDir string
	verbose   bool
}

func main() {
	_ = godotenv.Load()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return newRootCmd(DefaultApp()).ExecuteContext(ctx)
}

func newRootCmd(app *App) *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "mockup",
		Short: "Place product photos into generated scenes",
		Long: `mockup composites a product photo into a described scene and lets you
refine the result step by step.

Examples:
  mockup studio
  mockup generate -i mug.png -p "on a rustic wooden table"
  mockup generate -i mug.png -p "on marble" -r "warmer light" -r "add steam"
  mockup ideas --base "on a rustic wooden table"`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStudio(cmd.Context(), app, opts)
		},
	}
	cmd.SetIn(app.In)
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)

	cmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "API key (defaults to GEMINI_API_KEY or API_KEY)")
	cmd.PersistentFlags().StringVarP(&opts.exportDir, "output", "o", "", "export directory (defaults to EXPORT_PATH)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log service calls")

	cmd.AddCommand(newStudioCmd(app, opts), newGenerateCmd(app, opts), newIdeasCmd(app, opts))
	return cmd
}

func newStudioCmd(app *App, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "studio",
		Short: "Start the interactive studio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStudio(cmd.Context(), app, opts)
		},
	}
}

type generateOptions struct {
	image     string
	prompt    string
	refine    []string
	noEnhance bool
}

func newGenerateCmd(app *App, opts *globalOptions) *cobra.Command {
	g := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a mockup, apply refinements, and save the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), app, opts, g)
		},
	}
	cmd.Flags().StringVarP(&g.image, "image", "i", "", "product image path")
	cmd.Flags().StringVarP(&g.prompt, "prompt", "p", "", "scene description")
	cmd.Flags().StringArrayVarP(&g.refine, "refine", "r", nil, "refinement instruction (repeatable)")
	cmd.Flags().BoolVar(&g.noEnhance, "no-enhance", false, "skip the prompt enhancement pass")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func newIdeasCmd(app *App, opts *globalOptions) *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "Print scene ideas, or refinement ideas for --base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(app, opts)
			if err != nil {
				return err
			}
			var set domain.SuggestionSet
			if base != "" {
				set = env.services.Prompts.SuggestRefinements(cmd.Context(), base)
			} else {
				set = env.services.Prompts.SuggestInitial(cmd.Context())
			}
			for _, g := range set.Groups {
				fmt.Fprintf(app.Out, "%s\n", g.Category)
				for _, p := range g.Phrases {
					fmt.Fprintf(app.Out, "  - %s\n", p)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "prompt of the result to refine")
	return cmd
}

type environment struct {
	cfg      *infra.Config
	logger   infra.Logger
	services *Services
	store    *storage.FileStore
}

func setup(app *App, opts *globalOptions) (*environment, error) {
	if opts.apiKey != "" {
		if err := os.Setenv("GEMINI_API_KEY", opts.apiKey); err != nil {
			return nil, err
		}
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.exportDir != "" {
		cfg.ExportPath = opts.exportDir
	}

	logger := infra.NewConsoleLogger(app.Err, opts.verbose)

	services, err := app.NewServices(cfg, &logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create services: %w", err)
	}
	store, err := storage.NewFileStore(cfg.ExportPath)
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logger, services: services, store: store}, nil
}

func (e *environment) controller(enhance bool) (*studio.Controller, error) {
	return studio.NewController(studio.Options{
		Images:           e.services.Images,
		Prompts:          e.services.Prompts,
		Logger:           &e.logger,
		EnhanceByDefault: enhance,
	})
}

func runStudio(ctx context.Context, app *App, opts *globalOptions) error {
	env, err := setup(app, opts)
	if err != nil {
		return err
	}
	ctrl, err := env.controller(env.cfg.EnhanceByDefault)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	ctrl.RefreshInitialSuggestions()

	r := repl.New(&repl.Config{
		In:       app.In,
		Out:      app.Out,
		Err:      app.Err,
		Studio:   ctrl,
		Store:    env.store,
		ReadFile: app.ReadFile,
		Now:      app.Now,
	})
	return r.Run(ctx)
}

func runGenerate(ctx context.Context, app *App, opts *globalOptions, g *generateOptions) error {
	data, err := app.ReadFile(g.image)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	env, err := setup(app, opts)
	if err != nil {
		return err
	}
	ctrl, err := env.controller(!g.noEnhance)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	if err := ctrl.Upload(data, "", filepath.Base(g.image)); err != nil {
		if errors.Is(err, domain.ErrNotAnImage) {
			return fmt.Errorf("%s is not an image", g.image)
		}
		return err
	}

	fmt.Fprintln(app.Out, "Generating...")
	if err := ctrl.Generate(ctx, g.prompt); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Prompt: %s\n", ctrl.State().CurrentPrompt)

	for _, instruction := range g.refine {
		fmt.Fprintf(app.Out, "Refining: %s\n", instruction)
		if err := ctrl.Refine(ctx, instruction); err != nil {
			return err
		}
	}

	img, _ := ctrl.CurrentImage()
	path, err := env.store.Export(ctx, img, app.Now())
	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	fmt.Fprintf(app.Out, "Saved: %s\n", path)
	return nil
}
