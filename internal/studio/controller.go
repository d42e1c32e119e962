package studio

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mockup/internal/domain"
	"mockup/internal/infra"
	"mockup/internal/providers/image"
	"mockup/internal/providers/prompt"
	"mockup/internal/session"
)

const (
	defaultSuggestionTimeout = 30 * time.Second
	refinementSourceName     = "refinement-source.png"
)

// User-facing validation messages.
const (
	msgGenerateMissingInput = "Please upload an image and describe your vision first."
	msgRefineEmpty          = "Please enter a refinement instruction."
	msgRefineNoResult       = "Cannot refine without a previously generated image."
	msgRerunNoSource        = "Cannot regenerate without the original uploaded image."
	msgRerunEmpty           = "Please enter a prompt to regenerate."
)

// History is the timeline contract the controller drives. *session.Timeline
// is the production implementation.
type History interface {
	Reset()
	Append(rec domain.GenerationRecord)
	Undo() bool
	Redo() bool
	Current() (domain.GenerationRecord, bool)
	CanUndo() bool
	CanRedo() bool
	Cursor() int
	Len() int
	Records() []domain.GenerationRecord
	Find(id string) (domain.GenerationRecord, bool)
}

var _ History = (*session.Timeline)(nil)

// PromptService is the text half of the generation service.
type PromptService interface {
	prompt.Enhancer
	prompt.Suggester
}

type Options struct {
	Images  image.Service
	Prompts PromptService
	Logger  *infra.Logger

	// EnhanceByDefault is the initial value of the enhancement toggle.
	EnhanceByDefault bool
	// OnChange receives a snapshot after every observable mutation. Calls are
	// serialized; it must not call back into a mutating Controller method.
	OnChange func(State)
	// NewID names generation records; defaults to uuid.NewString.
	NewID func() string
	// SuggestionTimeout bounds each background suggestion fetch.
	SuggestionTimeout time.Duration
	// History defaults to an empty session.Timeline.
	History History
}

// Controller owns the single studio session: the uploaded source, the
// timeline, and the suggestion sets. Only one generation or refinement may be
// in flight at a time; a second attempt fails with domain.ErrBusy.
type Controller struct {
	images            image.Service
	prompts           PromptService
	logger            *infra.Logger
	onChange          func(State)
	newID             func() string
	suggestionTimeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	notifyMu sync.Mutex

	mu              sync.Mutex
	status          Status
	busy            bool
	errMsg          string
	source          domain.SourceImage
	enhance         bool
	timeline        History
	lastUsedPrompt  string
	initial         domain.SuggestionSet
	refinements     domain.SuggestionSet
	fetchingInitial bool
	initialToken    uint64
	refinementToken uint64
}

func NewController(opts Options) (*Controller, error) {
	if opts.Images == nil {
		return nil, errors.New("studio: image service is required")
	}
	if opts.Prompts == nil {
		return nil, errors.New("studio: prompt service is required")
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	timeout := opts.SuggestionTimeout
	if timeout <= 0 {
		timeout = defaultSuggestionTimeout
	}
	history := opts.History
	if history == nil {
		history = session.NewTimeline()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		images:            opts.Images,
		prompts:           opts.Prompts,
		logger:            logger,
		onChange:          opts.OnChange,
		newID:             newID,
		suggestionTimeout: timeout,
		baseCtx:           ctx,
		cancel:            cancel,
		status:            StatusIdle,
		enhance:           opts.EnhanceByDefault,
		timeline:          history,
	}, nil
}

// Close stops accepting background results and waits for in-flight fetches.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}

// Wait blocks until every background suggestion fetch has resolved.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Upload replaces the source image. Non-image input is ignored.
func (c *Controller) Upload(data []byte, mediaType, name string) error {
	src, err := NewSourceImage(data, mediaType, name)
	if err != nil {
		c.logger.Debug().Str("media_type", mediaType).Str("name", name).Msg("studio: ignoring non-image upload")
		return err
	}
	c.mu.Lock()
	c.source = src
	c.mu.Unlock()
	c.logger.Info().Str("name", src.Name).Str("media_type", src.MIMEType).Int("bytes", len(src.Data)).Msg("studio: source image uploaded")
	c.notify()
	return nil
}

// SetEnhance toggles the prompt enhancement pass for fresh generations.
func (c *Controller) SetEnhance(on bool) {
	c.mu.Lock()
	c.enhance = on
	c.mu.Unlock()
	c.notify()
}

// Generate starts a fresh timeline from the uploaded source and userPrompt,
// running the enhancement pass first when enabled.
func (c *Controller) Generate(ctx context.Context, userPrompt string) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return domain.ErrBusy
	}
	if c.source.IsZero() || strings.TrimSpace(userPrompt) == "" {
		return c.rejectLocked(msgGenerateMissingInput)
	}
	source := c.source
	enhance := c.enhance
	if enhance {
		c.beginLocked(StatusEnhancingPrompt)
	} else {
		c.beginLocked(StatusGenerating)
	}
	c.mu.Unlock()
	c.notify()

	ctx = context.WithoutCancel(ctx)
	finalPrompt := userPrompt
	if enhance {
		finalPrompt = c.prompts.Enhance(ctx, userPrompt)
		c.mu.Lock()
		c.status = StatusGenerating
		c.mu.Unlock()
		c.notify()
	}

	result, err := c.images.Fuse(ctx, finalPrompt, source)
	return c.finish(result, finalPrompt, true, err)
}

// Rerun starts a new creative branch from the original upload with an
// edited prompt. The enhancement pass is not applied.
func (c *Controller) Rerun(ctx context.Context, newPrompt string) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return domain.ErrBusy
	}
	if c.source.IsZero() {
		return c.rejectLocked(msgRerunNoSource)
	}
	if strings.TrimSpace(newPrompt) == "" {
		return c.rejectLocked(msgRerunEmpty)
	}
	source := c.source
	c.beginLocked(StatusGenerating)
	c.mu.Unlock()
	c.notify()

	result, err := c.images.Fuse(context.WithoutCancel(ctx), newPrompt, source)
	return c.finish(result, newPrompt, true, err)
}

// Refine edits the currently displayed result and appends the outcome.
func (c *Controller) Refine(ctx context.Context, instruction string) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return domain.ErrBusy
	}
	if strings.TrimSpace(instruction) == "" {
		return c.rejectLocked(msgRefineEmpty)
	}
	current, ok := c.timeline.Current()
	if !ok {
		return c.rejectLocked(msgRefineNoResult)
	}
	c.beginLocked(StatusGenerating)
	c.mu.Unlock()
	c.notify()

	prior := current.Image.AsSource(refinementSourceName)
	result, err := c.images.Edit(context.WithoutCancel(ctx), instruction, prior)
	return c.finish(result, domain.RefinementPrompt(instruction), false, err)
}

// Undo moves the timeline cursor back. It never touches the network.
func (c *Controller) Undo() error {
	return c.move(History.Undo)
}

// Redo moves the timeline cursor forward. It never touches the network.
func (c *Controller) Redo() error {
	return c.move(History.Redo)
}

func (c *Controller) move(step func(History) bool) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return domain.ErrBusy
	}
	moved := step(c.timeline)
	c.mu.Unlock()
	if moved {
		c.notify()
	}
	return nil
}

// RefreshInitialSuggestions fetches scene ideas in the background. Results
// older than the latest request are dropped.
func (c *Controller) RefreshInitialSuggestions() {
	c.mu.Lock()
	c.initialToken++
	token := c.initialToken
	c.fetchingInitial = true
	c.mu.Unlock()
	c.notify()

	c.spawn(func(ctx context.Context) {
		set := c.prompts.SuggestInitial(ctx)
		c.mu.Lock()
		if token != c.initialToken {
			c.mu.Unlock()
			c.logger.Debug().Uint64("token", token).Msg("studio: dropping stale initial suggestions")
			return
		}
		c.initial = set
		c.fetchingInitial = false
		c.mu.Unlock()
		c.notify()
	})
}

func (c *Controller) refreshRefinements(basePrompt string, token uint64) {
	c.spawn(func(ctx context.Context) {
		set := c.prompts.SuggestRefinements(ctx, basePrompt)
		c.mu.Lock()
		if token != c.refinementToken {
			c.mu.Unlock()
			c.logger.Debug().Uint64("token", token).Msg("studio: dropping stale refinement suggestions")
			return
		}
		c.refinements = set
		c.mu.Unlock()
		c.notify()
	})
}

func (c *Controller) spawn(fetch func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(c.baseCtx, c.suggestionTimeout)
		defer cancel()
		fetch(ctx)
	}()
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// CurrentImage returns the displayed result, if any.
func (c *Controller) CurrentImage() (domain.ResultImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.timeline.Current()
	return rec.Image, ok
}

// RecordImage returns the result stored under id.
func (c *Controller) RecordImage(id string) (domain.ResultImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.timeline.Find(id)
	if !ok {
		return domain.ResultImage{}, domain.ErrRecordNotFound
	}
	return rec.Image, nil
}

// Records returns a copy of every timeline entry, oldest first.
func (c *Controller) Records() []domain.GenerationRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeline.Records()
}

func (c *Controller) beginLocked(status Status) {
	c.busy = true
	c.status = status
	c.errMsg = ""
	c.refinements = domain.SuggestionSet{}
	c.refinementToken++
}

func (c *Controller) rejectLocked(msg string) error {
	c.errMsg = msg
	c.mu.Unlock()
	c.notify()
	return domain.NewValidationError(msg)
}

func (c *Controller) finish(result domain.ResultImage, recordPrompt string, fresh bool, err error) error {
	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.status = StatusError
		c.errMsg = err.Error()
		c.refinements = domain.SuggestionSet{}
		c.refinementToken++
		c.mu.Unlock()
		c.logger.Error().Err(err).Bool("fresh", fresh).Msg("studio: generation failed")
		c.notify()
		return err
	}

	if fresh {
		c.timeline.Reset()
	}
	rec := domain.GenerationRecord{ID: c.newID(), Image: result, Prompt: recordPrompt}
	c.timeline.Append(rec)
	c.lastUsedPrompt = recordPrompt
	c.status = StatusIdle
	c.refinementToken++
	token := c.refinementToken
	cursor, length := c.timeline.Cursor(), c.timeline.Len()
	c.mu.Unlock()

	c.logger.Info().
		Str("record_id", rec.ID).
		Bool("fresh", fresh).
		Int("cursor", cursor).
		Int("length", length).
		Msg("studio: generation appended")
	c.notify()
	c.refreshRefinements(recordPrompt, token)
	return nil
}

// notify delivers the current snapshot. Snapshot and delivery are serialized,
// so the last delivered state is always the latest one.
func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.onChange(c.State())
}

func (c *Controller) stateLocked() State {
	st := State{
		Status:                c.status,
		Busy:                  c.busy,
		Error:                 c.errMsg,
		Enhance:               c.enhance,
		Cursor:                c.timeline.Cursor(),
		LastUsedPrompt:        c.lastUsedPrompt,
		CanUndo:               c.timeline.CanUndo(),
		CanRedo:               c.timeline.CanRedo(),
		HasGenerated:          c.timeline.Len() > 0,
		InitialSuggestions:    c.initial.Clone(),
		RefinementSuggestions: c.refinements.Clone(),
		FetchingSuggestions:   c.fetchingInitial,
	}
	if !c.source.IsZero() {
		st.Source = &SourceInfo{Name: c.source.Name, MIMEType: c.source.MIMEType, Size: len(c.source.Data)}
	}
	records := c.timeline.Records()
	st.History = make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		st.History = append(st.History, HistoryEntry{
			ID:       rec.ID,
			Prompt:   rec.Prompt,
			MIMEType: rec.Image.MIMEType,
			Refined:  rec.IsRefinement(),
		})
	}
	if rec, ok := c.timeline.Current(); ok {
		st.CurrentID = rec.ID
		st.CurrentPrompt = rec.Prompt
	}
	return st
}
