package studio

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"mockup/internal/domain"
	"mockup/internal/session"
)

type imageCall struct {
	op     string
	prompt string
	source domain.SourceImage
	ctxErr error
}

type imageResult struct {
	image domain.ResultImage
	err   error
}

// fakeImages replays queued results; when gate is set every call blocks on it.
type fakeImages struct {
	mu      sync.Mutex
	calls   []imageCall
	queue   []imageResult
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeImages) push(data string) *fakeImages {
	f.queue = append(f.queue, imageResult{image: domain.ResultImage{Data: []byte(data), MIMEType: "image/png"}})
	return f
}

func (f *fakeImages) fail(err error) *fakeImages {
	f.queue = append(f.queue, imageResult{err: err})
	return f
}

func (f *fakeImages) Fuse(ctx context.Context, prompt string, source domain.SourceImage) (domain.ResultImage, error) {
	return f.do(ctx, "fuse", prompt, source)
}

func (f *fakeImages) Edit(ctx context.Context, instruction string, prior domain.SourceImage) (domain.ResultImage, error) {
	return f.do(ctx, "edit", instruction, prior)
}

func (f *fakeImages) do(ctx context.Context, op, prompt string, source domain.SourceImage) (domain.ResultImage, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, imageCall{op: op, prompt: prompt, source: source, ctxErr: ctx.Err()})
	if len(f.queue) == 0 {
		return domain.ResultImage{}, errors.New("fakeImages: no queued result")
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next.image, next.err
}

func (f *fakeImages) callLog() []imageCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]imageCall(nil), f.calls...)
}

type fakePrompts struct {
	mu              sync.Mutex
	enhance         func(raw string) string
	enhanceCalls    []string
	initial         func(call int) domain.SuggestionSet
	initialCalls    int
	refinements     func(base string, call int) domain.SuggestionSet
	refinementBases []string
}

func (f *fakePrompts) Enhance(ctx context.Context, raw string) string {
	f.mu.Lock()
	f.enhanceCalls = append(f.enhanceCalls, raw)
	fn := f.enhance
	f.mu.Unlock()
	if fn == nil {
		return raw
	}
	return fn(raw)
}

func (f *fakePrompts) SuggestInitial(ctx context.Context) domain.SuggestionSet {
	f.mu.Lock()
	f.initialCalls++
	call, fn := f.initialCalls, f.initial
	f.mu.Unlock()
	if fn == nil {
		return domain.InitialFallback()
	}
	return fn(call)
}

func (f *fakePrompts) SuggestRefinements(ctx context.Context, base string) domain.SuggestionSet {
	f.mu.Lock()
	f.refinementBases = append(f.refinementBases, base)
	call, fn := len(f.refinementBases), f.refinements
	f.mu.Unlock()
	if fn == nil {
		return phraseSet(domain.CategoryVisuals, "ideas for "+base)
	}
	return fn(base, call)
}

func (f *fakePrompts) bases() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.refinementBases...)
}

func phraseSet(c domain.Category, phrases ...string) domain.SuggestionSet {
	return domain.SuggestionSet{Groups: []domain.SuggestionGroup{{Category: c, Phrases: phrases}}}
}

// spyHistory records the order of mutating calls on a real timeline.
type spyHistory struct {
	*session.Timeline
	ops []string
}

func newSpyHistory() *spyHistory {
	return &spyHistory{Timeline: session.NewTimeline()}
}

func (s *spyHistory) Reset() {
	s.ops = append(s.ops, "reset")
	s.Timeline.Reset()
}

func (s *spyHistory) Append(rec domain.GenerationRecord) {
	s.ops = append(s.ops, "append")
	s.Timeline.Append(rec)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "rec-" + strconv.Itoa(n)
	}
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
