package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mockup/internal/domain"
	"mockup/internal/infra"
	"mockup/internal/providers/prompt"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type mockImages struct {
	calls []string
	err   error
}

func (m *mockImages) Fuse(_ context.Context, p string, src domain.SourceImage) (domain.ResultImage, error) {
	m.calls = append(m.calls, "fuse:"+p)
	if m.err != nil {
		return domain.ResultImage{}, m.err
	}
	return domain.ResultImage{Data: []byte("fused"), MIMEType: "image/jpeg"}, nil
}

func (m *mockImages) Edit(_ context.Context, instr string, prior domain.SourceImage) (domain.ResultImage, error) {
	m.calls = append(m.calls, "edit:"+instr+":"+string(prior.Data))
	return domain.ResultImage{Data: []byte("edited-" + instr), MIMEType: "image/png"}, nil
}

type upperEnhancer struct{ *prompt.StaticProvider }

func (upperEnhancer) Enhance(_ context.Context, raw string) string { return strings.ToUpper(raw) }

func testApp(t *testing.T, input string, images *mockImages) (*App, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	out := &bytes.Buffer{}
	return &App{
		In:  strings.NewReader(input),
		Out: out,
		Err: &bytes.Buffer{},
		LoadConfig: func() (*infra.Config, error) {
			return &infra.Config{ExportPath: dir, EnhanceByDefault: true}, nil
		},
		NewServices: func(*infra.Config, *infra.Logger) (*Services, error) {
			return &Services{Images: images, Prompts: upperEnhancer{prompt.NewStaticProvider()}}, nil
		},
		ReadFile: func(path string) ([]byte, error) {
			switch path {
			case "mug.png":
				return pngBytes, nil
			case "notes.txt":
				return []byte("plain text"), nil
			}
			return nil, os.ErrNotExist
		},
		Now: func() time.Time { return time.UnixMilli(1234) },
	}, out, dir
}

func execute(app *App, args ...string) error {
	cmd := newRootCmd(app)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestGenerateCommand(t *testing.T) {
	images := &mockImages{}
	app, out, dir := testApp(t, "", images)

	err := execute(app, "generate", "-i", "mug.png", "-p", "on slate", "-r", "warmer", "-r", "add steam")
	if err != nil {
		t.Fatalf("generate error = %v", err)
	}

	want := []string{"fuse:ON SLATE", "edit:warmer:fused", "edit:add steam:edited-warmer"}
	if strings.Join(images.calls, "|") != strings.Join(want, "|") {
		t.Fatalf("calls = %v, want %v", images.calls, want)
	}
	data, err := os.ReadFile(filepath.Join(dir, "mockup-magic-1234.png"))
	if err != nil {
		t.Fatalf("export missing: %v", err)
	}
	if string(data) != "edited-add steam" {
		t.Fatalf("exported %q", data)
	}
	if !strings.Contains(out.String(), "Prompt: ON SLATE") {
		t.Fatalf("output = %s", out.String())
	}
}

func TestGenerateCommandNoEnhance(t *testing.T) {
	images := &mockImages{}
	app, _, _ := testApp(t, "", images)

	if err := execute(app, "generate", "-i", "mug.png", "-p", "on slate", "--no-enhance"); err != nil {
		t.Fatalf("generate error = %v", err)
	}
	if len(images.calls) != 1 || images.calls[0] != "fuse:on slate" {
		t.Fatalf("calls = %v", images.calls)
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	app, _, _ := testApp(t, "", &mockImages{})
	if err := execute(app, "generate", "-i", "notes.txt", "-p", "x"); err == nil || !strings.Contains(err.Error(), "not an image") {
		t.Fatalf("expected not an image error, got %v", err)
	}
	if err := execute(app, "generate", "-p", "x"); err == nil {
		t.Fatal("expected missing flag error")
	}

	failing := &mockImages{err: domain.ErrNoImageProduced}
	app, _, _ = testApp(t, "", failing)
	if err := execute(app, "generate", "-i", "mug.png", "-p", "x"); !errors.Is(err, domain.ErrNoImageProduced) {
		t.Fatalf("expected ErrNoImageProduced, got %v", err)
	}
}

func TestIdeasCommand(t *testing.T) {
	app, out, _ := testApp(t, "", &mockImages{})
	if err := execute(app, "ideas"); err != nil {
		t.Fatalf("ideas error = %v", err)
	}
	if !strings.Contains(out.String(), "Style & Angle") || !strings.Contains(out.String(), "  - Top-down flat lay") {
		t.Fatalf("output = %s", out.String())
	}

	out.Reset()
	if err := execute(app, "ideas", "--base", "on slate"); err != nil {
		t.Fatalf("ideas error = %v", err)
	}
	if !strings.Contains(out.String(), "Visuals") || strings.Contains(out.String(), "Lighting") {
		t.Fatalf("output = %s", out.String())
	}
}

func TestStudioCommand(t *testing.T) {
	images := &mockImages{}
	app, out, _ := testApp(t, "upload mug.png\ngenerate on slate\nquit\n", images)
	if err := execute(app); err != nil {
		t.Fatalf("studio error = %v", err)
	}
	if !strings.Contains(out.String(), "Result 1/1: ON SLATE") {
		t.Fatalf("output = %s", out.String())
	}
}

func TestConfigErrorPropagates(t *testing.T) {
	app, _, _ := testApp(t, "", &mockImages{})
	app.LoadConfig = func() (*infra.Config, error) { return nil, errors.New("GEMINI_API_KEY (or API_KEY) is required") }
	if err := execute(app, "ideas"); err == nil {
		t.Fatal("expected config error")
	}
}
