package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/asset"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/failure"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/gemini"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/workflow"
)

type stubGenerator struct {
	err error
}

func (g stubGenerator) Generate(ctx context.Context, req gemini.Request, sink gemini.ProgressSink) (gemini.Result, error) {
	sink.Progress("Calibrating camera angles...")
	if g.err != nil {
		return gemini.Result{}, g.err
	}
	return gemini.Result{Locator: "https://svc/v?alt=media"}, nil
}

type videoTransport struct{}

func (videoTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"video/mp4"}},
		Body:       io.NopCloser(strings.NewReader("mp4-bytes")),
		Request:    req,
	}, nil
}

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		topicFlag, industryFlag, templateFlag, styleFlag = "", "", "", ""
		hookFlag, imageFlag = "", ""
		verticalFlag, presenterFlag, motionFlag = false, false, true
	})
}

func TestBuildConfig(t *testing.T) {
	resetFlags(t)

	topicFlag = " Downtown Loft "
	industryFlag = "Real Estate"
	templateFlag = "luxury"
	verticalFlag = true
	presenterFlag = true
	motionFlag = false
	hookFlag = "Live above it all"

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}

	tpl, _ := architect.TemplateByID("luxury")
	if cfg.Topic != "Downtown Loft" || cfg.Style != tpl.PromptModifier || cfg.AspectRatio != architect.Vertical {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !cfg.IncludePresenter || cfg.UseMotionTracking || cfg.HookText != "Live above it all" {
		t.Errorf("toggles not applied: %+v", cfg)
	}

	styleFlag = "hand-drawn watercolor"
	cfg, err = buildConfig()
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Style != "hand-drawn watercolor" {
		t.Errorf("--style should override --template, got %q", cfg.Style)
	}
}

func TestBuildConfigErrors(t *testing.T) {
	resetFlags(t)

	topicFlag = "Loft"
	if _, err := buildConfig(); err == nil {
		t.Error("missing industry should fail")
	}

	industryFlag = "Real Estate"
	templateFlag = "nope"
	if _, err := buildConfig(); err == nil {
		t.Error("unknown template should fail")
	}
}

func TestLoadReference(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "ref.png")
	if err := os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n0000"), 0o644); err != nil {
		t.Fatal(err)
	}
	ref, err := loadReference(png)
	if err != nil {
		t.Fatalf("loadReference: %v", err)
	}
	if !strings.HasPrefix(ref, "data:image/png;base64,") {
		t.Errorf("ref = %q", ref)
	}

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadReference(txt); err == nil {
		t.Error("text file should be rejected")
	}
}

func TestGenerateVideoWritesFile(t *testing.T) {
	var progress bytes.Buffer
	ctrl := workflow.New(workflow.Options{
		Generator:  stubGenerator{},
		Assets:     asset.NewResolver(asset.Options{HTTPClient: &http.Client{Transport: videoTransport{}}}),
		Credential: "test-key",
		Listener:   progressPrinter(&progress),
	})
	defer ctrl.Close()

	cfg := architect.DefaultConfig()
	cfg.Topic = "Loft"
	cfg.Industry = "Real Estate"

	out := filepath.Join(t.TempDir(), "video.mp4")
	if err := generateVideo(context.Background(), ctrl, cfg, out, zerolog.Nop()); err != nil {
		t.Fatalf("generateVideo: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil || string(data) != "mp4-bytes" {
		t.Errorf("file = %q, %v", data, err)
	}
	if !strings.Contains(progress.String(), "Calibrating camera angles") || !strings.Contains(progress.String(), "Video ready") {
		t.Errorf("progress output = %q", progress.String())
	}
}

func TestGenerateVideoReportsFailure(t *testing.T) {
	ctrl := workflow.New(workflow.Options{
		Generator:  stubGenerator{err: failure.Generation("Video generation failed: quota")},
		Assets:     asset.NewResolver(asset.Options{}),
		Credential: "test-key",
	})
	defer ctrl.Close()

	cfg := architect.DefaultConfig()
	cfg.Topic = "Loft"
	cfg.Industry = "Real Estate"

	err := generateVideo(context.Background(), ctrl, cfg, filepath.Join(t.TempDir(), "x.mp4"), zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "quota") {
		t.Errorf("err = %v", err)
	}
}

func TestPrintTemplates(t *testing.T) {
	var buf bytes.Buffer
	printTemplates(&buf)

	for _, tpl := range architect.Templates() {
		if !strings.Contains(buf.String(), tpl.ID) {
			t.Errorf("template %q missing from output", tpl.ID)
		}
	}
}
