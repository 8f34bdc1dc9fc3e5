package architect

import (
	"strings"
	"testing"
)

func cyberpunk(t *testing.T) string {
	t.Helper()
	tpl, ok := TemplateByID("cyberpunk")
	if !ok {
		t.Fatal("cyberpunk template missing")
	}
	return tpl.PromptModifier
}

func TestComposeIncludesSubject(t *testing.T) {
	configs := []VideoConfig{
		{Topic: "Downtown Loft", Industry: "Real Estate"},
		{Topic: "Cold brew launch", Industry: "Coffee", Style: "warm tones"},
		{Topic: "Zero-fee transfers", Industry: "Fintech", HookText: "Send more", IncludePresenter: true},
	}

	for _, cfg := range configs {
		prompt := Compose(cfg)
		if !strings.Contains(prompt, cfg.Industry) {
			t.Errorf("prompt missing industry %q: %s", cfg.Industry, prompt)
		}
		if !strings.Contains(prompt, cfg.Topic) {
			t.Errorf("prompt missing topic %q: %s", cfg.Topic, prompt)
		}
	}
}

func TestComposeOmitsOptionalClauses(t *testing.T) {
	prompt := Compose(VideoConfig{
		Topic:    "Spring menu",
		Industry: "Restaurants",
		Style:    "Soft pastel palette",
	})

	for _, clause := range []string{"presenter", "camera movements", "text overlay"} {
		if strings.Contains(prompt, clause) {
			t.Errorf("prompt unexpectedly contains %q: %s", clause, prompt)
		}
	}
	if !strings.HasSuffix(prompt, closingClause) {
		t.Errorf("prompt must end with the closing clause: %s", prompt)
	}
}

func TestComposeQuotesHook(t *testing.T) {
	prompt := Compose(VideoConfig{Topic: "Villas", Industry: "Travel", HookText: "Live the Dream"})
	if !strings.Contains(prompt, `"Live the Dream"`) {
		t.Errorf("prompt missing quoted hook: %s", prompt)
	}

	blank := Compose(VideoConfig{Topic: "Villas", Industry: "Travel", HookText: "   "})
	if strings.Contains(blank, "text overlay") {
		t.Errorf("blank hook must not add an overlay clause: %s", blank)
	}
}

func TestComposeClauseOrder(t *testing.T) {
	style := cyberpunk(t)
	prompt := Compose(VideoConfig{
		Topic:             "Downtown Loft",
		Industry:          "Real Estate",
		Style:             style,
		HookText:          "Live the Dream",
		IncludePresenter:  true,
		UseMotionTracking: true,
	})

	markers := []string{
		"marketing video for the Real Estate industry about Downtown Loft.",
		"Visual Style: " + style,
		"human presenter",
		"tracking shots",
		`"Live the Dream"`,
		"studio-quality",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(prompt, m)
		if idx < 0 {
			t.Fatalf("prompt missing %q: %s", m, prompt)
		}
		if idx <= last {
			t.Errorf("%q appears out of order", m)
		}
		last = idx
	}
}

func TestComposeEndToEndConfig(t *testing.T) {
	prompt := Compose(VideoConfig{
		Topic:             "Downtown Loft",
		Industry:          "Real Estate",
		AspectRatio:       Horizontal,
		Style:             cyberpunk(t),
		UseMotionTracking: true,
	})

	if !strings.Contains(prompt, "Real Estate") || !strings.Contains(prompt, "Downtown Loft") {
		t.Errorf("prompt missing subject: %s", prompt)
	}
	if !strings.Contains(prompt, motionClause) {
		t.Errorf("prompt missing motion clause: %s", prompt)
	}
	if strings.Contains(prompt, presenterClause) {
		t.Errorf("prompt has presenter clause: %s", prompt)
	}
	if strings.Contains(prompt, "text overlay") {
		t.Errorf("prompt has overlay clause: %s", prompt)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	cfg := VideoConfig{Topic: "a", Industry: "b", Style: "c", HookText: "d", IncludePresenter: true}
	if Compose(cfg) != Compose(cfg) {
		t.Error("Compose must be deterministic")
	}
}
