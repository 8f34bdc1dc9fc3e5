package architect

import "strings"

// ParseArgs reads free-form command text into a config, starting from
// defaults. Lines shaped like "key: value" set topic, industry, hook or
// style; remaining tokens toggle flags or pick a template, and anything
// unrecognized becomes a custom style fragment.
func ParseArgs(raw string, defaults VideoConfig) VideoConfig {
	cfg := defaults
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return cfg
	}

	var custom []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if key, value, ok := splitField(line); ok {
			applyField(&cfg, key, value)
			continue
		}

		for _, tok := range strings.Fields(line) {
			if !applyToken(&cfg, tok) {
				custom = append(custom, tok)
			}
		}
	}

	if c := strings.TrimSpace(strings.Join(custom, " ")); c != "" {
		cfg.Style = c
	}
	return cfg
}

var fieldKeys = map[string]string{
	"topic":    "topic",
	"subject":  "topic",
	"industry": "industry",
	"niche":    "industry",
	"hook":     "hook",
	"text":     "hook",
	"overlay":  "hook",
	"style":    "style",
}

func splitField(line string) (string, string, bool) {
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return "", "", false
	}
	key, ok := fieldKeys[strings.ToLower(strings.TrimSpace(line[:idx]))]
	if !ok {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

func applyField(cfg *VideoConfig, key, value string) {
	switch key {
	case "topic":
		cfg.Topic = value
	case "industry":
		cfg.Industry = value
	case "hook":
		cfg.HookText = strings.Trim(value, `"`)
	case "style":
		if t, ok := TemplateByID(strings.ToLower(value)); ok {
			cfg.Style = t.PromptModifier
		} else if value != "" {
			cfg.Style = value
		}
	}
}

func applyToken(cfg *VideoConfig, tok string) bool {
	lower := strings.ToLower(strings.TrimSpace(tok))
	if lower == "" {
		return true
	}

	switch lower {
	case "presenter", "host", "human":
		cfg.IncludePresenter = true
		return true
	case "nopresenter", "nohost":
		cfg.IncludePresenter = false
		return true
	case "motion", "tracking":
		cfg.UseMotionTracking = true
		return true
	case "nomotion", "static":
		cfg.UseMotionTracking = false
		return true
	}

	if ar, ok := ParseAspectRatio(lower); ok {
		cfg.AspectRatio = ar
		return true
	}
	if strings.HasPrefix(lower, "ar=") {
		if ar, ok := ParseAspectRatio(strings.TrimPrefix(lower, "ar=")); ok {
			cfg.AspectRatio = ar
			return true
		}
	}
	if strings.HasPrefix(lower, "style=") {
		if t, ok := TemplateByID(strings.TrimPrefix(lower, "style=")); ok {
			cfg.Style = t.PromptModifier
			return true
		}
	}
	if t, ok := TemplateByID(lower); ok {
		cfg.Style = t.PromptModifier
		return true
	}
	return false
}
