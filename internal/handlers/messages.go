package handlers

import (
	"fmt"
	"strings"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/workflow"
)

const startText = "🎬 AI Video Architect\n\n" +
	"I turn a topic and an industry into a short marketing video.\n\n" +
	"Commands:\n" +
	"/video - Open the video builder\n" +
	"/video <details> - Generate right away\n" +
	"/templates - List visual styles\n" +
	"/status - Show progress\n" +
	"/reset - Start over\n" +
	"/help - Help"

const helpText = "🎬 Help\n\n" +
	"Send /video with one field per line:\n" +
	"/video topic: Downtown Loft\n" +
	"industry: Real Estate\n" +
	"hook: Live the Dream\n" +
	"cyberpunk vertical presenter\n\n" +
	"Flags: a template id, 16:9 or 9:16 (vertical), presenter / nopresenter, motion / nomotion. " +
	"Any other words become a custom style.\n\n" +
	"Send a photo to use it as the reference image, or put the /video command in its caption. " +
	"For albums the first photo is used.\n\n" +
	"Rendering takes a few minutes."

const missingFieldsText = "❌ A topic and an industry are required.\n" +
	"Example:\n/video topic: Downtown Loft\nindustry: Real Estate"

func templatesText() string {
	var b strings.Builder
	b.WriteString("🎨 Templates\n\n")
	for _, t := range architect.Templates() {
		b.WriteString(fmt.Sprintf("%s (%s): %s\n", t.Name, t.ID, t.Description))
	}
	b.WriteString("\nUse the id as a /video flag, e.g. /video cinematic")
	return b.String()
}

func statusText(st workflow.Status) string {
	switch st.Step {
	case workflow.StepGenerating:
		return "⏳ Generating: " + st.Message
	case workflow.StepComplete:
		return "✅ Your video is ready. Send /reset to make another."
	case workflow.StepError:
		return "❌ Failed: " + st.Message + "\nSend /reset to start over."
	default:
		return "💤 Idle. Send /video to start."
	}
}

func styleName(style string) string {
	if t, ok := architect.TemplateForStyle(style); ok {
		return t.Name
	}
	if strings.TrimSpace(style) == "" {
		return "(none)"
	}
	return "Custom: " + truncateLine(style, 40)
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not set)"
	}
	return s
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
