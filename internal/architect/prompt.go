package architect

import (
	"fmt"
	"strings"
)

const (
	presenterClause = "Include a friendly, professional human presenter speaking directly to the camera (lip sync not required, just visual presence). "
	motionClause    = "Use dynamic camera movements, swooping shots, and tracking shots to maintain high energy. "
	closingClause   = "The lighting should be studio-quality. The final look should be polished, commercial-grade, and ready to publish."
)

// Compose builds the generation prompt. Clause order is fixed: subject,
// style, presenter, motion, overlay, closing.
func Compose(cfg VideoConfig) string {
	var b strings.Builder
	b.Grow(512)

	b.WriteString(fmt.Sprintf("Create a high-end, professional marketing video for the %s industry about %s. ",
		strings.TrimSpace(cfg.Industry), strings.TrimSpace(cfg.Topic)))
	b.WriteString("Visual Style: " + cfg.Style + ". ")

	if cfg.IncludePresenter {
		b.WriteString(presenterClause)
	}
	if cfg.UseMotionTracking {
		b.WriteString(motionClause)
	}
	if hook := strings.TrimSpace(cfg.HookText); hook != "" {
		b.WriteString(`Feature prominent, 3D cinematic text overlay that says: "` + hook + `". `)
	}

	b.WriteString(closingClause)
	return b.String()
}
