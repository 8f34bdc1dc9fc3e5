package architect

import "strings"

type AspectRatio string

const (
	Horizontal AspectRatio = "16:9"
	Vertical   AspectRatio = "9:16"
)

type Resolution string

const (
	HD  Resolution = "720p"
	FHD Resolution = "1080p"
)

// VideoConfig is the full set of user choices for one generation.
type VideoConfig struct {
	Topic             string      `json:"topic"`
	Industry          string      `json:"industry"`
	AspectRatio       AspectRatio `json:"aspectRatio"`
	Style             string      `json:"style"`
	HookText          string      `json:"hookText,omitempty"`
	IncludePresenter  bool        `json:"includePresenter"`
	UseMotionTracking bool        `json:"useMotionTracking"`
	ReferenceImage    string      `json:"referenceImage,omitempty"` // data URL
}

// Ready reports whether the config carries the fields required to submit.
func (c VideoConfig) Ready() bool {
	return strings.TrimSpace(c.Topic) != "" && strings.TrimSpace(c.Industry) != ""
}

// DefaultConfig mirrors the initial form state.
func DefaultConfig() VideoConfig {
	return VideoConfig{
		AspectRatio:       Horizontal,
		Style:             templates[0].PromptModifier,
		UseMotionTracking: true,
	}
}

func ParseAspectRatio(value string) (AspectRatio, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "16:9", "horizontal", "landscape", "h":
		return Horizontal, true
	case "9:16", "vertical", "portrait", "v":
		return Vertical, true
	}
	return "", false
}

func ParseResolution(value string) (Resolution, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "720p", "hd":
		return HD, true
	case "1080p", "fhd":
		return FHD, true
	}
	return "", false
}
