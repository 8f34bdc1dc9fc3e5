package architect

type Template struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	PreviewHint    string `json:"previewHint"`
	PromptModifier string `json:"promptModifier"`
}

var templates = []Template{
	{
		ID:             "cyberpunk",
		Name:           "Neon Cyberpunk",
		Description:    "High contrast, neon lights, futuristic cityscapes, fast paced.",
		PreviewHint:    "purple",
		PromptModifier: "Cyberpunk aesthetic, neon blue and pink lighting, futuristic city environment, glowing effects, digital glitches, high tech.",
	},
	{
		ID:             "minimalist",
		Name:           "Clean Minimalist",
		Description:    "Bright, airy, plenty of negative space, soft shadows, Apple-style.",
		PreviewHint:    "light-gray",
		PromptModifier: "Minimalist design, bright soft lighting, white background, clean lines, high key photography, sophisticated, elegant.",
	},
	{
		ID:             "cinematic",
		Name:           "Dark Cinematic",
		Description:    "Dramatic lighting, moody atmosphere, film grain, emotional.",
		PreviewHint:    "slate",
		PromptModifier: "Cinematic film look, dramatic chiaroscuro lighting, moody atmosphere, anamorphic lens flares, shallow depth of field, 35mm film grain.",
	},
	{
		ID:             "corporate",
		Name:           "Modern Corporate",
		Description:    "Professional, blue tones, skyscrapers, diversity, upbeat.",
		PreviewHint:    "blue",
		PromptModifier: "Modern corporate aesthetic, professional office setting, glass architecture, confident atmosphere, trusted brand look, blue and steel color palette.",
	},
	{
		ID:             "lifestyle",
		Name:           "Vibrant Lifestyle",
		Description:    "Sunny, energetic, happy people, natural light, handheld feel.",
		PreviewHint:    "orange",
		PromptModifier: "Vibrant lifestyle photography, natural sunlight, golden hour, happy emotions, energetic camera movement, authentic feel.",
	},
	{
		ID:             "luxury",
		Name:           "Luxury & Gold",
		Description:    "Black and gold, particles, silk textures, premium feel.",
		PreviewHint:    "gold",
		PromptModifier: "Luxury brand aesthetic, black and gold color scheme, floating gold particles, silk textures, premium product lighting, expensive feel.",
	},
}

var templatesByID = func() map[string]Template {
	m := make(map[string]Template, len(templates))
	for _, t := range templates {
		m[t.ID] = t
	}
	return m
}()

// Templates returns the catalog in display order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

func TemplateByID(id string) (Template, bool) {
	t, ok := templatesByID[id]
	return t, ok
}

// TemplateForStyle finds the template whose modifier equals style.
func TemplateForStyle(style string) (Template, bool) {
	for _, t := range templates {
		if t.PromptModifier == style {
			return t, true
		}
	}
	return Template{}, false
}
