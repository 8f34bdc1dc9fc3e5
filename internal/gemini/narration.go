package gemini

import "math/rand/v2"

const (
	msgArchitecting = "Architecting scene composition and lighting parameters..."
	msgRendering    = "Rendering initial frames..."
)

var defaultNarration = []string{
	"Synthesizing 3D assets...",
	"Applying motion tracking algorithms...",
	"Refining lighting and shadows...",
	"Color grading in progress...",
	"Finalizing render...",
}

// Narrator picks cosmetic progress lines shown while a job renders.
type Narrator struct {
	pool []string
	pick func(n int) int
}

func NewNarrator(pool ...string) *Narrator {
	if len(pool) == 0 {
		pool = defaultNarration
	}
	return &Narrator{
		pool: append([]string(nil), pool...),
		pick: rand.IntN,
	}
}

func (n *Narrator) Next() string {
	return n.pool[n.pick(len(n.pool))]
}
