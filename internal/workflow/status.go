// Package workflow drives a single video generation from a submitted
// configuration to a playable result.
package workflow

type Step string

const (
	StepIdle       Step = "idle"
	StepGenerating Step = "generating"
	StepComplete   Step = "complete"
	StepError      Step = "error"
)

const (
	msgInitializing   = "Initializing AI Architect..."
	msgGenerateFailed = "Generation failed"
	msgCancelled      = "Generation cancelled"
	msgReauth         = "API key session expired or invalid. Please re-select your key."
)

// Status is the workflow's current stage. It is replaced, never mutated.
type Status struct {
	Step     Step   `json:"step"`
	Message  string `json:"message,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

func Idle() Status { return Status{Step: StepIdle} }
func Generating(message string) Status { return Status{Step: StepGenerating, Message: message} }
func Complete(videoURL string) Status { return Status{Step: StepComplete, VideoURL: videoURL} }
func Failed(message string) Status { return Status{Step: StepError, Message: message} }

func (s Status) Terminal() bool {
	return s.Step == StepComplete || s.Step == StepError
}

type NoticeKind string

const NoticeReauth NoticeKind = "reauth"

// Notice is advisory output raised alongside a transition.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Listener observes a controller. Callbacks are delivered in order and
// must not call back into Reset.
type Listener interface {
	OnStatus(Status)
	OnNotice(Notice)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Status func(Status)
	Notice func(Notice)
}

func (l ListenerFuncs) OnStatus(s Status) {
	if l.Status != nil {
		l.Status(s)
	}
}

func (l ListenerFuncs) OnNotice(n Notice) {
	if l.Notice != nil {
		l.Notice(n)
	}
}
