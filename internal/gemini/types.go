package gemini

import (
	"google.golang.org/genai"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
)

// Request is everything needed to start one video job.
type Request struct {
	Prompt         string
	AspectRatio    architect.AspectRatio
	Resolution     architect.Resolution
	ReferenceImage string // data URL, optional
	Credential     string
}

// Job is an in-flight video operation plus the service it was started on.
type Job struct {
	op    *genai.GenerateVideosOperation
	svc   Service
	polls int
}

func (j *Job) Done() bool {
	return j.op != nil && j.op.Done
}

// Name is the service-side operation name.
func (j *Job) Name() string {
	if j.op == nil {
		return ""
	}
	return j.op.Name
}

// Polls counts status refreshes made so far.
func (j *Job) Polls() int {
	return j.polls
}

// Result describes a finished job.
type Result struct {
	Operation string
	Locator   string
	MIMEType  string
	Polls     int
}

// ProgressSink receives human-readable progress text during a job.
type ProgressSink interface {
	Progress(message string)
}

type ProgressFunc func(message string)

func (f ProgressFunc) Progress(message string) {
	f(message)
}

var discardProgress = ProgressFunc(func(string) {})
