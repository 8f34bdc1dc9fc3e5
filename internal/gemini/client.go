package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/failure"
)

const (
	DefaultModel        = "veo-3.1-fast-generate-preview"
	DefaultPollInterval = 5 * time.Second
)

type Options struct {
	Dial         Dialer
	Model        string
	PollInterval time.Duration
	Narrator     *Narrator
	Logger       *zerolog.Logger
}

// Client submits video jobs and waits for them to finish.
type Client struct {
	dial         Dialer
	model        string
	pollInterval time.Duration
	narrator     *Narrator
	logger       zerolog.Logger
}

func New(opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	narrator := opts.Narrator
	if narrator == nil {
		narrator = NewNarrator()
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		dial:         opts.Dial,
		model:        model,
		pollInterval: interval,
		narrator:     narrator,
		logger:       logger,
	}
}

func (c *Client) Model() string {
	return c.model
}

// Generate submits the request and blocks until the job reaches a
// terminal state, reporting progress along the way.
func (c *Client) Generate(ctx context.Context, req Request, sink ProgressSink) (Result, error) {
	if sink == nil {
		sink = discardProgress
	}

	sink.Progress(msgArchitecting)
	job, err := c.Submit(ctx, req)
	if err != nil {
		return Result{}, err
	}

	sink.Progress(msgRendering)
	return c.Await(ctx, job, sink)
}

// Submit starts a video job. The reference image, when present, is sent
// as raw bytes with its data-URL header removed.
func (c *Client) Submit(ctx context.Context, req Request) (*Job, error) {
	if c.dial == nil {
		return nil, errors.New("gemini dialer is nil")
	}

	image, err := referenceImage(req.ReferenceImage)
	if err != nil {
		return nil, err
	}

	svc, err := c.dial(ctx, req.Credential)
	if err != nil {
		return nil, classify("connect", err)
	}

	resolution := req.Resolution
	if resolution == "" {
		resolution = architect.HD
	}

	config := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    string(req.AspectRatio),
		Resolution:     string(resolution),
	}

	start := time.Now()
	op, err := svc.GenerateVideos(ctx, c.model, req.Prompt, image, config)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("model", c.model).
			Msg("video job submission failed")
		return nil, classify("submit video job", err)
	}
	if op == nil {
		return nil, failure.Generation("service returned no operation")
	}

	c.logger.Info().
		Str("operation", op.Name).
		Str("model", c.model).
		Str("aspect_ratio", config.AspectRatio).
		Str("resolution", config.Resolution).
		Bool("reference_image", image != nil).
		Dur("duration", time.Since(start)).
		Msg("video job submitted")

	return &Job{op: op, svc: svc}, nil
}

// Await polls the job at a fixed interval until the service reports it
// done. There is no retry cap; cancel ctx to abandon the wait.
func (c *Client) Await(ctx context.Context, job *Job, sink ProgressSink) (Result, error) {
	if job == nil || job.op == nil {
		return Result{}, failure.Generation("no job to wait for")
	}
	if sink == nil {
		sink = discardProgress
	}

	for !job.Done() {
		sink.Progress(c.narrator.Next())

		if err := c.wait(ctx); err != nil {
			return Result{}, err
		}

		op, err := job.svc.GetVideosOperation(ctx, job.op)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Str("operation", job.Name()).
				Int("polls", job.polls).
				Msg("video job poll failed")
			return Result{}, classify("poll video job", err)
		}
		job.polls++
		if op != nil {
			job.op = op
		}

		c.logger.Debug().
			Str("operation", job.Name()).
			Int("polls", job.polls).
			Bool("done", job.Done()).
			Msg("video job polled")
	}

	return c.result(job)
}

func (c *Client) result(job *Job) (Result, error) {
	op := job.op
	if len(op.Error) > 0 {
		msg := operationError(op.Error)
		c.logger.Error().
			Str("operation", op.Name).
			Str("error", msg).
			Msg("video job failed")
		return Result{}, failure.Generation(msg)
	}

	var video *genai.Video
	if op.Response != nil && len(op.Response.GeneratedVideos) > 0 && op.Response.GeneratedVideos[0] != nil {
		video = op.Response.GeneratedVideos[0].Video
	}
	if video == nil || strings.TrimSpace(video.URI) == "" {
		evt := c.logger.Error().Str("operation", op.Name)
		if op.Response != nil && len(op.Response.RAIMediaFilteredReasons) > 0 {
			evt = evt.Strs("filter_reasons", op.Response.RAIMediaFilteredReasons)
		}
		evt.Msg("video job finished without a result")
		return Result{}, failure.Generation("missing result")
	}

	c.logger.Info().
		Str("operation", op.Name).
		Int("polls", job.polls).
		Msg("video job complete")

	return Result{
		Operation: op.Name,
		Locator:   video.URI,
		MIMEType:  video.MIMEType,
		Polls:     job.polls,
	}, nil
}

func (c *Client) wait(ctx context.Context) error {
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
