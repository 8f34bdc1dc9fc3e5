package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/asset"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/failure"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/gemini"
)

// ErrNoPlayback is returned by Playback when no run has completed.
var ErrNoPlayback = errors.New("no video available")

type Generator interface {
	Generate(ctx context.Context, req gemini.Request, sink gemini.ProgressSink) (gemini.Result, error)
}

type Assets interface {
	Resolve(locator, credential string) (string, error)
	Materialize(ctx context.Context, url string) (*asset.Handle, error)
}

type Options struct {
	Generator  Generator
	Assets     Assets
	Credential string
	Resolution architect.Resolution
	Listener   Listener
	Logger     *zerolog.Logger
}

// Controller owns one workflow: idle, generating, then complete or error
// until Reset.
type Controller struct {
	gen        Generator
	assets     Assets
	credential string
	resolution architect.Resolution
	listener   Listener
	logger     zerolog.Logger

	// emitMu keeps listener delivery in transition order.
	emitMu sync.Mutex

	mu          sync.Mutex
	status      Status
	run         uint64
	cancel      context.CancelFunc
	done        chan struct{}
	handle      *asset.Handle
	playbackErr error
}

func New(opts Options) *Controller {
	listener := opts.Listener
	if listener == nil {
		listener = ListenerFuncs{}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	resolution := opts.Resolution
	if resolution == "" {
		resolution = architect.HD
	}

	return &Controller{
		gen:        opts.Generator,
		assets:     opts.Assets,
		credential: opts.Credential,
		resolution: resolution,
		listener:   listener,
		logger:     logger,
		status:     Idle(),
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Playback returns the buffered video of the completed run. A failed
// fetch is reported as its FetchError while the status stays complete.
func (c *Controller) Playback() (*asset.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status.Step != StepComplete {
		return nil, ErrNoPlayback
	}
	if c.playbackErr != nil {
		return nil, c.playbackErr
	}
	if c.handle == nil {
		return nil, ErrNoPlayback
	}
	return c.handle, nil
}

// Submit starts a run in the background. It is ignored unless the
// controller is idle and cfg has a topic and an industry. The run is
// bound to ctx, so callers serving a request should pass a longer-lived
// context.
func (c *Controller) Submit(ctx context.Context, cfg architect.VideoConfig) bool {
	r, ok := c.begin(ctx, cfg)
	if !ok {
		return false
	}
	go c.execute(r, cfg)
	return true
}

// Generate runs the workflow synchronously and returns the status it
// settled in.
func (c *Controller) Generate(ctx context.Context, cfg architect.VideoConfig) (Status, bool) {
	r, ok := c.begin(ctx, cfg)
	if !ok {
		return c.Status(), false
	}
	c.execute(r, cfg)
	return c.Status(), true
}

// Wait blocks until the in-flight run, if any, has finished.
func (c *Controller) Wait(ctx context.Context) (Status, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return c.Status(), ctx.Err()
		}
	}
	return c.Status(), nil
}

// Reset returns a settled workflow to idle and releases its video. An
// in-flight run is abandoned: its context is cancelled and anything it
// produces afterwards is discarded. The remote job itself keeps running.
func (c *Controller) Reset() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.status.Step == StepIdle {
		c.mu.Unlock()
		return
	}
	from := c.status.Step
	c.run++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.done = nil
	handle := c.handle
	c.handle = nil
	c.playbackErr = nil
	c.status = Idle()
	c.mu.Unlock()

	handle.Release()
	c.logger.Info().Str("from", string(from)).Msg("workflow reset")
	c.listener.OnStatus(Idle())
}

// Close abandons any run and releases held resources.
func (c *Controller) Close() {
	c.Reset()
}

type run struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func (c *Controller) begin(ctx context.Context, cfg architect.VideoConfig) (run, bool) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if c.status.Step != StepIdle || !cfg.Ready() {
		c.mu.Unlock()
		return run{}, false
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.run++
	r := run{id: c.run, ctx: runCtx, cancel: cancel, done: make(chan struct{})}
	c.cancel = cancel
	c.done = r.done
	c.status = Generating(msgInitializing)
	c.mu.Unlock()

	c.listener.OnStatus(Generating(msgInitializing))
	return r, true
}

func (c *Controller) execute(r run, cfg architect.VideoConfig) {
	defer close(r.done)
	defer r.cancel()

	start := time.Now()
	log := c.logger.With().Uint64("run", r.id).Logger()

	if c.gen == nil || c.assets == nil {
		c.fail(r, errors.New("workflow is not configured"))
		return
	}

	req := gemini.Request{
		Prompt:         architect.Compose(cfg),
		AspectRatio:    cfg.AspectRatio,
		Resolution:     c.resolution,
		ReferenceImage: cfg.ReferenceImage,
		Credential:     c.credential,
	}
	log.Info().
		Str("industry", cfg.Industry).
		Str("aspect_ratio", string(cfg.AspectRatio)).
		Bool("reference_image", cfg.ReferenceImage != "").
		Msg("generation started")

	progress := gemini.ProgressFunc(func(message string) {
		c.transition(r.id, Generating(message))
	})

	res, err := c.gen.Generate(r.ctx, req, progress)
	if err != nil {
		c.fail(r, err)
		return
	}

	url, err := c.assets.Resolve(res.Locator, c.credential)
	if err != nil {
		c.fail(r, err)
		return
	}

	handle, fetchErr := c.assets.Materialize(r.ctx, url)
	if fetchErr != nil {
		log.Error().Err(fetchErr).Msg("video playback unavailable")
	}
	if !c.complete(r.id, url, handle, fetchErr) {
		handle.Release()
		return
	}

	log.Info().
		Int("polls", res.Polls).
		Dur("duration", time.Since(start)).
		Msg("generation complete")
}

// transition moves a generating run to next. It reports false when the
// run has been abandoned.
func (c *Controller) transition(id uint64, next Status) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if id != c.run || c.status.Step != StepGenerating {
		c.mu.Unlock()
		return false
	}
	c.status = next
	c.mu.Unlock()

	c.listener.OnStatus(next)
	return true
}

func (c *Controller) complete(id uint64, url string, handle *asset.Handle, fetchErr error) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if id != c.run || c.status.Step != StepGenerating {
		c.mu.Unlock()
		return false
	}
	next := Complete(url)
	c.status = next
	c.handle = handle
	c.playbackErr = fetchErr
	c.mu.Unlock()

	c.listener.OnStatus(next)
	return true
}

func (c *Controller) fail(r run, err error) {
	message := errorMessage(err)
	if errors.Is(err, context.Canceled) && r.ctx.Err() != nil {
		message = msgCancelled
	}

	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if r.id != c.run || c.status.Step != StepGenerating {
		c.mu.Unlock()
		return
	}
	next := Failed(message)
	c.status = next
	c.mu.Unlock()

	c.logger.Error().
		Err(err).
		Uint64("run", r.id).
		Str("kind", failure.KindOf(err).String()).
		Msg("generation failed")

	c.listener.OnStatus(next)
	if failure.SuggestsReauth(err) {
		c.listener.OnNotice(Notice{Kind: NoticeReauth, Message: msgReauth})
	}
}

func errorMessage(err error) string {
	if err == nil {
		return msgGenerateFailed
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return msgGenerateFailed
}
