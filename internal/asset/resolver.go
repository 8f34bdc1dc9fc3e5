// Package asset turns a finished job's locator into a fetchable URL and
// buffers the video behind a revocable local handle.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/failure"
)

const defaultMaxBytes = 512 << 20

type Options struct {
	HTTPClient *http.Client
	Registry   *Registry
	MaxBytes   int64
	Logger     *zerolog.Logger
}

type Resolver struct {
	httpClient *http.Client
	registry   *Registry
	maxBytes   int64
	logger     zerolog.Logger
}

func NewResolver(opts Options) *Resolver {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry(RegistryOptions{})
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Resolver{
		httpClient: httpClient,
		registry:   registry,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve appends the credential to the locator as the key query
// parameter. Service locators already carry a query string, so the
// parameter is always joined with "&".
func (r *Resolver) Resolve(locator, credential string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", failure.Generation("missing result")
	}
	return locator + "&key=" + url.QueryEscape(credential), nil
}

// Materialize downloads the whole video and registers it as a handle.
func (r *Resolver) Materialize(ctx context.Context, rawURL string) (*Handle, error) {
	start := time.Now()
	safeURL := redact(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, failure.Fetch("build video request", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Error().Err(redactErr(err)).Str("url", safeURL).Msg("failed to load video blob")
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, failure.Fetch("download video", redactErr(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		r.logger.Error().
			Int("status", resp.StatusCode).
			Str("url", safeURL).
			Str("body", strings.TrimSpace(string(snippet))).
			Msg("failed to load video blob")
		return nil, failure.Fetch(fmt.Sprintf("download video: %s", resp.Status), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		r.logger.Error().Err(err).Str("url", safeURL).Msg("failed to read video blob")
		return nil, failure.Fetch("read video", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, failure.Fetch(fmt.Sprintf("video exceeds %d bytes", r.maxBytes), nil)
	}

	handle := r.registry.put(data, contentType(resp.Header.Get("content-type"), data))

	r.logger.Info().
		Str("handle", handle.ID).
		Int("bytes", handle.Size).
		Str("mime", handle.MIMEType).
		Dur("duration", time.Since(start)).
		Msg("video blob ready")

	return handle, nil
}

func contentType(header string, data []byte) string {
	mime := strings.TrimSpace(header)
	if strings.Contains(mime, ";") {
		mime = strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])
	}
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	if strings.Contains(mime, ";") {
		mime = strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])
	}
	if mime == "" || mime == "application/octet-stream" || strings.HasPrefix(mime, "text/") {
		mime = defaultMIME
	}
	return mime
}

// redact hides the credential in a resolved URL.
func redact(rawURL string) string {
	if idx := strings.Index(rawURL, "key="); idx >= 0 {
		return rawURL[:idx] + "key=REDACTED"
	}
	return rawURL
}

// redactErr drops the request URL that *url.Error embeds.
func redactErr(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
