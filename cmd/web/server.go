package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/asset"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/gemini"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/session"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/workflow"
)

const (
	sessionCookie  = "va_session"
	maxUploadBytes = 25 << 20
	videoRoute     = "/api/video"
)

type serverOptions struct {
	Generator  workflow.Generator
	Assets     *asset.Resolver
	Credential string
	Resolution architect.Resolution
	// BaseContext bounds generation runs, which outlive their request.
	BaseContext context.Context
	Static      fs.FS
	Logger      *zerolog.Logger
}

type server struct {
	sessions *session.Store
	assets   *asset.Resolver
	notices  *cache.Cache
	baseCtx  context.Context
	static   fs.FS
	logger   zerolog.Logger
}

type apiError struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Step     workflow.Step `json:"step"`
	Message  string        `json:"message,omitempty"`
	VideoURL string        `json:"video_url,omitempty"`
	Notice   string        `json:"notice,omitempty"`
}

func newServer(opts serverOptions) *server {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	baseCtx := opts.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	s := &server{
		assets:  opts.Assets,
		notices: cache.New(30*time.Minute, 10*time.Minute),
		baseCtx: baseCtx,
		static:  opts.Static,
		logger:  logger,
	}

	s.sessions = session.NewStore(session.Options{
		Logger: &logger,
		NewController: func(key string) *workflow.Controller {
			return workflow.New(workflow.Options{
				Generator:  opts.Generator,
				Assets:     opts.Assets,
				Credential: opts.Credential,
				Resolution: opts.Resolution,
				Listener: workflow.ListenerFuncs{
					Notice: func(n workflow.Notice) {
						s.notices.Set(key, n.Message, cache.DefaultExpiration)
					},
				},
				Logger: &logger,
			})
		},
	})

	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.CleanPath,
		s.withLogging,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", s.handleTemplates)

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)

			r.Post("/generate", s.handleGenerate)
			r.Get("/status", s.handleStatus)
			r.Post("/reset", s.handleReset)
			r.Get("/video", s.handleVideo)
		})
	})

	r.Get("/media/{id}", s.handleMedia)

	if s.static != nil {
		r.Handle("/*", http.FileServer(http.FS(s.static)))
	}

	return r
}

func (s *server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, architect.Templates())
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}

	cfg, err := configFromForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	if !cfg.Ready() {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "topic and industry are required"})
		return
	}

	key := sessionFrom(r.Context())
	ctrl := s.sessions.Controller(key, "")
	if ctrl.Status().Step != workflow.StepIdle {
		writeJSON(w, http.StatusConflict, apiError{Error: "a generation is already in progress or finished; reset first"})
		return
	}
	s.notices.Delete(key)
	if !ctrl.Submit(s.baseCtx, cfg) {
		writeJSON(w, http.StatusConflict, apiError{Error: "a generation is already in progress or finished; reset first"})
		return
	}
	s.sessions.Update(key, "", func(sess *session.Session) { sess.Draft = cfg })

	writeJSON(w, http.StatusAccepted, s.status(key, ctrl.Status()))
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	key := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, s.status(key, s.sessions.Controller(key, "").Status()))
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	key := sessionFrom(r.Context())
	s.sessions.Controller(key, "").Reset()
	s.sessions.ClearDraft(key)
	s.notices.Delete(key)
	writeJSON(w, http.StatusOK, s.status(key, workflow.Idle()))
}

func (s *server) handleVideo(w http.ResponseWriter, r *http.Request) {
	key := sessionFrom(r.Context())
	handle, err := s.sessions.Controller(key, "").Playback()
	switch {
	case errors.Is(err, workflow.ErrNoPlayback):
		writeJSON(w, http.StatusNotFound, apiError{Error: "no video available"})
		return
	case err != nil:
		writeJSON(w, http.StatusBadGateway, apiError{Error: "video failed to load"})
		return
	}

	serveHandle(w, r, handle.ID, s.assets.Registry())
}

func (s *server) handleMedia(w http.ResponseWriter, r *http.Request) {
	serveHandle(w, r, chi.URLParam(r, "id"), s.assets.Registry())
}

func serveHandle(w http.ResponseWriter, r *http.Request, id string, registry *asset.Registry) {
	blob, ok := registry.Open(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Error: "video expired"})
		return
	}

	w.Header().Set("content-type", blob.MIMEType)
	w.Header().Set("cache-control", "private, no-store")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("content-disposition", `attachment; filename="`+asset.DownloadName+`"`)
	}
	http.ServeContent(w, r, asset.DownloadName, blob.CreatedAt, bytes.NewReader(blob.Data))
}

// status hides the credential-bearing service URL behind the local route.
func (s *server) status(key string, st workflow.Status) statusResponse {
	out := statusResponse{Step: st.Step, Message: st.Message}
	if st.Step == workflow.StepComplete {
		out.VideoURL = videoRoute
	}
	if v, ok := s.notices.Get(key); ok {
		out.Notice, _ = v.(string)
	}
	return out
}

func configFromForm(r *http.Request) (architect.VideoConfig, error) {
	cfg := architect.DefaultConfig()
	cfg.Topic = strings.TrimSpace(r.FormValue("topic"))
	cfg.Industry = strings.TrimSpace(r.FormValue("industry"))
	cfg.HookText = strings.TrimSpace(r.FormValue("hook_text"))

	if v := strings.TrimSpace(r.FormValue("aspect_ratio")); v != "" {
		ar, ok := architect.ParseAspectRatio(v)
		if !ok {
			return cfg, errors.New("aspect_ratio must be 16:9 or 9:16")
		}
		cfg.AspectRatio = ar
	}

	if id := strings.TrimSpace(r.FormValue("template")); id != "" {
		t, ok := architect.TemplateByID(id)
		if !ok {
			return cfg, errors.New("unknown template " + id)
		}
		cfg.Style = t.PromptModifier
	}
	if style := strings.TrimSpace(r.FormValue("style")); style != "" {
		cfg.Style = style
	}

	if v := r.FormValue("include_presenter"); v != "" {
		cfg.IncludePresenter = parseBool(v)
	}
	if v := r.FormValue("use_motion_tracking"); v != "" {
		cfg.UseMotionTracking = parseBool(v)
	}

	file, header, err := r.FormFile("reference_image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return cfg, nil
	case err != nil:
		return cfg, errors.New("invalid reference_image")
	}
	defer file.Close()

	imgBytes, err := io.ReadAll(file)
	if err != nil {
		return cfg, errors.New("failed to read reference_image")
	}

	mimeType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(imgBytes)
	}
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return cfg, errors.New("reference_image must be an image")
	}

	cfg.ReferenceImage = gemini.DataURL(mimeType, imgBytes)
	return cfg, nil
}

type sessionKey struct{}

// withSession makes sure every API caller carries a session cookie.
func (s *server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(sessionCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func (s *server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("http")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseBool(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}
