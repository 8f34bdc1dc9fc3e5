package asset

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	// DownloadName is the file name offered when a video is saved.
	DownloadName = "generated-video.mp4"

	defaultMIME     = "video/mp4"
	defaultTTL      = 2 * time.Hour
	defaultURLRoute = "/media/"
)

type RegistryOptions struct {
	// TTL bounds how long an unreleased blob stays resident.
	TTL time.Duration
	// Route prefixes handle URLs, e.g. "/media/".
	Route string
}

// Registry keeps fetched videos in memory, addressable by handle id.
type Registry struct {
	blobs *cache.Cache
	ttl   time.Duration
	route string
}

type Blob struct {
	Data      []byte
	MIMEType  string
	CreatedAt time.Time
}

func NewRegistry(opts RegistryOptions) *Registry {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	route := strings.TrimSpace(opts.Route)
	if route == "" {
		route = defaultURLRoute
	}
	if !strings.HasSuffix(route, "/") {
		route += "/"
	}

	return &Registry{
		blobs: cache.New(ttl, ttl/2),
		ttl:   ttl,
		route: route,
	}
}

// Open returns the blob behind a live handle id.
func (r *Registry) Open(id string) (Blob, bool) {
	v, ok := r.blobs.Get(id)
	if !ok {
		return Blob{}, false
	}
	blob, ok := v.(Blob)
	return blob, ok
}

// Len reports the number of live blobs.
func (r *Registry) Len() int {
	return r.blobs.ItemCount()
}

func (r *Registry) put(data []byte, mime string) *Handle {
	if strings.TrimSpace(mime) == "" {
		mime = defaultMIME
	}
	id := uuid.NewString()
	r.blobs.Set(id, Blob{Data: data, MIMEType: mime, CreatedAt: time.Now()}, r.ttl)

	return &Handle{
		ID:       id,
		URL:      r.route + id,
		MIMEType: mime,
		Size:     len(data),
		registry: r,
	}
}

// Handle is a revocable reference to a buffered video.
type Handle struct {
	ID       string
	URL      string
	MIMEType string
	Size     int

	registry *Registry
	once     sync.Once
	mu       sync.Mutex
	released bool
}

// Bytes returns the buffered video, or false once the handle is released
// or has expired.
func (h *Handle) Bytes() ([]byte, bool) {
	if h.Released() {
		return nil, false
	}
	blob, ok := h.registry.Open(h.ID)
	if !ok {
		return nil, false
	}
	return blob.Data, true
}

func (h *Handle) Reader() (io.ReadSeeker, bool) {
	data, ok := h.Bytes()
	if !ok {
		return nil, false
	}
	return bytes.NewReader(data), true
}

// Release revokes the handle. It is safe to call more than once.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.mu.Lock()
		h.released = true
		h.mu.Unlock()
		h.registry.blobs.Delete(h.ID)
	})
}

func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}
