package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/asset"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/failure"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/gemini"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/workflow"
)

type fakeGenerator struct {
	mu   sync.Mutex
	reqs []gemini.Request
	err  error
}

func (g *fakeGenerator) Generate(ctx context.Context, req gemini.Request, sink gemini.ProgressSink) (gemini.Result, error) {
	g.mu.Lock()
	g.reqs = append(g.reqs, req)
	g.mu.Unlock()

	sink.Progress("Rendering lighting and shadows...")
	if g.err != nil {
		return gemini.Result{}, g.err
	}
	return gemini.Result{Locator: "https://svc/video?alt=media", Polls: 1}, nil
}

func (g *fakeGenerator) requests() []gemini.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gemini.Request(nil), g.reqs...)
}

type videoTransport struct{}

func (videoTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"video/mp4"}},
		Body:       io.NopCloser(strings.NewReader("mp4-bytes")),
		Request:    req,
	}, nil
}

func newTestServer(t *testing.T, gen *fakeGenerator) (*httptest.Server, *http.Client) {
	t.Helper()

	s := newServer(serverOptions{
		Generator:  gen,
		Assets:     asset.NewResolver(asset.Options{HTTPClient: &http.Client{Transport: videoTransport{}}}),
		Credential: "test-key",
		Resolution: architect.HD,
	})
	ts := httptest.NewServer(s.routes())
	t.Cleanup(func() {
		ts.Close()
		s.sessions.Close()
	})

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return ts, &http.Client{Jar: jar}
}

func generateForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="reference_image"; filename="ref.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		_, _ = part.Write(image)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func postGenerate(t *testing.T, client *http.Client, base string, fields map[string]string, image []byte) (*http.Response, statusResponse) {
	t.Helper()

	body, ct := generateForm(t, fields, image)
	resp, err := client.Post(base+"/api/generate", ct, body)
	if err != nil {
		t.Fatalf("POST /api/generate: %v", err)
	}
	defer resp.Body.Close()

	var st statusResponse
	_ = json.NewDecoder(resp.Body).Decode(&st)
	return resp, st
}

func getStatus(t *testing.T, client *http.Client, base string) statusResponse {
	t.Helper()

	resp, err := client.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()

	var st statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return st
}

func waitForStep(t *testing.T, client *http.Client, base string, step workflow.Step) statusResponse {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		st := getStatus(t, client, base)
		if st.Step == step {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("step = %q, want %q", st.Step, step)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTemplates(t *testing.T) {
	ts, client := newTestServer(t, &fakeGenerator{})

	resp, err := client.Get(ts.URL + "/api/templates")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var list []architect.Template
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != len(architect.Templates()) || list[0].ID == "" {
		t.Errorf("unexpected templates %+v", list)
	}
}

func TestGenerateRequiresTopicAndIndustry(t *testing.T) {
	gen := &fakeGenerator{}
	ts, client := newTestServer(t, gen)

	resp, _ := postGenerate(t, client, ts.URL, map[string]string{"topic": "Loft"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	resp, _ = postGenerate(t, client, ts.URL, map[string]string{
		"topic":        "Loft",
		"industry":     "Real Estate",
		"aspect_ratio": "4:3",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad aspect ratio status = %d, want 400", resp.StatusCode)
	}

	if n := len(gen.requests()); n != 0 {
		t.Errorf("generator called %d times", n)
	}
	if st := getStatus(t, client, ts.URL); st.Step != workflow.StepIdle {
		t.Errorf("step = %q, want idle", st.Step)
	}
}

func TestGenerateAndPlayback(t *testing.T) {
	gen := &fakeGenerator{}
	ts, client := newTestServer(t, gen)

	resp, st := postGenerate(t, client, ts.URL, map[string]string{
		"topic":             "Downtown Loft",
		"industry":          "Real Estate",
		"aspect_ratio":      "9:16",
		"template":          "luxury",
		"include_presenter": "on",
	}, []byte("\x89PNG\r\n\x1a\nfake"))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if st.Step != workflow.StepGenerating && st.Step != workflow.StepComplete {
		t.Errorf("step = %q, want generating or complete", st.Step)
	}

	done := waitForStep(t, client, ts.URL, workflow.StepComplete)
	if done.VideoURL != videoRoute {
		t.Errorf("video_url = %q, want %q", done.VideoURL, videoRoute)
	}

	reqs := gen.requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 generation, got %d", len(reqs))
	}
	req := reqs[0]
	if req.AspectRatio != architect.Vertical || req.Resolution != architect.HD || req.Credential != "test-key" {
		t.Errorf("unexpected request %+v", req)
	}
	if !strings.Contains(req.Prompt, "Downtown Loft") || !strings.Contains(req.Prompt, "presenter") {
		t.Errorf("prompt missing fields: %q", req.Prompt)
	}
	if !strings.HasPrefix(req.ReferenceImage, "data:image/png;base64,") {
		t.Errorf("reference image = %q", req.ReferenceImage)
	}

	video, err := client.Get(ts.URL + "/api/video?download=1")
	if err != nil {
		t.Fatalf("GET video: %v", err)
	}
	defer video.Body.Close()
	data, _ := io.ReadAll(video.Body)
	if video.StatusCode != http.StatusOK || string(data) != "mp4-bytes" {
		t.Errorf("video = %d %q", video.StatusCode, data)
	}
	if cd := video.Header.Get("Content-Disposition"); !strings.Contains(cd, asset.DownloadName) {
		t.Errorf("content-disposition = %q", cd)
	}

	again, _ := postGenerate(t, client, ts.URL, map[string]string{"topic": "Loft", "industry": "Real Estate"}, nil)
	if again.StatusCode != http.StatusConflict {
		t.Errorf("second generate status = %d, want 409", again.StatusCode)
	}
}

func TestStatusNeverExposesCredential(t *testing.T) {
	ts, client := newTestServer(t, &fakeGenerator{})

	postGenerate(t, client, ts.URL, map[string]string{"topic": "Loft", "industry": "Real Estate"}, nil)
	waitForStep(t, client, ts.URL, workflow.StepComplete)

	resp, err := client.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(raw), "test-key") {
		t.Errorf("status leaked the credential: %s", raw)
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	ts, client := newTestServer(t, &fakeGenerator{})

	postGenerate(t, client, ts.URL, map[string]string{"topic": "Loft", "industry": "Real Estate"}, nil)
	waitForStep(t, client, ts.URL, workflow.StepComplete)

	resp, err := client.Post(ts.URL+"/api/reset", "", nil)
	if err != nil {
		t.Fatalf("POST reset: %v", err)
	}
	resp.Body.Close()

	if st := getStatus(t, client, ts.URL); st.Step != workflow.StepIdle || st.VideoURL != "" {
		t.Errorf("status after reset = %+v", st)
	}

	video, err := client.Get(ts.URL + "/api/video")
	if err != nil {
		t.Fatalf("GET video: %v", err)
	}
	video.Body.Close()
	if video.StatusCode != http.StatusNotFound {
		t.Errorf("video after reset = %d, want 404", video.StatusCode)
	}
}

func TestFailureSurfacesReauthNotice(t *testing.T) {
	gen := &fakeGenerator{err: failure.Generation("Requested entity was not found.")}
	ts, client := newTestServer(t, gen)

	postGenerate(t, client, ts.URL, map[string]string{"topic": "Loft", "industry": "Real Estate"}, nil)
	st := waitForStep(t, client, ts.URL, workflow.StepError)
	if st.Message != "Requested entity was not found." {
		t.Errorf("message = %q", st.Message)
	}

	deadline := time.Now().Add(2 * time.Second)
	for st.Notice == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
		st = getStatus(t, client, ts.URL)
	}
	if !strings.Contains(st.Notice, "re-select your key") {
		t.Errorf("notice = %q", st.Notice)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	ts, alice := newTestServer(t, &fakeGenerator{})

	postGenerate(t, alice, ts.URL, map[string]string{"topic": "Loft", "industry": "Real Estate"}, nil)
	waitForStep(t, alice, ts.URL, workflow.StepComplete)

	jar, _ := cookiejar.New(nil)
	bob := &http.Client{Jar: jar}
	if st := getStatus(t, bob, ts.URL); st.Step != workflow.StepIdle {
		t.Errorf("new session step = %q, want idle", st.Step)
	}
}

func TestInvalidSessionCookieIsReplaced(t *testing.T) {
	ts, _ := newTestServer(t, &fakeGenerator{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/status", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "not-a-uuid"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	var issued string
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			issued = c.Value
		}
	}
	if issued == "" || issued == "not-a-uuid" {
		t.Errorf("expected a fresh session cookie, got %q", issued)
	}
}

func TestMediaUnknownID(t *testing.T) {
	ts, client := newTestServer(t, &fakeGenerator{})

	resp, err := client.Get(ts.URL + "/media/does-not-exist")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
