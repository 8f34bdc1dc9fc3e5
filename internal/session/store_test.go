package session

import (
	"testing"
	"time"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/workflow"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore() (*Store, *clock, map[string]int) {
	created := map[string]int{}
	s := NewStore(Options{
		NewController: func(key string) *workflow.Controller {
			created[key]++
			return workflow.New(workflow.Options{})
		},
	})
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	s.now = c.now
	return s, c, created
}

func TestSessionIsCreatedOnce(t *testing.T) {
	s, _, created := newTestStore()

	first := s.Controller("42", "alice")
	second := s.Controller("42", "")
	if first != second {
		t.Error("controller must be stable per session")
	}
	if created["42"] != 1 {
		t.Errorf("controller built %d times", created["42"])
	}

	snap := s.Snapshot("42", "")
	if snap.Username != "alice" {
		t.Errorf("username = %q", snap.Username)
	}
	if snap.Draft != architect.DefaultConfig() {
		t.Errorf("new session draft = %+v", snap.Draft)
	}
}

func TestUpdateKeepsController(t *testing.T) {
	s, _, _ := newTestStore()
	ctrl := s.Controller("k", "")

	got := s.Update("k", "", func(sess *Session) {
		sess.Draft.Topic = "Downtown Loft"
		sess.Controller = nil
	})

	if got.Draft.Topic != "Downtown Loft" {
		t.Errorf("draft topic = %q", got.Draft.Topic)
	}
	if got.Controller != ctrl || s.Controller("k", "") != ctrl {
		t.Error("update must not replace the controller")
	}

	s.ClearDraft("k")
	if s.Snapshot("k", "").Draft.Topic != "" {
		t.Error("ClearDraft did not reset the draft")
	}
}

func TestPruneDropsIdleSessions(t *testing.T) {
	s, c, created := newTestStore()

	s.Controller("old", "")
	c.t = c.t.Add(30 * time.Minute)
	s.Controller("fresh", "")
	c.t = c.t.Add(40 * time.Minute)

	if n := s.Prune(time.Hour); n != 1 {
		t.Fatalf("pruned %d sessions, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d", s.Len())
	}

	s.Controller("old", "")
	if created["old"] != 2 {
		t.Error("pruned session should be rebuilt on next use")
	}

	if n := s.Prune(0); n != 0 {
		t.Errorf("Prune(0) removed %d sessions", n)
	}

	s.Close()
	if s.Len() != 0 {
		t.Errorf("Len() after Close = %d", s.Len())
	}
}
