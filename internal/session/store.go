package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/workflow"
)

// Wizard is the bot's inline menu state for a draft.
type Wizard struct {
	MessageID int
	Menu      string // "main" | "templates"
	Awaiting  string // "" | "topic" | "industry" | "hook"
}

type Session struct {
	Key          string
	Username     string
	Draft        architect.VideoConfig
	Wizard       Wizard
	Controller   *workflow.Controller
	LastActivity time.Time
}

type Options struct {
	// NewController builds the workflow owned by a new session.
	NewController func(key string) *workflow.Controller
	Logger        *zerolog.Logger
}

type Store struct {
	mu            sync.Mutex
	sessions      map[string]*Session
	newController func(key string) *workflow.Controller
	logger        zerolog.Logger
	now           func() time.Time
}

func NewStore(opts Options) *Store {
	newController := opts.NewController
	if newController == nil {
		newController = func(string) *workflow.Controller { return workflow.New(workflow.Options{}) }
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Store{
		sessions:      make(map[string]*Session),
		newController: newController,
		logger:        logger,
		now:           time.Now,
	}
}

// Controller returns the session's workflow, creating the session if needed.
func (s *Store) Controller(key, username string) *workflow.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(key, username)
	sess.LastActivity = s.now()
	return sess.Controller
}

// Snapshot returns a copy of the session.
func (s *Store) Snapshot(key, username string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(key, username)
	sess.LastActivity = s.now()
	return *sess
}

// Update applies fn to the session and returns the result. fn must not
// replace the controller.
func (s *Store) Update(key, username string, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(key, username)
	ctrl := sess.Controller
	if fn != nil {
		fn(sess)
	}
	sess.Key = key
	sess.Controller = ctrl
	sess.LastActivity = s.now()
	return *sess
}

// ClearDraft restores the default draft and wizard state.
func (s *Store) ClearDraft(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		sess.Draft = architect.DefaultConfig()
		sess.Wizard = Wizard{MessageID: sess.Wizard.MessageID, Menu: "main"}
		sess.LastActivity = s.now()
	}
}

// Prune drops sessions idle for longer than maxIdle, releasing their
// videos. Sessions with a generation in flight are kept.
func (s *Store) Prune(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	s.mu.Lock()
	cutoff := s.now().Add(-maxIdle)
	var stale []*Session
	for key, sess := range s.sessions {
		if sess.LastActivity.After(cutoff) {
			continue
		}
		if sess.Controller.Status().Step == workflow.StepGenerating {
			continue
		}
		stale = append(stale, sess)
		delete(s.sessions, key)
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Controller.Close()
	}
	if len(stale) > 0 {
		s.logger.Debug().Int("pruned", len(stale)).Msg("idle sessions pruned")
	}
	return len(stale)
}

// Close abandons every session's workflow.
func (s *Store) Close() {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for key, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, key)
	}
	s.mu.Unlock()

	for _, sess := range all {
		sess.Controller.Close()
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) getOrCreateLocked(key, username string) *Session {
	if sess, ok := s.sessions[key]; ok {
		if sess.Username == "" && username != "" {
			sess.Username = username
		}
		return sess
	}

	sess := &Session{
		Key:          key,
		Username:     username,
		Draft:        architect.DefaultConfig(),
		Wizard:       Wizard{Menu: "main"},
		Controller:   s.newController(key),
		LastActivity: s.now(),
	}
	s.sessions[key] = sess
	return sess
}
