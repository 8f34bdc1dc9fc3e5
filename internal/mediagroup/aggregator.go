// Package mediagroup collects the photos of a Telegram album, which arrive
// as separate updates, and hands them over as one group.
package mediagroup

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Item struct {
	ChatID       int64
	UserID       int64
	Username     string
	MediaGroupID string
	Caption      string
	FileID       string
}

type Group struct {
	ChatID   int64
	UserID   int64
	Username string
	Caption  string
	FileIDs  []string
}

// Reference is the photo used as the video's reference image: the first
// one of the album.
func (g Group) Reference() string {
	if len(g.FileIDs) == 0 {
		return ""
	}
	return g.FileIDs[0]
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Group)
	Logger   *zerolog.Logger
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Group)
	logger   zerolog.Logger
	groups   map[string]*pendingGroup
	stopped  bool
}

type pendingGroup struct {
	group Group
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		logger:   logger,
		groups:   make(map[string]*pendingGroup),
	}
}

func (a *Aggregator) Add(item Item) {
	if item.MediaGroupID == "" || item.FileID == "" {
		return
	}

	key := makeKey(item.ChatID, item.MediaGroupID)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}

	pg, ok := a.groups[key]
	if !ok {
		pg = &pendingGroup{
			group: Group{
				ChatID:   item.ChatID,
				UserID:   item.UserID,
				Username: item.Username,
				Caption:  item.Caption,
				FileIDs:  []string{item.FileID},
			},
		}
		a.groups[key] = pg
	} else {
		pg.group.FileIDs = append(pg.group.FileIDs, item.FileID)
		if item.Caption != "" {
			pg.group.Caption = item.Caption
		}
	}

	if pg.timer != nil {
		pg.timer.Stop()
	}
	pg.timer = time.AfterFunc(a.debounce, func() {
		a.flush(key)
	})
}

// Pending reports how many albums are still collecting photos.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}

// Stop drops pending albums and ignores further items.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	for key, pg := range a.groups {
		if pg.timer != nil {
			pg.timer.Stop()
		}
		delete(a.groups, key)
	}
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	pg, ok := a.groups[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.groups, key)
	group := pg.group
	onFlush := a.onFlush
	a.mu.Unlock()

	a.logger.Debug().
		Int64("chat_id", group.ChatID).
		Int("photos", len(group.FileIDs)).
		Msg("media group flushed")

	if onFlush != nil {
		onFlush(group)
	}
}

func makeKey(chatID int64, mediaGroupID string) string {
	return fmt.Sprintf("%d:%s", chatID, mediaGroupID)
}
