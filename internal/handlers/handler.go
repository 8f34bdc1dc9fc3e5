package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/gemini"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/mediagroup"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/session"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/telegram"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/workflow"
)

// Messenger is the part of the Telegram client the bot talks through.
type Messenger interface {
	Username() string
	SendTyping(chatID int64)
	SendUploadingVideo(chatID int64)
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb telegram.Keyboard) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb telegram.Keyboard) error
	AnswerCallback(callbackID, text string, alert bool) error
	SendVideo(chatID int64, data []byte, name, caption string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, string, error)
}

type Options struct {
	Telegram   Messenger
	Generator  workflow.Generator
	Assets     workflow.Assets
	Credential string
	Resolution architect.Resolution
	// ProgressEvery throttles narration messages per chat.
	ProgressEvery time.Duration
	// BaseContext bounds generation runs; update contexts are too short.
	BaseContext context.Context
	Logger      *zerolog.Logger
}

type Handler struct {
	tg            Messenger
	sessions      *session.Store
	aggregator    *mediagroup.Aggregator
	progressEvery time.Duration
	baseCtx       context.Context
	logger        zerolog.Logger
}

func New(opts Options) *Handler {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	every := opts.ProgressEvery
	if every <= 0 {
		every = 15 * time.Second
	}
	baseCtx := opts.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	h := &Handler{
		tg:            opts.Telegram,
		progressEvery: every,
		baseCtx:       baseCtx,
		logger:        logger,
	}

	h.sessions = session.NewStore(session.Options{
		Logger: &logger,
		NewController: func(key string) *workflow.Controller {
			chatID, _ := strconv.ParseInt(key, 10, 64)
			return workflow.New(workflow.Options{
				Generator:  opts.Generator,
				Assets:     opts.Assets,
				Credential: opts.Credential,
				Resolution: opts.Resolution,
				Listener:   newNotifier(h, chatID),
				Logger:     &logger,
			})
		},
	})

	return h
}

func (h *Handler) Sessions() *session.Store {
	return h.sessions
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	username := msg.From.UserName

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, username, msg.Command(), msg.CommandArguments())
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, chatID, username, msg)
	}

	if msg.Text != "" {
		return h.handleText(chatID, username, msg.Text)
	}

	return nil
}

func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	if err := h.applyPhoto(ctx, group.ChatID, group.Username, group.Caption, group.Reference()); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", group.ChatID).Msg("media group processing failed")
	}
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, username, command, args string) error {
	key := sessionKey(chatID)

	switch command {
	case "start":
		return h.tg.SendText(chatID, startText)
	case "help":
		return h.tg.SendText(chatID, helpText)
	case "templates":
		return h.tg.SendText(chatID, templatesText())
	case "video":
		if strings.TrimSpace(args) == "" {
			return h.openWizard(chatID, username)
		}
		sess := h.sessions.Update(key, username, func(s *session.Session) {
			s.Draft = architect.ParseArgs(args, s.Draft)
			s.Wizard.Awaiting = ""
		})
		return h.startGeneration(chatID, username, sess.Draft)
	case "status":
		return h.tg.SendText(chatID, statusText(h.sessions.Controller(key, username).Status()))
	case "reset":
		h.sessions.Controller(key, username).Reset()
		h.sessions.ClearDraft(key)
		return h.tg.SendText(chatID, "🔄 Workflow reset. Send /video to start a new one.")
	case "cancel":
		h.sessions.Update(key, username, func(s *session.Session) { s.Wizard.Awaiting = "" })
		return h.tg.SendText(chatID, "OK.")
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Use /help.")
	}
}

func (h *Handler) handleText(chatID int64, username, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	key := sessionKey(chatID)
	sess := h.sessions.Snapshot(key, username)
	if sess.Wizard.Awaiting == "" {
		return h.tg.SendText(chatID, "Send /video to configure a marketing video, or /help.")
	}

	sess = h.sessions.Update(key, username, func(s *session.Session) {
		switch s.Wizard.Awaiting {
		case "topic":
			s.Draft.Topic = text
		case "industry":
			s.Draft.Industry = text
		case "hook":
			s.Draft.HookText = strings.Trim(text, `"`)
		}
		s.Wizard.Awaiting = ""
	})
	return h.renderWizard(chatID, sess, false)
}

func (h *Handler) handlePhoto(ctx context.Context, chatID int64, username string, msg *telegram.Message) error {
	photo := msg.Photo[len(msg.Photo)-1]

	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       msg.From.ID,
			Username:     username,
			MediaGroupID: msg.MediaGroupID,
			Caption:      msg.Caption,
			FileID:       photo.FileID,
		})
		return nil
	}

	return h.applyPhoto(ctx, chatID, username, msg.Caption, photo.FileID)
}

// applyPhoto stores the photo as the draft's reference image. A /video
// caption starts generation right away.
func (h *Handler) applyPhoto(ctx context.Context, chatID int64, username, caption, fileID string) error {
	if fileID == "" {
		return nil
	}
	h.tg.SendTyping(chatID)

	data, mimeType, err := h.tg.DownloadFile(ctx, fileID)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("photo download failed")
		return h.tg.SendText(chatID, "❌ Could not download the photo.")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return h.tg.SendText(chatID, "❌ The reference must be an image.")
	}

	dataURL := gemini.DataURL(mimeType, data)
	key := sessionKey(chatID)

	command, args, isCommand := captionCommand(caption, h.tg.Username())
	sess := h.sessions.Update(key, username, func(s *session.Session) {
		s.Draft.ReferenceImage = dataURL
		if isCommand && command == "video" {
			s.Draft = architect.ParseArgs(args, s.Draft)
		}
	})

	if isCommand && command == "video" {
		return h.startGeneration(chatID, username, sess.Draft)
	}
	_ = h.tg.SendText(chatID, "🖼 Reference image saved.")
	return h.renderWizard(chatID, sess, false)
}

func (h *Handler) startGeneration(chatID int64, username string, cfg architect.VideoConfig) error {
	ctrl := h.sessions.Controller(sessionKey(chatID), username)

	status := ctrl.Status()
	if status.Step == workflow.StepGenerating {
		return h.tg.SendText(chatID, "⏳ A video is already rendering. Check /status or /reset.")
	}
	if !cfg.Ready() {
		return h.tg.SendText(chatID, missingFieldsText)
	}
	if status.Terminal() {
		ctrl.Reset()
	}

	if !ctrl.Submit(h.baseCtx, cfg) {
		return h.tg.SendText(chatID, "⏳ A video is already rendering. Check /status or /reset.")
	}

	h.logger.Info().
		Int64("chat_id", chatID).
		Str("industry", cfg.Industry).
		Str("aspect_ratio", string(cfg.AspectRatio)).
		Msg("video requested")
	return nil
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
