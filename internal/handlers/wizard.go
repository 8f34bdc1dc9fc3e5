package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/session"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/telegram"
)

const wizardCallbackPrefix = "va"

func (h *Handler) openWizard(chatID int64, username string) error {
	sess := h.sessions.Update(sessionKey(chatID), username, func(s *session.Session) {
		s.Wizard.Menu = "main"
		s.Wizard.Awaiting = ""
		s.Wizard.MessageID = 0
	})
	return h.renderWizard(chatID, sess, false)
}

func (h *Handler) handleCallback(ctx context.Context, q *telegram.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}

	ownerID, action, args, ok := parseCallback(q.Data)
	if !ok {
		return nil
	}
	if ownerID != q.Message.Chat.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu belongs to another chat.", true)
		return nil
	}

	chatID := q.Message.Chat.ID
	key := sessionKey(chatID)
	username := q.From.UserName

	sess := h.sessions.Update(key, username, func(s *session.Session) {
		s.Wizard.MessageID = q.Message.MessageID
		applyWizardAction(s, action, args)
	})

	switch action {
	case "ask":
		if len(args) > 0 {
			_ = h.tg.AnswerCallback(q.ID, "Send the "+args[0]+" as a message.", false)
			_ = h.tg.SendText(chatID, fmt.Sprintf("✏️ Send the %s (cancel: /cancel).", args[0]))
		}
	case "generate":
		_ = h.tg.AnswerCallback(q.ID, "Generating…", false)
		if err := h.startGeneration(chatID, username, sess.Draft); err != nil {
			return err
		}
	case "reset":
		h.sessions.ClearDraft(key)
		sess = h.sessions.Snapshot(key, username)
		_ = h.tg.AnswerCallback(q.ID, "Draft cleared", false)
	case "close":
		_ = h.tg.AnswerCallback(q.ID, "Closed", false)
		return nil
	default:
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
	}

	return h.renderWizard(chatID, sess, true)
}

// applyWizardAction mutates the draft for one button press.
func applyWizardAction(s *session.Session, action string, args []string) {
	switch action {
	case "menu":
		if len(args) > 0 {
			s.Wizard.Menu = args[0]
		}
	case "tpl":
		if len(args) > 0 {
			if t, ok := architect.TemplateByID(args[0]); ok {
				s.Draft.Style = t.PromptModifier
			}
		}
		s.Wizard.Menu = "main"
	case "ar":
		if s.Draft.AspectRatio == architect.Vertical {
			s.Draft.AspectRatio = architect.Horizontal
		} else {
			s.Draft.AspectRatio = architect.Vertical
		}
	case "presenter":
		s.Draft.IncludePresenter = !s.Draft.IncludePresenter
	case "motion":
		s.Draft.UseMotionTracking = !s.Draft.UseMotionTracking
	case "ask":
		if len(args) > 0 {
			switch args[0] {
			case "topic", "industry", "hook":
				s.Wizard.Awaiting = args[0]
			}
		}
	case "nohook":
		s.Draft.HookText = ""
	case "noimage":
		s.Draft.ReferenceImage = ""
	case "close":
		s.Wizard.Awaiting = ""
		s.Wizard.Menu = "main"
	}
}

func (h *Handler) renderWizard(chatID int64, sess session.Session, edit bool) error {
	text := wizardText(sess)
	kb := wizardKeyboard(chatID, sess)

	if edit && sess.Wizard.MessageID != 0 {
		if err := h.tg.EditTextWithKeyboard(chatID, sess.Wizard.MessageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.sessions.Update(sessionKey(chatID), "", func(s *session.Session) { s.Wizard.MessageID = msgID })
	return nil
}

func wizardText(sess session.Session) string {
	d := sess.Draft

	var b strings.Builder
	b.WriteString("🎬 AI Video Architect\n\n")
	b.WriteString("Topic: " + orNone(d.Topic) + "\n")
	b.WriteString("Industry: " + orNone(d.Industry) + "\n")
	b.WriteString("Style: " + styleName(d.Style) + "\n")
	b.WriteString(fmt.Sprintf("Aspect ratio: %s\n", d.AspectRatio))
	b.WriteString("Presenter: " + onOff(d.IncludePresenter) + "\n")
	b.WriteString("Motion tracking: " + onOff(d.UseMotionTracking) + "\n")
	if strings.TrimSpace(d.HookText) != "" {
		b.WriteString(fmt.Sprintf("Hook: %q\n", truncateLine(d.HookText, 60)))
	}
	if d.ReferenceImage == "" {
		b.WriteString("Reference image: (none)\n")
	} else {
		b.WriteString("Reference image: attached ✅\n")
	}

	switch {
	case sess.Wizard.Awaiting != "":
		b.WriteString(fmt.Sprintf("\n✏️ Send the %s as a message (cancel: /cancel).\n", sess.Wizard.Awaiting))
	case !d.Ready():
		b.WriteString("\nSet a topic and an industry, then press Generate.\n")
	default:
		b.WriteString("\nPress Generate when ready. Send a photo to attach a reference image.\n")
	}

	return strings.TrimSpace(b.String())
}

func wizardKeyboard(ownerID int64, sess session.Session) tgbotapi.InlineKeyboardMarkup {
	if sess.Wizard.Menu == "templates" {
		return templatesKeyboard(ownerID, sess)
	}

	d := sess.Draft
	ar := "16:9"
	if d.AspectRatio == architect.Vertical {
		ar = "9:16"
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("Topic", cb(ownerID, "ask", "topic")),
			tgbotapi.NewInlineKeyboardButtonData("Industry", cb(ownerID, "ask", "industry")),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("Style", cb(ownerID, "menu", "templates")),
			tgbotapi.NewInlineKeyboardButtonData("AR: "+ar, cb(ownerID, "ar")),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("Presenter: "+onOff(d.IncludePresenter), cb(ownerID, "presenter")),
			tgbotapi.NewInlineKeyboardButtonData("Motion: "+onOff(d.UseMotionTracking), cb(ownerID, "motion")),
		},
	}

	hookRow := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Hook text", cb(ownerID, "ask", "hook")),
	}
	if d.HookText != "" {
		hookRow = append(hookRow, tgbotapi.NewInlineKeyboardButtonData("No hook", cb(ownerID, "nohook")))
	}
	if d.ReferenceImage != "" {
		hookRow = append(hookRow, tgbotapi.NewInlineKeyboardButtonData("Drop image", cb(ownerID, "noimage")))
	}
	rows = append(rows, hookRow)

	rows = append(rows,
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🎬 Generate", cb(ownerID, "generate")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Reset", cb(ownerID, "reset")),
			tgbotapi.NewInlineKeyboardButtonData("Close", cb(ownerID, "close")),
		},
	)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func templatesKeyboard(ownerID int64, sess session.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var row []tgbotapi.InlineKeyboardButton
	for _, t := range architect.Templates() {
		label := t.Name
		if t.PromptModifier == sess.Draft.Style {
			label = "✅ " + label
		}

		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "tpl", t.ID)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", "main")),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", wizardCallbackPrefix, ownerID, strings.Join(parts, ":"))
}

func parseCallback(data string) (int64, string, []string, bool) {
	parts := strings.Split(strings.TrimSpace(data), ":")
	if len(parts) < 3 || parts[0] != wizardCallbackPrefix {
		return 0, "", nil, false
	}
	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", nil, false
	}
	return ownerID, parts[2], parts[3:], true
}
