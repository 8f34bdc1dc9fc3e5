package handlers

import (
	"golang.org/x/time/rate"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/asset"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/workflow"
)

// notifier relays one chat's workflow transitions to Telegram. Narration
// is rate limited; terminal states are always sent.
type notifier struct {
	h       *Handler
	chatID  int64
	limiter *rate.Limiter
}

func newNotifier(h *Handler, chatID int64) *notifier {
	return &notifier{
		h:       h,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(h.progressEvery), 1),
	}
}

func (n *notifier) OnStatus(st workflow.Status) {
	switch st.Step {
	case workflow.StepGenerating:
		if n.limiter.Allow() {
			n.send("⏳ " + st.Message)
		}
	case workflow.StepComplete:
		go n.deliver()
	case workflow.StepError:
		n.send(statusText(st))
	}
}

func (n *notifier) OnNotice(notice workflow.Notice) {
	n.send("🔑 " + notice.Message)
}

func (n *notifier) send(text string) {
	if err := n.h.tg.SendText(n.chatID, text); err != nil {
		n.h.logger.Warn().Err(err).Int64("chat_id", n.chatID).Msg("status message failed")
	}
}

func (n *notifier) deliver() {
	ctrl := n.h.sessions.Controller(sessionKey(n.chatID), "")

	handle, err := ctrl.Playback()
	if err != nil {
		n.h.logger.Error().Err(err).Int64("chat_id", n.chatID).Msg("video playback unavailable")
		n.send("⚠️ The video was generated but could not be loaded. Send /reset and try again.")
		return
	}

	data, ok := handle.Bytes()
	if !ok {
		n.send("⚠️ The video is no longer available. Send /reset and try again.")
		return
	}

	n.h.tg.SendUploadingVideo(n.chatID)
	if err := n.h.tg.SendVideo(n.chatID, data, asset.DownloadName, "✅ Your video is ready."); err != nil {
		n.h.logger.Error().Err(err).Int64("chat_id", n.chatID).Msg("video upload failed")
		n.send("❌ Could not upload the video to Telegram.")
	}
}
