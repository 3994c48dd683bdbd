package feed

import (
	"fmt"
	"net/http"
	"time"

	"github.com/user/emojicringe-go/apperror"
	"github.com/user/emojicringe-go/respond"
)

const heartbeatInterval = 15 * time.Second

// HandleStream godoc
// @Summary Live combo feed
// @Description Server-Sent Events stream of combo.created, combo.updated and combo.deleted events.
// @Tags EmojiCombos
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /emoji-combos/stream [get]
func (b *Broadcaster) HandleStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			respond.Error(w, r, apperror.NewInternalError("streaming unsupported", nil))
			return
		}

		id, events := b.Subscribe()
		defer b.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case event, open := <-events:
				if !open {
					return
				}
				if _, err := event.WriteTo(w); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
