package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// wsPushInterval is how often job snapshots are pushed to subscribers.
const wsPushInterval = 250 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same trust model as the rest of the API
	},
}

// watchAnalysis streams job snapshots over a websocket until the job
// reaches a terminal state, then sends the final snapshot and closes.
func (h *handler) watchAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.jobs.Get(id); !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "job", id, "error", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(wsPushInterval)
	defer ticker.Stop()

	for {
		job, ok := h.jobs.Get(id)
		if !ok {
			return
		}

		if err := conn.WriteJSON(job); err != nil {
			h.logger.Debug("websocket write", "job", id, "error", err)
			return
		}
		if job.Status.Terminal() {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(job.Status))
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
