package novel

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// navEvent is what the reader UI sends per button press: a direction
// applied to the page currently on screen, or a plain jump when the
// direction is empty.
type navEvent struct {
	Direction string `json:"direction"`
	Page      int    `json:"page"`
}

type wsMessage struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// handleWebSocket serves an interactive reading connection: the first
// page is pushed on connect, then every navigation event is answered
// with the resulting page view or a typed error.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	novelID := chi.URLParam(r, "novelID")

	view, err := h.engine.RequestPage(r.Context(), novelID, 0)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for novel %s: %v", novelID, err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] reader connected to novel %s", novelID)
	h.sendWS(conn, wsMessage{Type: "page", Data: view, Timestamp: time.Now().UnixMilli()})

	for {
		var event navEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] reader of novel %s dropped: %v", novelID, err)
			}
			return
		}

		page := event.Page
		switch event.Direction {
		case "prev":
			page--
		case "next":
			page++
		case "":
		default:
			h.sendWS(conn, wsMessage{
				Type:      "error",
				Data:      map[string]string{"error": "direction must be prev, next or empty"},
				Timestamp: time.Now().UnixMilli(),
			})
			continue
		}

		h.sendPage(r.Context(), conn, novelID, page)
	}
}

func (h *Handler) sendPage(ctx context.Context, conn *websocket.Conn, novelID string, page int) {
	view, err := h.engine.RequestPage(ctx, novelID, page)
	if err != nil {
		h.sendWS(conn, wsMessage{
			Type:      "error",
			Data:      map[string]string{"error": streamErrorMessage(err)},
			Timestamp: time.Now().UnixMilli(),
		})
		return
	}

	h.sendWS(conn, wsMessage{Type: "page", Data: view, Timestamp: time.Now().UnixMilli()})
}

func (h *Handler) sendWS(conn *websocket.Conn, msg wsMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
