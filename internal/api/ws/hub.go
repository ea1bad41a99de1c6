package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

// BoardSubscriber streams encoded board events.
type BoardSubscriber interface {
	SubscribeBoard(ctx context.Context) (<-chan []byte, func(), error)
}

// Hub manages WebSocket connections backed by a board event feed.
type Hub struct {
	feed           BoardSubscriber
	originPatterns []string
}

// NewHub creates a new WebSocket hub. originPatterns are passed to
// websocket.Accept; an empty list accepts same-origin requests only.
func NewHub(feed BoardSubscriber, originPatterns []string) *Hub {
	return &Hub{feed: feed, originPatterns: originPatterns}
}

// ServeBoard handles WebSocket connections for kanban board updates.
// Every task created, edited, moved, or deleted is forwarded to the client
// as one JSON text message.
func (h *Hub) ServeBoard(w http.ResponseWriter, r *http.Request) {
	// The server's read/write timeouts would otherwise cut long-lived feeds.
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(time.Time{}); err != nil {
		log.Debug().Err(err).Msg("websocket clear read deadline")
	}
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug().Err(err).Msg("websocket clear write deadline")
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients never send; CloseRead handles control frames and cancels ctx
	// when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.feed.SubscribeBoard(ctx)
	if err != nil {
		log.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
