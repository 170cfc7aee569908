package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/physiotrack/evalform-service/internal/services"
	"github.com/physiotrack/evalform-service/internal/utils"
)

const (
	// Time allowed to write a snapshot to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamHandler exposes the catalog snapshot stream over a websocket. Each
// connection is one subscription; a dropped connection is resumed by the
// client reconnecting, which replays the current snapshot first.
type StreamHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewStreamHandler(catalogService services.CatalogService, logger utils.Logger) *StreamHandler {
	return &StreamHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// WatchCatalog upgrades to a websocket and pushes catalog snapshots
// @Summary Stream catalog updates
// @Description Emits the full form catalog immediately and again after every catalog-affecting change
// @Tags forms
// @Success 101
// @Failure 401 {object} ErrorResponse
// @Router /forms/watch [get]
func (h *StreamHandler) WatchCatalog(c *gin.Context) {
	userID := h.getUserID(c)
	if userID == "" {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.LogError(c, err, "WebSocket upgrade failed")
		return
	}

	h.LogRequest(c, "Catalog stream opened")
	go h.writePump(conn, userID)
}

func (h *StreamHandler) writePump(conn *websocket.Conn, userID string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		conn.Close()
	}()

	// Drain the read side so close frames and pongs are processed.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snapshots := h.catalogService.Watch(ctx, userID)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snapshot, open := <-snapshots:
			if !open {
				return
			}
			if snapshot.Err != nil {
				h.logger.Warn("Catalog snapshot failed", "user_id", userID, "error", snapshot.Err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
