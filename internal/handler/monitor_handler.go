package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bfcb/quizmerit-backend/internal/service"
)

const (
	monitorRefreshInterval = 5 * time.Second
	monitorWriteTimeout    = 10 * time.Second
	monitorPongTimeout     = 60 * time.Second
	monitorPingInterval    = 30 * time.Second
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live attempt snapshots to the admin over WebSocket.
type MonitorHandler struct {
	monitorService *service.MonitorService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(monitorService *service.MonitorService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// MonitorStream godoc
// WS /ws/v1/admin/monitor
// Upgrades to WebSocket and pushes a snapshot of every running attempt at a
// fixed interval. The JWT arrives as ?token= because the browser WebSocket
// API cannot set headers; the admin middleware has already validated it.
func (h *MonitorHandler) MonitorStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("Admin attached to live monitor")

	// Reader goroutine: we never expect payloads, but reading keeps pong
	// handling alive and detects the close.
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(monitorPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(monitorPongTimeout))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	refreshTicker := time.NewTicker(monitorRefreshInterval)
	defer refreshTicker.Stop()

	pingTicker := time.NewTicker(monitorPingInterval)
	defer pingTicker.Stop()

	if !h.pushSnapshot(c, conn) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			h.log.Info().Msg("Admin detached from live monitor")
			return
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-refreshTicker.C:
			if !h.pushSnapshot(c, conn) {
				return
			}
		}
	}
}

func (h *MonitorHandler) pushSnapshot(c *gin.Context, conn *websocket.Conn) bool {
	snapshot, err := h.monitorService.Snapshot(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build monitor snapshot")
		return true // transient; keep the connection
	}

	conn.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
	if err := conn.WriteJSON(gin.H{
		"type":     "snapshot",
		"sessions": snapshot,
	}); err != nil {
		h.log.Debug().Err(err).Msg("Monitor write failed, closing")
		return false
	}
	return true
}
