package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	registrymod "github.com/yungbote/vowbridge-backend/internal/modules/registry"
	"github.com/yungbote/vowbridge-backend/internal/observability"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
	"github.com/yungbote/vowbridge-backend/internal/realtime"
)

type RealtimeHandler struct {
	log      *logger.Logger
	hub      *realtime.Hub
	registry registrymod.Usecases
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

// NewRealtimeHandler serves the registry progress feed. allowOrigin decides which browser
// origins may open a websocket; nil accepts any.
func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub, registry registrymod.Usecases, metrics *observability.Metrics, allowOrigin func(origin string) bool) *RealtimeHandler {
	h := &RealtimeHandler{
		log:      log.With("handler", "RealtimeHandler"),
		hub:      hub,
		registry: registry,
		metrics:  metrics,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowOrigin == nil {
				return true
			}
			return allowOrigin(origin)
		},
	}
	return h
}

// subscribe registers a client on the event's registry channel and queues the snapshot.
func (h *RealtimeHandler) subscribe(c *gin.Context) (*realtime.Client, bool) {
	eventID, ok := uuidParam(c, "id")
	if !ok {
		return nil, false
	}
	client := h.hub.NewClient(callerID(c))
	err := h.hub.Subscribe(client, realtime.RegistryChannel(eventID), func() (realtime.Message, error) {
		return h.registry.Snapshot(c.Request.Context(), eventID)
	})
	if err != nil {
		h.hub.CloseClient(client)
		respondErr(c, err, "load_registry_failed")
		return nil, false
	}
	return client, true
}

// GET /api/events/:id/registry/stream
func (h *RealtimeHandler) Stream(c *gin.Context) {
	client, ok := h.subscribe(c)
	if !ok {
		return
	}
	h.metrics.LiveClientInc("sse")
	defer h.metrics.LiveClientDec("sse")
	defer h.hub.CloseClient(client)

	h.log.Debug("registry stream open", "client_id", client.ID)
	h.hub.ServeSSE(c.Writer, c.Request, client)
}

// GET /api/events/:id/registry/live
func (h *RealtimeHandler) Live(c *gin.Context) {
	client, ok := h.subscribe(c)
	if !ok {
		return
	}
	defer h.hub.CloseClient(client)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	h.metrics.LiveClientInc("websocket")
	defer h.metrics.LiveClientDec("websocket")
	h.hub.ServeWS(conn, client)
}
