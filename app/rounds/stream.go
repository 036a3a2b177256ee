package rounds

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/metrics"
	"github.com/joefazee/roundbet/internal/pubsub"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub serves round streams. Each connection gets the current snapshot, every
// bus message for its market, and a fresh snapshot on a timer. Fetching the
// timed snapshot observes the market, so connected screens also drive the
// round forward.
type Hub struct {
	service  Service
	bus      pubsub.Bus
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	clients map[*websocket.Conn]context.CancelFunc
}

// NewHub creates a stream hub
func NewHub(service Service, bus pubsub.Bus, interval time.Duration, log logger.Logger) *Hub {
	if interval <= 0 {
		interval = time.Second
	}
	return &Hub{
		service:  service,
		bus:      bus,
		logger:   log,
		interval: interval,
		now:      time.Now,
		clients:  make(map[*websocket.Conn]context.CancelFunc),
	}
}

// ClientCount returns the number of open streams
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close ends every open stream
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, cancel := range h.clients {
		cancel()
	}
}

func (h *Hub) register(conn *websocket.Conn, cancel context.CancelFunc) {
	h.mu.Lock()
	h.clients[conn] = cancel
	h.mu.Unlock()
	metrics.StreamClients.Inc()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	metrics.StreamClients.Dec()
}

// Stream godoc
// @Summary Stream round state
// @Description Websocket stream of round_state and round_settled envelopes for one market
// @Tags rounds
// @Param id path string true "Market ID"
// @Success 101
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/round/stream [get]
func (h *Hub) Stream(c *gin.Context) {
	marketID := c.Param("id")

	first, err := h.service.Snapshot(c.Request.Context(), marketID, h.now())
	if err != nil {
		handleServiceError(c, err, "get round state")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("round stream upgrade failed", map[string]interface{}{
			"market_id": marketID,
			"error":     err.Error(),
		})
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.register(conn, cancel)
	defer h.unregister(conn)

	var updates <-chan []byte
	if h.bus != nil {
		updates, err = h.bus.Subscribe(ctx, pubsub.RoundChannel(marketID))
		if err != nil {
			h.logger.Warn("round stream subscribe failed", map[string]interface{}{
				"market_id": marketID,
				"error":     err.Error(),
			})
		}
	}

	go h.readPump(conn, cancel)
	h.writeLoop(ctx, conn, marketID, first, updates)
}

// readPump only services control frames; any read error ends the stream.
func (h *Hub) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("round stream closed", map[string]interface{}{"error": err.Error()})
			}
			return
		}
	}
}

func (h *Hub) writeLoop(ctx context.Context, conn *websocket.Conn, marketID string, first *Snapshot, updates <-chan []byte) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	refresh := time.NewTicker(h.interval)
	defer refresh.Stop()

	write := func(msgType int, data []byte) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(msgType, data) == nil
	}
	writeSnapshot := func(snap *Snapshot) bool {
		msg, err := pubsub.Encode(pubsub.TypeRoundState, snap)
		if err != nil {
			return false
		}
		return write(websocket.TextMessage, msg)
	}

	if !writeSnapshot(first) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case msg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if !write(websocket.TextMessage, msg) {
				return
			}

		case <-refresh.C:
			snap, err := h.service.Snapshot(ctx, marketID, h.now())
			if err != nil {
				h.logger.Warn("round stream snapshot failed", map[string]interface{}{
					"market_id": marketID,
					"error":     err.Error(),
				})
				continue
			}
			if !writeSnapshot(snap) {
				return
			}

		case <-ping.C:
			if !write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}
