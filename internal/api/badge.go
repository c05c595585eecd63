package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/handsandhope/hope/internal/core/notify"
)

const (
	badgeWriteWait  = 5 * time.Second
	badgePongWait   = 60 * time.Second
	badgePingPeriod = badgePongWait * 9 / 10
)

var badgeUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// BadgeMessage is pushed to badge stream clients.
type BadgeMessage struct {
	Unread int `json:"unread"`
}

// latest holds the most recent unread count; older values are overwritten.
type latest struct {
	mu sync.Mutex
	ch chan int
}

func newLatest() *latest {
	return &latest{ch: make(chan int, 1)}
}

func (l *latest) put(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.ch:
	default:
	}
	l.ch <- n
}

// Badge streams the unread count: once on connect and after every store
// change. Client messages are read and discarded to detect disconnects.
// GET /api/ws/badge
func (h *Handler) Badge(c *gin.Context) {
	conn, err := badgeUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("badge websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	if h.metrics != nil {
		h.metrics.BadgeClients.Inc()
		defer h.metrics.BadgeClients.Dec()
	}

	updates := newLatest()
	unsubscribe := h.store.Subscribe(func(s notify.Snapshot) { updates.put(s.Unread) })
	defer unsubscribe()
	updates.put(h.store.UnreadCount())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_ = conn.SetReadDeadline(time.Now().Add(badgePongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(badgePongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(badgePingPeriod)
	defer ping.Stop()

	log := h.log.With().Str("remote", c.ClientIP()).Logger()
	log.Debug().Msg("badge stream connected")
	defer log.Debug().Msg("badge stream disconnected")

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case n := <-updates.ch:
			_ = conn.SetWriteDeadline(time.Now().Add(badgeWriteWait))
			if err := conn.WriteJSON(BadgeMessage{Unread: n}); err != nil {
				log.Debug().Err(err).Msg("badge write failed")
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(badgeWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
