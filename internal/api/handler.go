package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/handsandhope/hope/internal/core/eventbus"
	"github.com/handsandhope/hope/internal/core/notify"
	"github.com/handsandhope/hope/internal/metrics"
	"github.com/rs/zerolog"
)

// Publisher accepts marketplace events.
type Publisher interface {
	Publish(event eventbus.Event, payload any) error
}

// Handler serves the notification feed over HTTP.
type Handler struct {
	store    *notify.Store
	bus      Publisher
	validate *validator.Validate
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewHandler returns a Handler. bus may be nil, in which case event
// ingestion responds 503.
func NewHandler(store *notify.Store, bus Publisher, v *validator.Validate, logger zerolog.Logger) *Handler {
	if v == nil {
		v = validator.New()
	}
	return &Handler{store: store, bus: bus, validate: v, log: logger}
}

// WithMetrics enables request instrumentation and the /metrics route.
func (h *Handler) WithMetrics(m *metrics.Metrics) *Handler {
	h.metrics = m
	return h
}

// CreateRequest is the body of POST /api/notifications.
type CreateRequest struct {
	Title   string         `json:"title" validate:"required,max=200"`
	Message string         `json:"message" validate:"required,max=2000"`
	Kind    notify.Kind    `json:"kind" validate:"omitempty,oneof=info success warning error activity"`
	Action  *ActionRequest `json:"action"`
}

// ActionRequest is the optional action of a CreateRequest.
type ActionRequest struct {
	Label  string `json:"label" validate:"required"`
	Target string `json:"target" validate:"required"`
}

type createResponse struct {
	ID notify.ID `json:"id"`
}

type listResponse struct {
	Items  []notify.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

type unreadResponse struct {
	Unread int `json:"unread"`
}

// List returns every notification, newest first.
// GET /api/notifications
func (h *Handler) List(c *gin.Context) {
	snap := h.store.Snapshot()
	items := snap.Items
	if items == nil {
		items = []notify.Notification{}
	}
	ok(c, listResponse{Items: items, Unread: snap.Unread})
}

// UnreadCount returns the badge count.
// GET /api/notifications/unread-count
func (h *Handler) UnreadCount(c *gin.Context) {
	ok(c, unreadResponse{Unread: h.store.UnreadCount()})
}

// Create adds a notification.
// POST /api/notifications
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.log.Warn().Err(err).Msg("invalid notification")
		fail(c, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	var action *notify.Action
	if req.Action != nil {
		action = &notify.Action{Label: req.Action.Label, Target: req.Action.Target}
	}
	kind := req.Kind
	if kind == "" {
		kind = notify.KindInfo
	}

	id := h.store.Add(req.Title, req.Message, kind, action)
	c.JSON(http.StatusCreated, createResponse{ID: id})
}

// MarkRead marks one notification read. Unknown ids are accepted.
// POST /api/notifications/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	h.store.MarkAsRead(notify.ID(c.Param("id")))
	noContent(c)
}

// MarkAllRead marks every notification read.
// POST /api/notifications/read-all
func (h *Handler) MarkAllRead(c *gin.Context) {
	h.store.MarkAllAsRead()
	noContent(c)
}

// Remove deletes one notification. Unknown ids are accepted.
// DELETE /api/notifications/:id
func (h *Handler) Remove(c *gin.Context) {
	h.store.Remove(notify.ID(c.Param("id")))
	noContent(c)
}

// ClearAll empties the feed.
// DELETE /api/notifications
func (h *Handler) ClearAll(c *gin.Context) {
	h.store.ClearAll()
	noContent(c)
}

// PublishEvent puts a marketplace event on the bus.
// POST /api/events
func (h *Handler) PublishEvent(c *gin.Context) {
	if h.bus == nil {
		fail(c, http.StatusServiceUnavailable, "event bus not running")
		return
	}

	var raw eventbus.RawEvent
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(raw); err != nil {
		fail(c, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	event, payload, err := raw.Decode()
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.bus.Publish(event, payload); err != nil {
		h.log.Error().Err(err).Str("event", string(event)).Msg("failed to publish event")
		fail(c, http.StatusInternalServerError, "failed to publish event")
		return
	}
	c.Status(http.StatusAccepted)
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	ok(c, gin.H{"status": "ok"})
}
