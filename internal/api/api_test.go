package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/handsandhope/hope/internal/core/eventbus"
	"github.com/handsandhope/hope/internal/core/eventbus/testbus"
	"github.com/handsandhope/hope/internal/core/notify"
	"github.com/handsandhope/hope/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, bus Publisher) (http.Handler, *notify.Store) {
	t.Helper()
	store := notify.NewStore()
	return NewRouter(NewHandler(store, bus, nil, zerolog.Nop())), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestCreateAndList(t *testing.T) {
	h, store := newTestRouter(t, nil)

	w := do(t, h, http.MethodPost, "/api/notifications",
		`{"title":"Order placed","message":"Order o-1 was placed","kind":"success","action":{"label":"View order","target":"orders"}}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created createResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	n, ok := store.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, notify.KindSuccess, n.Kind)
	require.NotNil(t, n.Action)
	assert.Equal(t, "orders", n.Action.Target)

	w = do(t, h, http.MethodGet, "/api/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Order placed", list.Items[0].Title)
	assert.Equal(t, 1, list.Unread)
}

func TestCreate_DefaultsKind(t *testing.T) {
	h, store := newTestRouter(t, nil)

	w := do(t, h, http.MethodPost, "/api/notifications", `{"title":"Hi","message":"there"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, notify.KindInfo, store.List()[0].Kind)
}

func TestCreate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"title":`},
		{"missing title", `{"message":"m"}`},
		{"missing message", `{"title":"t"}`},
		{"bad kind", `{"title":"t","message":"m","kind":"urgent"}`},
		{"action without target", `{"title":"t","message":"m","action":{"label":"Go"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newTestRouter(t, nil)
			w := do(t, h, http.MethodPost, "/api/notifications", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			assert.Empty(t, store.List())
		})
	}
}

func TestMutations(t *testing.T) {
	h, store := newTestRouter(t, nil)
	a := store.Add("a", "a", notify.KindInfo, nil)
	b := store.Add("b", "b", notify.KindInfo, nil)
	store.Add("c", "c", notify.KindInfo, nil)

	w := do(t, h, http.MethodPost, "/api/notifications/"+string(a)+"/read", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/api/notifications/unread-count", "")
	assert.JSONEq(t, `{"unread":2}`, w.Body.String())

	w = do(t, h, http.MethodDelete, "/api/notifications/"+string(b), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, store.List(), 2)

	w = do(t, h, http.MethodPost, "/api/notifications/read-all", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, store.UnreadCount())

	w = do(t, h, http.MethodDelete, "/api/notifications", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.List())
}

func TestMutations_UnknownIDsAreNoOps(t *testing.T) {
	h, store := newTestRouter(t, nil)
	store.Add("a", "a", notify.KindInfo, nil)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/api/notifications/missing/read", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/notifications/missing", "").Code)
	assert.Len(t, store.List(), 1)
	assert.Equal(t, 1, store.UnreadCount())
}

func TestPublishEvent(t *testing.T) {
	bus := testbus.New(t)
	h, _ := newTestRouter(t, bus)

	w := do(t, h, http.MethodPost, "/api/events", `{"type":"order.placed","payload":{"order_id":"o-1"}}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	bus.AssertPublished(t, eventbus.EventOrderPlaced)

	w = do(t, h, http.MethodPost, "/api/events", `{"type":"order.lost","payload":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/events", `{"payload":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishEvent_NoBus(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	w := do(t, h, http.MethodPost, "/api/events", `{"type":"order.placed"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	w := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func readBadge(t *testing.T, conn *websocket.Conn) BadgeMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg BadgeMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestBadgeStream(t *testing.T) {
	h, store := newTestRouter(t, nil)
	store.Add("a", "a", notify.KindInfo, nil)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/badge"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = resp.Body.Close()

	assert.Equal(t, BadgeMessage{Unread: 1}, readBadge(t, conn))

	store.Add("b", "b", notify.KindInfo, nil)
	assert.Equal(t, BadgeMessage{Unread: 2}, readBadge(t, conn))

	store.MarkAllAsRead()
	assert.Equal(t, BadgeMessage{Unread: 0}, readBadge(t, conn))
}

func TestRequestID(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	w := do(t, h, http.MethodGet, "/healthz", "")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	store := notify.NewStore()
	h := NewRouter(NewHandler(store, nil, nil, zerolog.Nop()).WithMetrics(m))

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/notifications", "").Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope", "").Code)

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `hope_http_requests_total{method="GET",path="/api/notifications",status="200"} 1`)
	assert.Contains(t, body, `hope_http_requests_total{method="GET",path="unmatched",status="404"} 1`)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/badge"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	readBadge(t, conn)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BadgeClients))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.BadgeClients) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMetrics_Disabled(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", "").Code)
}

func TestServer_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(ln.Addr().String(), NewHandler(notify.NewStore(), nil, nil, zerolog.Nop()), time.Second, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Post("http://"+ln.Addr().String()+"/api/notifications", "application/json",
			bytes.NewBufferString(`{"title":"t","message":"m"}`))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusCreated
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
