package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
)

const (
	sseHeartbeat = 15 * time.Second

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// connectedEvent opens every progress stream.
type connectedEvent struct {
	Type   string `json:"type"`
	TaskID string `json:"taskId"`
}

// Progress streams task events as server-sent events. The stream starts
// with a connected event and the current task state and ends after the
// terminal event. Disconnecting does not stop the task.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	req := statusRequest{TaskID: r.URL.Query().Get("taskId")}
	if err := validateRequest(&req, statusCodes); err != nil {
		h.respondError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.respondError(w, r, fmt.Errorf("streaming unsupported"))
		return
	}

	task, events, cancel, err := h.svc.Subscribe(r.Context(), req.TaskID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(v any) bool {
		data, err := json.Marshal(v)
		if err != nil {
			h.log.Errorw("cannot encode progress event", "task", req.TaskID, "error", err)
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	snapshot := domain.EventFromTask(task)
	if !send(connectedEvent{Type: "connected", TaskID: task.ID}) || !send(snapshot) || snapshot.Terminal() {
		return
	}

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-events:
			if ok && staleEvent(ev, snapshot) {
				continue
			}
			if !ok || !send(ev) || ev.Terminal() {
				return
			}
		}
	}
}

// WebSocket streams task events over a websocket connection with the same
// sequence as Progress. Client messages are read and discarded.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	req := statusRequest{TaskID: r.URL.Query().Get("taskId")}
	if err := validateRequest(&req, statusCodes); err != nil {
		h.respondError(w, r, err)
		return
	}

	task, events, cancel, err := h.svc.Subscribe(r.Context(), req.TaskID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debugw("websocket upgrade failed", "task", req.TaskID, "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go readPump(conn, closed)

	send := func(v any) bool {
		data, err := json.Marshal(v)
		if err != nil {
			h.log.Errorw("cannot encode progress event", "task", req.TaskID, "error", err)
			return false
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return false
		}
		return conn.WriteMessage(websocket.TextMessage, data) == nil
	}

	finish := func() {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(
			websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "task finished"),
		)
	}

	snapshot := domain.EventFromTask(task)
	if !send(connectedEvent{Type: "connected", TaskID: task.ID}) || !send(snapshot) {
		return
	}
	if snapshot.Terminal() {
		finish()
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ping.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				finish()
				return
			}
			if staleEvent(ev, snapshot) {
				continue
			}
			if !send(ev) {
				return
			}
			if ev.Terminal() {
				finish()
				return
			}
		}
	}
}

// staleEvent reports an event buffered between subscribing and taking the
// snapshot. Terminal events always pass so the stream can end.
func staleEvent(ev, snapshot domain.ProgressEvent) bool {
	return !ev.Terminal() && ev.Progress < snapshot.Progress
}

// readPump consumes client frames so control messages are processed and
// closes done when the connection goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
