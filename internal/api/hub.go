package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"rentdesk/internal/logging"
	"rentdesk/internal/models"
	"rentdesk/internal/sink"
)

const maxClients = 10

// Controller is the slice of the alert engine the hub drives on behalf of
// connected dashboard clients.
type Controller interface {
	RefreshNow()
	MarkRead(id string)
	MarkAllRead()
	Navigate(a models.Action)
	Snapshot() models.Snapshot
}

// wsCommand is an inbound client frame.
type wsCommand struct {
	Type     string `json:"type"` // refresh | mark_read | mark_all_read | click
	ID       string `json:"id,omitempty"`
	Section  string `json:"section,omitempty"`
	RecordID int64  `json:"record_id,omitempty"`
}

// wsFrame is an outbound frame.
type wsFrame struct {
	Type     string           `json:"type"` // snapshot | notification | navigate
	Snapshot *models.Snapshot `json:"snapshot,omitempty"`
	Note     *sink.Note       `json:"note,omitempty"`
	Action   *models.Action   `json:"action,omitempty"`
}

// Hub manages dashboard WebSocket connections. It doubles as the desktop
// notification sink: a connected dashboard counts as granted permission, and
// Show pushes a notification frame for the dashboard to render.
type Hub struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*websocket.Conn
	ctrl  Controller
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[string]*websocket.Conn),
	}
}

// Bind attaches the engine after construction. The hub is built first
// because the engine takes it as its sink.
func (h *Hub) Bind(ctrl Controller) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ctrl = ctrl
}

// Permission reports granted while at least one dashboard is connected.
func (h *Hub) Permission() sink.Permission {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.conns) > 0 {
		return sink.PermissionGranted
	}
	return sink.PermissionDefault
}

// RequestPermission has no prompt to show server-side; connecting the
// dashboard is the user gesture.
func (h *Hub) RequestPermission(_ context.Context) (sink.Permission, error) {
	return h.Permission(), nil
}

// Show pushes one notification frame to every connected client.
func (h *Hub) Show(_ context.Context, n sink.Note) error {
	if !h.broadcast(wsFrame{Type: "notification", Note: &n}) {
		return fmt.Errorf("no connected dashboard clients")
	}
	return nil
}

// PublishSnapshot pushes the read model to every connected client.
func (h *Hub) PublishSnapshot(snap models.Snapshot) {
	h.broadcast(wsFrame{Type: "snapshot", Snapshot: &snap})
}

// PublishNavigate forwards a navigation message to every connected client.
func (h *Hub) PublishNavigate(a models.Action) {
	h.broadcast(wsFrame{Type: "navigate", Action: &a})
}

// Serve upgrades the request and services the connection until it closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	// The initial frame is sent before the connection joins the broadcast
	// map, and every later write goes through broadcast under h.mu, so no
	// two goroutines ever write the same connection.
	h.mu.Lock()
	ctrl := h.ctrl
	h.mu.Unlock()
	var initial *wsFrame
	if ctrl != nil {
		snap := ctrl.Snapshot()
		initial = &wsFrame{Type: "snapshot", Snapshot: &snap}
	}

	id := uuid.New().String()
	if !h.add(id, conn, initial) {
		_ = conn.Close()
		return
	}
	defer h.remove(id)

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		h.handle(cmd)
	}
}

func (h *Hub) handle(cmd wsCommand) {
	h.mu.Lock()
	ctrl := h.ctrl
	h.mu.Unlock()
	if ctrl == nil {
		return
	}
	switch cmd.Type {
	case "refresh":
		ctrl.RefreshNow()
	case "mark_read":
		if cmd.ID != "" {
			ctrl.MarkRead(cmd.ID)
		}
	case "mark_all_read":
		ctrl.MarkAllRead()
	case "click":
		// Clicking does not mark read; the dashboard does that when it
		// handles the navigation event.
		ctrl.Navigate(models.Action{Section: cmd.Section, RecordID: cmd.RecordID})
	default:
		h.logger.Warnf("Unknown WebSocket command: %s", cmd.Type)
	}
}

// add registers the connection, writing the initial frame inside the same
// critical section so it cannot interleave with a concurrent broadcast.
func (h *Hub) add(id string, conn *websocket.Conn, initial *wsFrame) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.conns) >= maxClients {
		h.logger.Warnf("Max WebSocket clients reached, rejecting connection")
		return false
	}
	if initial != nil {
		if err := conn.WriteJSON(*initial); err != nil {
			h.logger.Errorf("Initial snapshot write failed: %v", err)
			return false
		}
	}
	h.conns[id] = conn
	h.logger.Infof("Dashboard connected (total: %d)", len(h.conns))
	return true
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.conns[id]; ok {
		_ = conn.Close()
		delete(h.conns, id)
		h.logger.Infof("Dashboard disconnected (remaining: %d)", len(h.conns))
	}
}

// broadcast writes the frame to every client, dropping any that fail.
// Returns whether at least one client received it.
func (h *Hub) broadcast(f wsFrame) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := false
	for id, conn := range h.conns {
		if err := conn.WriteJSON(f); err != nil {
			h.logger.Errorf("WebSocket write failed, dropping client: %v", err)
			_ = conn.Close()
			delete(h.conns, id)
			continue
		}
		sent = true
	}
	return sent
}
