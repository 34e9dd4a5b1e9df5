package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/fanout"
	"github.com/iliyamo/movie-ticket-booking/internal/inventory"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Seat availability is public data; the event stream carries no
	// user-specific payloads, so any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SeatsHandler exposes the seat snapshot and the live seat event
// stream for a showtime.
type SeatsHandler struct {
	Engine *inventory.Engine
	Hub    *fanout.Hub
}

// NewSeatsHandler constructs a SeatsHandler.
func NewSeatsHandler(engine *inventory.Engine, hub *fanout.Hub) *SeatsHandler {
	if engine == nil || hub == nil {
		panic("nil dependency passed to NewSeatsHandler")
	}
	return &SeatsHandler{Engine: engine, Hub: hub}
}

// Snapshot handles GET /v1/showtimes/:id/seats.  It returns the full
// seat layout with current states and the available-seat count.  The
// snapshot is taken under the showtime's exclusion so it never shows a
// mutation mid-flight.
func (h *SeatsHandler) Snapshot(c echo.Context) error {
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	views, available, err := h.Engine.Snapshot(showtimeID)
	if err != nil {
		if errors.Is(err, inventory.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "snapshot failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id":     showtimeID,
		"available_seats": available,
		"seats":           views,
	})
}

// Events handles GET /v1/showtimes/:id/events.  It upgrades the
// connection to a websocket, subscribes the viewer to the showtime and
// streams seat state change events in the order the engine produced
// them.  Disconnecting unsubscribes automatically; a viewer that stops
// reading is dropped by the hub so it can never slow down the engine
// or other viewers.
func (h *SeatsHandler) Events(c echo.Context) error {
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	// Reject unknown showtimes before upgrading.
	if _, _, err := h.Engine.Snapshot(showtimeID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("seats: websocket upgrade failed: %v", err)
		return nil
	}

	sub := h.Hub.Subscribe(showtimeID)
	go writePump(conn, sub)
	go readPump(conn, sub)
	return nil
}

// writePump forwards the subscriber's events to the websocket, sending
// periodic pings to detect dead peers.  It exits when the subscriber's
// channel is closed (unsubscribe or slow-drop) or a write fails.
func writePump(conn *websocket.Conn, sub *fanout.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("seats: marshal event failed: %v", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains inbound frames to keep pong handling alive.  Viewers
// send nothing meaningful; a read error means the peer is gone, which
// unsubscribes it.
func readPump(conn *websocket.Conn, sub *fanout.Subscriber) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("seats: websocket error: %v", err)
			}
			return
		}
	}
}
