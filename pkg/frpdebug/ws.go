package frpdebug

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ebb-frp/ebb/pkg/frp"
)

const (
	// liveEventBuffer is how many graph events may queue per client before
	// the stream drops new ones. A slow viewer loses events rather than
	// back-pressuring emitters.
	liveEventBuffer = 256

	liveWriteTimeout = 10 * time.Second
	livePingInterval = 30 * time.Second
)

type wsUpgrader = websocket.Upgrader

func newUpgrader(checkOrigin func(*http.Request) bool) wsUpgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}
}

// handleLive streams graph mutation events as JSON messages until the
// client disconnects. The first message is a full snapshot, so a viewer
// can render the current graph before applying the mutation stream.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("live upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events := make(chan frp.GraphEvent, liveEventBuffer)
	unwatch := s.graph.Watch(func(ev frp.GraphEvent) {
		select {
		case events <- ev:
		default:
			// Client is behind; drop rather than block the graph.
		}
	})
	defer unwatch()

	if err := s.writeJSON(conn, liveMessage{Type: "snapshot", Snapshot: ptr(s.graph.Snapshot())}); err != nil {
		return
	}

	// Reader goroutine: we never expect client messages, but reading is
	// what surfaces close frames and dead connections.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()

	for {
		select {
		case ev := <-events:
			if err := s.writeJSON(conn, liveMessage{Type: "event", Event: &ev}); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// liveMessage is one frame of the /live stream.
type liveMessage struct {
	Type     string             `json:"type"` // snapshot, event
	Snapshot *frp.GraphSnapshot `json:"snapshot,omitempty"`
	Event    *frp.GraphEvent    `json:"event,omitempty"`
}

func (s *Server) writeJSON(conn *websocket.Conn, msg liveMessage) error {
	conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug("live write failed", "error", err)
		return err
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
