package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/output"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Timestamp string         `json:"timestamp"`
	Kind      string         `json:"kind"`
	Text      string         `json:"text"`
	Record    map[string]any `json:"record,omitempty"`
}

func newWSMessage(ev model.Event) wsMessage {
	return wsMessage{
		Timestamp: ev.Time().UTC().Format(time.RFC3339),
		Kind:      ev.Kind().String(),
		Text:      output.Format(ev),
		Record:    ev.Document(),
	}
}

// handleWebSocket upgrades to WebSocket and streams live events to the client.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events := s.deps.Hub.Subscribe()
	defer s.deps.Hub.Unsubscribe(events)

	closed := make(chan struct{})
	// Read pump: detect client disconnect.
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(newWSMessage(ev)); err != nil {
				log.Printf("websocket write failed: %v", err)
				return
			}
		}
	}
}
