package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fraud-core/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// alertFeed streams alert lifecycle events to dashboard clients so the fraud
// page does not have to poll /api/alerts.
func (s *Server) alertFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if s.Bus == nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"bus not ready"}`))
		return
	}

	stream, unsub := s.Bus.Subscribe(100, events.EventAlertCreated, events.EventAlertResolved)
	defer unsub()

	for msg := range stream {
		frame := gin.H{
			"event": string(msg.Event),
			"alert": msg.Payload,
		}
		if err := conn.WriteJSON(frame); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}
