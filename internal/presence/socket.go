package presence

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1024
)

// Serve runs the read/write pumps for an upgraded connection until it drops.
// heartbeat is the ping interval (~60s); the read deadline allows one missed
// beat before the connection is considered dead.
func (h *Hub) Serve(conn *websocket.Conn, userID string, heartbeat time.Duration) {
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, 64),
	}
	h.Register(client)

	go h.writePump(conn, client, heartbeat)
	h.readPump(conn, client, heartbeat)
}

func (h *Hub) readPump(conn *websocket.Conn, client *Client, heartbeat time.Duration) {
	defer func() {
		h.Unregister(client)
		conn.Close()
	}()

	wait := heartbeat * 2
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wait))
		return nil
	})

	for {
		// Inbound frames are only heartbeats; content APIs stay on HTTP.
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wait))
	}
}

func (h *Hub) writePump(conn *websocket.Conn, client *Client, heartbeat time.Duration) {
	ticker := time.NewTicker(heartbeat)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
