package coordinator

import (
	"context"
	"encoding/json"
	"time"

	"tavolo/config"
	"tavolo/internal/domains/chat/model/dto"
	"tavolo/internal/domains/chat/registry"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client pumps frames between one websocket connection and the
// coordinator. The read pump feeds inbound events to the session's
// room; the write pump drains the session's outbound queue.
type Client struct {
	conn        *websocket.Conn
	session     *registry.Session
	coordinator Coordinator

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
	maxBytes   int64
}

func NewClient(cfg *config.Config, conn *websocket.Conn, session *registry.Session, coordinator Coordinator) *Client {
	pongWait := time.Duration(cfg.Chat.PongWaitSeconds) * time.Second

	return &Client{
		conn:        conn,
		session:     session,
		coordinator: coordinator,
		writeWait:   time.Duration(cfg.Chat.WriteWaitSeconds) * time.Second,
		pongWait:    pongWait,
		pingPeriod:  (pongWait * 9) / 10,
		maxBytes:    int64(cfg.Chat.MaxMessageBytes),
	}
}

// Start runs both pumps. It returns immediately; the pumps stop when
// the peer disconnects or the outbound queue is closed.
func (c *Client) Start(ctx context.Context) {
	go c.writePump()
	go c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.coordinator.Leave(ctx, c.session)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxBytes)

	if err := c.conn.SetReadDeadline(time.Now().Add(c.pongWait)); err != nil {
		log.Error().Err(err).Str("session_id", c.session.ID).Msg("failed to set chat read deadline")

		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		var event dto.Event

		if err := c.conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("session_id", c.session.ID).Msg("unexpected chat websocket close")
			}

			return
		}

		switch event.Type {
		case dto.EventTypeSendMessage:
			payload := dto.SendMessagePayload{}

			if err := json.Unmarshal(event.Data, &payload); err != nil {
				log.Warn().Err(err).Str("session_id", c.session.ID).Msg("malformed chat message payload")

				continue
			}

			c.coordinator.Send(ctx, c.session, payload)
		default:
			log.Warn().Str("session_id", c.session.ID).Str("type", event.Type).Msg("unknown chat event type")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.session.Send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				log.Error().Err(err).Str("session_id", c.session.ID).Msg("failed to set chat write deadline")

				return
			}

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
