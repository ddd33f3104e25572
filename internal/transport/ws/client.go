package ws

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one websocket connection bound to a participant in a match
type Client struct {
	conn          *websocket.Conn
	send          chan interface{}
	participantID string
	matchCode     string
	handler       *Handler
	logger        *zap.Logger
	done          chan struct{}
}

func newClient(conn *websocket.Conn, participantID, matchCode string, handler *Handler, logger *zap.Logger) *Client {
	return &Client{
		conn:          conn,
		send:          make(chan interface{}, sendBufferSize),
		participantID: participantID,
		matchCode:     matchCode,
		handler:       handler,
		logger:        logger,
		done:          make(chan struct{}),
	}
}

// Send implements app.ClientConnection
func (c *Client) Send(message interface{}) error {
	select {
	case c.send <- message:
		return nil
	case <-c.done:
		return websocket.ErrCloseSent
	default:
		return websocket.ErrCloseSent
	}
}

// GetParticipantID implements app.ClientConnection
func (c *Client) GetParticipantID() string {
	return c.participantID
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	select {
	case <-c.done:
		return nil
	default:
		close(c.done)
	}
	return c.conn.Close()
}

// readPump reads inbound messages until the connection drops
func (c *Client) readPump() {
	defer func() {
		c.handler.disconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error",
					zap.String("participantID", c.participantID),
					zap.Error(err),
				)
			}
			return
		}

		c.handler.handleMessage(c, &msg)
	}
}

// writePump writes outbound messages and keepalive pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
