package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Client is a websocket connection bound to a Session.
type Client struct {
	conn       *websocket.Conn
	chatServer *ChatServer
	log        zerolog.Logger
	session    *Session
	// each queued batch is written as consecutive frames
	send     chan []*ServerMessage
	stop     chan struct{}
	stopOnce sync.Once
}

func NewClient(username string, conn *websocket.Conn, cs *ChatServer) *Client {
	c := &Client{
		conn:       conn,
		chatServer: cs,
		send:       make(chan []*ServerMessage, sendBufferSize),
		stop:       make(chan struct{}),
	}
	c.session = cs.NewSession(c, username)
	c.log = c.session.log

	cs.addClient(c)
	return c
}

func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) Deliver(msgs ...*ServerMessage) bool {
	return c.queueMessage(msgs...)
}

func (c *Client) queueMessage(msgs ...*ServerMessage) bool {
	if len(msgs) == 0 {
		return true
	}

	select {
	case c.send <- msgs:
	default:
		c.log.Warn().Msg("failed to send message to client, channel is full")
		return false
	}

	return true
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Debug().Msg("write exiting")
	}()

	for {
		select {
		case batch := <-c.send:
			for _, msg := range batch {
				bytes, err := serializeMessage(msg)
				if err != nil {
					c.log.Error().Err(err).Msg("failed to serialize message")
					continue
				}

				if !c.sendMessage(websocket.TextMessage, bytes) {
					return
				}
			}
		case <-c.stop:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Debug().Msg("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("ws: read")
			}
			break
		}

		c.log.Debug().Bytes("raw", raw).Msg("received message")
		c.session.Handle(raw)
	}
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Warn().Err(err).Msg("write message")
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Client) cleanup() {
	c.session.Disconnect()
	c.stopClient()
	c.chatServer.removeClient(c)
}
