package main

import (
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
	// Clients send moves at 20Hz; anything sustained above this is abuse.
	msgRateLimit = rate.Limit(50)
	msgRateBurst = 100
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	key        string // server-side connection key
	remoteAddr string
	limiter    *rate.Limiter
	binary     atomic.Bool // opted in to msgpack state frames
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		key:        uuid.NewString(),
		remoteAddr: remoteAddr,
		limiter:    rate.NewLimiter(msgRateLimit, msgRateBurst),
	}
}

// Key returns the server-side connection key.
func (c *Client) Key() string { return c.key }

// WantsBinary reports whether the client asked for binary state frames.
func (c *Client) WantsBinary() bool { return c.binary.Load() }

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		if !c.limiter.Allow() {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Binary marker (0xFF prefix from SendBinaryFrame)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
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

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinaryFrame sends pre-marshaled bytes as a binary WebSocket
// message. Prefixed with a 0xFF marker so WritePump can distinguish it.
func (c *Client) SendBinaryFrame(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// handleMessage routes one inbound message by its type discriminator.
// Malformed payloads are dropped without touching session state.
func (c *Client) handleMessage(raw []byte) {
	var in InMsg
	if err := json.Unmarshal(raw, &in); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	sess := c.hub.session
	switch in.Type {
	case MsgCanJoin:
		sess.HandleCanJoin(c)
	case MsgJoin:
		var msg JoinMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		sess.HandleJoin(c, msg)
	case MsgMove:
		var msg MoveMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		sess.HandleMove(c, msg)
	case MsgCollectPoint:
		var msg CollectPointMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		sess.HandleCollectPoint(c, msg)
	case MsgPauseGame:
		sess.HandlePause(c)
	case MsgUnpauseGame:
		sess.HandleUnpause(c)
	case MsgStartByHost:
		sess.HandleStart(c)
	case MsgStopByHost:
		sess.HandleStop(c)
	case MsgReadyToRestart:
		sess.HandleReady(c)
	case MsgPlayerQuit:
		sess.HandleQuit(c)
	case MsgBinaryState:
		c.binary.Store(true)
	}
}
