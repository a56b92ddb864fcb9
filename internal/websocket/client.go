package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenResolver authenticates the token a client presents on connect and
// returns the user it belongs to.
type TokenResolver func(token string) (uint, bool)

// Client is one live WebSocket connection. The topics reverse index is
// owned by the hub and only touched under the hub mutex; the pumps never
// read it.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
	topics map[Topic]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	closed int32
}

func newClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		topics: make(map[Topic]struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
	}
}

// enqueue hands a frame to the write pump without blocking. A full buffer
// means the peer stopped draining; the client is marked dead so the hub
// prunes it.
func (c *Client) enqueue(payload []byte) error {
	if c.isClosed() {
		return ErrClientDisconnected
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.ctx.Done():
		return ErrClientDisconnected
	default:
		c.hub.logger.Warn("send buffer full, dropping client", "userID", c.userID)
		c.close()
		return ErrClientDisconnected
	}
}

func (c *Client) readPump() {
	defer func() {
		c.close()
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.hub.logger.Error("websocket read error", "userID", c.userID, "error", err)
			}
			return
		}

		c.handleIncoming(raw)
	}
}

// handleIncoming parses and executes one client frame. Malformed frames
// are ignored; the connection stays open.
func (c *Client) handleIncoming(raw []byte) {
	var cmd command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		c.hub.logger.Debug("ignoring malformed frame", "userID", c.userID)
		return
	}

	c.handleCommand(cmd)
}

// handleCommand applies an inbound command to the hub registry. Subscribe
// requests that fail authorization are dropped without a reply or any
// registry change, so a probing client cannot distinguish a missing
// resource from one it lacks access to.
func (c *Client) handleCommand(cmd command) {
	switch cmd.Action {
	case actionSubscribeAssignment:
		courseID, ok := c.hub.auth.AssignmentCourse(c.ctx, cmd.ID)
		if !ok || !c.hub.auth.IsCourseMember(c.ctx, courseID, c.userID) {
			return
		}
		topic := AssignmentTopic(cmd.ID)
		c.hub.subscribe(c, topic)
		c.enqueue(subscribedAck(topic))

	case actionUnsubscribeAssignment:
		topic := AssignmentTopic(cmd.ID)
		c.hub.unsubscribe(c, topic)
		c.enqueue(unsubscribedAck(topic))

	case actionSubscribeCourse:
		if !c.hub.auth.IsCourseMember(c.ctx, cmd.ID, c.userID) {
			return
		}
		topic := CourseTopic(cmd.ID)
		c.hub.subscribe(c, topic)
		c.enqueue(subscribedAck(topic))

	case actionUnsubscribeCourse:
		topic := CourseTopic(cmd.ID)
		c.hub.unsubscribe(c, topic)
		c.enqueue(unsubscribedAck(topic))

	case actionPing:
		c.enqueue(pongFrame)

	default:
		c.hub.logger.Debug("ignoring unknown action", "userID", c.userID, "action", cmd.Action)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// ServeWS upgrades the request and attaches the connection to the hub.
// The token travels in the query string because browser WebSocket clients
// cannot set headers; a bad token still gets an upgraded connection so we
// can report the policy violation over the socket before closing it.
func ServeWS(hub *Hub, resolve TokenResolver, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	userID, ok := resolve(r.URL.Query().Get("token"))
	if !ok {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Unauthorized"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	client := newClient(hub, conn, userID)
	hub.register(client)

	go client.writePump()
	go client.readPump()
}
