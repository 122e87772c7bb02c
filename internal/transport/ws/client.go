package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"botornot/internal/app"
	"botornot/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents one WebSocket connection. Before login it can only
// generate room codes and create/join/restore; afterwards it carries a
// session token and every game action resolves (room, user) through the
// hub's session store.
type Client struct {
	conn      *websocket.Conn
	hub       *app.RoomHub
	sessionID string
	send      chan []byte
	logger    *slog.Logger
	mu        sync.Mutex
	closed    bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *app.RoomHub, logger *slog.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
	}
}

// SendState implements app.ClientConn by pushing a sync_game_state message
func (c *Client) SendState(snapshot *domain.Room) error {
	return c.sendMessage(NewServerMessage(MsgSyncGameState, snapshot))
}

// sendMessage marshals and queues a message; a full buffer drops it
func (c *Client) sendMessage(message *ServerMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped", "type", message.Type)
		return errors.New("send buffer full")
	}
}

// Close implements app.ClientConn. It stops accepting new messages and
// closes the send channel; the write pump drains whatever is still queued
// before closing the connection, so a snapshot queued just before teardown
// still reaches the peer.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.send)
	return nil
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.detach()
		c.Close()
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket
// connection. A closed send channel still yields its queued messages
// before ok turns false, so pending state reaches the peer ahead of the
// close frame.
func (c *Client) writePump() {
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

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// handleMessage processes an incoming message from the client. Actions
// addressed to a phase (or session) that does not accept them are dropped
// without signaling the caller.
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Debug("invalid message", "error", err)
		return
	}

	switch msg.Type {
	case MsgGenerateRoomID:
		c.handleGenerateRoomID()
	case MsgCreateRoom:
		c.handleCreateRoom(msg.Payload)
	case MsgJoinRoom:
		c.handleJoinRoom(msg.Payload)
	case MsgRestoreSession:
		c.handleRestoreSession(msg.Payload)
	case MsgToggleReady:
		c.handleToggleReady()
	case MsgSubmitAnswer:
		c.handleSubmitAnswer(msg.Payload)
	case MsgSubmitVote:
		c.handleSubmitVote(msg.Payload)
	case MsgLeaveRoom:
		c.handleLeaveRoom()
	case MsgPing:
		c.sendMessage(NewServerMessage(MsgPong, nil))
	default:
		c.logger.Debug("unknown message type", "type", msg.Type)
	}
}

// handleGenerateRoomID replies with a code that is unused at this moment
func (c *Client) handleGenerateRoomID() {
	code := c.hub.GenerateRoomCode()
	c.sendMessage(NewServerMessage(MsgRoomIDGenerated, &RoomIDGeneratedPayload{RoomCode: code}))
}

// handleCreateRoom creates a room and logs the creator in
func (c *Client) handleCreateRoom(payload json.RawMessage) {
	var p CreateRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendLoginError(LoginErrorRoom, "Invalid request")
		return
	}
	if p.UserID == "" {
		p.UserID = uuid.NewString()
	}

	session, sessionID, err := c.hub.CreateRoom(p.RoomCode, p.UserID, p.Username)
	if err != nil {
		c.sendLoginError(loginErrorKind(err), loginErrorMessage(err))
		return
	}

	c.attach(session, sessionID)
}

// handleJoinRoom joins an existing lobby
func (c *Client) handleJoinRoom(payload json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendLoginError(LoginErrorRoom, "Invalid request")
		return
	}
	if p.UserID == "" {
		p.UserID = uuid.NewString()
	}

	session, sessionID, err := c.hub.JoinRoom(p.RoomCode, p.UserID, p.Username)
	if err != nil {
		c.sendLoginError(loginErrorKind(err), loginErrorMessage(err))
		return
	}

	c.attach(session, sessionID)
}

// handleRestoreSession is read-only: it re-subscribes the socket to its
// room and returns a snapshot without mutating room state
func (c *Client) handleRestoreSession(payload json.RawMessage) {
	var p RestoreSessionPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.SessionID == "" {
		c.sendMessage(NewServerMessage(MsgSessionRestored, &SessionRestoredPayload{Found: false}))
		return
	}

	session, userID, ok := c.hub.ResolveSession(p.SessionID)
	if !ok {
		c.sendMessage(NewServerMessage(MsgSessionRestored, &SessionRestoredPayload{Found: false}))
		return
	}

	c.sessionID = p.SessionID
	session.Subscribe(c)

	c.sendMessage(NewServerMessage(MsgSessionRestored, &SessionRestoredPayload{
		Found:     true,
		RoomCode:  session.Code(),
		UserID:    userID,
		GameState: session.Snapshot(),
	}))
}

func (c *Client) handleToggleReady() {
	session, userID, ok := c.hub.ResolveSession(c.sessionID)
	if !ok {
		return
	}
	session.ToggleReady(userID)
}

func (c *Client) handleSubmitAnswer(payload json.RawMessage) {
	var p SubmitAnswerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}

	session, userID, ok := c.hub.ResolveSession(c.sessionID)
	if !ok {
		return
	}
	session.SubmitAnswer(userID, p.Answer)
}

func (c *Client) handleSubmitVote(payload json.RawMessage) {
	var p SubmitVotePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}

	session, userID, ok := c.hub.ResolveSession(c.sessionID)
	if !ok {
		return
	}
	session.SubmitVote(userID, p.TargetUserID)
}

// handleLeaveRoom drops the session record and unsubscribes the socket.
// The user's slot in the room is kept so round bookkeeping stays intact.
func (c *Client) handleLeaveRoom() {
	if session, _, ok := c.hub.ResolveSession(c.sessionID); ok {
		session.Unsubscribe(c)
	}
	c.hub.Leave(c.sessionID)
	c.sessionID = ""
}

// attach binds a freshly logged-in client to its room session
func (c *Client) attach(session *app.RoomSession, sessionID string) {
	c.sessionID = sessionID
	session.Subscribe(c)
	c.sendMessage(NewServerMessage(MsgLoginSuccess, &LoginSuccessPayload{SessionID: sessionID}))
	// The join broadcast went out before this socket subscribed
	c.SendState(session.Snapshot())
}

// detach unsubscribes on disconnect without dropping the session record,
// so the client can restore later
func (c *Client) detach() {
	if c.sessionID == "" {
		return
	}
	if session, _, ok := c.hub.ResolveSession(c.sessionID); ok {
		session.Unsubscribe(c)
	}
}

func (c *Client) sendLoginError(kind, message string) {
	c.sendMessage(NewServerMessage(MsgLoginError, &LoginErrorPayload{Kind: kind, Message: message}))
}

// loginErrorKind maps a login failure to its machine-readable kind
func loginErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrEmptyUsername):
		return LoginErrorUsername
	default:
		return LoginErrorRoom
	}
}

// loginErrorMessage maps a login failure to human text
func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, domain.ErrRoomExists):
		return "Room code already in use"
	case errors.Is(err, domain.ErrRoomStarted):
		return "Game has already started"
	case errors.Is(err, domain.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "Username already taken"
	case errors.Is(err, domain.ErrEmptyUsername):
		return "Username cannot be empty"
	default:
		return "Login failed"
	}
}
