package ws

import (
	"encoding/json"
	"time"

	"botornot/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgGenerateRoomID MessageType = "generate_room_id"
	MsgCreateRoom     MessageType = "create_room"
	MsgJoinRoom       MessageType = "join_room"
	MsgRestoreSession MessageType = "restore_session"
	MsgToggleReady    MessageType = "toggle_ready"
	MsgSubmitAnswer   MessageType = "submit_answer"
	MsgSubmitVote     MessageType = "submit_vote"
	MsgLeaveRoom      MessageType = "leave_room"
	MsgPing           MessageType = "ping"
)

// Server → Client message types
const (
	MsgRoomIDGenerated MessageType = "room_id_generated"
	MsgLoginError      MessageType = "login_error"
	MsgLoginSuccess    MessageType = "login_success"
	MsgSessionRestored MessageType = "session_restored"
	MsgSyncGameState   MessageType = "sync_game_state"
	MsgPong            MessageType = "pong"
)

// Login error kinds
const (
	LoginErrorRoom     = "room"
	LoginErrorUsername = "username"
)

// ClientMessage is the envelope for messages from client to server. The
// payload is decoded per type at this boundary before anything reaches
// the state machine.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is the envelope for messages from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a server message stamped with the current time
func NewServerMessage(msgType MessageType, payload any) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// CreateRoomPayload carries a pre-generated room code plus the creator's
// identity. The user ID is only trusted at login; afterwards identity
// always resolves through the session token.
type CreateRoomPayload struct {
	RoomCode string `json:"roomCode"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username"`
}

// JoinRoomPayload is the payload for join_room
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username"`
}

// RestoreSessionPayload is the payload for restore_session
type RestoreSessionPayload struct {
	SessionID string `json:"sessionId"`
}

// SubmitAnswerPayload is the payload for submit_answer
type SubmitAnswerPayload struct {
	Answer string `json:"answer"`
}

// SubmitVotePayload is the payload for submit_vote
type SubmitVotePayload struct {
	TargetUserID string `json:"targetUserId"`
}

// Server message payloads

// RoomIDGeneratedPayload carries a fresh unused room code
type RoomIDGeneratedPayload struct {
	RoomCode string `json:"roomCode"`
}

// LoginErrorPayload carries a machine-readable kind plus human text
type LoginErrorPayload struct {
	Kind    string `json:"kind"` // "room" or "username"
	Message string `json:"message"`
}

// LoginSuccessPayload carries the reconnect token for the new session
type LoginSuccessPayload struct {
	SessionID string `json:"sessionId"`
}

// SessionRestoredPayload answers a restore_session request. Found is
// false when the token no longer resolves.
type SessionRestoredPayload struct {
	Found     bool         `json:"found"`
	RoomCode  string       `json:"roomCode,omitempty"`
	UserID    string       `json:"userId,omitempty"`
	GameState *domain.Room `json:"gameState,omitempty"`
}
