package ws

import (
	"encoding/json"
	"testing"

	"botornot/internal/domain"
)

func TestLoginErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{domain.ErrRoomNotFound, LoginErrorRoom},
		{domain.ErrRoomExists, LoginErrorRoom},
		{domain.ErrRoomStarted, LoginErrorRoom},
		{domain.ErrRoomFull, LoginErrorRoom},
		{domain.ErrUsernameTaken, LoginErrorUsername},
		{domain.ErrEmptyUsername, LoginErrorUsername},
	}

	for _, c := range cases {
		if got := loginErrorKind(c.err); got != c.kind {
			t.Errorf("%v: kind %q, want %q", c.err, got, c.kind)
		}
		if loginErrorMessage(c.err) == "" || loginErrorMessage(c.err) == "Login failed" {
			t.Errorf("%v: no specific message", c.err)
		}
	}
}

func TestClientMessagePayloadDecoding(t *testing.T) {
	raw := []byte(`{"type":"create_room","payload":{"roomCode":"ABCDE","username":"alice"}}`)

	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if msg.Type != MsgCreateRoom {
		t.Fatalf("type: got %s", msg.Type)
	}

	var p CreateRoomPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.RoomCode != "ABCDE" || p.Username != "alice" || p.UserID != "" {
		t.Errorf("payload decoded as %+v", p)
	}
}
