package app

import (
	"crypto/rand"
	"encoding/hex"
)

// Characters used for room codes (no ambiguous chars like O/0 or I/1)
const roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// SessionIDLength is the length of opaque session tokens in hex characters
const SessionIDLength = 40

// NewRoomCode returns a random human-enterable room code of n characters.
// It carries no uniqueness guarantee on its own; callers re-sample until
// the code misses the room registry.
func NewRoomCode(n int) string {
	b := make([]byte, n)
	rand.Read(b)

	code := make([]byte, n)
	for i := range code {
		code[i] = roomCodeChars[int(b[i])%len(roomCodeChars)]
	}
	return string(code)
}

// NewSessionID returns an opaque identifier of n hex characters from a
// cryptographically strong source. A fresh draw is collision-free in
// practice at the scale of one process's lifetime.
func NewSessionID(n int) string {
	b := make([]byte, (n+1)/2)
	rand.Read(b)
	return hex.EncodeToString(b)[:n]
}
