// Package store provides the in-memory implementations of the hub's room
// registry and session store. Both are plain mutex-guarded maps; the core
// state machine stays ignorant of storage mechanics so a test suite (or a
// later deployment) can substitute its own.
package store

import (
	"sync"

	"botornot/internal/app"
	"botornot/internal/domain"
)

// RoomRegistry is the in-memory collection of active rooms keyed by code
type RoomRegistry struct {
	rooms map[string]*app.RoomSession
	mu    sync.RWMutex
}

// NewRoomRegistry creates an empty room registry
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]*app.RoomSession),
	}
}

// Create stores a room under its code, failing if the code is taken.
// Codes are pre-checked at generation time, so a collision here indicates
// a racing caller rather than user error.
func (r *RoomRegistry) Create(code string, room *app.RoomSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[code]; exists {
		return domain.ErrRoomExists
	}
	r.rooms[code] = room
	return nil
}

// Get retrieves a room by code
func (r *RoomRegistry) Get(code string) (*app.RoomSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// Delete removes a room
func (r *RoomRegistry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
}

// Len returns the number of active rooms
func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Each calls fn for every active room
func (r *RoomRegistry) Each(fn func(*app.RoomSession)) {
	r.mu.RLock()
	sessions := make([]*app.RoomSession, 0, len(r.rooms))
	for _, s := range r.rooms {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		fn(s)
	}
}

type sessionRecord struct {
	roomCode string
	userID   string
}

// SessionStore maps opaque session tokens to (room, user) identity so
// clients can resume across reconnects without re-transmitting IDs
type SessionStore struct {
	sessions map[string]sessionRecord
	byRoom   map[string]map[string]struct{} // roomCode -> session IDs
	mu       sync.RWMutex
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]sessionRecord),
		byRoom:   make(map[string]map[string]struct{}),
	}
}

// Save records a session token for a (room, user) pair
func (s *SessionStore) Save(sessionID, roomCode, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = sessionRecord{roomCode: roomCode, userID: userID}
	if s.byRoom[roomCode] == nil {
		s.byRoom[roomCode] = make(map[string]struct{})
	}
	s.byRoom[roomCode][sessionID] = struct{}{}
}

// Resolve maps a session token back to its (room, user) pair
func (s *SessionStore) Resolve(sessionID string) (roomCode, userID string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return "", "", false
	}
	return rec.roomCode, rec.userID, true
}

// Delete drops a single session record
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	delete(s.sessions, sessionID)
	if ids := s.byRoom[rec.roomCode]; ids != nil {
		delete(ids, sessionID)
		if len(ids) == 0 {
			delete(s.byRoom, rec.roomCode)
		}
	}
}

// DropRoom invalidates every session bound to a room, used on teardown
func (s *SessionStore) DropRoom(roomCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sessionID := range s.byRoom[roomCode] {
		delete(s.sessions, sessionID)
	}
	delete(s.byRoom, roomCode)
}
