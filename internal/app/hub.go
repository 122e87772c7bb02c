package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"botornot/internal/domain"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 5

	// StaleRoomTimeout is how long an empty lobby may linger before cleanup
	StaleRoomTimeout = 2 * time.Hour

	cleanupInterval = 10 * time.Minute
)

// RoomRegistry owns the collection of active rooms, keyed by room code
type RoomRegistry interface {
	Create(code string, room *RoomSession) error
	Get(code string) (*RoomSession, error)
	Delete(code string)
	Len() int
	Each(fn func(*RoomSession))
}

// SessionStore maps opaque session tokens to (room, user) identity
type SessionStore interface {
	Save(sessionID, roomCode, userID string)
	Resolve(sessionID string) (roomCode, userID string, ok bool)
	Delete(sessionID string)
	DropRoom(roomCode string)
}

// Options configures a RoomHub
type Options struct {
	Settings       domain.Settings
	Timing         Timing
	RoomCodeLength int
}

// RoomHub owns room lifecycle: creation, lookup, session resolution, and
// teardown. All inbound client actions resolve identity through the hub's
// session store rather than trusting client-supplied identifiers.
type RoomHub struct {
	rooms    RoomRegistry
	sessions SessionStore
	prefetch *Prefetcher
	opts     Options
	logger   *slog.Logger
	done     chan struct{}
}

// NewRoomHub creates a hub and starts its stale-room cleanup loop
func NewRoomHub(rooms RoomRegistry, sessions SessionStore, prefetch *Prefetcher, opts Options, logger *slog.Logger) *RoomHub {
	if opts.RoomCodeLength <= 0 {
		opts.RoomCodeLength = DefaultRoomCodeLength
	}
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming()
	}

	hub := &RoomHub{
		rooms:    rooms,
		sessions: sessions,
		prefetch: prefetch,
		opts:     opts,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go hub.cleanupLoop()

	return hub
}

// GenerateRoomCode returns a code that misses every key in the registry,
// re-sampling on collision rather than reusing
func (h *RoomHub) GenerateRoomCode() string {
	for {
		code := NewRoomCode(h.opts.RoomCodeLength)
		if _, err := h.rooms.Get(code); errors.Is(err, domain.ErrRoomNotFound) {
			return code
		}
	}
}

// CreateRoom creates a room under a pre-generated code and joins the
// creator, returning the room session and a fresh session token. The code
// was checked for uniqueness at generation time, so ErrRoomExists here
// means two callers raced on the same fresh code.
func (h *RoomHub) CreateRoom(code, userID, username string) (*RoomSession, string, error) {
	room := domain.NewRoom(code, uuid.NewString(), h.opts.Settings)
	session := newRoomSession(room, h, h.prefetch, h.opts.Timing, h.logger)

	if err := h.rooms.Create(code, session); err != nil {
		return nil, "", err
	}

	if err := session.Join(userID, username); err != nil {
		h.rooms.Delete(code)
		return nil, "", err
	}

	sessionID := NewSessionID(SessionIDLength)
	h.sessions.Save(sessionID, code, userID)

	h.logger.Info("room created", "room", code, "user", userID)
	return session, sessionID, nil
}

// JoinRoom adds a user to an existing lobby and returns the room session
// and a fresh session token
func (h *RoomHub) JoinRoom(code, userID, username string) (*RoomSession, string, error) {
	session, err := h.rooms.Get(code)
	if err != nil {
		return nil, "", err
	}

	if err := session.Join(userID, username); err != nil {
		return nil, "", err
	}

	sessionID := NewSessionID(SessionIDLength)
	h.sessions.Save(sessionID, code, userID)

	h.logger.Info("user joined", "room", code, "user", userID)
	return session, sessionID, nil
}

// ResolveSession maps a session token to its room session and user ID.
// Tokens for destroyed rooms no longer resolve.
func (h *RoomHub) ResolveSession(sessionID string) (*RoomSession, string, bool) {
	code, userID, ok := h.sessions.Resolve(sessionID)
	if !ok {
		return nil, "", false
	}

	session, err := h.rooms.Get(code)
	if err != nil {
		return nil, "", false
	}
	return session, userID, true
}

// Leave drops the caller's session record. The user's game-state slot is
// retained so round bookkeeping stays intact.
func (h *RoomHub) Leave(sessionID string) {
	h.sessions.Delete(sessionID)
}

// DestroyRoom tears a room down: removes it from the registry,
// invalidates every session bound to it, and disconnects its subscribers
func (h *RoomHub) DestroyRoom(code string) {
	session, err := h.rooms.Get(code)
	if err != nil {
		return
	}

	h.rooms.Delete(code)
	h.sessions.DropRoom(code)
	session.Close()

	h.logger.Info("room destroyed", "room", code)
}

// ActiveRooms returns the number of active rooms
func (h *RoomHub) ActiveRooms() int {
	return h.rooms.Len()
}

// TotalUsers returns the total member count across all rooms
func (h *RoomHub) TotalUsers() int {
	total := 0
	h.rooms.Each(func(s *RoomSession) {
		total += s.UserCount()
	})
	return total
}

// Close stops the cleanup loop and tears down every room
func (h *RoomHub) Close() {
	close(h.done)

	codes := make([]string, 0)
	h.rooms.Each(func(s *RoomSession) {
		codes = append(codes, s.Code())
	})
	for _, code := range codes {
		h.DestroyRoom(code)
	}
}

// cleanupLoop periodically removes lobbies that never got going
func (h *RoomHub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleRooms()
		}
	}
}

func (h *RoomHub) cleanupStaleRooms() {
	stale := make([]string, 0)
	now := time.Now()

	h.rooms.Each(func(s *RoomSession) {
		if s.Phase() == domain.PhaseLobby && s.SubscriberCount() == 0 && now.Sub(s.CreatedAt()) > StaleRoomTimeout {
			stale = append(stale, s.Code())
		}
	})

	for _, code := range stale {
		h.DestroyRoom(code)
		h.logger.Info("stale room cleaned up", "room", code)
	}
}
