package app

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"botornot/internal/domain"
	"botornot/internal/llm"
)

// In-memory fakes for the hub's collaborators, so the state machine is
// exercised without the real store or transport packages.

type fakeRegistry struct {
	mu    sync.Mutex
	rooms map[string]*RoomSession
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{rooms: make(map[string]*RoomSession)}
}

func (f *fakeRegistry) Create(code string, room *RoomSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rooms[code]; ok {
		return domain.ErrRoomExists
	}
	f.rooms[code] = room
	return nil
}

func (f *fakeRegistry) Get(code string) (*RoomSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

func (f *fakeRegistry) Delete(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, code)
}

func (f *fakeRegistry) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rooms)
}

func (f *fakeRegistry) Each(fn func(*RoomSession)) {
	f.mu.Lock()
	sessions := make([]*RoomSession, 0, len(f.rooms))
	for _, s := range f.rooms {
		sessions = append(sessions, s)
	}
	f.mu.Unlock()
	for _, s := range sessions {
		fn(s)
	}
}

type fakeSessions struct {
	mu   sync.Mutex
	recs map[string][2]string // sessionID -> (roomCode, userID)
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{recs: make(map[string][2]string)}
}

func (f *fakeSessions) Save(sessionID, roomCode, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs[sessionID] = [2]string{roomCode, userID}
}

func (f *fakeSessions) Resolve(sessionID string) (string, string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[sessionID]
	if !ok {
		return "", "", false
	}
	return rec[0], rec[1], true
}

func (f *fakeSessions) Delete(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.recs, sessionID)
}

func (f *fakeSessions) DropRoom(roomCode string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, rec := range f.recs {
		if rec[0] == roomCode {
			delete(f.recs, id)
		}
	}
}

type fakeClient struct {
	mu     sync.Mutex
	states []*domain.Room
	closed bool
}

func (f *fakeClient) SendState(snapshot *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, snapshot)
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) lastState() *domain.Room {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.states) == 0 {
		return nil
	}
	return f.states[len(f.states)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings(rounds int) domain.Settings {
	s := domain.DefaultSettings()
	s.RoundsPerGame = rounds
	return s
}

// Deadlines short enough to race in a test, long enough not to fire
// before the test drives the phase it is asserting on
func testTiming() Timing {
	return Timing{
		Writing: 80 * time.Millisecond,
		Voting:  80 * time.Millisecond,
		Results: 40 * time.Millisecond,
		Leeway:  0,
	}
}

func newTestHub(t *testing.T, settings domain.Settings, timing Timing) *RoomHub {
	t.Helper()
	logger := testLogger()
	prefetch := NewPrefetcher(NewStaticPrompts(), llm.NewStaticGenerator(), logger)
	hub := NewRoomHub(newFakeRegistry(), newFakeSessions(), prefetch, Options{
		Settings: settings,
		Timing:   timing,
	}, logger)
	t.Cleanup(hub.Close)
	return hub
}

func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
