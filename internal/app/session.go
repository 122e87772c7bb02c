package app

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"botornot/internal/domain"
)

// Outer bound on waiting for the prefetched pair at round start; the
// prefetcher's own generation timeout keeps this from ever being reached
// in practice
const consumeWait = time.Minute

const fallbackPrompt = "What's the best thing that happened to you this week?"

// ClientConn is one subscriber to a room's broadcast channel
type ClientConn interface {
	SendState(snapshot *domain.Room) error
	Close() error
}

// Timing holds the phase durations for a game
type Timing struct {
	Writing time.Duration
	Voting  time.Duration
	Results time.Duration
	Leeway  time.Duration // reply-in-flight allowance added to writing and voting deadlines
}

// DefaultTiming returns the default phase durations
func DefaultTiming() Timing {
	return Timing{
		Writing: 60 * time.Second,
		Voting:  30 * time.Second,
		Results: 10 * time.Second,
		Leeway:  3 * time.Second,
	}
}

// RoomSession is the per-room actor: it serializes every mutation against
// one room behind a single lock, owns the phase deadline timers, and
// pushes the full room snapshot to every subscriber on each change.
// Different rooms are fully independent.
type RoomSession struct {
	room *domain.Room
	hub  *RoomHub
	mu   sync.Mutex

	clients   map[ClientConn]struct{}
	clientsMu sync.RWMutex

	prefetch *Prefetcher
	timing   Timing
	rng      *rand.Rand
	logger   *slog.Logger
}

func newRoomSession(room *domain.Room, hub *RoomHub, prefetch *Prefetcher, timing Timing, logger *slog.Logger) *RoomSession {
	return &RoomSession{
		room:     room,
		hub:      hub,
		clients:  make(map[ClientConn]struct{}),
		prefetch: prefetch,
		timing:   timing,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logger,
	}
}

// Code returns the room code
func (s *RoomSession) Code() string {
	return s.room.Code
}

// CreatedAt returns when the room was created
func (s *RoomSession) CreatedAt() time.Time {
	return s.room.CreatedAt
}

// Phase returns the current game phase
func (s *RoomSession) Phase() domain.GamePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Phase
}

// UserCount returns the number of members
func (s *RoomSession) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.room.Users)
}

// Snapshot returns a deep copy of the current room state
func (s *RoomSession) Snapshot() *domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Snapshot()
}

// Subscribe adds a client to the room's broadcast channel
func (s *RoomSession) Subscribe(c ClientConn) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c] = struct{}{}
}

// Unsubscribe removes a client from the room's broadcast channel
func (s *RoomSession) Unsubscribe(c ClientConn) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, c)
}

// SubscriberCount returns the number of subscribed clients
func (s *RoomSession) SubscriberCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Join adds a user while the room is still in its lobby
func (s *RoomSession) Join(userID, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.AddUser(userID, username); err != nil {
		return err
	}
	s.broadcastLocked()
	return nil
}

// ToggleReady flips the user's ready flag and starts the game the instant
// every member is ready. Out-of-phase toggles are dropped.
func (s *RoomSession) ToggleReady(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.ToggleReady(userID); err != nil {
		return
	}
	if s.room.ReadyToStart() {
		s.startWritingLocked()
		return
	}
	s.broadcastLocked()
}

// SubmitAnswer records the user's answer for the current round and
// advances to voting once everyone has answered. Out-of-phase submissions
// are dropped.
func (s *RoomSession) SubmitAnswer(userID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.SubmitAnswer(userID, text); err != nil {
		return
	}
	s.broadcastLocked()
	if s.room.AllAnswered() {
		s.advanceFromLocked(domain.PhaseWriting, s.room.Round)
	}
}

// SubmitVote records the user's vote for the current round and advances to
// results once everyone has voted. A later vote replaces an earlier one;
// out-of-phase or self votes are dropped.
func (s *RoomSession) SubmitVote(userID, targetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.SubmitVote(userID, targetID); err != nil {
		return
	}
	s.broadcastLocked()
	if s.room.AllVoted() {
		s.advanceFromLocked(domain.PhaseVoting, s.room.Round)
	}
}

// advanceFrom advances out of the given phase if the room is still in it
// for the same round. Both the deadline timer and the completion
// predicates funnel through here, so whichever fires second is a no-op.
// Timers are never cancelled, only superseded by this guard.
func (s *RoomSession) advanceFrom(phase domain.GamePhase, round int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceFromLocked(phase, round)
}

func (s *RoomSession) advanceFromLocked(phase domain.GamePhase, round int) {
	if s.room.Phase != phase || s.room.Round != round {
		return
	}

	switch phase {
	case domain.PhaseWriting:
		s.startVotingLocked()
	case domain.PhaseVoting:
		s.startResultsLocked()
	case domain.PhaseVotingResults:
		if s.room.Round < s.room.Settings.RoundsPerGame {
			s.startWritingLocked()
		} else {
			s.endGameLocked()
		}
	}
}

// startWritingLocked enters the writing phase for the next round using the
// prefetched prompt/decoy pair, then lets the prefetcher refill itself
// while the humans write
func (s *RoomSession) startWritingLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), consumeWait)
	defer cancel()

	pair, err := s.prefetch.Consume(ctx)
	if err != nil {
		s.logger.Error("prefetch unavailable at round start", "room", s.room.Code, "error", err)
		pair = Pair{Prompt: fallbackPrompt, DecoyResponse: placeholderResponse}
	}

	s.room.StartRound(&domain.Round{Prompt: pair.Prompt, DecoyResponse: pair.DecoyResponse})
	s.logger.Info("round started", "room", s.room.Code, "round", s.room.Round)
	s.broadcastLocked()
	s.armTimerLocked(domain.PhaseWriting, s.timing.Writing+s.timing.Leeway)
}

func (s *RoomSession) startVotingLocked() {
	s.room.StartVoting()
	s.broadcastLocked()
	s.armTimerLocked(domain.PhaseVoting, s.timing.Voting+s.timing.Leeway)
}

// startResultsLocked runs the scoring pass for the round just completed
// and shows results for a fixed duration
func (s *RoomSession) startResultsLocked() {
	s.room.StartResults()
	s.room.ScoreRound(s.rng)
	s.broadcastLocked()
	s.armTimerLocked(domain.PhaseVotingResults, s.timing.Results)
}

// endGameLocked broadcasts the final state and hands the room to the hub
// for teardown
func (s *RoomSession) endGameLocked() {
	s.room.EndGame()
	s.logger.Info("game over", "room", s.room.Code, "winners", s.room.Winners())
	s.broadcastLocked()
	go s.hub.DestroyRoom(s.room.Code)
}

// armTimerLocked schedules the deadline advance for the phase just
// entered. The (phase, round) token pins the firing to this specific
// phase instance.
func (s *RoomSession) armTimerLocked(phase domain.GamePhase, d time.Duration) {
	round := s.room.Round
	time.AfterFunc(d, func() {
		s.advanceFrom(phase, round)
	})
}

// broadcastLocked publishes the current room snapshot to every
// subscriber. Sends are non-blocking on the client side.
func (s *RoomSession) broadcastLocked() {
	snapshot := s.room.Snapshot()

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for c := range s.clients {
		if err := c.SendState(snapshot); err != nil {
			s.logger.Debug("state push failed", "room", s.room.Code, "error", err)
		}
	}
}

// Close disconnects every subscriber. Pending phase timers fire into the
// advance guard and no-op.
func (s *RoomSession) Close() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for c := range s.clients {
		c.Close()
	}
	s.clients = make(map[ClientConn]struct{})
}
