package domain

import (
	"math/rand"
	"sort"
	"strings"
	"time"
)

// Settings holds configurable game parameters
type Settings struct {
	RoundsPerGame         int `json:"roundsPerGame"`
	MaxPlayers            int `json:"maxPlayers"`
	PointsPerVote         int `json:"pointsPerVote"`
	PointsPerCorrectGuess int `json:"pointsPerCorrectGuess"`
}

// DefaultSettings returns the default game settings
func DefaultSettings() Settings {
	return Settings{
		RoundsPerGame:         3,
		MaxPlayers:            10,
		PointsPerVote:         100,
		PointsPerCorrectGuess: 200,
	}
}

// Room is one isolated game instance identified by a short code. Its JSON
// form is exactly the snapshot pushed to clients on every state change.
// Room carries no locking of its own; the session actor owning it
// serializes all access.
type Room struct {
	Code       string           `json:"roomCode"`
	Phase      GamePhase        `json:"gamePhase"`
	TimerStart time.Time        `json:"timerStartTime"` // wall-clock anchor for the active phase
	Round      int              `json:"round"`
	Rounds     map[int]*Round   `json:"rounds"`
	Users      map[string]*User `json:"users"`
	DecoyID    string           `json:"decoyUserId"` // votable like a real player
	Settings   Settings         `json:"-"`
	CreatedAt  time.Time        `json:"-"`
}

// NewRoom creates a room in the lobby phase
func NewRoom(code, decoyID string, settings Settings) *Room {
	return &Room{
		Code:      code,
		Phase:     PhaseLobby,
		Round:     0,
		Rounds:    make(map[int]*Round),
		Users:     make(map[string]*User),
		DecoyID:   decoyID,
		Settings:  settings,
		CreatedAt: time.Now(),
	}
}

// AddUser adds a user to the room. Usernames are unique within the room
// after trimming; joining is only possible while the room is in the lobby.
func (r *Room) AddUser(userID, username string) error {
	if r.Phase != PhaseLobby {
		return ErrRoomStarted
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}

	if len(r.Users) >= r.Settings.MaxPlayers {
		return ErrRoomFull
	}

	for _, u := range r.Users {
		if u.Username == username {
			return ErrUsernameTaken
		}
	}

	r.Users[userID] = NewUser(username)
	return nil
}

// ToggleReady flips the user's lobby ready flag
func (r *Room) ToggleReady(userID string) error {
	if r.Phase != PhaseLobby {
		return ErrInvalidPhase
	}

	user, ok := r.Users[userID]
	if !ok {
		return ErrUserNotFound
	}

	user.Ready = !user.Ready
	return nil
}

// ReadyToStart reports whether the game should leave the lobby: at least
// two members, all of them ready. A lone player cannot start a game.
func (r *Room) ReadyToStart() bool {
	if len(r.Users) < 2 {
		return false
	}
	for _, u := range r.Users {
		if !u.Ready {
			return false
		}
	}
	return true
}

// StartRound enters the writing phase for the next round with the given
// prompt/decoy data
func (r *Room) StartRound(round *Round) {
	r.Round++
	r.Rounds[r.Round] = round
	r.Phase = PhaseWriting
	r.TimerStart = time.Now()
}

// StartVoting enters the voting phase for the current round
func (r *Room) StartVoting() {
	r.Phase = PhaseVoting
	r.TimerStart = time.Now()
}

// StartResults enters the results phase for the current round
func (r *Room) StartResults() {
	r.Phase = PhaseVotingResults
	r.TimerStart = time.Now()
}

// EndGame enters the terminal phase
func (r *Room) EndGame() {
	r.Phase = PhaseEnd
	r.TimerStart = time.Now()
}

// SubmitAnswer records the user's answer for the current round.
// Resubmission overwrites; stragglers simply leave their slot unset.
func (r *Room) SubmitAnswer(userID, text string) error {
	if r.Phase != PhaseWriting {
		return ErrInvalidPhase
	}

	user, ok := r.Users[userID]
	if !ok {
		return ErrUserNotFound
	}

	user.Answers[r.Round] = strings.TrimSpace(text)
	return nil
}

// AllAnswered reports whether every member has an answer recorded for the
// current round
func (r *Room) AllAnswered() bool {
	for _, u := range r.Users {
		if _, ok := u.Answers[r.Round]; !ok {
			return false
		}
	}
	return true
}

// SubmitVote records the user's vote for the current round. The target
// must be another member or the decoy; a later vote replaces an earlier
// one.
func (r *Room) SubmitVote(userID, targetID string) error {
	if r.Phase != PhaseVoting {
		return ErrInvalidPhase
	}

	user, ok := r.Users[userID]
	if !ok {
		return ErrUserNotFound
	}

	if targetID == userID {
		return ErrCannotVoteSelf
	}

	if !r.resolvable(targetID) {
		return ErrInvalidTarget
	}

	user.Votes[r.Round] = targetID
	return nil
}

// AllVoted reports whether every member has a vote recorded for the
// current round
func (r *Room) AllVoted() bool {
	for _, u := range r.Users {
		if _, ok := u.Votes[r.Round]; !ok {
			return false
		}
	}
	return true
}

// resolvable reports whether the ID refers to a member or the decoy
func (r *Room) resolvable(targetID string) bool {
	if targetID == r.DecoyID {
		return true
	}
	_, ok := r.Users[targetID]
	return ok
}

// ScoreRound runs the scoring pass for the current round. A member who
// voted for the decoy earns correct-guess points; a member voted for by
// someone earns received-a-vote points. A member with no resolvable vote
// gets one assigned uniformly at random among the other members and
// recorded into their vote history, so non-responsive players still
// contribute a vote and cannot stall scoring.
func (r *Room) ScoreRound(rng *rand.Rand) {
	for _, userID := range r.sortedUserIDs() {
		user := r.Users[userID]

		target, ok := user.Votes[r.Round]
		if !ok || target == userID || !r.resolvable(target) {
			target = r.randomOtherMember(userID, rng)
			if target == "" {
				continue
			}
			user.Votes[r.Round] = target
		}

		if target == r.DecoyID {
			user.Points += r.Settings.PointsPerCorrectGuess
			continue
		}
		r.Users[target].Points += r.Settings.PointsPerVote
	}
}

// randomOtherMember picks a uniformly random member other than the given
// user, or "" if there is none
func (r *Room) randomOtherMember(userID string, rng *rand.Rand) string {
	others := make([]string, 0, len(r.Users)-1)
	for _, id := range r.sortedUserIDs() {
		if id != userID {
			others = append(others, id)
		}
	}
	if len(others) == 0 {
		return ""
	}
	return others[rng.Intn(len(others))]
}

// Winners returns the IDs of the members with the strictly maximal points
// value; ties produce multiple winners.
func (r *Room) Winners() []string {
	max := -1
	for _, u := range r.Users {
		if u.Points > max {
			max = u.Points
		}
	}

	winners := make([]string, 0, 1)
	for _, id := range r.sortedUserIDs() {
		if r.Users[id].Points == max {
			winners = append(winners, id)
		}
	}
	return winners
}

// sortedUserIDs returns member IDs in a stable order
func (r *Room) sortedUserIDs() []string {
	ids := make([]string, 0, len(r.Users))
	for id := range r.Users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a deep copy safe to serialize outside the room lock
func (r *Room) Snapshot() *Room {
	snap := &Room{
		Code:       r.Code,
		Phase:      r.Phase,
		TimerStart: r.TimerStart,
		Round:      r.Round,
		Rounds:     make(map[int]*Round, len(r.Rounds)),
		Users:      make(map[string]*User, len(r.Users)),
		DecoyID:    r.DecoyID,
		Settings:   r.Settings,
		CreatedAt:  r.CreatedAt,
	}
	for n, round := range r.Rounds {
		c := *round
		snap.Rounds[n] = &c
	}
	for id, user := range r.Users {
		snap.Users[id] = user.clone()
	}
	return snap
}
