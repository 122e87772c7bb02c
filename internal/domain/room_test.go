package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestRoom(userIDs ...string) *Room {
	r := NewRoom("TESTR", "decoy-id", DefaultSettings())
	for _, id := range userIDs {
		if err := r.AddUser(id, "user-"+id); err != nil {
			panic(err)
		}
	}
	return r
}

func TestAddUser_DuplicateUsername(t *testing.T) {
	r := NewRoom("TESTR", "decoy-id", DefaultSettings())
	if err := r.AddUser("u1", "alice"); err != nil {
		t.Fatalf("first join: %v", err)
	}

	if err := r.AddUser("u2", "  alice  "); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username after trim: got %v, want ErrUsernameTaken", err)
	}
	if len(r.Users) != 1 {
		t.Errorf("room membership mutated on failed join: %d users", len(r.Users))
	}
}

func TestAddUser_EmptyUsername(t *testing.T) {
	r := NewRoom("TESTR", "decoy-id", DefaultSettings())
	if err := r.AddUser("u1", "   "); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("got %v, want ErrEmptyUsername", err)
	}
}

func TestAddUser_AfterStartRejected(t *testing.T) {
	r := newTestRoom("u1", "u2")
	r.StartRound(&Round{Prompt: "p", DecoyResponse: "d"})

	if err := r.AddUser("u3", "late"); !errors.Is(err, ErrRoomStarted) {
		t.Errorf("join after lobby: got %v, want ErrRoomStarted", err)
	}
}

func TestReadyToStart(t *testing.T) {
	r := newTestRoom("u1")
	r.ToggleReady("u1")
	if r.ReadyToStart() {
		t.Error("a lone ready player must not start the game")
	}

	r.AddUser("u2", "second")
	if r.ReadyToStart() {
		t.Error("unready member present, game must not start")
	}

	r.ToggleReady("u2")
	if !r.ReadyToStart() {
		t.Error("all ready with two members, game should start")
	}

	// Toggling off again blocks the start
	r.ToggleReady("u1")
	if r.ReadyToStart() {
		t.Error("member toggled back to unready, game must not start")
	}
}

func TestSubmitAnswer(t *testing.T) {
	r := newTestRoom("u1", "u2")

	if err := r.SubmitAnswer("u1", "early"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("answer in lobby: got %v, want ErrInvalidPhase", err)
	}

	r.StartRound(&Round{Prompt: "p", DecoyResponse: "d"})

	if err := r.SubmitAnswer("u1", "first"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := r.SubmitAnswer("u1", "second"); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if got := r.Users["u1"].Answers[1]; got != "second" {
		t.Errorf("resubmission should overwrite: got %q", got)
	}

	if r.AllAnswered() {
		t.Error("straggler present, AllAnswered should be false")
	}
	r.SubmitAnswer("u2", "done")
	if !r.AllAnswered() {
		t.Error("everyone answered, AllAnswered should be true")
	}
}

func TestSubmitVote(t *testing.T) {
	r := newTestRoom("u1", "u2")
	r.StartRound(&Round{Prompt: "p", DecoyResponse: "d"})

	if err := r.SubmitVote("u1", "u2"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("vote during writing: got %v, want ErrInvalidPhase", err)
	}

	r.StartVoting()

	if err := r.SubmitVote("u1", "u1"); !errors.Is(err, ErrCannotVoteSelf) {
		t.Errorf("self vote: got %v, want ErrCannotVoteSelf", err)
	}
	if err := r.SubmitVote("u1", "nobody"); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("unknown target: got %v, want ErrInvalidTarget", err)
	}

	if err := r.SubmitVote("u1", "decoy-id"); err != nil {
		t.Fatalf("vote for decoy: %v", err)
	}
	// Last vote wins
	if err := r.SubmitVote("u1", "u2"); err != nil {
		t.Fatalf("revote: %v", err)
	}
	if got := r.Users["u1"].Votes[1]; got != "u2" {
		t.Errorf("revote should overwrite: got %q", got)
	}

	if r.AllVoted() {
		t.Error("u2 has not voted, AllVoted should be false")
	}
	r.SubmitVote("u2", "u1")
	if !r.AllVoted() {
		t.Error("everyone voted, AllVoted should be true")
	}
}

func TestScoreRound(t *testing.T) {
	r := newTestRoom("u1", "u2", "u3")
	r.StartRound(&Round{Prompt: "p", DecoyResponse: "d"})
	r.StartVoting()

	r.SubmitVote("u1", "decoy-id") // correct guess
	r.SubmitVote("u2", "u1")       // real member
	r.SubmitVote("u3", "u1")       // real member

	r.ScoreRound(rand.New(rand.NewSource(1)))

	s := r.Settings
	if got := r.Users["u1"].Points; got != s.PointsPerCorrectGuess+2*s.PointsPerVote {
		t.Errorf("u1 points: got %d, want %d", got, s.PointsPerCorrectGuess+2*s.PointsPerVote)
	}
	if got := r.Users["u2"].Points; got != 0 {
		t.Errorf("u2 points: got %d, want 0", got)
	}
	if got := r.Users["u3"].Points; got != 0 {
		t.Errorf("u3 points: got %d, want 0", got)
	}
}

func TestScoreRound_FallbackNeverSelf(t *testing.T) {
	// A member who never votes gets a random assignment, never themselves,
	// and the assignment lands in their vote history
	for seed := int64(0); seed < 50; seed++ {
		r := newTestRoom("u1", "u2", "u3")
		r.StartRound(&Round{Prompt: "p", DecoyResponse: "d"})
		r.StartVoting()
		r.SubmitVote("u1", "u2")
		r.SubmitVote("u2", "u3")
		// u3 never votes

		r.ScoreRound(rand.New(rand.NewSource(seed)))

		assigned, ok := r.Users["u3"].Votes[1]
		if !ok {
			t.Fatalf("seed %d: fallback vote not recorded", seed)
		}
		if assigned == "u3" {
			t.Fatalf("seed %d: fallback vote assigned to the voter themselves", seed)
		}
		if assigned == "decoy-id" {
			t.Fatalf("seed %d: fallback vote must pick among members, got decoy", seed)
		}
	}
}

func TestScoreRound_PointsMonotonic(t *testing.T) {
	r := newTestRoom("u1", "u2")
	rng := rand.New(rand.NewSource(7))

	previous := map[string]int{}
	for round := 1; round <= 3; round++ {
		if round == 1 {
			r.StartRound(&Round{Prompt: "p", DecoyResponse: "d"})
		} else {
			r.Phase = PhaseVotingResults
			r.StartRound(&Round{Prompt: "p", DecoyResponse: "d"})
		}
		r.StartVoting()
		r.SubmitVote("u1", "u2")
		// u2 falls back each round
		r.StartResults()
		r.ScoreRound(rng)

		for id, u := range r.Users {
			if u.Points < previous[id] {
				t.Fatalf("round %d: points decreased for %s: %d -> %d", round, id, previous[id], u.Points)
			}
			previous[id] = u.Points
		}
	}
}

func TestWinners_Ties(t *testing.T) {
	r := newTestRoom("u1", "u2", "u3")
	r.Users["u1"].Points = 300
	r.Users["u2"].Points = 300
	r.Users["u3"].Points = 100

	winners := r.Winners()
	if len(winners) != 2 {
		t.Fatalf("got %d winners, want 2: %v", len(winners), winners)
	}
	if winners[0] != "u1" || winners[1] != "u2" {
		t.Errorf("winners: got %v, want [u1 u2]", winners)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := newTestRoom("u1", "u2")
	r.StartRound(&Round{Prompt: "p", DecoyResponse: "d"})

	snap := r.Snapshot()
	r.SubmitAnswer("u1", "mutated after snapshot")

	if _, ok := snap.Users["u1"].Answers[1]; ok {
		t.Error("snapshot shares answer map with live room")
	}
}
