package domain

// GamePhase represents the stage a room is currently in
type GamePhase string

const (
	PhaseLobby         GamePhase = "LOBBY"          // Waiting for everyone to ready up
	PhaseWriting       GamePhase = "WRITING"        // Players writing answers to the prompt
	PhaseVoting        GamePhase = "VOTING"         // Players picking the decoy answer
	PhaseVotingResults GamePhase = "VOTING_RESULTS" // Showing votes & awarded points
	PhaseEnd           GamePhase = "END"            // Game over, room about to be torn down
)

// String returns the string representation of the phase
func (p GamePhase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	validTransitions := map[GamePhase][]GamePhase{
		PhaseLobby:         {PhaseWriting},
		PhaseWriting:       {PhaseVoting},
		PhaseVoting:        {PhaseVotingResults},
		PhaseVotingResults: {PhaseWriting, PhaseEnd}, // Next round, or game over
		PhaseEnd:           {},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}
