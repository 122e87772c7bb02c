package domain

// Round holds the prompt and the decoy's generated answer for one round.
// Fixed once the round's writing phase begins, immutable thereafter.
type Round struct {
	Prompt        string `json:"prompt"`
	DecoyResponse string `json:"decoyResponse"`
}
