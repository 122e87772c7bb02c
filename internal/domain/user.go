package domain

// User holds one member's game state. A user is created on join and never
// removed mid-game; leaving only drops the session mapping so round
// bookkeeping stays intact.
type User struct {
	Username string         `json:"username"`
	Ready    bool           `json:"ready"`
	Points   int            `json:"points"`
	Answers  map[int]string `json:"answers"` // round -> submitted text
	Votes    map[int]string `json:"votes"`   // round -> voted-for user ID
}

// NewUser creates a user with the given username
func NewUser(username string) *User {
	return &User{
		Username: username,
		Answers:  make(map[int]string),
		Votes:    make(map[int]string),
	}
}

func (u *User) clone() *User {
	c := &User{
		Username: u.Username,
		Ready:    u.Ready,
		Points:   u.Points,
		Answers:  make(map[int]string, len(u.Answers)),
		Votes:    make(map[int]string, len(u.Votes)),
	}
	for r, a := range u.Answers {
		c.Answers[r] = a
	}
	for r, v := range u.Votes {
		c.Votes[r] = v
	}
	return c
}
