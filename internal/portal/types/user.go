package types

// Role distinguishes organizers from competitors.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleParticipant Role = "participant"
)

// Round access statuses.  Rounds start locked and are opened per user by an
// admin.
const (
	AccessLocked = "locked"
	AccessActive = "active"
)

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Password     string `json:"-"` // plaintext; hashing is out of scope for this portal
	Role         Role   `json:"role"`
	TeamName     string `json:"teamName,omitempty"`
	TeamID       string `json:"teamId,omitempty"`
	Round1Access string `json:"round1Access"`
	Round2Access string `json:"round2Access"`
	Round3Access string `json:"round3Access"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
