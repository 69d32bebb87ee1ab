package user

import "time"

// Role is the closed set of portal roles. Exactly one role per user;
// there is no multi-role or elevation concept.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleClient:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the public slice of a user that gets frozen into the
// session token at login. Role is a snapshot: changing the user's role
// in the database does not touch tokens already in the wild.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (u User) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}
