// api/model/identity.go
package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the authenticated caller of a request. It is loaded once per
// request from the authoritative store and never mutated afterwards.
type Identity struct {
	UserID string `json:"user_id" db:"user_id"`
	Role   Role   `json:"role" db:"role"`
	PlanID string `json:"plan_id" db:"plan_id"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	PlanID    string    `json:"plan_id" db:"plan_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
