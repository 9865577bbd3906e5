// Package models contains data structures for the application's domain models.
package models

import "time"

// Role defines a user's privilege tier in the system.
type Role string

const (
	// RoleAdmin has full system access including board deletion and role management.
	RoleAdmin Role = "admin"
	// RoleModerator can manage boards and any feedback or comment.
	RoleModerator Role = "moderator"
	// RoleContributor is the default tier: submit feedback, comment, vote.
	RoleContributor Role = "contributor"
)

// Valid reports whether the role is one of the three known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleContributor:
		return true
	}
	return false
}

// Privileged reports whether the role carries moderation powers.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleModerator
}

// User represents an account in the Pulseboard application.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;unique;not null" json:"username"`
	Email     string    `gorm:"size:254;unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'contributor'" json:"role"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// FullName returns "first last", falling back to the username when no
// first name is set.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// Summary is the trimmed user payload returned on register/login.
type Summary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	FullName string `json:"full_name"`
}

// Summary builds the public summary payload for the user.
func (u *User) Summary() Summary {
	return Summary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		FullName: u.FullName(),
	}
}
