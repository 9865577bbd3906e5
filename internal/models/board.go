package models

import "time"

// Visibility defines whether a board is open to everyone or member-gated.
type Visibility string

const (
	// VisibilityPublic boards are readable by any actor, anonymous included.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate boards are readable only by members and privileged roles.
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether the visibility is one of the two known states.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Board represents a named container scoping feedback visibility and membership.
type Board struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Visibility  Visibility `gorm:"type:varchar(10);not null;default:'public'" json:"visibility"`
	Members     []User     `gorm:"many2many:board_members;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	// MemberCount is not persisted; computed at query time
	MemberCount int `gorm:"->" json:"member_count"`
	// FeedbackCount is not persisted; computed at query time
	FeedbackCount int       `gorm:"->" json:"feedback_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Board) TableName() string {
	return "boards"
}
