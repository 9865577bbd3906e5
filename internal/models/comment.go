package models

import "time"

// Comment represents a discussion entry on a feedback item.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	FeedbackID uint      `gorm:"not null;index" json:"feedback_id"`
	Feedback   *Feedback `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE" json:"feedback,omitempty"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}
