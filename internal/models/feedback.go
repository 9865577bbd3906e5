package models

import "time"

// FeedbackStatus defines the workflow state of a feedback item.
type FeedbackStatus string

const (
	// StatusOpen is the initial state of new feedback.
	StatusOpen FeedbackStatus = "open"
	// StatusInProgress indicates work has started.
	StatusInProgress FeedbackStatus = "in_progress"
	// StatusUnderReview indicates the item is being evaluated.
	StatusUnderReview FeedbackStatus = "under_review"
	// StatusCompleted indicates the item was delivered.
	StatusCompleted FeedbackStatus = "completed"
	// StatusRejected indicates the item was declined.
	StatusRejected FeedbackStatus = "rejected"
)

// Valid reports whether the status is one of the five workflow states.
func (s FeedbackStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusUnderReview, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// FeedbackPriority defines the priority level of a feedback item.
type FeedbackPriority string

const (
	// PriorityLow is the lowest priority level.
	PriorityLow FeedbackPriority = "low"
	// PriorityMedium is the default priority level.
	PriorityMedium FeedbackPriority = "medium"
	// PriorityHigh is the highest priority level.
	PriorityHigh FeedbackPriority = "high"
)

// Valid reports whether the priority is one of the three known levels.
func (p FeedbackPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Feedback represents a feature request, bug report, or suggestion on a board.
type Feedback struct {
	ID       uint             `gorm:"primaryKey" json:"id"`
	Title    string           `gorm:"size:255;not null" json:"title"`
	Content  string           `gorm:"type:text;not null" json:"content"`
	Status   FeedbackStatus   `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Priority FeedbackPriority `gorm:"type:varchar(10);not null;default:'medium';index" json:"priority"`
	BoardID  uint             `gorm:"not null;index" json:"board_id"`
	Board    *Board           `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"board,omitempty"`
	AuthorID uint             `gorm:"not null;index" json:"author_id"`
	Author   *User            `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Tags     []Tag            `gorm:"many2many:feedback_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Upvoters []User           `gorm:"many2many:feedback_upvotes;constraint:OnDelete:CASCADE" json:"-"`
	// UpvoteCount is not persisted; computed at query time
	UpvoteCount int `gorm:"->" json:"upvote_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->" json:"comment_count"`
	// Upvoted indicates whether the requesting user upvoted this item (computed)
	Upvoted   bool      `gorm:"->" json:"upvoted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Feedback) TableName() string {
	return "feedbacks"
}
