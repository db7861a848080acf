package model

import "time"

// FeedbackID is the store-assigned identifier of a feedback entry
type FeedbackID uint

// Feedback is a short post authored by exactly one user
type Feedback struct {
	ID        FeedbackID `gorm:"primaryKey"`
	Title     string     `gorm:"size:100;not null"`
	Content   string     `gorm:"type:text;not null"`
	Username  string     `gorm:"size:20;not null;index"` // owner, immutable
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the singular table name used by existing deployments
func (Feedback) TableName() string {
	return "feedback"
}

// OwnerUsername implements Owned
func (f *Feedback) OwnerUsername() string {
	return f.Username
}
