package model

import (
	"fmt"
	"time"
)

// User is a registered account. The username is the primary key and never changes.
type User struct {
	Username     string `gorm:"primaryKey;size:20"`
	PasswordHash string `gorm:"not null"` // bcrypt hash
	Email        string `gorm:"size:50;not null"`
	FirstName    string `gorm:"size:30;not null"`
	LastName     string `gorm:"size:30;not null"`
	CreatedAt    time.Time

	// Feedback is only populated when the user is loaded for a profile page
	Feedback []Feedback `gorm:"foreignKey:Username;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// FullName returns the display name of the user
func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

// OwnerUsername implements Owned; a user owns their own account
func (u *User) OwnerUsername() string {
	return u.Username
}
