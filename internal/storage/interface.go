package storage

import (
	"context"

	"github.com/mcoot/feedbackboard/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations

	// CreateUser inserts a new user. Returns model.ErrDuplicateUsername if
	// the username is taken; the check and the insert are atomic.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUser loads a user together with their feedback in ascending id order
	GetUser(ctx context.Context, username string) (*model.User, error)
	// LookupUser loads a user without their feedback
	LookupUser(ctx context.Context, username string) (*model.User, error)
	// ListUsers returns up to limit users ordered by username
	ListUsers(ctx context.Context, limit int) ([]*model.User, error)
	// DeleteUser removes a user and all of their feedback in one transaction
	DeleteUser(ctx context.Context, username string) error

	// Feedback operations

	// CreateFeedback inserts feedback and assigns its ID. Returns
	// model.ErrUserNotFound if the owner does not exist.
	CreateFeedback(ctx context.Context, feedback *model.Feedback) error
	GetFeedback(ctx context.Context, id model.FeedbackID) (*model.Feedback, error)
	// UpdateFeedback overwrites the title and content of existing feedback
	UpdateFeedback(ctx context.Context, feedback *model.Feedback) error
	DeleteFeedback(ctx context.Context, id model.FeedbackID) error
	// ListFeedback returns up to limit entries in ascending id order
	ListFeedback(ctx context.Context, limit int) ([]*model.Feedback, error)

	// Close releases any underlying connections
	Close() error
}
