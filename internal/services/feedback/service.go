package feedback

import (
	"context"
	"log/slog"

	"github.com/mcoot/feedbackboard/internal/dependencies/clock"
	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/storage"
)

// Service handles creation, editing and listing of feedback.
// It does not check ownership; callers gate mutations first.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new feedback Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Create posts new feedback for owner. Returns model.ErrUserNotFound if the owner does not exist.
func (s *Service) Create(ctx context.Context, owner, title, content string) (*model.Feedback, error) {
	now := s.clock.Now()
	fb := &model.Feedback{
		Title:     title,
		Content:   content,
		Username:  owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.CreateFeedback(ctx, fb); err != nil {
		return nil, err
	}

	s.logger.Info("feedback created",
		slog.Uint64("feedback_id", uint64(fb.ID)),
		slog.String("username", owner),
	)
	return fb, nil
}

// Get loads a single feedback entry
func (s *Service) Get(ctx context.Context, id model.FeedbackID) (*model.Feedback, error) {
	return s.storage.GetFeedback(ctx, id)
}

// Update overwrites title and content. Writing the same values again is allowed.
func (s *Service) Update(ctx context.Context, fb *model.Feedback, title, content string) error {
	updated := *fb
	updated.Title = title
	updated.Content = content
	updated.UpdatedAt = s.clock.Now()

	if err := s.storage.UpdateFeedback(ctx, &updated); err != nil {
		return err
	}
	*fb = updated
	return nil
}

// Delete permanently removes the feedback
func (s *Service) Delete(ctx context.Context, fb *model.Feedback) error {
	if err := s.storage.DeleteFeedback(ctx, fb.ID); err != nil {
		return err
	}
	s.logger.Info("feedback deleted",
		slog.Uint64("feedback_id", uint64(fb.ID)),
		slog.String("username", fb.Username),
	)
	return nil
}

// ListRecent returns up to limit entries in ascending id order
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*model.Feedback, error) {
	if limit <= 0 {
		return []*model.Feedback{}, nil
	}
	return s.storage.ListFeedback(ctx, limit)
}
