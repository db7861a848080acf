package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	users    map[string]*model.User
	feedback map[model.FeedbackID]*model.Feedback
	nextID   model.FeedbackID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:    make(map[string]*model.User),
		feedback: make(map[model.FeedbackID]*model.Feedback),
		nextID:   1,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Username]; exists {
		return model.ErrDuplicateUsername
	}
	stored := *user
	stored.Feedback = nil
	s.users[user.Username] = &stored
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *user
	out.Feedback = []model.Feedback{}
	for _, f := range s.sortedFeedback() {
		if f.Username == username {
			out.Feedback = append(out.Feedback, *f)
		}
	}
	return &out, nil
}

func (s *Storage) LookupUser(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (s *Storage) ListUsers(ctx context.Context, limit int) ([]*model.User, error) {
	if limit <= 0 {
		return []*model.User{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	slices.Sort(names)

	result := make([]*model.User, 0, min(limit, len(names)))
	for _, name := range names {
		if len(result) >= limit {
			break
		}
		u := *s.users[name]
		result = append(result, &u)
	}
	return result, nil
}

func (s *Storage) DeleteUser(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return model.ErrUserNotFound
	}
	for id, f := range s.feedback {
		if f.Username == username {
			delete(s.feedback, id)
		}
	}
	delete(s.users, username)
	return nil
}

// Feedback operations

func (s *Storage) CreateFeedback(ctx context.Context, feedback *model.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[feedback.Username]; !ok {
		return model.ErrUserNotFound
	}
	feedback.ID = s.nextID
	s.nextID++
	stored := *feedback
	s.feedback[stored.ID] = &stored
	return nil
}

func (s *Storage) GetFeedback(ctx context.Context, id model.FeedbackID) (*model.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.feedback[id]
	if !ok {
		return nil, model.ErrFeedbackNotFound
	}
	out := *f
	return &out, nil
}

func (s *Storage) UpdateFeedback(ctx context.Context, feedback *model.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.feedback[feedback.ID]
	if !ok {
		return model.ErrFeedbackNotFound
	}
	existing.Title = feedback.Title
	existing.Content = feedback.Content
	existing.UpdatedAt = feedback.UpdatedAt
	return nil
}

func (s *Storage) DeleteFeedback(ctx context.Context, id model.FeedbackID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feedback[id]; !ok {
		return model.ErrFeedbackNotFound
	}
	delete(s.feedback, id)
	return nil
}

func (s *Storage) ListFeedback(ctx context.Context, limit int) ([]*model.Feedback, error) {
	if limit <= 0 {
		return []*model.Feedback{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sorted := s.sortedFeedback()
	result := make([]*model.Feedback, 0, min(limit, len(sorted)))
	for _, f := range sorted {
		if len(result) >= limit {
			break
		}
		out := *f
		result = append(result, &out)
	}
	return result, nil
}

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

// sortedFeedback returns all feedback in ascending id order. Callers must hold the lock.
func (s *Storage) sortedFeedback() []*model.Feedback {
	all := make([]*model.Feedback, 0, len(s.feedback))
	for _, f := range s.feedback {
		all = append(all, f)
	}
	slices.SortFunc(all, func(a, b *model.Feedback) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return all
}
