// Package sqlstore implements storage.Storage on a relational database through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mcoot/feedbackboard/internal/model"
	"github.com/mcoot/feedbackboard/internal/observability"
	"github.com/mcoot/feedbackboard/internal/storage"
)

// Storage is a gorm-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// New opens a database connection for the configured driver
func New(cfg Config) (*Storage, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(cfg),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// sqlite allows a single writer; in-memory databases also vanish per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	return &Storage{db: db}, nil
}

// newGormLogger sends gorm's output through slog. Statements are logged with
// placeholders only, so password hashes never reach the log.
func newGormLogger(cfg Config) logger.Interface {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	level := logger.Warn
	if cfg.LogQueries {
		level = logger.Info
	}
	return logger.NewSlogLogger(l.With(slog.String("component", "gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
}

// NewWithDB creates a Storage around an existing gorm handle (for testing)
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Migrate creates or upgrades the users and feedback tables
func (s *Storage) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&model.User{}, &model.Feedback{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	defer observability.TrackQuery("create_user")()

	if err := s.db.WithContext(ctx).Omit("Feedback").Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return model.ErrDuplicateUsername
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	defer observability.TrackQuery("get_user")()

	var user model.User
	err := s.db.WithContext(ctx).
		Preload("Feedback", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (s *Storage) LookupUser(ctx context.Context, username string) (*model.User, error) {
	defer observability.TrackQuery("lookup_user")()

	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &user, nil
}

func (s *Storage) ListUsers(ctx context.Context, limit int) ([]*model.User, error) {
	if limit <= 0 {
		return []*model.User{}, nil
	}
	defer observability.TrackQuery("list_users")()

	var users []*model.User
	if err := s.db.WithContext(ctx).Order("username").Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Storage) DeleteUser(ctx context.Context, username string) error {
	defer observability.TrackQuery("delete_user")()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the foreign key cascades too, but not every sqlite connection enforces it
		if err := tx.Where("username = ?", username).Delete(&model.Feedback{}).Error; err != nil {
			return fmt.Errorf("delete feedback for user: %w", err)
		}
		res := tx.Where("username = ?", username).Delete(&model.User{})
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return model.ErrUserNotFound
		}
		return nil
	})
}

// Feedback operations

func (s *Storage) CreateFeedback(ctx context.Context, feedback *model.Feedback) error {
	defer observability.TrackQuery("create_feedback")()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owners int64
		if err := tx.Model(&model.User{}).Where("username = ?", feedback.Username).Count(&owners).Error; err != nil {
			return fmt.Errorf("check feedback owner: %w", err)
		}
		if owners == 0 {
			return model.ErrUserNotFound
		}
		if err := tx.Create(feedback).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return model.ErrUserNotFound
			}
			return fmt.Errorf("create feedback: %w", err)
		}
		return nil
	})
}

func (s *Storage) GetFeedback(ctx context.Context, id model.FeedbackID) (*model.Feedback, error) {
	defer observability.TrackQuery("get_feedback")()

	var feedback model.Feedback
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&feedback).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	return &feedback, nil
}

func (s *Storage) UpdateFeedback(ctx context.Context, feedback *model.Feedback) error {
	defer observability.TrackQuery("update_feedback")()

	res := s.db.WithContext(ctx).
		Model(&model.Feedback{}).
		Where("id = ?", feedback.ID).
		Updates(map[string]any{
			"title":      feedback.Title,
			"content":    feedback.Content,
			"updated_at": feedback.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update feedback: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrFeedbackNotFound
	}
	return nil
}

func (s *Storage) DeleteFeedback(ctx context.Context, id model.FeedbackID) error {
	defer observability.TrackQuery("delete_feedback")()

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Feedback{})
	if res.Error != nil {
		return fmt.Errorf("delete feedback: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrFeedbackNotFound
	}
	return nil
}

func (s *Storage) ListFeedback(ctx context.Context, limit int) ([]*model.Feedback, error) {
	if limit <= 0 {
		return []*model.Feedback{}, nil
	}
	defer observability.TrackQuery("list_feedback")()

	var feedback []*model.Feedback
	if err := s.db.WithContext(ctx).Order("id").Limit(limit).Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return feedback, nil
}

// isUniqueConstraintError reports whether err is a unique or primary key violation,
// whether or not the dialector translated it.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
