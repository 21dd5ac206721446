// Package discussion keeps the append-only message board of a grid.
package discussion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/grid"
	"relief-grid-go/internal/domain/validation"
)

const maxMessageLength = 2000

var ErrDiscussionNotFound = errors.New("discussion not found")

type Discussion struct {
	ID         string      `gorm:"type:uuid;primaryKey"`
	GridID     string      `gorm:"type:uuid;not null;index"`
	AuthorName string      `gorm:"size:128;not null"`
	AuthorRole access.Role `gorm:"type:varchar(16);not null"`
	AuthorID   *string     `gorm:"column:author_id"`
	Message    string      `gorm:"not null"`
	CreatedAt  time.Time   `gorm:"autoCreateTime;index"`
}

func (Discussion) TableName() string {
	return "grid_discussions"
}

type PostInput struct {
	AuthorName string
	Message    string
}

type Repository interface {
	CreateDiscussion(ctx context.Context, discussion *Discussion) error
	// ListDiscussions returns the grid's messages newest first.
	ListDiscussions(ctx context.Context, gridID string, limit int) ([]Discussion, error)
}

type GridReader interface {
	Lookup(ctx context.Context, id string) (*grid.Grid, error)
}

type Service struct {
	repo  Repository
	grids GridReader
}

func NewService(repo Repository, grids GridReader) *Service {
	return &Service{repo: repo, grids: grids}
}

// Post appends a message. The author role is the actor's role at the time
// of posting and never changes afterwards.
func (s *Service) Post(ctx context.Context, actor access.Actor, gridID string, input PostInput) (*Discussion, error) {
	author := strings.TrimSpace(input.AuthorName)
	if author == "" {
		return nil, validation.Required("author_name")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, validation.Required("message")
	}
	if len([]rune(message)) > maxMessageLength {
		return nil, validation.Newf("message", "must be at most %d characters", maxMessageLength)
	}
	if _, err := s.grids.Lookup(ctx, gridID); err != nil {
		return nil, err
	}

	role := actor.Role
	if actor.IsGuest() {
		role = access.RoleGuest
	}
	discussion := Discussion{
		ID:         uuid.NewString(),
		GridID:     gridID,
		AuthorName: author,
		AuthorRole: role,
		AuthorID:   actor.ActorID(),
		Message:    message,
	}
	if err := s.repo.CreateDiscussion(ctx, &discussion); err != nil {
		return nil, err
	}
	return &discussion, nil
}

func (s *Service) List(ctx context.Context, gridID string, limit int) ([]Discussion, error) {
	if limit < 0 {
		return nil, validation.New("limit", "must not be negative")
	}
	if _, err := s.grids.Lookup(ctx, gridID); err != nil {
		return nil, err
	}
	return s.repo.ListDiscussions(ctx, gridID, limit)
}
