package discussion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/grid"
	"relief-grid-go/internal/domain/validation"
)

type fakeRepo struct {
	items []Discussion
}

func (r *fakeRepo) CreateDiscussion(ctx context.Context, discussion *Discussion) error {
	r.items = append(r.items, *discussion)
	return nil
}

func (r *fakeRepo) ListDiscussions(ctx context.Context, gridID string, limit int) ([]Discussion, error) {
	result := make([]Discussion, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].GridID != gridID {
			continue
		}
		result = append(result, r.items[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

type fakeGrids struct{}

func (fakeGrids) Lookup(ctx context.Context, id string) (*grid.Grid, error) {
	if id != "grid-1" {
		return nil, grid.ErrGridNotFound
	}
	return &grid.Grid{ID: id}, nil
}

func TestPostSnapshotsRole(t *testing.T) {
	svc := NewService(&fakeRepo{}, fakeGrids{})
	manager := access.Actor{ID: "m-1", Role: access.RoleGridManager}

	posted, err := svc.Post(context.Background(), manager, "grid-1", PostInput{AuthorName: "Chen", Message: " need boots "})
	require.NoError(t, err)
	assert.Equal(t, access.RoleGridManager, posted.AuthorRole)
	assert.Equal(t, "need boots", posted.Message)

	guest, err := svc.Post(context.Background(), access.Actor{Role: access.RoleAdmin}, "grid-1", PostInput{AuthorName: "anon", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, access.RoleGuest, guest.AuthorRole)
	assert.Nil(t, guest.AuthorID)
}

func TestPostValidation(t *testing.T) {
	svc := NewService(&fakeRepo{}, fakeGrids{})

	_, err := svc.Post(context.Background(), access.Guest(), "grid-1", PostInput{AuthorName: "Chen"})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.Post(context.Background(), access.Guest(), "grid-9", PostInput{AuthorName: "Chen", Message: "x"})
	assert.ErrorIs(t, err, grid.ErrGridNotFound)
}

func TestListNewestFirst(t *testing.T) {
	svc := NewService(&fakeRepo{}, fakeGrids{})
	ctx := context.Background()
	for _, message := range []string{"first", "second", "third"} {
		_, err := svc.Post(ctx, access.Guest(), "grid-1", PostInput{AuthorName: "Lin", Message: message})
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, "grid-1", 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "third", items[0].Message)
	assert.Equal(t, "second", items[1].Message)
}
