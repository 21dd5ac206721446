package volunteer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief-grid-go/internal/db/dbtest"
	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/geo"
	griddomain "relief-grid-go/internal/domain/grid"
	volunteerdomain "relief-grid-go/internal/domain/volunteer"
	"relief-grid-go/internal/gridlock"
	gridrepo "relief-grid-go/internal/repository/postgres/grid"
)

func TestAdvanceVolunteerKeepsCounter(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	locks := gridlock.New()
	grids := griddomain.NewService(gridrepo.NewPostgres(db), locks)
	svc := volunteerdomain.NewService(NewPostgres(db), grids, locks)
	admin := access.Actor{ID: "admin-1", Role: access.RoleAdmin}

	g, err := grids.CreateGrid(ctx, admin, griddomain.CreateGridInput{
		Code:            "A-01",
		GridType:        griddomain.TypeManpower,
		Center:          &geo.Coordinate{Lat: 23.67, Lng: 121.42},
		VolunteerNeeded: 5,
	})
	require.NoError(t, err)

	first, err := svc.Register(ctx, access.Guest(), g.ID, volunteerdomain.RegisterInput{
		VolunteerName: "Mei",
		Skills:        []string{"first aid", "first aid", "driving"},
	})
	require.NoError(t, err)
	second, err := svc.Register(ctx, access.Guest(), g.ID, volunteerdomain.RegisterInput{VolunteerName: "Hao"})
	require.NoError(t, err)

	_, err = svc.AdvanceVolunteer(ctx, admin, first.ID, volunteerdomain.StatusConfirmed)
	require.NoError(t, err)
	_, err = svc.AdvanceVolunteer(ctx, admin, second.ID, volunteerdomain.StatusConfirmed)
	require.NoError(t, err)
	_, err = svc.AdvanceVolunteer(ctx, admin, second.ID, volunteerdomain.StatusCancelled)
	require.NoError(t, err)

	_, err = svc.AdvanceVolunteer(ctx, admin, second.ID, volunteerdomain.StatusConfirmed)
	assert.ErrorIs(t, err, volunteerdomain.ErrInvalidTransition)

	stored, err := grids.Lookup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.VolunteerRegistered)

	registration, err := NewPostgres(db).GetRegistration(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, volunteerdomain.StatusConfirmed, registration.Status)
	assert.Len(t, registration.Skills, 2)
}

func TestUpdateStatusIsConditional(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()

	registration := &volunteerdomain.Registration{
		ID:            uuid.NewString(),
		GridID:        uuid.NewString(),
		VolunteerName: "Mei",
		Status:        volunteerdomain.StatusPending,
	}
	require.NoError(t, repo.CreateRegistration(ctx, registration))

	changed, err := repo.UpdateStatus(ctx, registration.ID, volunteerdomain.StatusPending, volunteerdomain.StatusConfirmed)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.UpdateStatus(ctx, registration.ID, volunteerdomain.StatusPending, volunteerdomain.StatusCancelled)
	require.NoError(t, err)
	assert.False(t, changed)

	list, err := repo.ListRegistrations(ctx, volunteerdomain.ListFilter{Status: volunteerdomain.StatusConfirmed})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetRegistration(ctx, uuid.NewString())
	assert.ErrorIs(t, err, volunteerdomain.ErrRegistrationNotFound)
}
