package grid

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief-grid-go/internal/db/dbtest"
	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/geo"
	griddomain "relief-grid-go/internal/domain/grid"
	"relief-grid-go/internal/gridlock"
	"relief-grid-go/internal/repository/postgres/shared"
)

var admin = access.Actor{ID: "admin-1", Role: access.RoleAdmin}

func newGrid(code string, lines ...griddomain.SupplyLine) *griddomain.Grid {
	g := &griddomain.Grid{
		ID:       uuid.NewString(),
		Code:     code,
		GridType: griddomain.TypeManpower,
		Status:   griddomain.StatusOpen,
		Version:  1,
	}
	center := geo.Coordinate{Lat: 23.67, Lng: 121.42}
	g.SetCenter(center)
	g.SetBounds(geo.DeriveBounds(center, geo.GridHalfWidth))
	for i, line := range lines {
		line.ID = uuid.NewString()
		line.GridID = g.ID
		line.Position = i
		g.SupplyLines = append(g.SupplyLines, line)
	}
	return g
}

func TestCreateAndGetGrid(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()

	g := newGrid("A-01",
		griddomain.SupplyLine{Name: "water", Quantity: 100, Unit: "bottle"},
		griddomain.SupplyLine{Name: "shovel", Quantity: 5, Unit: "piece"},
	)
	require.NoError(t, repo.CreateGrid(ctx, g))

	got, err := repo.GetGrid(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "A-01", got.Code)
	assert.Equal(t, int64(1), got.Version)
	require.Len(t, got.SupplyLines, 2)
	assert.Equal(t, "water", got.SupplyLines[0].Name)
	assert.Equal(t, "shovel", got.SupplyLines[1].Name)

	_, err = repo.GetGrid(ctx, uuid.NewString())
	assert.ErrorIs(t, err, griddomain.ErrGridNotFound)
}

func TestDuplicateCodeIsCaseInsensitive(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateGrid(ctx, newGrid("A-01")))

	taken, err := repo.IsCodeTaken(ctx, "a-01", "")
	require.NoError(t, err)
	assert.True(t, taken)

	err = repo.CreateGrid(ctx, newGrid("a-01"))
	assert.ErrorIs(t, err, griddomain.ErrDuplicateCode)
}

func TestListGridsFiltersAndLoadsLines(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()

	first := newGrid("A-01", griddomain.SupplyLine{Name: "water", Quantity: 10})
	second := newGrid("A-02")
	second.Status = griddomain.StatusClosed
	require.NoError(t, repo.CreateGrid(ctx, first))
	require.NoError(t, repo.CreateGrid(ctx, second))

	all, err := repo.ListGrids(ctx, griddomain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Len(t, all[0].SupplyLines, 1)
	assert.Empty(t, all[1].SupplyLines)

	open, err := repo.ListGrids(ctx, griddomain.ListFilter{Status: griddomain.StatusOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, first.ID, open[0].ID)
}

func TestUpdateGridChecksVersion(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()

	g := newGrid("A-01")
	require.NoError(t, repo.CreateGrid(ctx, g))

	g.MeetingPoint = "temple square"
	require.NoError(t, repo.UpdateGrid(ctx, g, 1))
	assert.Equal(t, int64(2), g.Version)

	g.MeetingPoint = "school"
	err := repo.UpdateGrid(ctx, g, 1)
	assert.ErrorIs(t, err, griddomain.ErrVersionConflict)

	missing := newGrid("Z-99")
	err = repo.UpdateGrid(ctx, missing, 1)
	assert.ErrorIs(t, err, griddomain.ErrGridNotFound)

	got, err := repo.GetGrid(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "temple square", got.MeetingPoint)
}

func TestAddSupplyDemandMergesByName(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()

	g := newGrid("A-01", griddomain.SupplyLine{Name: "water", Quantity: 100, Unit: "bottle"})
	require.NoError(t, repo.CreateGrid(ctx, g))

	next, err := repo.NextSupplyPosition(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	require.NoError(t, repo.AddSupplyDemand(ctx, &griddomain.SupplyLine{
		ID: uuid.NewString(), GridID: g.ID, Name: "water", Position: next, Quantity: 50, Unit: "bottle",
	}))
	require.NoError(t, repo.AddSupplyDemand(ctx, &griddomain.SupplyLine{
		ID: uuid.NewString(), GridID: g.ID, Name: "gloves", Position: next + 1, Quantity: 20, Unit: "pair",
	}))

	got, err := repo.GetGrid(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, got.SupplyLines, 2)
	assert.Equal(t, 150.0, got.SupplyLines[0].Quantity)
	assert.Equal(t, "gloves", got.SupplyLines[1].Name)
	assert.Equal(t, int64(3), got.Version)
}

func TestIncrementSupplyReceived(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()

	g := newGrid("A-01", griddomain.SupplyLine{Name: "water", Quantity: 100})
	require.NoError(t, repo.CreateGrid(ctx, g))

	require.NoError(t, repo.IncrementSupplyReceived(ctx, g.ID, "water", 40))
	require.NoError(t, repo.IncrementSupplyReceived(ctx, g.ID, "water", 70))

	line, err := repo.GetSupplyLine(ctx, g.ID, "water")
	require.NoError(t, err)
	assert.Equal(t, 110.0, line.Received)

	err = repo.IncrementSupplyReceived(ctx, g.ID, "Water", 1)
	assert.ErrorIs(t, err, griddomain.ErrUnknownSupplyLine)
}

func TestAdjustVolunteerRegisteredFloorsAtZero(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	g := newGrid("A-01")
	g.VolunteerRegistered = 1
	require.NoError(t, repo.CreateGrid(ctx, g))

	require.NoError(t, shared.AdjustVolunteerRegistered(ctx, db, g.ID, -1))
	require.NoError(t, shared.AdjustVolunteerRegistered(ctx, db, g.ID, -1))

	got, err := repo.GetGrid(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.VolunteerRegistered)
	assert.Equal(t, int64(3), got.Version)

	err = shared.AdjustVolunteerRegistered(ctx, db, uuid.NewString(), 1)
	assert.ErrorIs(t, err, griddomain.ErrGridNotFound)
}

func TestTransactionRollsBack(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	ctx := context.Background()

	g := newGrid("A-01", griddomain.SupplyLine{Name: "water", Quantity: 100})
	require.NoError(t, repo.CreateGrid(ctx, g))

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx griddomain.Repository) error {
		if err := tx.IncrementSupplyReceived(ctx, g.ID, "water", 30); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	line, err := repo.GetSupplyLine(ctx, g.ID, "water")
	require.NoError(t, err)
	assert.Zero(t, line.Received)
}

func TestDeleteGridFanOut(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	svc := griddomain.NewService(repo, gridlock.New())
	ctx := context.Background()

	g := newGrid("A-01", griddomain.SupplyLine{Name: "water", Quantity: 100})
	require.NoError(t, repo.CreateGrid(ctx, g))

	result, err := svc.DeleteGrid(ctx, admin, g.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.SupplyLines)

	_, err = repo.GetGrid(ctx, g.ID)
	assert.ErrorIs(t, err, griddomain.ErrGridNotFound)

	deleted, err := repo.DeleteGrid(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestConcurrentDonationsThroughService(t *testing.T) {
	repo := NewPostgres(dbtest.Open(t))
	svc := griddomain.NewService(repo, gridlock.New())
	ctx := context.Background()

	g := newGrid("A-01", griddomain.SupplyLine{Name: "water", Quantity: 100})
	require.NoError(t, repo.CreateGrid(ctx, g))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordDonation(ctx, g.ID, "water", 2.5); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("record donation: %v", err)
	}

	line, err := repo.GetSupplyLine(ctx, g.ID, "water")
	require.NoError(t, err)
	assert.Equal(t, 50.0, line.Received)
}
