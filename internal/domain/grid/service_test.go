package grid

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/area"
	"relief-grid-go/internal/domain/geo"
	"relief-grid-go/internal/domain/validation"
	"relief-grid-go/internal/gridlock"
)

var (
	admin   = access.Actor{ID: "admin-1", Role: access.RoleAdmin}
	manager = access.Actor{ID: "manager-1", Role: access.RoleGridManager}
	other   = access.Actor{ID: "manager-2", Role: access.RoleGridManager}
)

type fakeAreas map[string]*area.DisasterArea

func (a fakeAreas) GetArea(ctx context.Context, id string) (*area.DisasterArea, error) {
	found, ok := a[id]
	if !ok {
		return nil, area.ErrAreaNotFound
	}
	return found, nil
}

func newTestService(t *testing.T) (*Service, *fakeGridRepo) {
	t.Helper()
	repo := newFakeGridRepo()
	return NewService(repo, gridlock.New()), repo
}

func createGrid(t *testing.T, svc *Service, actor access.Actor, input CreateGridInput) *Grid {
	t.Helper()
	if input.GridType == "" {
		input.GridType = TypeManpower
	}
	if input.Center == nil {
		input.Center = &geo.Coordinate{Lat: 23.67, Lng: 121.43}
	}
	created, err := svc.CreateGrid(context.Background(), actor, input)
	require.NoError(t, err)
	return created
}

func TestCreateGridDerivesBoundsAndDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	created := createGrid(t, svc, manager, CreateGridInput{Code: " A-01 "})

	assert.Equal(t, "A-01", created.Code)
	assert.Equal(t, StatusOpen, created.Status)
	require.NotNil(t, created.GridManagerID)
	assert.Equal(t, manager.ID, *created.GridManagerID)
	assert.True(t, created.Bounds().Matches(created.Center(), geo.GridHalfWidth))
}

func TestCreateGridUsesAreaCenterWhenMissing(t *testing.T) {
	repo := newFakeGridRepo()
	areaID := "area-1"
	areas := fakeAreas{areaID: {ID: areaID, CenterLat: 23.7, CenterLng: 121.4}}
	svc := NewService(repo, gridlock.New(), WithAreas(areas))

	created, err := svc.CreateGrid(context.Background(), admin, CreateGridInput{
		Code:           "B-01",
		GridType:       TypeMudDisposal,
		DisasterAreaID: &areaID,
	})
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinate{Lat: 23.7, Lng: 121.4}, created.Center())

	missing := "nope"
	_, err = svc.CreateGrid(context.Background(), admin, CreateGridInput{
		Code:           "B-02",
		GridType:       TypeMudDisposal,
		DisasterAreaID: &missing,
	})
	assert.ErrorIs(t, err, area.ErrAreaNotFound)
}

func TestCreateGridRejectsDuplicateCodeIgnoringCase(t *testing.T) {
	svc, _ := newTestService(t)
	createGrid(t, svc, admin, CreateGridInput{Code: "A-01"})

	_, err := svc.CreateGrid(context.Background(), admin, CreateGridInput{
		Code:     "a-01",
		GridType: TypeManpower,
		Center:   &geo.Coordinate{Lat: 1, Lng: 1},
	})
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestCreateGridValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	center := &geo.Coordinate{Lat: 1, Lng: 1}

	cases := map[string]CreateGridInput{
		"empty code":     {Code: " ", GridType: TypeManpower, Center: center},
		"unknown type":   {Code: "X", GridType: "tent", Center: center},
		"unknown status": {Code: "X", GridType: TypeManpower, Status: "paused", Center: center},
		"no center":      {Code: "X", GridType: TypeManpower},
		"bad latitude":   {Code: "X", GridType: TypeManpower, Center: &geo.Coordinate{Lat: 91}},
		"negative need":  {Code: "X", GridType: TypeManpower, Center: center, VolunteerNeeded: -1},
		"inverted bounds": {Code: "X", GridType: TypeManpower, Center: center,
			Bounds: &geo.Bounds{North: 0, South: 1, East: 1, West: 0}},
		"duplicate line": {Code: "X", GridType: TypeManpower, Center: center,
			Supplies: []SupplyLineInput{{Name: "water", Quantity: 1}, {Name: "water", Quantity: 2}}},
		"infinite quantity": {Code: "X", GridType: TypeManpower, Center: center,
			Supplies: []SupplyLineInput{{Name: "water", Quantity: math.Inf(1)}}},
		"infinite received": {Code: "X", GridType: TypeManpower, Center: center,
			Supplies: []SupplyLineInput{{Name: "water", Quantity: 1, Received: math.Inf(1)}}},
		"nan quantity": {Code: "X", GridType: TypeManpower, Center: center,
			Supplies: []SupplyLineInput{{Name: "water", Quantity: math.NaN()}}},
		"pipe in name": {Code: "X", GridType: TypeManpower, Center: center,
			Supplies: []SupplyLineInput{{Name: "water|ice", Quantity: 1}}},
		"colon in unit": {Code: "X", GridType: TypeManpower, Center: center,
			Supplies: []SupplyLineInput{{Name: "water", Quantity: 1, Unit: "l:bottle"}}},
	}

	for name, input := range cases {
		_, err := svc.CreateGrid(ctx, admin, input)
		assert.ErrorIs(t, err, validation.ErrInvalid, name)
	}
}

func TestRequestSuppliesIsAdditive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g := createGrid(t, svc, admin, CreateGridInput{Code: "S-01"})

	_, err := svc.RequestSupplies(ctx, g.ID, []SupplyItem{{Name: "water", Quantity: 100, Unit: "bottle"}})
	require.NoError(t, err)

	updated, err := svc.RequestSupplies(ctx, g.ID, []SupplyItem{
		{Name: "water", Quantity: 20, Unit: "bottle"},
		{Name: "shovel", Quantity: 5, Unit: "piece"},
		{Name: "shovel", Quantity: 1, Unit: "piece"},
	})
	require.NoError(t, err)

	require.Len(t, updated.SupplyLines, 2)
	assert.Equal(t, "water", updated.SupplyLines[0].Name)
	assert.Equal(t, 120.0, updated.SupplyLines[0].Quantity)
	assert.Equal(t, "shovel", updated.SupplyLines[1].Name)
	assert.Equal(t, 6.0, updated.SupplyLines[1].Quantity)
	assert.Zero(t, updated.SupplyLines[1].Received)
}

func TestRequestSuppliesValidatesItems(t *testing.T) {
	svc, _ := newTestService(t)
	g := createGrid(t, svc, admin, CreateGridInput{Code: "S-02"})

	_, err := svc.RequestSupplies(context.Background(), g.ID, []SupplyItem{{Name: "water", Quantity: 0, Unit: "bottle"}})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.RequestSupplies(context.Background(), "missing", []SupplyItem{{Name: "water", Quantity: 1, Unit: "bottle"}})
	assert.ErrorIs(t, err, ErrGridNotFound)
}

func TestRecordDonationAllowsOverDelivery(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g := createGrid(t, svc, admin, CreateGridInput{
		Code:     "W-01",
		Supplies: []SupplyLineInput{{Name: "water", Quantity: 100, Unit: "bottle"}},
	})

	line, err := svc.RecordDonation(ctx, g.ID, "water", 40)
	require.NoError(t, err)
	assert.Equal(t, 40.0, line.Received)
	assert.InDelta(t, 0.4, FulfillmentRatio(*line), 1e-9)

	line, err = svc.RecordDonation(ctx, g.ID, "water", 70)
	require.NoError(t, err)
	assert.Equal(t, 110.0, line.Received)
	assert.Zero(t, Remaining(*line))
	assert.True(t, Fulfilled(*line))
}

func TestRecordDonationUnknownLine(t *testing.T) {
	svc, _ := newTestService(t)
	g := createGrid(t, svc, admin, CreateGridInput{
		Code:     "W-02",
		Supplies: []SupplyLineInput{{Name: "water", Quantity: 100, Unit: "bottle"}},
	})

	_, err := svc.RecordDonation(context.Background(), g.ID, "Water", 5)
	assert.ErrorIs(t, err, ErrUnknownSupplyLine)

	_, err = svc.RecordDonation(context.Background(), g.ID, "water", -1)
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestConcurrentDonationsAreNotLost(t *testing.T) {
	svc, repo := newTestService(t)
	g := createGrid(t, svc, admin, CreateGridInput{
		Code:     "W-03",
		Supplies: []SupplyLineInput{{Name: "rice", Quantity: 500, Unit: "kg"}},
	})

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordDonation(context.Background(), g.ID, "rice", 2); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	line, err := repo.GetSupplyLine(context.Background(), g.ID, "rice")
	require.NoError(t, err)
	assert.Equal(t, 100.0, line.Received)
}

func TestContactRedaction(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g := createGrid(t, svc, manager, CreateGridInput{Code: "R-01", ContactInfo: "0912-345-678"})

	for _, actor := range []access.Actor{access.Guest(), other, {ID: "v-1", Role: access.RoleVolunteer}} {
		got, err := svc.GetGrid(ctx, actor, g.ID)
		require.NoError(t, err)
		assert.Equal(t, access.RedactedPlaceholder, got.ContactInfo, "actor %+v", actor)
	}
	for _, actor := range []access.Actor{manager, admin} {
		got, err := svc.GetGrid(ctx, actor, g.ID)
		require.NoError(t, err)
		assert.Equal(t, "0912-345-678", got.ContactInfo, "actor %+v", actor)
	}

	listed, err := svc.ListGrids(ctx, access.Guest(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, access.RedactedPlaceholder, listed[0].ContactInfo)

	raw, err := svc.Lookup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "0912-345-678", raw.ContactInfo)
}

func TestUpdateGrid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g := createGrid(t, svc, admin, CreateGridInput{Code: "U-01"})
	createGrid(t, svc, admin, CreateGridInput{Code: "U-02"})

	input := UpdateGridInput{
		Code:            "U-01b",
		GridType:        TypeAccommodation,
		Status:          StatusClosed,
		Center:          geo.Coordinate{Lat: 24, Lng: 121},
		VolunteerNeeded: 3,
		Supplies:        []SupplyLineInput{{Name: "tent", Quantity: 4, Received: 1, Unit: "piece"}},
		ExpectedVersion: g.Version,
	}

	_, err := svc.UpdateGrid(ctx, manager, g.ID, input)
	assert.ErrorIs(t, err, access.ErrForbidden)

	updated, err := svc.UpdateGrid(ctx, admin, g.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "U-01b", updated.Code)
	assert.Equal(t, g.Version+1, updated.Version)
	assert.True(t, updated.Bounds().Matches(geo.Coordinate{Lat: 24, Lng: 121}, geo.GridHalfWidth))
	require.Len(t, updated.SupplyLines, 1)
	assert.Equal(t, 1.0, updated.SupplyLines[0].Received)

	_, err = svc.UpdateGrid(ctx, admin, g.ID, input)
	assert.ErrorIs(t, err, ErrVersionConflict)

	input.Code = "u-02"
	input.ExpectedVersion = 0
	_, err = svc.UpdateGrid(ctx, admin, g.ID, input)
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestUpdateGridRelocationDropsStaleBounds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g := createGrid(t, svc, admin, CreateGridInput{Code: "R-01"})
	stale := g.Bounds()
	moved := geo.Coordinate{Lat: 25, Lng: 122}

	updated, err := svc.UpdateGrid(ctx, admin, g.ID, UpdateGridInput{
		Code:     g.Code,
		GridType: g.GridType,
		Status:   g.Status,
		Center:   moved,
		Bounds:   &stale,
	})
	require.NoError(t, err)
	assert.Equal(t, moved, updated.Center())
	assert.True(t, updated.Bounds().Matches(moved, geo.GridHalfWidth), "%+v", updated.Bounds())

	custom := geo.Bounds{North: 25.01, South: 24.99, East: 122.01, West: 121.99}
	updated, err = svc.UpdateGrid(ctx, admin, g.ID, UpdateGridInput{
		Code:     g.Code,
		GridType: g.GridType,
		Status:   g.Status,
		Center:   moved,
		Bounds:   &custom,
	})
	require.NoError(t, err)
	assert.Equal(t, custom, updated.Bounds())
}

func TestCreateGridIgnoresProgressFromNonAdmins(t *testing.T) {
	svc, _ := newTestService(t)
	input := CreateGridInput{
		Status:              StatusCompleted,
		VolunteerNeeded:     10,
		VolunteerRegistered: 10,
		Supplies:            []SupplyLineInput{{Name: "water", Quantity: 100, Received: 100, Unit: "bottle"}},
	}

	input.Code = "P-01"
	guest := createGrid(t, svc, access.Guest(), input)
	assert.Equal(t, StatusOpen, guest.Status)
	assert.Equal(t, 0, guest.VolunteerRegistered)
	assert.Equal(t, 10, guest.VolunteerNeeded)
	require.Len(t, guest.SupplyLines, 1)
	assert.Equal(t, 0.0, guest.SupplyLines[0].Received)
	assert.Nil(t, guest.GridManagerID)

	input.Code = "P-02"
	input.Status = StatusPreparing
	managed := createGrid(t, svc, manager, input)
	assert.Equal(t, StatusPreparing, managed.Status)
	assert.Equal(t, 0, managed.VolunteerRegistered)

	input.Code = "P-03"
	input.Status = StatusCompleted
	imported := createGrid(t, svc, admin, input)
	assert.Equal(t, StatusCompleted, imported.Status)
	assert.Equal(t, 10, imported.VolunteerRegistered)
	assert.Equal(t, 100.0, imported.SupplyLines[0].Received)
}

func TestDeleteGridFansOut(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	g := createGrid(t, svc, admin, CreateGridInput{
		Code:     "D-01",
		Supplies: []SupplyLineInput{{Name: "water", Quantity: 1, Unit: "bottle"}},
	})
	repo.addDependents(DependentRegistrations, g.ID, 3)
	repo.addDependents(DependentDonations, g.ID, 2)
	repo.addDependents(DependentDiscussions, g.ID, 1)

	_, err := svc.DeleteGrid(ctx, manager, g.ID)
	assert.ErrorIs(t, err, access.ErrForbidden)

	result, err := svc.DeleteGrid(ctx, admin, g.ID)
	require.NoError(t, err)
	assert.Equal(t, DeleteResult{Registrations: 3, Donations: 2, Discussions: 1, SupplyLines: 1}, result)

	_, err = svc.DeleteGrid(ctx, admin, g.ID)
	assert.ErrorIs(t, err, ErrGridNotFound)
}

func TestCorrections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	g := createGrid(t, svc, admin, CreateGridInput{
		Code:     "C-01",
		Supplies: []SupplyLineInput{{Name: "water", Quantity: 10, Received: 8, Unit: "bottle"}},
	})

	_, err := svc.CorrectSupplyLine(ctx, manager, g.ID, "water", 1)
	assert.ErrorIs(t, err, access.ErrForbidden)

	line, err := svc.CorrectSupplyLine(ctx, admin, g.ID, "water", 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, line.Received)

	_, err = svc.CorrectVolunteerCount(ctx, admin, g.ID, -1)
	assert.ErrorIs(t, err, validation.ErrInvalid)

	updated, err := svc.CorrectVolunteerCount(ctx, admin, g.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.VolunteerRegistered)
}

func TestFixBounds(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	good := createGrid(t, svc, admin, CreateGridInput{Code: "F-01"})
	broken := createGrid(t, svc, admin, CreateGridInput{Code: "F-02"})
	far := createGrid(t, svc, admin, CreateGridInput{Code: "F-03"})

	require.NoError(t, repo.UpdateBounds(ctx, broken.ID, geo.Bounds{}))
	require.NoError(t, repo.UpdateBounds(ctx, far.ID, geo.Bounds{North: 1, South: 0, East: 1, West: 0}))

	_, err := svc.FixBounds(ctx, manager)
	assert.ErrorIs(t, err, access.ErrForbidden)

	fixed, err := svc.FixBounds(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, fixed)

	for _, id := range []string{good.ID, broken.ID, far.ID} {
		g, err := svc.Lookup(ctx, id)
		require.NoError(t, err)
		assert.True(t, g.Bounds().Matches(g.Center(), geo.GridHalfWidth), g.Code)
	}
}

// editAfterListRepo runs afterList once, right after a listing returns.
type editAfterListRepo struct {
	*fakeGridRepo
	afterList func()
}

func (r *editAfterListRepo) ListGrids(ctx context.Context, filter ListFilter) ([]Grid, error) {
	grids, err := r.fakeGridRepo.ListGrids(ctx, filter)
	if fn := r.afterList; fn != nil {
		r.afterList = nil
		fn()
	}
	return grids, err
}

func TestFixBoundsUsesCenterAfterConcurrentMove(t *testing.T) {
	repo := &editAfterListRepo{fakeGridRepo: newFakeGridRepo()}
	svc := NewService(repo, gridlock.New())
	ctx := context.Background()
	moved := createGrid(t, svc, admin, CreateGridInput{Code: "M-01"})
	edited := createGrid(t, svc, admin, CreateGridInput{Code: "M-02"})
	require.NoError(t, repo.UpdateBounds(ctx, moved.ID, geo.Bounds{}))
	require.NoError(t, repo.UpdateBounds(ctx, edited.ID, geo.Bounds{}))

	target := geo.Coordinate{Lat: 25, Lng: 122}
	repo.afterList = func() {
		repo.mu.Lock()
		repo.grids[moved.ID].SetCenter(target)
		repo.mu.Unlock()

		_, err := svc.UpdateGrid(ctx, admin, edited.ID, UpdateGridInput{
			Code:     edited.Code,
			GridType: edited.GridType,
			Status:   edited.Status,
			Center:   target,
		})
		require.NoError(t, err)
	}

	fixed, err := svc.FixBounds(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	for _, id := range []string{moved.ID, edited.ID} {
		g, err := svc.Lookup(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, target, g.Center())
		assert.True(t, g.Bounds().Matches(target, geo.GridHalfWidth), "%s %+v", g.Code, g.Bounds())
	}
}

func TestFeeds(t *testing.T) {
	repo := newFakeGridRepo()
	repo.areas = 2
	cache := newMapFeedCache()
	svc := NewService(repo, gridlock.New(), WithFeedCache(cache, time.Minute))
	ctx := context.Background()

	createGrid(t, svc, admin, CreateGridInput{Code: "M-01", VolunteerNeeded: 10, VolunteerRegistered: 9})
	critical := createGrid(t, svc, admin, CreateGridInput{
		Code:            "M-02",
		VolunteerNeeded: 10,
		ContactInfo:     "secret",
		Supplies: []SupplyLineInput{
			{Name: "water", Quantity: 10, Received: 10, Unit: "bottle"},
			{Name: "gloves", Quantity: 20, Received: 5, Unit: "pair"},
		},
	})
	createGrid(t, svc, admin, CreateGridInput{
		Code:     "M-03",
		Status:   StatusClosed,
		Supplies: []SupplyLineInput{{Name: "boots", Quantity: 5, Unit: "pair"}},
	})

	urgent, err := svc.UrgentGrids(ctx, access.Guest())
	require.NoError(t, err)
	require.Len(t, urgent, 1)
	assert.Equal(t, critical.ID, urgent[0].ID)
	assert.Equal(t, access.RedactedPlaceholder, urgent[0].ContactInfo)

	rows, err := svc.UnfulfilledSupplies(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "gloves", rows[0].Name)
	assert.Equal(t, 15.0, rows[0].Remaining)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Areas: 2, Grids: 3, UrgentGrids: 1}, stats)

	_, err = svc.CorrectVolunteerCount(ctx, admin, critical.ID, 10)
	require.NoError(t, err)

	urgent, err = svc.UrgentGrids(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, urgent, "cached feed must be dropped after a mutation")
}

func TestFeedErrorsPropagate(t *testing.T) {
	svc := NewService(failingRepo{Repository: newFakeGridRepo()}, gridlock.New())

	_, err := svc.Stats(context.Background())
	assert.True(t, errors.Is(err, errBoom))
}

var errBoom = errors.New("boom")

type failingRepo struct {
	Repository
}

func (failingRepo) CountDonations(ctx context.Context) (int64, error) {
	return 0, errBoom
}
