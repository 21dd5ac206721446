package grid

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"relief-grid-go/internal/domain/geo"
)

type fakeGridRepo struct {
	mu         sync.Mutex
	grids      map[string]*Grid
	lines      map[string][]SupplyLine
	dependents map[Dependent]map[string]int64
	areas      int64
	clock      time.Time
}

func newFakeGridRepo() *fakeGridRepo {
	return &fakeGridRepo{
		grids:      make(map[string]*Grid),
		lines:      make(map[string][]SupplyLine),
		dependents: make(map[Dependent]map[string]int64),
		clock:      time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (r *fakeGridRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeGridRepo) GetGrid(ctx context.Context, id string) (*Grid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	grid, ok := r.grids[id]
	if !ok {
		return nil, ErrGridNotFound
	}
	copied := r.withLines(*grid)
	return &copied, nil
}

func (r *fakeGridRepo) ListGrids(ctx context.Context, filter ListFilter) ([]Grid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]Grid, 0, len(r.grids))
	for _, grid := range r.grids {
		if filter.DisasterAreaID != "" && (grid.DisasterAreaID == nil || *grid.DisasterAreaID != filter.DisasterAreaID) {
			continue
		}
		if filter.GridType != "" && grid.GridType != filter.GridType {
			continue
		}
		if filter.Status != "" && grid.Status != filter.Status {
			continue
		}
		items = append(items, r.withLines(*grid))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *fakeGridRepo) IsCodeTaken(ctx context.Context, code, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, grid := range r.grids {
		if id != excludeID && strings.EqualFold(grid.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGridRepo) CreateGrid(ctx context.Context, grid *Grid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clock = r.clock.Add(time.Minute)
	grid.CreatedAt = r.clock
	grid.UpdatedAt = r.clock
	stored := *grid
	r.lines[grid.ID] = append([]SupplyLine(nil), grid.SupplyLines...)
	stored.SupplyLines = nil
	r.grids[grid.ID] = &stored
	return nil
}

func (r *fakeGridRepo) UpdateGrid(ctx context.Context, grid *Grid, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.grids[grid.ID]
	if !ok {
		return ErrGridNotFound
	}
	if current.Version != expectedVersion {
		return ErrVersionConflict
	}
	stored := *grid
	stored.SupplyLines = nil
	stored.Version = expectedVersion + 1
	r.grids[grid.ID] = &stored
	return nil
}

func (r *fakeGridRepo) ReplaceSupplyLines(ctx context.Context, gridID string, lines []SupplyLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines[gridID] = append([]SupplyLine(nil), lines...)
	return nil
}

func (r *fakeGridRepo) DeleteGrid(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.grids[id]; !ok {
		return false, nil
	}
	delete(r.grids, id)
	return true, nil
}

func (r *fakeGridRepo) DeleteSupplyLines(ctx context.Context, gridID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := int64(len(r.lines[gridID]))
	delete(r.lines, gridID)
	return count, nil
}

func (r *fakeGridRepo) DeleteDependents(ctx context.Context, dependent Dependent, gridID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.dependents[dependent][gridID]
	delete(r.dependents[dependent], gridID)
	return count, nil
}

func (r *fakeGridRepo) NextSupplyPosition(ctx context.Context, gridID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := 0
	for _, line := range r.lines[gridID] {
		if line.Position >= next {
			next = line.Position + 1
		}
	}
	return next, nil
}

func (r *fakeGridRepo) AddSupplyDemand(ctx context.Context, line *SupplyLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.lines[line.GridID]
	for i := range lines {
		if lines[i].Name == line.Name {
			lines[i].Quantity += line.Quantity
			return nil
		}
	}
	r.lines[line.GridID] = append(lines, *line)
	return nil
}

func (r *fakeGridRepo) GetSupplyLine(ctx context.Context, gridID, name string) (*SupplyLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := r.findLine(gridID, name)
	if line == nil {
		return nil, ErrUnknownSupplyLine
	}
	copied := *line
	return &copied, nil
}

func (r *fakeGridRepo) IncrementSupplyReceived(ctx context.Context, gridID, name string, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := r.findLine(gridID, name)
	if line == nil {
		return ErrUnknownSupplyLine
	}
	line.Received += delta
	return nil
}

func (r *fakeGridRepo) SetSupplyReceived(ctx context.Context, gridID, name string, received float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := r.findLine(gridID, name)
	if line == nil {
		return ErrUnknownSupplyLine
	}
	line.Received = received
	return nil
}

func (r *fakeGridRepo) SetVolunteerRegistered(ctx context.Context, gridID string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	grid, ok := r.grids[gridID]
	if !ok {
		return ErrGridNotFound
	}
	grid.VolunteerRegistered = count
	return nil
}

func (r *fakeGridRepo) UpdateBounds(ctx context.Context, gridID string, bounds geo.Bounds) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	grid, ok := r.grids[gridID]
	if !ok {
		return ErrGridNotFound
	}
	grid.SetBounds(bounds)
	return nil
}

func (r *fakeGridRepo) CountGrids(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.grids)), nil
}

func (r *fakeGridRepo) CountAreas(ctx context.Context) (int64, error) {
	return r.areas, nil
}

func (r *fakeGridRepo) CountRegistrations(ctx context.Context) (int64, error) {
	return r.countDependents(DependentRegistrations), nil
}

func (r *fakeGridRepo) CountDonations(ctx context.Context) (int64, error) {
	return r.countDependents(DependentDonations), nil
}

func (r *fakeGridRepo) countDependents(dependent Dependent) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, count := range r.dependents[dependent] {
		total += count
	}
	return total
}

func (r *fakeGridRepo) addDependents(dependent Dependent, gridID string, count int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dependents[dependent] == nil {
		r.dependents[dependent] = make(map[string]int64)
	}
	r.dependents[dependent][gridID] += count
}

func (r *fakeGridRepo) findLine(gridID, name string) *SupplyLine {
	lines := r.lines[gridID]
	for i := range lines {
		if lines[i].Name == name {
			return &lines[i]
		}
	}
	return nil
}

func (r *fakeGridRepo) withLines(grid Grid) Grid {
	lines := append([]SupplyLine(nil), r.lines[grid.ID]...)
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Position < lines[j].Position
	})
	grid.SupplyLines = lines
	return grid
}

type fakeLocker struct{}

func (fakeLocker) Lock(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}

type mapFeedCache struct {
	mu     sync.Mutex
	values map[string]any
}

func newMapFeedCache() *mapFeedCache {
	return &mapFeedCache{values: make(map[string]any)}
}

func (c *mapFeedCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	return value, ok
}

func (c *mapFeedCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *mapFeedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]any)
}
