package grid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/area"
	"relief-grid-go/internal/domain/geo"
	"relief-grid-go/internal/domain/validation"
)

const maxCodeLength = 64

type AreaReader interface {
	GetArea(ctx context.Context, id string) (*area.DisasterArea, error)
}

type Service struct {
	repo    Repository
	locks   Locker
	areas   AreaReader
	cache   FeedCache
	feedTTL time.Duration
	flights singleflight.Group
	feedGen atomic.Uint64
}

type Option func(*Service)

func WithAreas(areas AreaReader) Option {
	return func(s *Service) {
		s.areas = areas
	}
}

func WithFeedCache(cache FeedCache, ttl time.Duration) Option {
	return func(s *Service) {
		if cache != nil && ttl > 0 {
			s.cache = cache
			s.feedTTL = ttl
		}
	}
}

func NewService(repo Repository, locks Locker, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		locks: locks,
		cache: noopFeedCache{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateGrid(ctx context.Context, actor access.Actor, input CreateGridInput) (*Grid, error) {
	code, err := normalizeCode(input.Code)
	if err != nil {
		return nil, err
	}
	if !input.GridType.Valid() {
		return nil, validation.Newf("grid_type", "unknown grid type %q", input.GridType)
	}
	if !actor.IsAdmin() {
		input = input.withoutProgress()
	}
	status := input.Status
	if status == "" {
		status = StatusOpen
	}
	if !status.Valid() {
		return nil, validation.Newf("status", "unknown status %q", status)
	}
	if err := validateCounts(input.VolunteerNeeded, input.VolunteerRegistered); err != nil {
		return nil, err
	}

	areaID, defaultArea, err := s.resolveArea(ctx, input.DisasterAreaID)
	if err != nil {
		return nil, err
	}

	var center geo.Coordinate
	switch {
	case input.Center != nil:
		center = *input.Center
	case defaultArea != nil:
		center = defaultArea.Center()
	default:
		return nil, validation.Required("center")
	}
	bounds, err := resolveBounds(center, input.Bounds)
	if err != nil {
		return nil, err
	}

	supplies, err := normalizeSupplyLines(input.Supplies)
	if err != nil {
		return nil, err
	}

	grid := Grid{
		ID:                  uuid.NewString(),
		Code:                code,
		DisasterAreaID:      areaID,
		GridManagerID:       actor.ActorID(),
		GridType:            input.GridType,
		Status:              status,
		VolunteerNeeded:     input.VolunteerNeeded,
		VolunteerRegistered: input.VolunteerRegistered,
		MeetingPoint:        strings.TrimSpace(input.MeetingPoint),
		RiskNotes:           strings.TrimSpace(input.RiskNotes),
		ContactInfo:         strings.TrimSpace(input.ContactInfo),
		Version:             1,
		SupplyLines:         buildSupplyLines("", supplies),
	}
	grid.SetCenter(center)
	grid.SetBounds(bounds)
	for i := range grid.SupplyLines {
		grid.SupplyLines[i].GridID = grid.ID
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.IsCodeTaken(ctx, code, "")
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s", ErrDuplicateCode, code)
		}
		return tx.CreateGrid(ctx, &grid)
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateFeeds()
	return &grid, nil
}

// GetGrid returns the grid with contact fields redacted for actors that may
// not see them.
func (s *Service) GetGrid(ctx context.Context, actor access.Actor, id string) (*Grid, error) {
	grid, err := s.repo.GetGrid(ctx, id)
	if err != nil {
		return nil, err
	}
	redacted := Redacted(actor, *grid)
	return &redacted, nil
}

func (s *Service) ListGrids(ctx context.Context, actor access.Actor, filter ListFilter) ([]Grid, error) {
	if filter.GridType != "" && !filter.GridType.Valid() {
		return nil, validation.Newf("grid_type", "unknown grid type %q", filter.GridType)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validation.Newf("status", "unknown status %q", filter.Status)
	}

	grids, err := s.repo.ListGrids(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range grids {
		grids[i] = Redacted(actor, grids[i])
	}
	return grids, nil
}

// Lookup returns the stored grid without redaction for other domain
// services.
func (s *Service) Lookup(ctx context.Context, id string) (*Grid, error) {
	return s.repo.GetGrid(ctx, id)
}

// ListAll returns every grid in creation order without redaction.
func (s *Service) ListAll(ctx context.Context) ([]Grid, error) {
	return s.repo.ListGrids(ctx, ListFilter{})
}

// UpdateGrid is the full administrative edit. Moving the center always
// re-derives bounds; supplied bounds are kept only when the center stays put.
func (s *Service) UpdateGrid(ctx context.Context, actor access.Actor, id string, input UpdateGridInput) (*Grid, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	code, err := normalizeCode(input.Code)
	if err != nil {
		return nil, err
	}
	if !input.GridType.Valid() {
		return nil, validation.Newf("grid_type", "unknown grid type %q", input.GridType)
	}
	if !input.Status.Valid() {
		return nil, validation.Newf("status", "unknown status %q", input.Status)
	}
	if err := validateCounts(input.VolunteerNeeded, input.VolunteerRegistered); err != nil {
		return nil, err
	}
	if err := input.Center.Validate("center"); err != nil {
		return nil, err
	}
	if input.Bounds != nil {
		if err := input.Bounds.Validate("bounds"); err != nil {
			return nil, err
		}
	}
	var supplies []SupplyLineInput
	if input.Supplies != nil {
		if supplies, err = normalizeSupplyLines(input.Supplies); err != nil {
			return nil, err
		}
	}
	areaID, _, err := s.resolveArea(ctx, input.DisasterAreaID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *Grid
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		current, err := tx.GetGrid(ctx, id)
		if err != nil {
			return err
		}
		if input.ExpectedVersion != 0 && input.ExpectedVersion != current.Version {
			return ErrVersionConflict
		}
		if !strings.EqualFold(current.Code, code) {
			taken, err := tx.IsCodeTaken(ctx, code, id)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: %s", ErrDuplicateCode, code)
			}
		}

		next := *current
		next.Code = code
		next.GridType = input.GridType
		next.Status = input.Status
		next.DisasterAreaID = areaID
		next.GridManagerID = input.GridManagerID
		next.VolunteerNeeded = input.VolunteerNeeded
		next.VolunteerRegistered = input.VolunteerRegistered
		next.MeetingPoint = strings.TrimSpace(input.MeetingPoint)
		next.RiskNotes = strings.TrimSpace(input.RiskNotes)
		next.ContactInfo = strings.TrimSpace(input.ContactInfo)
		supplied := input.Bounds
		if !current.Center().Equal(input.Center) {
			supplied = nil
		}
		bounds, err := resolveBounds(input.Center, supplied)
		if err != nil {
			return err
		}
		next.SetCenter(input.Center)
		next.SetBounds(bounds)

		if err := tx.UpdateGrid(ctx, &next, current.Version); err != nil {
			return err
		}
		if input.Supplies != nil {
			if err := tx.ReplaceSupplyLines(ctx, id, buildSupplyLines(id, supplies)); err != nil {
				return err
			}
		}

		updated, err = tx.GetGrid(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateFeeds()
	return updated, nil
}

// DeleteGrid removes the grid together with its registrations, donations,
// discussions and supply lines in one transaction.
func (s *Service) DeleteGrid(ctx context.Context, actor access.Actor, id string) (DeleteResult, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return DeleteResult{}, err
	}

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	defer unlock()

	var result DeleteResult
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetGrid(ctx, id); err != nil {
			return err
		}

		var err error
		if result.Registrations, err = tx.DeleteDependents(ctx, DependentRegistrations, id); err != nil {
			return err
		}
		if result.Donations, err = tx.DeleteDependents(ctx, DependentDonations, id); err != nil {
			return err
		}
		if result.Discussions, err = tx.DeleteDependents(ctx, DependentDiscussions, id); err != nil {
			return err
		}
		if result.SupplyLines, err = tx.DeleteSupplyLines(ctx, id); err != nil {
			return err
		}

		deleted, err := tx.DeleteGrid(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrGridNotFound
		}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}

	s.InvalidateFeeds()
	return result, nil
}

// RequestSupplies adds demand: an existing line (same name) grows by the
// requested quantity, a new name is appended with nothing received.
func (s *Service) RequestSupplies(ctx context.Context, gridID string, items []SupplyItem) (*Grid, error) {
	merged, err := normalizeSupplyItems(items)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, gridID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *Grid
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetGrid(ctx, gridID); err != nil {
			return err
		}

		next, err := tx.NextSupplyPosition(ctx, gridID)
		if err != nil {
			return err
		}
		for i, item := range merged {
			line := SupplyLine{
				ID:       uuid.NewString(),
				GridID:   gridID,
				Name:     item.Name,
				Position: next + i,
				Quantity: item.Quantity,
				Unit:     item.Unit,
			}
			if err := tx.AddSupplyDemand(ctx, &line); err != nil {
				return err
			}
		}

		updated, err = tx.GetGrid(ctx, gridID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateFeeds()
	return updated, nil
}

// RecordDonation adds quantity to the received total of the named line.
// Over-delivery is kept as is.
func (s *Service) RecordDonation(ctx context.Context, gridID, supplyName string, quantity float64) (*SupplyLine, error) {
	if !(quantity > 0) || math.IsInf(quantity, 0) {
		return nil, validation.New("quantity", "must be greater than 0")
	}
	if supplyName == "" {
		return nil, validation.Required("supply_name")
	}

	unlock, err := s.locks.Lock(ctx, gridID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var line *SupplyLine
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetGrid(ctx, gridID); err != nil {
			return err
		}
		if err := tx.IncrementSupplyReceived(ctx, gridID, supplyName, quantity); err != nil {
			return err
		}
		var err error
		line, err = tx.GetSupplyLine(ctx, gridID, supplyName)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateFeeds()
	return line, nil
}

// CorrectSupplyLine overwrites the received total. It is the only path that
// may lower it.
func (s *Service) CorrectSupplyLine(ctx context.Context, actor access.Actor, gridID, supplyName string, received float64) (*SupplyLine, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if received < 0 || math.IsNaN(received) || math.IsInf(received, 0) {
		return nil, validation.New("received", "must not be negative")
	}

	unlock, err := s.locks.Lock(ctx, gridID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var line *SupplyLine
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.SetSupplyReceived(ctx, gridID, supplyName, received); err != nil {
			return err
		}
		var err error
		line, err = tx.GetSupplyLine(ctx, gridID, supplyName)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateFeeds()
	return line, nil
}

func (s *Service) CorrectVolunteerCount(ctx context.Context, actor access.Actor, gridID string, count int) (*Grid, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, validation.New("volunteer_registered", "must not be negative")
	}

	unlock, err := s.locks.Lock(ctx, gridID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *Grid
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetGrid(ctx, gridID); err != nil {
			return err
		}
		if err := tx.SetVolunteerRegistered(ctx, gridID, count); err != nil {
			return err
		}
		var err error
		updated, err = tx.GetGrid(ctx, gridID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateFeeds()
	return updated, nil
}

// FixBounds re-derives bounds for grids whose stored rectangle is missing,
// inverted or does not contain the grid center. Custom rectangles around the
// center are left alone. It returns how many grids
// were repaired.
func (s *Service) FixBounds(ctx context.Context, actor access.Actor) (int, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return 0, err
	}

	grids, err := s.repo.ListGrids(ctx, ListFilter{})
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, g := range grids {
		if !needsBoundsFix(g) {
			continue
		}
		ok, err := s.fixOne(ctx, g.ID)
		if err != nil {
			if errors.Is(err, ErrGridNotFound) {
				continue
			}
			return fixed, err
		}
		if ok {
			fixed++
		}
	}

	if fixed > 0 {
		s.InvalidateFeeds()
	}
	return fixed, nil
}

// fixOne re-reads the grid under its lock so an edit made after the listing
// is judged and derived from its current center.
func (s *Service) fixOne(ctx context.Context, id string) (bool, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return false, err
	}
	defer unlock()

	current, err := s.repo.GetGrid(ctx, id)
	if err != nil {
		return false, err
	}
	if !needsBoundsFix(*current) {
		return false, nil
	}
	if err := s.repo.UpdateBounds(ctx, id, geo.DeriveBounds(current.Center(), geo.GridHalfWidth)); err != nil {
		return false, err
	}
	return true, nil
}

func needsBoundsFix(g Grid) bool {
	bounds := g.Bounds()
	if bounds.IsZero() || bounds.Validate("bounds") != nil {
		return true
	}
	return !bounds.Contains(g.Center())
}

// Redacted hides the grid contact for actors that may not see it.
func Redacted(actor access.Actor, g Grid) Grid {
	if !access.CanViewContact(actor, g.GridManagerID) {
		g.ContactInfo = access.Redact(g.ContactInfo)
	}
	return g
}

func (s *Service) resolveArea(ctx context.Context, id *string) (*string, *area.DisasterArea, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil, nil
	}
	trimmed := strings.TrimSpace(*id)
	if s.areas == nil {
		return &trimmed, nil, nil
	}

	found, err := s.areas.GetArea(ctx, trimmed)
	if err != nil {
		return nil, nil, err
	}
	return &trimmed, found, nil
}

func normalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", validation.Required("code")
	}
	if len([]rune(code)) > maxCodeLength {
		return "", validation.Newf("code", "must be at most %d characters", maxCodeLength)
	}
	return code, nil
}

func validateCounts(needed, registered int) error {
	if needed < 0 {
		return validation.New("volunteer_needed", "must not be negative")
	}
	if registered < 0 {
		return validation.New("volunteer_registered", "must not be negative")
	}
	return nil
}

// resolveBounds derives bounds from center unless valid bounds around it are
// supplied.
func resolveBounds(center geo.Coordinate, bounds *geo.Bounds) (geo.Bounds, error) {
	if err := center.Validate("center"); err != nil {
		return geo.Bounds{}, err
	}
	if bounds == nil {
		return geo.DeriveBounds(center, geo.GridHalfWidth), nil
	}
	if err := bounds.Validate("bounds"); err != nil {
		return geo.Bounds{}, err
	}
	if !bounds.Contains(center) {
		return geo.Bounds{}, validation.New("bounds", "must contain the center")
	}
	return *bounds, nil
}

func buildSupplyLines(gridID string, inputs []SupplyLineInput) []SupplyLine {
	lines := make([]SupplyLine, 0, len(inputs))
	for i, input := range inputs {
		lines = append(lines, SupplyLine{
			ID:       uuid.NewString(),
			GridID:   gridID,
			Name:     input.Name,
			Position: i,
			Quantity: input.Quantity,
			Received: input.Received,
			Unit:     input.Unit,
		})
	}
	return lines
}
