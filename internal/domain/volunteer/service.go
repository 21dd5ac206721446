package volunteer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/grid"
	"relief-grid-go/internal/domain/validation"
)

// Grids is the part of the grid service registrations depend on.
type Grids interface {
	Lookup(ctx context.Context, id string) (*grid.Grid, error)
	InvalidateFeeds()
}

type Service struct {
	repo  Repository
	grids Grids
	locks grid.Locker
}

func NewService(repo Repository, grids Grids, locks grid.Locker) *Service {
	return &Service{repo: repo, grids: grids, locks: locks}
}

// Register records a pending registration. It never touches the grid
// counter; only confirmation does.
func (s *Service) Register(ctx context.Context, actor access.Actor, gridID string, input RegisterInput) (*Registration, error) {
	name := strings.TrimSpace(input.VolunteerName)
	if name == "" {
		return nil, validation.Required("volunteer_name")
	}
	if _, err := s.grids.Lookup(ctx, gridID); err != nil {
		return nil, err
	}

	registration := Registration{
		ID:             uuid.NewString(),
		GridID:         gridID,
		VolunteerName:  name,
		VolunteerPhone: strings.TrimSpace(input.VolunteerPhone),
		VolunteerEmail: strings.TrimSpace(input.VolunteerEmail),
		AvailableTime:  strings.TrimSpace(input.AvailableTime),
		Skills:         normalizeSet(input.Skills),
		Equipment:      normalizeSet(input.Equipment),
		Notes:          strings.TrimSpace(input.Notes),
		Status:         StatusPending,
		CreatedBy:      actor.ActorID(),
	}
	if err := s.repo.CreateRegistration(ctx, &registration); err != nil {
		return nil, err
	}
	return &registration, nil
}

// List serves the cross-grid view. A grid filter delegates to ListForGrid;
// listing every grid is reserved to admins.
func (s *Service) List(ctx context.Context, actor access.Actor, filter ListFilter) ([]Registration, error) {
	if filter.GridID != "" {
		return s.ListForGrid(ctx, actor, filter.GridID, filter.Status)
	}
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validation.Newf("status", "unknown status %q", filter.Status)
	}
	return s.repo.ListRegistrations(ctx, filter)
}

// ListForGrid returns the grid's registrations newest first with contact
// fields redacted for actors that may not see them.
func (s *Service) ListForGrid(ctx context.Context, actor access.Actor, gridID string, status Status) ([]Registration, error) {
	if status != "" && !status.Valid() {
		return nil, validation.Newf("status", "unknown status %q", status)
	}
	g, err := s.grids.Lookup(ctx, gridID)
	if err != nil {
		return nil, err
	}

	registrations, err := s.repo.ListRegistrations(ctx, ListFilter{GridID: gridID, Status: status})
	if err != nil {
		return nil, err
	}
	if !access.CanViewContact(actor, g.GridManagerID) {
		for i := range registrations {
			redact(&registrations[i])
		}
	}
	return registrations, nil
}

func (s *Service) GetRegistration(ctx context.Context, actor access.Actor, id string) (*Registration, error) {
	registration, err := s.repo.GetRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := s.grids.Lookup(ctx, registration.GridID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewContact(actor, g.GridManagerID) {
		redact(registration)
	}
	return registration, nil
}

// AdvanceVolunteer moves a registration to next. The status change and the
// counter change commit together or not at all.
func (s *Service) AdvanceVolunteer(ctx context.Context, actor access.Actor, id string, next Status) (*Registration, error) {
	if !next.Valid() {
		return nil, validation.Newf("status", "unknown status %q", next)
	}

	current, err := s.repo.GetRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := s.grids.Lookup(ctx, current.GridID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireCoordinator(actor, g.GridManagerID); err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, current.GridID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var updated *Registration
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		registration, err := tx.GetRegistration(ctx, id)
		if err != nil {
			return err
		}
		from := registration.Status
		if !CanTransition(from, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
		}

		changed, err := tx.UpdateStatus(ctx, id, from, next)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: %s changed concurrently", ErrInvalidTransition, from)
		}

		if delta := CounterDelta(from, next); delta != 0 {
			if err := tx.AdjustVolunteerRegistered(ctx, registration.GridID, delta); err != nil {
				return err
			}
		}

		registration.Status = next
		updated = registration
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.grids.InvalidateFeeds()
	return updated, nil
}

func redact(r *Registration) {
	r.VolunteerPhone = access.Redact(r.VolunteerPhone)
	r.VolunteerEmail = access.Redact(r.VolunteerEmail)
}

// normalizeSet trims values and drops blanks and repeats, keeping first
// occurrence order.
func normalizeSet(values []string) []string {
	set := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		set = append(set, value)
	}
	return set
}
