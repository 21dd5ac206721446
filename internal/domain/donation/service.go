package donation

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/grid"
	"relief-grid-go/internal/domain/validation"
)

type Grids interface {
	Lookup(ctx context.Context, id string) (*grid.Grid, error)
	InvalidateFeeds()
}

type Service struct {
	repo   Repository
	grids  Grids
	locks  grid.Locker
	policy Policy
}

func NewService(repo Repository, grids Grids, locks grid.Locker, policy Policy) *Service {
	if policy == "" {
		policy = ApplyOnCreation
	}
	return &Service{repo: repo, grids: grids, locks: locks, policy: policy}
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Create records a pledge against an existing supply line. Under
// ApplyOnCreation the quantity is added to the line in the same
// transaction.
func (s *Service) Create(ctx context.Context, actor access.Actor, gridID string, input CreateDonationInput) (*Donation, error) {
	donorName := strings.TrimSpace(input.DonorName)
	if donorName == "" {
		return nil, validation.Required("donor_name")
	}
	supplyName := strings.TrimSpace(input.SupplyName)
	if supplyName == "" {
		return nil, validation.Required("supply_name")
	}
	if !(input.Quantity > 0) || math.IsInf(input.Quantity, 0) {
		return nil, validation.New("quantity", "must be greater than 0")
	}
	method := input.DeliveryMethod
	if method == "" {
		method = DeliveryDirect
	}
	if !method.Valid() {
		return nil, validation.Newf("delivery_method", "unknown delivery method %q", method)
	}

	g, err := s.grids.Lookup(ctx, gridID)
	if err != nil {
		return nil, err
	}
	line, ok := g.SupplyLine(supplyName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", grid.ErrUnknownSupplyLine, supplyName)
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = line.Unit
	}

	donation := Donation{
		ID:              uuid.NewString(),
		GridID:          gridID,
		DonorName:       donorName,
		DonorPhone:      strings.TrimSpace(input.DonorPhone),
		DonorEmail:      strings.TrimSpace(input.DonorEmail),
		SupplyName:      supplyName,
		Quantity:        input.Quantity,
		Unit:            unit,
		DeliveryMethod:  method,
		DeliveryAddress: strings.TrimSpace(input.DeliveryAddress),
		DeliveryTime:    strings.TrimSpace(input.DeliveryTime),
		Status:          StatusPledged,
		Notes:           strings.TrimSpace(input.Notes),
		Applied:         s.policy == ApplyOnCreation,
		CreatedBy:       actor.ActorID(),
	}

	unlock, err := s.locks.Lock(ctx, gridID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateDonation(ctx, &donation); err != nil {
			return err
		}
		if !donation.Applied {
			return nil
		}
		return tx.IncrementSupplyReceived(ctx, gridID, supplyName, donation.Quantity)
	})
	if err != nil {
		return nil, err
	}

	s.grids.InvalidateFeeds()
	return &donation, nil
}

// List serves the cross-grid view. A grid filter delegates to ListForGrid;
// listing every grid is reserved to admins.
func (s *Service) List(ctx context.Context, actor access.Actor, filter ListFilter) ([]Donation, error) {
	if filter.GridID != "" {
		return s.ListForGrid(ctx, actor, filter.GridID, filter.Status)
	}
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validation.Newf("status", "unknown status %q", filter.Status)
	}
	return s.repo.ListDonations(ctx, filter)
}

func (s *Service) ListForGrid(ctx context.Context, actor access.Actor, gridID string, status Status) ([]Donation, error) {
	if status != "" && !status.Valid() {
		return nil, validation.Newf("status", "unknown status %q", status)
	}
	g, err := s.grids.Lookup(ctx, gridID)
	if err != nil {
		return nil, err
	}

	donations, err := s.repo.ListDonations(ctx, ListFilter{GridID: gridID, Status: status})
	if err != nil {
		return nil, err
	}
	if !access.CanViewContact(actor, g.GridManagerID) {
		for i := range donations {
			redact(&donations[i])
		}
	}
	return donations, nil
}

func (s *Service) GetDonation(ctx context.Context, actor access.Actor, id string) (*Donation, error) {
	donation, err := s.repo.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := s.grids.Lookup(ctx, donation.GridID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewContact(actor, g.GridManagerID) {
		redact(donation)
	}
	return donation, nil
}

// AdvanceDonation moves a donation to next. Cancelling an applied donation
// does not lower the received total.
func (s *Service) AdvanceDonation(ctx context.Context, actor access.Actor, id string, next Status) (*Donation, error) {
	if !next.Valid() {
		return nil, validation.Newf("status", "unknown status %q", next)
	}

	current, err := s.repo.GetDonation(ctx, id)
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

	var (
		updated    *Donation
		appliedNow bool
	)
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		donation, err := tx.GetDonation(ctx, id)
		if err != nil {
			return err
		}
		from := donation.Status
		if !CanTransition(from, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
		}

		appliedNow = !donation.Applied && AppliesOn(s.policy, next)
		changed, err := tx.UpdateStatus(ctx, id, from, next, donation.Applied || appliedNow)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: %s changed concurrently", ErrInvalidTransition, from)
		}
		if appliedNow {
			if err := tx.IncrementSupplyReceived(ctx, donation.GridID, donation.SupplyName, donation.Quantity); err != nil {
				return err
			}
		}

		donation.Status = next
		donation.Applied = donation.Applied || appliedNow
		updated = donation
		return nil
	})
	if err != nil {
		return nil, err
	}

	if appliedNow {
		s.grids.InvalidateFeeds()
	}
	return updated, nil
}

func redact(d *Donation) {
	d.DonorPhone = access.Redact(d.DonorPhone)
	d.DonorEmail = access.Redact(d.DonorEmail)
}
