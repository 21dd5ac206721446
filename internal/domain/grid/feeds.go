package grid

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"relief-grid-go/internal/domain/access"
)

const (
	feedUnfulfilled = "feeds:unfulfilled"
	feedUrgent      = "feeds:urgent"
	feedStats       = "feeds:stats"
)

// InvalidateFeeds drops cached feeds. Results computed before the call are
// never stored afterwards.
func (s *Service) InvalidateFeeds() {
	s.feedGen.Add(1)
	s.cache.Clear()
}

func (s *Service) UnfulfilledSupplies(ctx context.Context) ([]UnfulfilledSupply, error) {
	value, err := s.cachedFeed(ctx, feedUnfulfilled, func(ctx context.Context) (any, error) {
		grids, err := s.repo.ListGrids(ctx, ListFilter{Status: StatusOpen})
		if err != nil {
			return nil, err
		}

		rows := make([]UnfulfilledSupply, 0)
		for _, g := range RankByShortage(grids) {
			for _, line := range g.SupplyLines {
				remaining := Remaining(line)
				if remaining <= 0 {
					continue
				}
				rows = append(rows, UnfulfilledSupply{
					GridID:    g.ID,
					GridCode:  g.Code,
					GridType:  g.GridType,
					Name:      line.Name,
					Quantity:  line.Quantity,
					Received:  line.Received,
					Remaining: remaining,
					Unit:      line.Unit,
				})
			}
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneSlice(value.([]UnfulfilledSupply)), nil
}

// UrgentGrids lists open manpower grids in the critical bucket, most short
// first.
func (s *Service) UrgentGrids(ctx context.Context, actor access.Actor) ([]Grid, error) {
	value, err := s.cachedFeed(ctx, feedUrgent, func(ctx context.Context) (any, error) {
		grids, err := s.repo.ListGrids(ctx, ListFilter{GridType: TypeManpower, Status: StatusOpen})
		if err != nil {
			return nil, err
		}

		urgent := make([]Grid, 0, len(grids))
		for _, g := range RankByShortage(grids) {
			if IsUrgent(g) {
				urgent = append(urgent, g)
			}
		}
		return urgent, nil
	})
	if err != nil {
		return nil, err
	}

	cached := value.([]Grid)
	grids := make([]Grid, len(cached))
	for i := range cached {
		grids[i] = Redacted(actor, cached[i])
	}
	return grids, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	value, err := s.cachedFeed(ctx, feedStats, func(ctx context.Context) (any, error) {
		var stats Stats
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			stats.Areas, err = s.repo.CountAreas(gctx)
			return err
		})
		g.Go(func() (err error) {
			stats.Grids, err = s.repo.CountGrids(gctx)
			return err
		})
		g.Go(func() (err error) {
			stats.Registrations, err = s.repo.CountRegistrations(gctx)
			return err
		})
		g.Go(func() (err error) {
			stats.Donations, err = s.repo.CountDonations(gctx)
			return err
		})
		g.Go(func() error {
			grids, err := s.repo.ListGrids(gctx, ListFilter{GridType: TypeManpower, Status: StatusOpen})
			if err != nil {
				return err
			}
			stats.UrgentGrids = CountUrgent(grids)
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return stats, nil
	})
	if err != nil {
		return Stats{}, err
	}
	return value.(Stats), nil
}

func (s *Service) cachedFeed(ctx context.Context, key string, load func(context.Context) (any, error)) (any, error) {
	if value, ok := s.cache.Get(key); ok {
		return value, nil
	}

	gen := s.feedGen.Load()
	value, err, _ := s.flights.Do(key+":"+strconv.FormatUint(gen, 10), func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if s.feedGen.Load() == gen {
			s.cache.Set(key, value, s.feedTTL)
		}
		return value, nil
	})
	return value, err
}

func cloneSlice[T any](items []T) []T {
	cloned := make([]T, len(items))
	copy(cloned, items)
	return cloned
}
