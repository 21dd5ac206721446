package grid

import "sort"

type Bucket string

const (
	BucketCritical  Bucket = "critical"
	BucketElevated  Bucket = "elevated"
	BucketMild      Bucket = "mild"
	BucketSatisfied Bucket = "satisfied"
)

const (
	criticalShortage = 0.6
	elevatedShortage = 0.4
)

// Shortage is (needed-registered)/needed for manpower grids and 0 for every
// other grid or when nothing is needed. It goes negative when a grid is
// over-staffed.
func Shortage(g Grid) float64 {
	if g.GridType != TypeManpower || g.VolunteerNeeded <= 0 {
		return 0
	}
	return float64(g.VolunteerNeeded-g.VolunteerRegistered) / float64(g.VolunteerNeeded)
}

func UrgencyBucket(shortage float64) Bucket {
	switch {
	case shortage >= criticalShortage:
		return BucketCritical
	case shortage >= elevatedShortage:
		return BucketElevated
	case shortage > 0:
		return BucketMild
	default:
		return BucketSatisfied
	}
}

func UrgencyOf(g Grid) Bucket {
	return UrgencyBucket(Shortage(g))
}

// IsUrgent selects open manpower grids in the critical bucket.
func IsUrgent(g Grid) bool {
	return g.GridType == TypeManpower && g.Status == StatusOpen && Shortage(g) >= criticalShortage
}

func CountUrgent(grids []Grid) int {
	count := 0
	for _, g := range grids {
		if IsUrgent(g) {
			count++
		}
	}
	return count
}

// RankByShortage returns a copy of grids ordered by shortage descending.
// Ties keep creation order, then input order.
func RankByShortage(grids []Grid) []Grid {
	ranked := make([]Grid, len(grids))
	copy(ranked, grids)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := Shortage(ranked[i]), Shortage(ranked[j])
		if si != sj {
			return si > sj
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})
	return ranked
}
