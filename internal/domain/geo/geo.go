// Package geo derives the rectangular bounds of areas and grids from their
// center coordinate.
package geo

import (
	"math"

	"github.com/paulmach/orb"

	"relief-grid-go/internal/domain/validation"
)

const (
	AreaHalfWidth = 0.01
	GridHalfWidth = 0.001

	// tolerance for comparing stored bounds against a freshly derived rectangle
	epsilon = 1e-9
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

func (c Coordinate) Validate(field string) error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return validation.Newf(field+".lat", "%.6f is out of range [-90, 90]", c.Lat)
	}
	if math.IsNaN(c.Lng) || c.Lng < -180 || c.Lng > 180 {
		return validation.Newf(field+".lng", "%.6f is out of range [-180, 180]", c.Lng)
	}
	return nil
}

// Equal reports whether c and other are the same point within floating point
// tolerance.
func (c Coordinate) Equal(other Coordinate) bool {
	return near(c.Lat, other.Lat) && near(c.Lng, other.Lng)
}

// DeriveBounds returns the square of half-width h centred on center.
func DeriveBounds(center Coordinate, halfWidth float64) Bounds {
	return FromBound(center.Point().Bound().Pad(halfWidth))
}

func FromBound(b orb.Bound) Bounds {
	return Bounds{
		North: b.Top(),
		South: b.Bottom(),
		East:  b.Right(),
		West:  b.Left(),
	}
}

func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

func (b Bounds) Midpoint() Coordinate {
	center := b.Bound().Center()
	return Coordinate{Lat: center.Lat(), Lng: center.Lon()}
}

func (b Bounds) IsZero() bool {
	return b == Bounds{}
}

func (b Bounds) Validate(field string) error {
	for _, edge := range []float64{b.North, b.South, b.East, b.West} {
		if math.IsNaN(edge) || math.IsInf(edge, 0) {
			return validation.New(field, "edges must be finite numbers")
		}
	}
	if b.North < b.South {
		return validation.New(field, "north must not be below south")
	}
	if b.East < b.West {
		return validation.New(field, "east must not be less than west")
	}
	return nil
}

// Contains reports whether c lies inside b, edges included.
func (b Bounds) Contains(c Coordinate) bool {
	return b.Bound().Contains(c.Point())
}

// Matches reports whether b equals DeriveBounds(center, halfWidth) within
// floating point tolerance.
func (b Bounds) Matches(center Coordinate, halfWidth float64) bool {
	want := DeriveBounds(center, halfWidth)
	return near(b.North, want.North) && near(b.South, want.South) &&
		near(b.East, want.East) && near(b.West, want.West)
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}
