package gridio

import (
	"strconv"
	"strings"

	"relief-grid-go/internal/domain/geo"
	"relief-grid-go/internal/domain/grid"
	"relief-grid-go/internal/domain/validation"
)

const (
	supplySeparator = "|"
	supplyFieldSep  = ":"
)

// ParseRecord turns a row into a create input. Bounds are used only when
// all four are present.
func ParseRecord(rec Record) (grid.CreateGridInput, error) {
	input := grid.CreateGridInput{
		Code:         rec.get("code"),
		GridType:     grid.Type(strings.ToLower(rec.get("grid_type"))),
		Status:       grid.Status(strings.ToLower(rec.get("status"))),
		MeetingPoint: rec.get("meeting_point"),
		RiskNotes:    rec.get("risk_notes"),
		ContactInfo:  rec.get("contact_info"),
	}
	if input.Code == "" {
		return input, validation.Required("code")
	}
	if rec.get("grid_type") == "" {
		return input, validation.Required("grid_type")
	}
	if areaID := rec.get("disaster_area_id"); areaID != "" {
		input.DisasterAreaID = &areaID
	}

	lat, err := rec.float("center_lat", true)
	if err != nil {
		return input, err
	}
	lng, err := rec.float("center_lng", true)
	if err != nil {
		return input, err
	}
	input.Center = &geo.Coordinate{Lat: lat, Lng: lng}

	bounds, err := rec.bounds()
	if err != nil {
		return input, err
	}
	input.Bounds = bounds

	if input.VolunteerNeeded, err = rec.int("volunteer_needed"); err != nil {
		return input, err
	}
	if input.VolunteerRegistered, err = rec.int("volunteer_registered"); err != nil {
		return input, err
	}
	if input.Supplies, err = DecodeSupplies(rec.get("supplies_needed")); err != nil {
		return input, err
	}
	return input, nil
}

// FormatGrid renders g in Columns order.
func FormatGrid(g grid.Grid) []string {
	areaID := ""
	if g.DisasterAreaID != nil {
		areaID = *g.DisasterAreaID
	}
	return []string{
		g.Code,
		string(g.GridType),
		areaID,
		string(g.Status),
		formatFloat(g.CenterLat),
		formatFloat(g.CenterLng),
		formatFloat(g.BoundsNorth),
		formatFloat(g.BoundsSouth),
		formatFloat(g.BoundsEast),
		formatFloat(g.BoundsWest),
		strconv.Itoa(g.VolunteerNeeded),
		strconv.Itoa(g.VolunteerRegistered),
		g.MeetingPoint,
		g.RiskNotes,
		g.ContactInfo,
		EncodeSupplies(g.SupplyLines),
	}
}

// EncodeSupplies flattens lines as name:quantity:received:unit joined by |.
func EncodeSupplies(lines []grid.SupplyLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, strings.Join([]string{
			line.Name,
			formatFloat(line.Quantity),
			formatFloat(line.Received),
			line.Unit,
		}, supplyFieldSep))
	}
	return strings.Join(parts, supplySeparator)
}

// DecodeSupplies reverses EncodeSupplies. The last three fields of an entry
// are fixed, so a name may itself contain a colon.
func DecodeSupplies(value string) ([]grid.SupplyLineInput, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	entries := strings.Split(value, supplySeparator)
	lines := make([]grid.SupplyLineInput, 0, len(entries))
	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, supplyFieldSep)
		if len(fields) < 4 {
			return nil, validation.Newf("supplies_needed", "entry %d must be name:quantity:received:unit", i+1)
		}
		n := len(fields)
		quantity, err := strconv.ParseFloat(strings.TrimSpace(fields[n-3]), 64)
		if err != nil {
			return nil, validation.Newf("supplies_needed", "entry %d has invalid quantity %q", i+1, fields[n-3])
		}
		received, err := strconv.ParseFloat(strings.TrimSpace(fields[n-2]), 64)
		if err != nil {
			return nil, validation.Newf("supplies_needed", "entry %d has invalid received %q", i+1, fields[n-2])
		}
		lines = append(lines, grid.SupplyLineInput{
			Name:     strings.TrimSpace(strings.Join(fields[:n-3], supplyFieldSep)),
			Quantity: quantity,
			Received: received,
			Unit:     strings.TrimSpace(fields[n-1]),
		})
	}
	return lines, nil
}

func (r Record) get(column string) string {
	return strings.TrimSpace(r[column])
}

func (r Record) float(column string, required bool) (float64, error) {
	raw := r.get(column)
	if raw == "" {
		if required {
			return 0, validation.Required(column)
		}
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, validation.Newf(column, "%q is not a number", raw)
	}
	return value, nil
}

func (r Record) int(column string) (int, error) {
	raw := r.get(column)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.Newf(column, "%q is not an integer", raw)
	}
	return value, nil
}

func (r Record) bounds() (*geo.Bounds, error) {
	columns := []string{"bounds_north", "bounds_south", "bounds_east", "bounds_west"}
	values := make([]float64, len(columns))
	for i, column := range columns {
		if r.get(column) == "" {
			return nil, nil
		}
		value, err := r.float(column, true)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return &geo.Bounds{North: values[0], South: values[1], East: values[2], West: values[3]}, nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
