package grid

import (
	"math"
	"strconv"
	"strings"

	"relief-grid-go/internal/domain/validation"
)

// FulfillmentRatio is received/quantity clamped to [0, 1]. A line without
// demand has ratio 0.
func FulfillmentRatio(line SupplyLine) float64 {
	if line.Quantity <= 0 {
		return 0
	}
	ratio := line.Received / line.Quantity
	return math.Max(0, math.Min(ratio, 1))
}

func Remaining(line SupplyLine) float64 {
	return math.Max(line.Quantity-line.Received, 0)
}

// Fulfilled is true once received reaches quantity; over-delivery counts.
func Fulfilled(line SupplyLine) bool {
	return line.Quantity > 0 && line.Received >= line.Quantity
}

// normalizeSupplyItems trims names, validates each item and merges repeated
// names so one request adds to one line once.
func normalizeSupplyItems(items []SupplyItem) ([]SupplyItem, error) {
	if len(items) == 0 {
		return nil, validation.Required("items")
	}

	merged := make([]SupplyItem, 0, len(items))
	index := make(map[string]int, len(items))
	for i, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		item.Unit = strings.TrimSpace(item.Unit)
		if item.Name == "" {
			return nil, validation.Required(itemField(i, "name"))
		}
		if item.Unit == "" {
			return nil, validation.Required(itemField(i, "unit"))
		}
		if err := checkSupplyText(itemField(i, ""), item.Name, item.Unit); err != nil {
			return nil, err
		}
		if !(item.Quantity > 0) || math.IsInf(item.Quantity, 0) {
			return nil, validation.New(itemField(i, "quantity"), "must be greater than 0")
		}

		if pos, ok := index[item.Name]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.Name] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// normalizeSupplyLines validates a full line list from create or admin edit.
func normalizeSupplyLines(lines []SupplyLineInput) ([]SupplyLineInput, error) {
	seen := make(map[string]struct{}, len(lines))
	result := make([]SupplyLineInput, 0, len(lines))
	for i, line := range lines {
		line.Name = strings.TrimSpace(line.Name)
		line.Unit = strings.TrimSpace(line.Unit)
		if line.Name == "" {
			return nil, validation.Required(lineField(i, "name"))
		}
		if err := checkSupplyText(lineField(i, ""), line.Name, line.Unit); err != nil {
			return nil, err
		}
		if _, ok := seen[line.Name]; ok {
			return nil, validation.Newf(lineField(i, "name"), "%q is listed twice", line.Name)
		}
		if !validAmount(line.Quantity) {
			return nil, validation.New(lineField(i, "quantity"), "must be a finite number not below 0")
		}
		if !validAmount(line.Received) {
			return nil, validation.New(lineField(i, "received"), "must be a finite number not below 0")
		}
		seen[line.Name] = struct{}{}
		result = append(result, line)
	}
	return result, nil
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// Names and units travel in the flat "name:quantity:received:unit|..." column
// of bulk files. Names may hold a colon, units may not, and neither may hold a
// pipe.
func checkSupplyText(prefix, name, unit string) error {
	if strings.Contains(name, "|") {
		return validation.New(prefix+"name", `must not contain "|"`)
	}
	if strings.ContainsAny(unit, "|:") {
		return validation.New(prefix+"unit", `must not contain "|" or ":"`)
	}
	return nil
}

func itemField(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}

func lineField(i int, name string) string {
	return "supplies[" + strconv.Itoa(i) + "]." + name
}
