// Package gridio moves grids in and out of spreadsheet files. Rows are
// imported one at a time; a bad row is reported and never stops the batch.
package gridio

import (
	"errors"
	"strings"
)

// Columns is the fixed header of import and export files.
var Columns = []string{
	"code",
	"grid_type",
	"disaster_area_id",
	"status",
	"center_lat",
	"center_lng",
	"bounds_north",
	"bounds_south",
	"bounds_east",
	"bounds_west",
	"volunteer_needed",
	"volunteer_registered",
	"meeting_point",
	"risk_notes",
	"contact_info",
	"supplies_needed",
}

var requiredColumns = []string{"code", "grid_type", "center_lat", "center_lng"}

var (
	ErrMissingColumn     = errors.New("missing required column")
	ErrEmptyFile         = errors.New("file has no header row")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(value string) (Format, error) {
	switch format := Format(strings.ToLower(strings.TrimSpace(value))); format {
	case FormatCSV, FormatXLSX:
		return format, nil
	case "":
		return FormatCSV, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Record is one data row keyed by column name.
type Record map[string]string

type ErrorCode string

const (
	ErrorCodeValidation    ErrorCode = "validation_error"
	ErrorCodeDuplicateCode ErrorCode = "duplicate_code"
	ErrorCodeAreaNotFound  ErrorCode = "area_not_found"
	ErrorCodeInternal      ErrorCode = "internal_error"
)

type BatchStatus string

const (
	BatchStatusSuccess        BatchStatus = "success"
	BatchStatusPartialSuccess BatchStatus = "partial_success"
	BatchStatusFailed         BatchStatus = "failed"
)

// RowError reports a rejected row. Row is the 1-based data row index, the
// header excluded.
type RowError struct {
	Row       int       `json:"row"`
	Code      string    `json:"code"`
	ErrorCode ErrorCode `json:"error_code"`
	Error     string    `json:"error"`
}

type Summary struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

type Result struct {
	Success bool        `json:"success"`
	Status  BatchStatus `json:"status"`
	Created int         `json:"created"`
	Summary Summary     `json:"summary"`
	Errors  []RowError  `json:"errors"`
}
