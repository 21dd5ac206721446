package gridio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/domain/area"
	"relief-grid-go/internal/domain/grid"
	"relief-grid-go/internal/domain/validation"
)

type Grids interface {
	CreateGrid(ctx context.Context, actor access.Actor, input grid.CreateGridInput) (*grid.Grid, error)
	ListAll(ctx context.Context) ([]grid.Grid, error)
}

type Service struct {
	grids Grids
}

func NewService(grids Grids) *Service {
	return &Service{grids: grids}
}

// Import creates one grid per record. Accepted rows stay persisted whatever
// happens to later rows.
func (s *Service) Import(ctx context.Context, actor access.Actor, records []Record) (*Result, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	result := &Result{
		Errors:  make([]RowError, 0),
		Summary: Summary{Total: len(records)},
	}
	seen := make(map[string]int, len(records))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := i + 1
		code := rec.get("code")

		if first, ok := seen[strings.ToLower(code)]; ok && code != "" {
			result.fail(row, code, ErrorCodeDuplicateCode, fmt.Sprintf("code %q repeats row %d", code, first))
			continue
		}

		input, err := ParseRecord(rec)
		if err == nil {
			_, err = s.grids.CreateGrid(ctx, actor, input)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			result.fail(row, code, classify(err), err.Error())
			continue
		}

		seen[strings.ToLower(code)] = row
		result.Created++
	}

	result.Summary.Created = result.Created
	result.Summary.Failed = len(result.Errors)
	result.Success = result.Created > 0 || len(result.Errors) == 0
	result.Status = batchStatus(result.Summary)
	return result, nil
}

// Export renders every grid in creation order. Contact fields are included,
// so only admins may export.
func (s *Service) Export(ctx context.Context, actor access.Actor) ([][]string, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	grids, err := s.grids.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(grids))
	for _, g := range grids {
		rows = append(rows, FormatGrid(g))
	}
	return rows, nil
}

func (r *Result) fail(row int, code string, errorCode ErrorCode, message string) {
	r.Errors = append(r.Errors, RowError{
		Row:       row,
		Code:      code,
		ErrorCode: errorCode,
		Error:     message,
	})
}

func classify(err error) ErrorCode {
	switch {
	case errors.Is(err, grid.ErrDuplicateCode):
		return ErrorCodeDuplicateCode
	case errors.Is(err, validation.ErrInvalid):
		return ErrorCodeValidation
	case errors.Is(err, area.ErrAreaNotFound):
		return ErrorCodeAreaNotFound
	default:
		return ErrorCodeInternal
	}
}

func batchStatus(summary Summary) BatchStatus {
	if summary.Failed == 0 {
		return BatchStatusSuccess
	}
	if summary.Created > 0 {
		return BatchStatusPartialSuccess
	}
	return BatchStatusFailed
}
