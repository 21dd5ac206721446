package grids

import (
	griddomain "relief-grid-go/internal/domain/grid"
	gridiodomain "relief-grid-go/internal/domain/gridio"
	"relief-grid-go/pkg/logger"
)

type Handlers struct {
	Grids  *griddomain.Service
	GridIO *gridiodomain.Service
	log    logger.Logger
}

func New(grids *griddomain.Service, gridIO *gridiodomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Grids:  grids,
		GridIO: gridIO,
		log:    log,
	}
}
