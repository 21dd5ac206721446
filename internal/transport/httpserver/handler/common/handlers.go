package common

import (
	"relief-grid-go/internal/domain/grid"
	"relief-grid-go/pkg/logger"
)

type Handlers struct {
	Grids *grid.Service
	log   logger.Logger
}

func New(grids *grid.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Grids: grids,
		log:   log,
	}
}
