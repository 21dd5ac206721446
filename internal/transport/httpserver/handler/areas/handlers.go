package areas

import (
	areadomain "relief-grid-go/internal/domain/area"
	"relief-grid-go/pkg/logger"
)

type Handlers struct {
	Areas *areadomain.Service
	log   logger.Logger
}

func New(areas *areadomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Areas: areas,
		log:   log,
	}
}
