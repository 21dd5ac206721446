package donations

import (
	donationdomain "relief-grid-go/internal/domain/donation"
	"relief-grid-go/pkg/logger"
)

type Handlers struct {
	Donations *donationdomain.Service
	log       logger.Logger
}

func New(donations *donationdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Donations: donations,
		log:       log,
	}
}
