package discussions

import (
	discussiondomain "relief-grid-go/internal/domain/discussion"
	"relief-grid-go/pkg/logger"
)

type Handlers struct {
	Discussions *discussiondomain.Service
	log         logger.Logger
}

func New(discussions *discussiondomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Discussions: discussions,
		log:         log,
	}
}
