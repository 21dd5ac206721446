package volunteers

import (
	volunteerdomain "relief-grid-go/internal/domain/volunteer"
	"relief-grid-go/pkg/logger"
)

type Handlers struct {
	Volunteers *volunteerdomain.Service
	log        logger.Logger
}

func New(volunteers *volunteerdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Volunteers: volunteers,
		log:        log,
	}
}
