package announcements

import (
	announcementdomain "relief-grid-go/internal/domain/announcement"
	"relief-grid-go/pkg/logger"
)

type Handlers struct {
	Announcements *announcementdomain.Service
	log           logger.Logger
}

func New(announcements *announcementdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Announcements: announcements,
		log:           log,
	}
}
