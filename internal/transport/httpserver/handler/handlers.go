package handler

import (
	announcementdomain "relief-grid-go/internal/domain/announcement"
	areadomain "relief-grid-go/internal/domain/area"
	discussiondomain "relief-grid-go/internal/domain/discussion"
	donationdomain "relief-grid-go/internal/domain/donation"
	griddomain "relief-grid-go/internal/domain/grid"
	gridiodomain "relief-grid-go/internal/domain/gridio"
	volunteerdomain "relief-grid-go/internal/domain/volunteer"
	announcementshandler "relief-grid-go/internal/transport/httpserver/handler/announcements"
	areashandler "relief-grid-go/internal/transport/httpserver/handler/areas"
	commonhandler "relief-grid-go/internal/transport/httpserver/handler/common"
	discussionshandler "relief-grid-go/internal/transport/httpserver/handler/discussions"
	donationshandler "relief-grid-go/internal/transport/httpserver/handler/donations"
	gridshandler "relief-grid-go/internal/transport/httpserver/handler/grids"
	volunteershandler "relief-grid-go/internal/transport/httpserver/handler/volunteers"
	"relief-grid-go/pkg/logger"
)

type Services struct {
	Grids         *griddomain.Service
	GridIO        *gridiodomain.Service
	Areas         *areadomain.Service
	Volunteers    *volunteerdomain.Service
	Donations     *donationdomain.Service
	Discussions   *discussiondomain.Service
	Announcements *announcementdomain.Service
}

type Handlers struct {
	Common        *commonhandler.Handlers
	Grids         *gridshandler.Handlers
	Areas         *areashandler.Handlers
	Volunteers    *volunteershandler.Handlers
	Donations     *donationshandler.Handlers
	Discussions   *discussionshandler.Handlers
	Announcements *announcementshandler.Handlers
}

func New(services Services, log logger.Logger) *Handlers {
	return &Handlers{
		Common:        commonhandler.New(services.Grids, log),
		Grids:         gridshandler.New(services.Grids, services.GridIO, log),
		Areas:         areashandler.New(services.Areas, log),
		Volunteers:    volunteershandler.New(services.Volunteers, log),
		Donations:     donationshandler.New(services.Donations, log),
		Discussions:   discussionshandler.New(services.Discussions, log),
		Announcements: announcementshandler.New(services.Announcements, log),
	}
}
