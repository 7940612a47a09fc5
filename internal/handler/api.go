package handler

import (
	"github.com/selftrack/internal/logger"
	"github.com/selftrack/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	tracker  *service.TrackerService
	transfer *service.TransferService
	quotes   *service.QuoteService
	log      *logger.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(tracker *service.TrackerService, transfer *service.TransferService, quotes *service.QuoteService, log *logger.Logger) *API {
	if log == nil {
		log = logger.NewNop()
	}
	return &API{
		tracker:  tracker,
		transfer: transfer,
		quotes:   quotes,
		log:      log,
	}
}
