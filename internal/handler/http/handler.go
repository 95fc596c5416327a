package http

import (
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/service"
)

type Handler struct {
	services *service.Services

	logger *logger.Logger
}

func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		logger:   logger,
	}
}
