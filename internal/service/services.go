package service

import (
	"github.com/avetrov/go-idm-core/internal/config"
	"github.com/avetrov/go-idm-core/internal/logger"
	"github.com/avetrov/go-idm-core/internal/store"
	"github.com/avetrov/go-idm-core/internal/validators"
)

type Services struct {
	AuthService          AuthService
	AccountProvisioner   AccountProvisioner
	OrganizationResolver OrganizationResolver
	CredentialManager    CredentialManager
}

// NewServices wires the service layer. The dispatcher and queue come from
// the adapter/worker setup; loginLimiter may be nil when throttling is
// disabled.
func NewServices(
	db *store.DB,
	storages *store.Storages,
	dispatcher NotificationDispatcher,
	queue NotificationQueue,
	loginLimiter LoginLimiter,
	cfg config.StructuredConfig,
	logger *logger.Logger,
) *Services {
	organizationResolver := NewOrganizationService(storages.OrganizationRepository, logger)
	credentialManager := NewCredentialService(storages.CredentialRepository, queue, cfg.Auth, logger)

	return &Services{
		AuthService: NewAuthService(
			storages.AccountRepository,
			storages.CredentialRepository,
			storages.SessionRepository,
			dispatcher,
			queue,
			loginLimiter,
			cfg.Auth,
			logger,
		),
		AccountProvisioner: NewProvisionService(
			db,
			storages.AccountRepository,
			storages.RoleRepository,
			organizationResolver,
			credentialManager,
			validators.NewAccountValidator(),
			logger,
		),
		OrganizationResolver: organizationResolver,
		CredentialManager:    credentialManager,
	}
}
