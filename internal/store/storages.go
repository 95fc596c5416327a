package store

import "github.com/avetrov/go-idm-core/internal/logger"

// Storages bundles every repository behind a single constructor so the
// service layer receives one dependency instead of five.
type Storages struct {
	AccountRepository      AccountRepository
	CredentialRepository   CredentialRepository
	OrganizationRepository OrganizationRepository
	RoleRepository         RoleRepository
	SessionRepository      SessionRepository
}

func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		AccountRepository:      NewAccountRepository(db, log),
		CredentialRepository:   NewCredentialRepository(db, log),
		OrganizationRepository: NewOrganizationRepository(db, log),
		RoleRepository:         NewRoleRepository(db, log),
		SessionRepository:      NewSessionRepository(db, log),
	}
}
