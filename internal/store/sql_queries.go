package store

import (
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/avetrov/go-idm-core/models"
)

const (
	accountColumns = `id, email, first_name, last_name, phone, status,
    address_line_1, address_line_2, city, country, zip_code, designation,
    last_login, reset_key, reset_count, reset_timestamp, reset_key_timestamp,
    attributes, created_at, updated_at`

	createAccount = `INSERT INTO users (email, first_name, last_name, phone, status,
    address_line_1, address_line_2, city, country, zip_code, designation, attributes)
    VALUES (lower($1), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    RETURNING ` + accountColumns + `;`

	findAccountByEmail = `SELECT ` + accountColumns + `
    FROM users
    WHERE lower(email) = lower($1);`

	getAccountByID = `SELECT ` + accountColumns + `
    FROM users
    WHERE id = $1;`

	updateAccountResetState = `UPDATE users
    SET reset_key = $2, reset_count = $3, reset_timestamp = $4, reset_key_timestamp = $5, updated_at = now()
    WHERE id = $1
    RETURNING ` + accountColumns + `;`

	updateAccountLastLogin = `UPDATE users
    SET last_login = $2, updated_at = now()
    WHERE id = $1;`

	credentialColumns = `id, user_id, password_hash, created_at, updated_at`

	createCredential = `INSERT INTO user_credentials (user_id, password_hash)
    VALUES ($1, $2)
    RETURNING ` + credentialColumns + `;`

	getCredentialByUserID = `SELECT ` + credentialColumns + `
    FROM user_credentials
    WHERE user_id = $1;`

	updateCredentialHash = `UPDATE user_credentials
    SET password_hash = $2, updated_at = now()
    WHERE user_id = $1
    RETURNING ` + credentialColumns + `;`

	organizationColumns = `id, name, type, created_at`

	findOrganizationByNameAndType = `SELECT ` + organizationColumns + `
    FROM organizations
    WHERE name = $1 AND type = $2;`

	createOrganization = `INSERT INTO organizations (name, type)
    VALUES ($1, $2)
    RETURNING ` + organizationColumns + `;`

	roleColumns = `id, user_id, organization_id, name, type, status, created_at, updated_at`

	createRole = `INSERT INTO roles (user_id, organization_id, name, type, status)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING ` + roleColumns + `;`

	deactivateUserRoles = `UPDATE roles
    SET status = 'INACTIVE', updated_at = now()
    WHERE user_id = $1 AND status = 'ACTIVE';`

	getActiveRoleByUserID = `SELECT ` + roleColumns + `
    FROM roles
    WHERE user_id = $1 AND status = 'ACTIVE'
    ORDER BY id DESC
    LIMIT 1;`

	sessionColumns = `id, user_id, token, device_os, created_at`

	createSession = `INSERT INTO tokens (user_id, token, device_os)
    VALUES ($1, $2, $3)
    RETURNING ` + sessionColumns + `;`

	deleteSession = `DELETE FROM tokens
    WHERE user_id = $1 AND token = $2;`
)

// psql is the shared squirrel statement builder configured for PostgreSQL
// positional placeholders ($1, $2, ...).
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildAccountPatchQuery dynamically builds an UPDATE over the users table
// containing only the fields the patch actually sets. Nil patch fields are
// omitted so the update never clobbers values the caller did not mention.
// The updated_at column is always bumped, even for a patch that sets nothing
// else, so callers should skip building for a zero patch.
func buildAccountPatchQuery(accountID int64, patch models.AccountPatch) (string, []any, error) {
	builder := psql.Update("users")

	if patch.FirstName != nil {
		builder = builder.Set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		builder = builder.Set("last_name", *patch.LastName)
	}
	if patch.Phone != nil {
		builder = builder.Set("phone", *patch.Phone)
	}
	if patch.Status != nil {
		builder = builder.Set("status", *patch.Status)
	}
	if patch.AddressLine1 != nil {
		builder = builder.Set("address_line_1", *patch.AddressLine1)
	}
	if patch.AddressLine2 != nil {
		builder = builder.Set("address_line_2", *patch.AddressLine2)
	}
	if patch.City != nil {
		builder = builder.Set("city", *patch.City)
	}
	if patch.Country != nil {
		builder = builder.Set("country", *patch.Country)
	}
	if patch.ZipCode != nil {
		builder = builder.Set("zip_code", *patch.ZipCode)
	}
	if patch.Designation != nil {
		builder = builder.Set("designation", *patch.Designation)
	}
	if patch.Attributes != nil {
		attrs, err := json.Marshal(patch.Attributes)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		builder = builder.Set("attributes", attrs)
	}

	builder = builder.
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": accountID})

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildRolePatchQuery dynamically builds an UPDATE over the roles table for
// an in-place role change. The organization the role binds to is passed as a
// resolved ID because resolution happens earlier in the same transaction.
func buildRolePatchQuery(roleID, userID int64, patch models.RolePatch, organizationID int64) (string, []any, error) {
	builder := psql.Update("roles")

	if patch.Name != nil {
		builder = builder.Set("name", *patch.Name)
	}
	if patch.Type != nil {
		builder = builder.Set("type", *patch.Type)
	}
	if organizationID != 0 {
		builder = builder.Set("organization_id", organizationID)
	}

	builder = builder.
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": roleID, "user_id": userID})

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
