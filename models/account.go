package models

import "time"

// Account statuses. A freshly provisioned account starts in StatusProcessing
// and is moved to StatusActive by the external verification flow.
const (
	StatusNotVerified = "NOT_VERIFIED"
	StatusProcessing  = "PROCESSING"
	StatusActive      = "ACTIVE"
	StatusInactive    = "INACTIVE"
	StatusRequested   = "REQUESTED"
)

// Account represents an identity record used for authentication and
// authorization. The hashed secret lives in a separate [Credential] row,
// never on the account itself.
type Account struct {
	// ID is the internal unique identifier of the account.
	ID int64 `json:"id"`

	// Email is the unique account identifier used during authentication.
	// Stored lowercased; uniqueness is case-insensitive.
	Email string `json:"email"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`

	// Status is one of the Status* constants.
	Status string `json:"status"`

	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country"`
	ZipCode      string `json:"zip_code,omitempty"`
	Designation  string `json:"designation,omitempty"`

	// LastLogin is the time of the most recent successful login, nil if the
	// account has never logged in.
	LastLogin *time.Time `json:"last_login,omitempty"`

	// ResetKey is the opaque token proving authorization to complete a
	// password reset. Empty when no reset is in flight.
	// Never exposed via JSON.
	ResetKey string `json:"-"`

	// ResetCount is the number of reset requests made on the calendar day of
	// ResetTimestamp. Enforced against the configured daily limit.
	ResetCount int `json:"-"`

	// ResetTimestamp anchors the calendar day the ResetCount refers to.
	ResetTimestamp time.Time `json:"-"`

	// ResetKeyTimestamp records when the current ResetKey was generated.
	ResetKeyTimestamp time.Time `json:"-"`

	// Attributes carries untyped extension attributes that do not belong to
	// the core schema. Persisted as a jsonb side-map.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Role is the account's current ACTIVE role, populated on reads only.
	// Nil when the account has no active role. Never written through the
	// account row; role mutations go through the role workflows.
	Role *Role `json:"role,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Account model.
func (a Account) TableName() string {
	return "users"
}

// AccountInput is the provisioning payload for a new account. The plaintext
// Password is extracted by the provisioner before the account row is written
// and must never be persisted on the account itself.
type AccountInput struct {
	Account

	// Password is the plaintext secret supplied at provisioning time.
	Password string `json:"password"`

	// Organization, when present, is resolved to an existing or new
	// organization row and linked to the account through an active role.
	Organization *Organization `json:"organization,omitempty"`

	// Role optionally overrides the name/type of the role created for the
	// embedded organization. Defaults to an EMPLOYEE role.
	Role *Role `json:"role,omitempty"`
}

// AccountPatch is a partial account update. Nil fields are left untouched so
// that a patch never clobbers values it does not mention.
type AccountPatch struct {
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Status       *string `json:"status,omitempty"`
	AddressLine1 *string `json:"address_line_1,omitempty"`
	AddressLine2 *string `json:"address_line_2,omitempty"`
	City         *string `json:"city,omitempty"`
	Country      *string `json:"country,omitempty"`
	ZipCode      *string `json:"zip_code,omitempty"`
	Designation  *string `json:"designation,omitempty"`

	// Attributes replaces the stored extension attribute map when non-nil.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Role, when present, is applied before the account row itself: a patch
	// without a role ID deactivates every prior role and creates a fresh
	// active one; a patch with a role ID updates that role in place.
	Role *RolePatch `json:"role,omitempty"`
}

// IsZero reports whether the patch carries no account-level changes.
// A patch that only mutates the role sub-object is zero at the account level.
func (p AccountPatch) IsZero() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil &&
		p.Status == nil && p.AddressLine1 == nil && p.AddressLine2 == nil &&
		p.City == nil && p.Country == nil && p.ZipCode == nil &&
		p.Designation == nil && p.Attributes == nil
}
