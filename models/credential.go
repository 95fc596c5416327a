package models

import "time"

// Credential holds the hashed secret bound 1:1 to an account. There is never
// more than one live credential per account: password changes replace the
// hash in place instead of appending a new row.
type Credential struct {
	ID int64 `json:"id"`

	// UserID is the owning account. Unique across the table.
	UserID int64 `json:"user_id"`

	// PasswordHash is the bcrypt hash of the account secret.
	// Never exposed via JSON.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Credential model.
func (c Credential) TableName() string {
	return "user_credentials"
}
