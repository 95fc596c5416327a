package models

import "time"

// Organization is a shared tenant entity. Its effective identity is the
// natural key (Name, Type), not the generated ID: no two rows may share the
// same pair, and resolution is always find-before-create.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Organization model.
func (o Organization) TableName() string {
	return "organizations"
}
