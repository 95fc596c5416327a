package utils

import "github.com/google/uuid"

// UUIDGenerator produces string UUIDs for single-use secrets such as
// password reset keys. Version 7 is preferred for its time ordering,
// with a fallback to version 4 if the system clock source fails.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
