package ids

import "github.com/google/uuid"

// Generator hands out identifiers for stored entities
type Generator interface {
	NewID() string
}

// UUIDGenerator generates random version 4 UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a new UUID string
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}
