package diagram

import "github.com/google/uuid"

// NewID returns a fresh random entity identifier.
func NewID() string {
	return uuid.New().String()
}
