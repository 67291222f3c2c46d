package app

import (
	"fmt"

	"github.com/google/uuid"
)

// generateID returns a time-ordered UUIDv7 for a new record.
func generateID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return id.String(), nil
}
