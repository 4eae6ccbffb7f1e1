package services

import "github.com/google/uuid"

// validID reports whether id can be a primary key. Rows are keyed by UUID, so
// anything else cannot exist and is treated as not found.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
