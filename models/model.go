package models

import "github.com/google/uuid"

// NewID menghasilkan id dokumen baru (UUID v4 string).
func NewID() string {
	return uuid.New().String()
}
