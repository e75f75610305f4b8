package domain

import "time"

// Actor identifies who performs a mutation.
type Actor struct {
	UserID string
}

// Token represents issued access token metadata.
type Token struct {
	Value     string
	SubjectID string
	ExpiresAt time.Time
}
