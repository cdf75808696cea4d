package domain

import (
	"time"

	"github.com/google/uuid"
)

// Like records that a user likes a movie. The (UserID, MovieID) pair is unique.
type Like struct {
	UserID    uuid.UUID `json:"user_id"`
	MovieID   int64     `json:"filme_id"`
	CreatedAt time.Time `json:"-"`
}

// Recommendation is a free-text movie suggestion submitted by any visitor.
type Recommendation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nome"`
	Text      string    `json:"indicacao"`
	CreatedAt time.Time `json:"created_at"`
}
