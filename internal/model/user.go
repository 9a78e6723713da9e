package model

import "time"

// User is a quiz participant. The handle is the natural dedup key used for
// session lookups; registration returns the existing record when the handle
// is already known.
type User struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterUserRequest is the payload for registering (or re-fetching) a participant.
type RegisterUserRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=120"`
	Handle   string `json:"handle" binding:"required,min=2,max=120"`
}
