package domain

import (
	"context"
	"time"
)

// Profile holds optional public details of a user. Each user has at most one.
// swagger:model Profile
type Profile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	FullName       string    `json:"full_name"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	ProfilePicture string    `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfileInput is the writable part of a Profile.
type ProfileInput struct {
	FullName       string
	Bio            string
	Location       string
	ProfilePicture string
}

// ProfileRepository defines storage operations for profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	// Upsert inserts or updates the profile keyed by UserID and reports whether a row was created.
	Upsert(ctx context.Context, p *Profile) (created bool, err error)
}
