package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type userService struct {
	userRepo       domain.UserRepository
	profileRepo    domain.ProfileRepository
	contextTimeout time.Duration
}

// NewUserService creates a UserService.
func NewUserService(userRepo domain.UserRepository, profileRepo domain.ProfileRepository, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		contextTimeout: timeout,
	}
}

func (s *userService) GetMe(ctx context.Context, viewer domain.Viewer) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if viewer.IsAnonymous() {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) DeleteMe(ctx context.Context, viewer domain.Viewer) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if viewer.IsAnonymous() {
		return domain.ErrUnauthenticated
	}
	if err := s.userRepo.Delete(ctx, viewer.UserID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *userService) GetProfile(ctx context.Context, viewer domain.Viewer) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if viewer.IsAnonymous() {
		return nil, domain.ErrUnauthenticated
	}
	p, err := s.profileRepo.GetByUserID(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *userService) UpsertProfile(ctx context.Context, viewer domain.Viewer, in domain.ProfileInput) (*domain.Profile, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if viewer.IsAnonymous() {
		return nil, false, domain.ErrUnauthenticated
	}
	picture := strings.TrimSpace(in.ProfilePicture)
	if picture != "" {
		u, err := url.Parse(picture)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, false, domain.NewValidationError("profile_picture", "must be an http(s) URL")
		}
	}

	now := time.Now().UTC()
	p := &domain.Profile{
		UserID:         viewer.UserID,
		FullName:       strings.TrimSpace(in.FullName),
		Bio:            strings.TrimSpace(in.Bio),
		Location:       strings.TrimSpace(in.Location),
		ProfilePicture: picture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	created, err := s.profileRepo.Upsert(ctx, p)
	if err != nil {
		return nil, false, fmt.Errorf("upsert profile: %w", err)
	}
	return p, created, nil
}
