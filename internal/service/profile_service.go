package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/repository"
)

// ProfileService owns the public display name shown in rankings.
type ProfileService interface {
	// GetOrCreate returns the user's profile, creating it with a default
	// display name on first access.
	GetOrCreate(ctx context.Context, userID string) (domain.Profile, error)
	UpdateDisplayName(ctx context.Context, userID, displayName string) (domain.Profile, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	now         func() time.Time
	randN       func(n int) int
}

func NewProfileService(profileRepo repository.ProfileRepository, userRepo repository.UserRepository, now func() time.Time) ProfileService {
	if now == nil {
		now = time.Now
	}
	return &profileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		now:         now,
		randN:       rand.IntN,
	}
}

func (s *profileService) GetOrCreate(ctx context.Context, userID string) (domain.Profile, error) {
	if userID == "" {
		panic("service: profile requested without a user id")
	}
	p, err := s.profileRepo.Get(ctx, userID)
	if err == nil {
		return *p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	email := s.lookupEmail(ctx, userID)
	now := s.now().UTC()
	profile := domain.Profile{
		UserID:      userID,
		DisplayName: defaultDisplayName(userID, email, s.randN),
		Email:       email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return domain.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) UpdateDisplayName(ctx context.Context, userID, displayName string) (domain.Profile, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return domain.Profile{}, fmt.Errorf("%w: display name is required", ErrValidationFailed)
	}
	p, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	p.DisplayName = displayName
	p.UpdatedAt = s.now().UTC()
	if err := s.profileRepo.Upsert(ctx, p); err != nil {
		return domain.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

func (s *profileService) lookupEmail(ctx context.Context, userID string) string {
	if s.userRepo == nil {
		return ""
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ""
	}
	u, err := s.userRepo.GetByID(ctx, oid)
	if err != nil {
		return ""
	}
	return u.Email
}

// defaultDisplayName is the email's local part when it has at least three
// characters, otherwise "Athlete <UID4>-<4 digits>".
func defaultDisplayName(userID, email string, randN func(int) int) string {
	local, _, _ := strings.Cut(email, "@")
	if local = strings.TrimSpace(local); len([]rune(local)) >= 3 {
		return local
	}
	return fmt.Sprintf("%s-%d", anonymousName(userID), randN(9000)+1000)
}

// anonymousName labels a user without a profile.
func anonymousName(userID string) string {
	short := userID
	if len(short) > 4 {
		short = short[:4]
	}
	return "Athlete " + strings.ToUpper(short)
}
