// Package service provides business logic for the application.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hngstage/profile-api/internal/model"
)

// FactFetcher retrieves a single fact from an external source.
type FactFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// ProfileService assembles the GET /me response.
type ProfileService struct {
	facts  FactFetcher
	logger *slog.Logger
	now    func() time.Time
}

// ProfileOption configures a ProfileService.
type ProfileOption func(*ProfileService)

// WithClock overrides the time source used for response timestamps.
func WithClock(now func() time.Time) ProfileOption {
	return func(s *ProfileService) { s.now = now }
}

// NewProfileService creates a new ProfileService.
func NewProfileService(facts FactFetcher, logger *slog.Logger, opts ...ProfileOption) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ProfileService{
		facts:  facts,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build fetches one fact and composes the profile response.
// Fetch errors are returned wrapped, with no local recovery.
func (s *ProfileService) Build(ctx context.Context) (*model.ProfileResponse, error) {
	fact, err := s.facts.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch fact: %w", err)
	}

	user := model.DefaultUser()
	s.logger.DebugContext(ctx, "user data prepared", slog.String("name", user.Name))

	return model.NewProfileResponse(user, fact, s.now()), nil
}
