package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"sales_arena/internal/cache"
	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/logger"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
)

const rankingCacheKey = "ranking"

// CreateProfileInput is the sign-up bootstrap payload.
type CreateProfileInput struct {
	Username string      `json:"username"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
	AvatarID int         `json:"avatar_id"`
}

type ProfileService struct {
	profiles     *repository.ProfileRepository
	transactions *repository.TransactionRepository
	cache        cache.Cache
	rankingTTL   time.Duration
	notify       *NotificationService
}

func NewProfileService(q db.Querier, c cache.Cache, rankingTTL time.Duration, notify *NotificationService) *ProfileService {
	if c == nil {
		c = cache.NewMemory()
	}
	return &ProfileService{
		profiles:     repository.NewProfileRepository(q),
		transactions: repository.NewTransactionRepository(q),
		cache:        c,
		rankingTTL:   rankingTTL,
		notify:       notify,
	}
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	return p, translate(err)
}

// Create bootstraps the caller's profile. Calling it again returns the existing row.
func (s *ProfileService) Create(ctx context.Context, id uuid.UUID, in CreateProfileInput) (*domain.Profile, error) {
	existing, err := s.profiles.GetByID(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	in.Username = strings.TrimSpace(in.Username)
	if in.AvatarID == 0 {
		in.AvatarID = domain.MinAvatarID
	}
	fields := make(map[string]string)
	if n := utf8.RuneCountInString(in.Username); n < 1 || n > 50 {
		fields["username"] = "must be 1-50 characters"
	}
	if utf8.RuneCountInString(in.FullName) > 100 {
		fields["full_name"] = "must be at most 100 characters"
	}
	if !in.Role.Valid() {
		fields["role"] = "must be manager, closer or leader"
	}
	if in.AvatarID < domain.MinAvatarID || in.AvatarID > domain.MaxAvatarID {
		fields["avatar_id"] = "must be between 1 and 12"
	}
	if err := invalid(fields); err != nil {
		return nil, err
	}

	p := &domain.Profile{
		ID:       id,
		Username: in.Username,
		FullName: strings.TrimSpace(in.FullName),
		AvatarID: in.AvatarID,
		Role:     in.Role,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, translate(err)
	}
	s.InvalidateRanking(ctx)
	return p, nil
}

// Update applies a partial patch to the caller's own profile.
func (s *ProfileService) Update(ctx context.Context, caller uuid.UUID, patch domain.ProfilePatch) (*domain.Profile, error) {
	if patch.Username != nil {
		trimmed := strings.TrimSpace(*patch.Username)
		patch.Username = &trimmed
	}
	if err := invalid(patch.Validate()); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.Get(ctx, caller)
	}

	p, err := s.profiles.Update(ctx, caller, patch)
	if err != nil {
		return nil, translate(err)
	}
	s.InvalidateRanking(ctx)
	s.notify.publish(ctx, domain.Event{
		Type:    domain.EventProfileUpdated,
		UserIDs: []uuid.UUID{caller},
		Payload: p,
	})
	return p, nil
}

func (s *ProfileService) FindByUsername(ctx context.Context, username string) (*domain.UserRef, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid(map[string]string{"username": "required"})
	}
	ref, err := s.profiles.FindByUsername(ctx, username)
	return ref, translate(err)
}

// Ranking serves the global ranking from cache, loading it on a miss.
func (s *ProfileService) Ranking(ctx context.Context) ([]domain.RankingEntry, error) {
	var entries []domain.RankingEntry
	ok, err := s.cache.Get(ctx, rankingCacheKey, &entries)
	if err != nil {
		logger.WithContext(ctx).Warnw("ranking cache read failed", "error", err)
	}
	if ok {
		return entries, nil
	}
	return s.RefreshRanking(ctx)
}

// RefreshRanking reloads the ranking from the database and stores it in the cache.
func (s *ProfileService) RefreshRanking(ctx context.Context) ([]domain.RankingEntry, error) {
	entries, err := s.profiles.Ranking(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, rankingCacheKey, entries, s.rankingTTL); err != nil {
		logger.WithContext(ctx).Warnw("ranking cache write failed", "error", err)
	}
	return entries, nil
}

func (s *ProfileService) InvalidateRanking(ctx context.Context) {
	if err := s.cache.Delete(ctx, rankingCacheKey); err != nil {
		logger.WithContext(ctx).Warnw("ranking cache invalidate failed", "error", err)
	}
}

// PointHistory returns the user's ledger rows, newest first.
func (s *ProfileService) PointHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PointTransaction, error) {
	return s.transactions.GetByUserID(ctx, userID, normalizeLimit(limit))
}
