package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Denylist remembers revoked tokens until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, key string, until time.Time) error
	Revoked(ctx context.Context, key string) (bool, error)
}

const denylistPrefix = "sales_arena:revoked:"

type RedisDenylist struct {
	rdb *redis.Client
}

func NewRedisDenylist(rdb *redis.Client) *RedisDenylist {
	return &RedisDenylist{rdb: rdb}
}

func (d *RedisDenylist) Revoke(ctx context.Context, key string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, denylistPrefix+key, 1, ttl).Err()
}

func (d *RedisDenylist) Revoked(ctx context.Context, key string) (bool, error) {
	n, err := d.rdb.Exists(ctx, denylistPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryDenylist is the single-instance fallback.
type MemoryDenylist struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{items: make(map[string]time.Time), now: time.Now}
}

func (d *MemoryDenylist) Revoke(_ context.Context, key string, until time.Time) error {
	d.mu.Lock()
	d.items[key] = until
	d.mu.Unlock()
	return nil
}

func (d *MemoryDenylist) Revoked(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.items[key]
	if !ok {
		return false, nil
	}
	if !d.now().Before(until) {
		delete(d.items, key)
		return false, nil
	}
	return true, nil
}

// Purge drops entries whose tokens have expired.
func (d *MemoryDenylist) Purge() int {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for k, until := range d.items {
		if !now.Before(until) {
			delete(d.items, k)
			n++
		}
	}
	return n
}

// Session is the signed-in user and, once bootstrapped, their profile.
type Session struct {
	UserID  uuid.UUID       `json:"user_id"`
	Profile *domain.Profile `json:"profile"`
}

type SessionService struct {
	denylist Denylist
	profiles *repository.ProfileRepository
	audit    *AuditService
}

func NewSessionService(q db.Querier, denylist Denylist, audit *AuditService) *SessionService {
	if denylist == nil {
		denylist = NewMemoryDenylist()
	}
	return &SessionService{
		denylist: denylist,
		profiles: repository.NewProfileRepository(q),
		audit:    audit,
	}
}

// Authenticate verifies the token and rejects revoked ones.
func (s *SessionService) Authenticate(ctx context.Context, raw string) (*TokenClaims, error) {
	claims, err := ParseJWT(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.denylist.Revoked(ctx, claims.revocationKey(raw))
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Current returns the session. Profile is nil until the user bootstraps it.
func (s *SessionService) Current(ctx context.Context, userID uuid.UUID) (*Session, error) {
	sess := &Session{UserID: userID}
	p, err := s.profiles.GetByID(ctx, userID)
	switch {
	case err == nil:
		sess.Profile = p
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return sess, nil
}

// SignOut revokes the presented token until its expiry.
func (s *SessionService) SignOut(ctx context.Context, raw string) error {
	claims, err := ParseJWT(raw)
	if err != nil {
		return err
	}
	if err := s.denylist.Revoke(ctx, claims.revocationKey(raw), claims.ExpiresAt); err != nil {
		return err
	}
	s.audit.LogSignOut(ctx, claims.UserID)
	return nil
}
