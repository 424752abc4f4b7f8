package service

import (
	"context"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/logger"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
)

type requestMetaKey struct{}

// WithRequestMeta attaches the caller's IP and user agent for audit rows.
func WithRequestMeta(ctx context.Context, meta domain.RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func requestMetaFrom(ctx context.Context) domain.RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(domain.RequestMeta)
	return meta
}

// AuditService handles audit logging
type AuditService struct {
	repo  *repository.AuditRepository
	teams *repository.TeamRepository
}

// NewAuditService creates a new audit service
func NewAuditService(q db.Querier) *AuditService {
	return &AuditService{
		repo:  repository.NewAuditRepository(q),
		teams: repository.NewTeamRepository(q),
	}
}

// Log creates a new audit log entry. Failures are logged and swallowed.
func (s *AuditService) Log(ctx context.Context, actor uuid.UUID, teamID *uuid.UUID, action, category string, details map[string]interface{}) {
	if s == nil {
		return
	}
	meta := requestMetaFrom(ctx)
	entry := &domain.AuditLog{
		UserID:    &actor,
		TeamID:    teamID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "user_id", actor)
	}
}

// LogSignOut logs a session revocation
func (s *AuditService) LogSignOut(ctx context.Context, userID uuid.UUID) {
	s.Log(ctx, userID, nil, domain.AuditActionSignOut, domain.AuditCategoryAuth, nil)
}

// GetUserAuditLogs returns audit logs for a user
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByUserID(ctx, userID, normalizeLimit(limit))
}

// TeamLogs returns the team-scoped entries. Only the team leader may read them.
func (s *AuditService) TeamLogs(ctx context.Context, caller, teamID uuid.UUID, limit int) ([]*domain.AuditLog, error) {
	m, err := membershipOf(ctx, s.teams, teamID, caller)
	if err != nil {
		return nil, err
	}
	if m.Role != domain.TeamRoleLeader {
		return nil, ErrForbidden
	}
	return s.repo.GetByTeamID(ctx, teamID, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
