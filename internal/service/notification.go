package service

import (
	"context"
	"fmt"
	"time"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/logger"
	"sales_arena/internal/realtime"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
)

// NotificationService stores team notifications and pushes realtime events.
type NotificationService struct {
	repo  *repository.NotificationRepository
	teams *repository.TeamRepository
	pub   realtime.Publisher
}

func NewNotificationService(q db.Querier, pub realtime.Publisher) *NotificationService {
	if pub == nil {
		pub = realtime.Nop{}
	}
	return &NotificationService{
		repo:  repository.NewNotificationRepository(q),
		teams: repository.NewTeamRepository(q),
		pub:   pub,
	}
}

func (s *NotificationService) Settings(ctx context.Context, viewer, teamID uuid.UUID) (domain.TeamNotificationSettings, error) {
	if _, err := membershipOf(ctx, s.teams, teamID, viewer); err != nil {
		return domain.TeamNotificationSettings{}, err
	}
	return s.repo.GetSettings(ctx, teamID)
}

func (s *NotificationService) UpdateSettings(ctx context.Context, caller, teamID uuid.UUID, patch domain.NotificationSettingsPatch) (domain.TeamNotificationSettings, error) {
	if _, err := requireManager(ctx, s.teams, teamID, caller); err != nil {
		return domain.TeamNotificationSettings{}, err
	}
	current, err := s.repo.GetSettings(ctx, teamID)
	if err != nil {
		return current, err
	}
	next := patch.Apply(current)
	if err := s.repo.UpsertSettings(ctx, &next); err != nil {
		return current, translate(err)
	}
	return next, nil
}

func (s *NotificationService) List(ctx context.Context, viewer, teamID uuid.UUID, limit int) ([]domain.TeamNotification, error) {
	if _, err := membershipOf(ctx, s.teams, teamID, viewer); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, teamID, limit)
}

// Notify records a team notification when its type is enabled and pushes it to members.
// Errors are logged only; the operation that triggered it has already committed.
func (s *NotificationService) Notify(ctx context.Context, teamID uuid.UUID, typ domain.NotificationType, message string) {
	log := logger.WithContext(ctx).With("team_id", teamID, "type", typ)

	settings, err := s.repo.GetSettings(ctx, teamID)
	if err != nil {
		log.Errorw("load notification settings", "error", err)
		return
	}
	if !settings.Enabled(typ) {
		return
	}

	n := &domain.TeamNotification{TeamID: teamID, Type: typ, Message: message}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Errorw("create team notification", "error", err)
		return
	}

	members, err := s.teams.MemberIDs(ctx, teamID)
	if err != nil {
		log.Errorw("load team members", "error", err)
		return
	}
	s.publish(ctx, domain.Event{
		Type:      domain.EventTeamNotification,
		UserIDs:   members,
		TeamID:    &teamID,
		Payload:   n,
		CreatedAt: n.CreatedAt,
	})
}

// publish sends ev and logs failures.
func (s *NotificationService) publish(ctx context.Context, ev domain.Event) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		logger.WithContext(ctx).Warnw("publish realtime event", "type", ev.Type, "error", err)
	}
}

// announcePoints tells the owner about a committed balance change and, on a new rank, the team.
func (s *NotificationService) announcePoints(ctx context.Context, c pointsChange) {
	s.publish(ctx, domain.Event{
		Type:    domain.EventProfileUpdated,
		UserIDs: []uuid.UUID{c.UserID},
		Payload: map[string]any{"points": c.Balance, "rank_level": c.NewRank.Level, "rank_title": c.NewRank.Title},
	})
	if !c.RankChanged() {
		return
	}
	s.publish(ctx, domain.Event{
		Type:    domain.EventRankChanged,
		UserIDs: []uuid.UUID{c.UserID},
		Payload: map[string]any{"old": c.OldRank, "new": c.NewRank},
	})
	if c.TeamID != nil {
		s.Notify(ctx, *c.TeamID, domain.NotifyRank, fmt.Sprintf("🏆 %s получил ранг %s", c.Name, c.NewRank.Title))
	}
}
