package repository

import (
	"context"
	"errors"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	db db.Querier
}

func NewNotificationRepository(q db.Querier) *NotificationRepository {
	return &NotificationRepository{db: q}
}

// GetSettings returns the stored settings or the all-on defaults.
func (r *NotificationRepository) GetSettings(ctx context.Context, teamID uuid.UUID) (domain.TeamNotificationSettings, error) {
	s := domain.TeamNotificationSettings{TeamID: teamID}
	err := r.db.QueryRow(ctx,
		`SELECT notify_stage_completion, notify_purchases, notify_new_members, notify_rank_changes, updated_at
		 FROM team_notification_settings WHERE team_id = $1`, teamID,
	).Scan(&s.NotifyStageCompletion, &s.NotifyPurchases, &s.NotifyNewMembers, &s.NotifyRankChanges, &s.UpdatedAt)
	if err != nil {
		if err = mapErr(err); errors.Is(err, ErrNotFound) {
			return domain.DefaultNotificationSettings(teamID), nil
		}
		return s, err
	}
	return s, nil
}

func (r *NotificationRepository) UpsertSettings(ctx context.Context, s *domain.TeamNotificationSettings) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO team_notification_settings
			(team_id, notify_stage_completion, notify_purchases, notify_new_members, notify_rank_changes)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (team_id) DO UPDATE SET
			notify_stage_completion = EXCLUDED.notify_stage_completion,
			notify_purchases        = EXCLUDED.notify_purchases,
			notify_new_members      = EXCLUDED.notify_new_members,
			notify_rank_changes     = EXCLUDED.notify_rank_changes,
			updated_at              = now()
		 RETURNING updated_at`,
		s.TeamID, s.NotifyStageCompletion, s.NotifyPurchases, s.NotifyNewMembers, s.NotifyRankChanges,
	).Scan(&s.UpdatedAt))
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.TeamNotification) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO team_notifications (team_id, type, message) VALUES ($1, $2, $3) RETURNING id, created_at`,
		n.TeamID, n.Type, n.Message,
	).Scan(&n.ID, &n.CreatedAt))
}

func (r *NotificationRepository) List(ctx context.Context, teamID uuid.UUID, limit int) ([]domain.TeamNotification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, team_id, type, message, created_at FROM team_notifications
		 WHERE team_id = $1 ORDER BY created_at DESC LIMIT $2`, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.TeamNotification
	for rows.Next() {
		var n domain.TeamNotification
		if err := rows.Scan(&n.ID, &n.TeamID, &n.Type, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}
