package repository

import (
	"context"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
)

type MessageRepository struct {
	db db.Querier
}

func NewMessageRepository(q db.Querier) *MessageRepository {
	return &MessageRepository{db: q}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.PrivateMessage) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO private_messages (sender_id, recipient_id, subject, message)
		 VALUES ($1, $2, NULLIF($3, ''), $4)
		 RETURNING id, is_read, created_at`,
		m.SenderID, m.RecipientID, m.Subject, m.Message,
	).Scan(&m.ID, &m.IsRead, &m.CreatedAt))
}

// ListForUser returns messages where userID is either side, newest first.
func (r *MessageRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.PrivateMessage, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, sender_id, recipient_id, COALESCE(subject, ''), message, is_read, created_at
		 FROM private_messages
		 WHERE sender_id = $1 OR recipient_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.PrivateMessage
	for rows.Next() {
		var m domain.PrivateMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// MarkRead flags ids as read, only where recipient is the viewer.
func (r *MessageRepository) MarkRead(ctx context.Context, recipient uuid.UUID, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE private_messages SET is_read = true
		 WHERE recipient_id = $1 AND id = ANY($2) AND NOT is_read`, recipient, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *MessageRepository) UnreadCount(ctx context.Context, recipient uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM private_messages WHERE recipient_id = $1 AND NOT is_read`, recipient,
	).Scan(&n)
	return n, err
}
