package repository

import (
	"context"
	"slices"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
)

type ChatRepository struct {
	db db.Querier
}

func NewChatRepository(q db.Querier) *ChatRepository {
	return &ChatRepository{db: q}
}

func (r *ChatRepository) Create(ctx context.Context, m *domain.ChatMessage) error {
	return mapErr(r.db.QueryRow(ctx,
		`WITH ins AS (
			INSERT INTO chat_messages (user_id, team_id, message)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, user_id
		)
		SELECT ins.id, ins.created_at, p.username, COALESCE(p.full_name, '')
		FROM ins JOIN profiles p ON p.id = ins.user_id`,
		m.UserID, m.TeamID, m.Message,
	).Scan(&m.ID, &m.CreatedAt, &m.Username, &m.FullName))
}

// Recent returns the latest limit messages of a team, or of the global room when teamID is nil,
// in ascending order.
func (r *ChatRepository) Recent(ctx context.Context, teamID *uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.user_id, c.team_id, c.message, c.created_at, p.username, COALESCE(p.full_name, '')
		FROM chat_messages c
		JOIN profiles p ON p.id = c.user_id
		WHERE c.team_id IS NOT DISTINCT FROM $1
		ORDER BY c.created_at DESC
		LIMIT $2`, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.TeamID, &m.Message, &m.CreatedAt, &m.Username, &m.FullName); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(res)
	return res, nil
}
