package repository

import (
	"context"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
)

type ForumRepository struct {
	db db.Querier
}

func NewForumRepository(q db.Querier) *ForumRepository {
	return &ForumRepository{db: q}
}

func (r *ForumRepository) CreateTopic(ctx context.Context, t *domain.ForumTopic) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO forum_topics (team_id, created_by, title, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.TeamID, t.CreatedBy, t.Title, t.Content,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt))
}

func (r *ForumRepository) GetTopic(ctx context.Context, id uuid.UUID) (*domain.ForumTopic, error) {
	var t domain.ForumTopic
	err := r.db.QueryRow(ctx, `
		SELECT t.id, t.team_id, t.created_by, t.title, t.content, t.created_at, t.updated_at,
			COALESCE(NULLIF(p.full_name, ''), p.username, ''),
			(SELECT COUNT(*) FROM forum_replies fr WHERE fr.topic_id = t.id)
		FROM forum_topics t
		LEFT JOIN profiles p ON p.id = t.created_by
		WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.TeamID, &t.CreatedBy, &t.Title, &t.Content, &t.CreatedAt, &t.UpdatedAt, &t.AuthorName, &t.ReplyCount)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

// ListTopics returns a team's topics, most recently updated first, with reply counts.
func (r *ForumRepository) ListTopics(ctx context.Context, teamID uuid.UUID) ([]domain.ForumTopic, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.team_id, t.created_by, t.title, t.content, t.created_at, t.updated_at,
			COALESCE(NULLIF(p.full_name, ''), p.username, ''),
			(SELECT COUNT(*) FROM forum_replies fr WHERE fr.topic_id = t.id)
		FROM forum_topics t
		LEFT JOIN profiles p ON p.id = t.created_by
		WHERE t.team_id = $1
		ORDER BY t.updated_at DESC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.ForumTopic
	for rows.Next() {
		var t domain.ForumTopic
		if err := rows.Scan(&t.ID, &t.TeamID, &t.CreatedBy, &t.Title, &t.Content, &t.CreatedAt, &t.UpdatedAt, &t.AuthorName, &t.ReplyCount); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *ForumRepository) UpdateTopic(ctx context.Context, id uuid.UUID, title, content string) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE forum_topics SET title = $1, content = $2, updated_at = now() WHERE id = $3`, title, content, id))
}

func (r *ForumRepository) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM forum_topics WHERE id = $1`, id))
}

func (r *ForumRepository) CreateReply(ctx context.Context, rep *domain.ForumReply) error {
	if err := r.db.QueryRow(ctx,
		`INSERT INTO forum_replies (topic_id, user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		rep.TopicID, rep.UserID, rep.Content,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
		return mapErr(err)
	}
	_, err := r.db.Exec(ctx, `UPDATE forum_topics SET updated_at = now() WHERE id = $1`, rep.TopicID)
	return err
}

func (r *ForumRepository) GetReply(ctx context.Context, id uuid.UUID) (*domain.ForumReply, error) {
	var rep domain.ForumReply
	err := r.db.QueryRow(ctx,
		`SELECT id, topic_id, user_id, content, created_at, updated_at FROM forum_replies WHERE id = $1`, id,
	).Scan(&rep.ID, &rep.TopicID, &rep.UserID, &rep.Content, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &rep, nil
}

func (r *ForumRepository) ListReplies(ctx context.Context, topicID uuid.UUID) ([]domain.ForumReply, error) {
	rows, err := r.db.Query(ctx, `
		SELECT fr.id, fr.topic_id, fr.user_id, fr.content, fr.created_at, fr.updated_at,
			COALESCE(NULLIF(p.full_name, ''), p.username, '')
		FROM forum_replies fr
		LEFT JOIN profiles p ON p.id = fr.user_id
		WHERE fr.topic_id = $1
		ORDER BY fr.created_at ASC`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.ForumReply
	for rows.Next() {
		var rep domain.ForumReply
		if err := rows.Scan(&rep.ID, &rep.TopicID, &rep.UserID, &rep.Content, &rep.CreatedAt, &rep.UpdatedAt, &rep.AuthorName); err != nil {
			return nil, err
		}
		res = append(res, rep)
	}
	return res, rows.Err()
}

func (r *ForumRepository) UpdateReply(ctx context.Context, id uuid.UUID, content string) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE forum_replies SET content = $1, updated_at = now() WHERE id = $2`, content, id))
}

func (r *ForumRepository) DeleteReply(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM forum_replies WHERE id = $1`, id))
}
