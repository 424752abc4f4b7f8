package repository

import (
	"context"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type FriendshipRepository struct {
	db db.Querier
}

func NewFriendshipRepository(q db.Querier) *FriendshipRepository {
	return &FriendshipRepository{db: q}
}

func (r *FriendshipRepository) Create(ctx context.Context, f *domain.Friendship) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO friendships (user_id, friend_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		f.UserID, f.FriendID, f.Status,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt))
}

func (r *FriendshipRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error) {
	var f domain.Friendship
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, friend_id, status, created_at, updated_at FROM friendships WHERE id = $1`, id,
	).Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &f, nil
}

// ExistsBetween reports whether any edge links a and b in either direction.
func (r *FriendshipRepository) ExistsBetween(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		)`, a, b,
	).Scan(&exists)
	return exists, err
}

// Accept flips a pending request addressed to recipient.
func (r *FriendshipRepository) Accept(ctx context.Context, id, recipient uuid.UUID) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE friendships SET status = 'accepted', updated_at = now()
		 WHERE id = $1 AND friend_id = $2 AND status = 'pending'`, id, recipient))
}

func (r *FriendshipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM friendships WHERE id = $1`, id))
}

// ListAccepted returns accepted edges touching userID with the other side's card.
func (r *FriendshipRepository) ListAccepted(ctx context.Context, userID uuid.UUID) ([]domain.FriendEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.user_id, f.friend_id, f.status, f.created_at, f.updated_at,
			p.id, p.username, COALESCE(p.full_name, ''), p.avatar_id, p.rank_title, p.points
		FROM friendships f
		JOIN profiles p ON p.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
		WHERE (f.user_id = $1 OR f.friend_id = $1) AND f.status = 'accepted'
		ORDER BY f.updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanFriendEntries(rows)
}

// ListIncoming returns pending requests addressed to userID with the requester's card.
func (r *FriendshipRepository) ListIncoming(ctx context.Context, userID uuid.UUID) ([]domain.FriendEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.user_id, f.friend_id, f.status, f.created_at, f.updated_at,
			p.id, p.username, COALESCE(p.full_name, ''), p.avatar_id, p.rank_title, p.points
		FROM friendships f
		JOIN profiles p ON p.id = f.user_id
		WHERE f.friend_id = $1 AND f.status = 'pending'
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanFriendEntries(rows)
}

func scanFriendEntries(rows pgx.Rows) ([]domain.FriendEntry, error) {
	defer rows.Close()

	var res []domain.FriendEntry
	for rows.Next() {
		var e domain.FriendEntry
		f, p := &e.Friendship, &e.Friend
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.FriendID, &f.Status, &f.CreatedAt, &f.UpdatedAt,
			&p.UserID, &p.Username, &p.FullName, &p.AvatarID, &p.RankTitle, &p.Points,
		); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
