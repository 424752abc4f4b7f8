package repository

import (
	"context"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, username, COALESCE(full_name, ''), avatar_id, role, points, crystalls,
	rank_level, rank_title, COALESCE(status, ''), team_id, total_deals, created_at, updated_at`

type ProfileRepository struct {
	db db.Querier
}

func NewProfileRepository(q db.Querier) *ProfileRepository {
	return &ProfileRepository{db: q}
}

// WithTx returns a copy bound to tx.
func (r *ProfileRepository) WithTx(tx pgx.Tx) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(
		&p.ID,
		&p.Username,
		&p.FullName,
		&p.AvatarID,
		&p.Role,
		&p.Points,
		&p.Crystalls,
		&p.RankLevel,
		&p.RankTitle,
		&p.Status,
		&p.TeamID,
		&p.TotalDeals,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// Create inserts a fresh profile on the first rank tier.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	tier := domain.RankFor(0)
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO profiles (id, username, full_name, avatar_id, role, rank_level, rank_title)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		 RETURNING points, crystalls, rank_level, rank_title, total_deals, created_at, updated_at`,
		p.ID, p.Username, p.FullName, p.AvatarID, p.Role, tier.Level, tier.Title,
	).Scan(&p.Points, &p.Crystalls, &p.RankLevel, &p.RankTitle, &p.TotalDeals, &p.CreatedAt, &p.UpdatedAt))
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// GetForUpdate locks the profile row until the surrounding transaction ends.
func (r *ProfileRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, id))
}

func (r *ProfileRepository) FindByUsername(ctx context.Context, username string) (*domain.UserRef, error) {
	var ref domain.UserRef
	err := r.db.QueryRow(ctx,
		`SELECT id, username, COALESCE(full_name, '') FROM profiles WHERE lower(username) = lower($1)`,
		username,
	).Scan(&ref.UserID, &ref.Username, &ref.FullName)
	if err != nil {
		return nil, mapErr(err)
	}
	return &ref, nil
}

// Update applies the non-nil fields of patch.
func (r *ProfileRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) (*domain.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx,
		`UPDATE profiles SET
			username   = COALESCE($2, username),
			full_name  = COALESCE($3, full_name),
			status     = COALESCE($4, status),
			avatar_id  = COALESCE($5, avatar_id),
			updated_at = now()
		 WHERE id = $1
		 RETURNING `+profileColumns,
		id, patch.Username, patch.FullName, patch.Status, patch.AvatarID,
	))
}

// AddPoints changes the balance by delta and returns the new balance.
func (r *ProfileRepository) AddPoints(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	var points int64
	err := r.db.QueryRow(ctx,
		`UPDATE profiles SET points = points + $1, updated_at = now() WHERE id = $2 RETURNING points`,
		delta, id,
	).Scan(&points)
	return points, mapErr(err)
}

// AddCrystals changes the crystal balance by delta and returns the new balance.
func (r *ProfileRepository) AddCrystals(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	var crystalls int64
	err := r.db.QueryRow(ctx,
		`UPDATE profiles SET crystalls = crystalls + $1, updated_at = now() WHERE id = $2 RETURNING crystalls`,
		delta, id,
	).Scan(&crystalls)
	return crystalls, mapErr(err)
}

func (r *ProfileRepository) SetCrystals(ctx context.Context, id uuid.UUID, amount int64) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE profiles SET crystalls = $1, updated_at = now() WHERE id = $2`, amount, id))
}

func (r *ProfileRepository) SetRank(ctx context.Context, id uuid.UUID, tier domain.RankTier) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE profiles SET rank_level = $1, rank_title = $2 WHERE id = $3`, tier.Level, tier.Title, id))
}

// SetTeam points the profile at teamID; nil clears it.
func (r *ProfileRepository) SetTeam(ctx context.Context, id uuid.UUID, teamID *uuid.UUID) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE profiles SET team_id = $1, updated_at = now() WHERE id = $2`, teamID, id))
}

func (r *ProfileRepository) IncrementDeals(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE profiles SET total_deals = total_deals + 1 WHERE id = $1`, id))
}

// Ranking returns every profile by points desc, oldest first on ties, with verified stage counts.
func (r *ProfileRepository) Ranking(ctx context.Context) ([]domain.RankingEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.username, COALESCE(p.full_name, ''), p.avatar_id, p.role, p.points, p.crystalls,
			p.rank_level, p.rank_title, COALESCE(p.status, ''), p.team_id, p.total_deals, p.created_at, p.updated_at,
			COALESCE(s.cnt, 0)
		FROM profiles p
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS cnt FROM player_stages WHERE verified GROUP BY user_id
		) s ON s.user_id = p.id
		ORDER BY p.points DESC, p.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.RankingEntry
	for rows.Next() {
		var e domain.RankingEntry
		p := &e.Profile
		if err := rows.Scan(
			&p.ID, &p.Username, &p.FullName, &p.AvatarID, &p.Role, &p.Points, &p.Crystalls,
			&p.RankLevel, &p.RankTitle, &p.Status, &p.TeamID, &p.TotalDeals, &p.CreatedAt, &p.UpdatedAt,
			&e.StageCount,
		); err != nil {
			return nil, err
		}
		e.Position = len(res) + 1
		res = append(res, e)
	}
	return res, rows.Err()
}
