package repository

import (
	"context"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const stageColumns = `id, user_id, added_by, team_id, stage_name, points, COALESCE(description, ''),
	verified, points_applied, created_at, verified_at`

type StageRepository struct {
	db db.Querier
}

func NewStageRepository(q db.Querier) *StageRepository {
	return &StageRepository{db: q}
}

// WithTx returns a copy bound to tx.
func (r *StageRepository) WithTx(tx pgx.Tx) *StageRepository {
	return &StageRepository{db: tx}
}

func scanStage(row pgx.Row) (*domain.Stage, error) {
	var s domain.Stage
	if err := row.Scan(
		&s.ID, &s.UserID, &s.AddedBy, &s.TeamID, &s.StageName, &s.Points, &s.Description,
		&s.Verified, &s.PointsApplied, &s.CreatedAt, &s.VerifiedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *StageRepository) Create(ctx context.Context, s *domain.Stage) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO player_stages (user_id, added_by, team_id, stage_name, points, description, verified, points_applied, verified_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, CASE WHEN $7 THEN now() END)
		 RETURNING id, created_at, verified_at`,
		s.UserID, s.AddedBy, s.TeamID, s.StageName, s.Points, s.Description, s.Verified, s.PointsApplied,
	).Scan(&s.ID, &s.CreatedAt, &s.VerifiedAt))
}

func (r *StageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Stage, error) {
	return scanStage(r.db.QueryRow(ctx, `SELECT `+stageColumns+` FROM player_stages WHERE id = $1`, id))
}

// GetForUpdate locks the stage row until the surrounding transaction ends.
func (r *StageRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Stage, error) {
	return scanStage(r.db.QueryRow(ctx, `SELECT `+stageColumns+` FROM player_stages WHERE id = $1 FOR UPDATE`, id))
}

// MarkVerified flips an unverified stage to verified with its points applied.
func (r *StageRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE player_stages SET verified = true, points_applied = true, verified_at = now()
		 WHERE id = $1 AND NOT verified`, id))
}

func (r *StageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM player_stages WHERE id = $1`, id))
}

func (r *StageRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Stage, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+stageColumns+` FROM player_stages WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStages(rows)
}

// ListPendingByTeam returns the unverified stages recorded in a team, oldest first.
func (r *StageRepository) ListPendingByTeam(ctx context.Context, teamID uuid.UUID) ([]*domain.Stage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+stageColumns+` FROM player_stages WHERE team_id = $1 AND NOT verified ORDER BY created_at ASC`,
		teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStages(rows)
}

func scanStages(rows pgx.Rows) ([]*domain.Stage, error) {
	var res []*domain.Stage
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
