package repository

import (
	"context"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TreasuryRepository struct {
	db db.Querier
}

func NewTreasuryRepository(q db.Querier) *TreasuryRepository {
	return &TreasuryRepository{db: q}
}

// WithTx returns a copy bound to tx.
func (r *TreasuryRepository) WithTx(tx pgx.Tx) *TreasuryRepository {
	return &TreasuryRepository{db: tx}
}

func (r *TreasuryRepository) Create(ctx context.Context, t *domain.TreasuryTransaction) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO treasury_transactions (team_id, user_id, amount, stage_name, description)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 RETURNING id, created_at`,
		t.TeamID, t.UserID, t.Amount, t.StageName, t.Description,
	).Scan(&t.ID, &t.CreatedAt))
}

// ListByTeam returns a team's inflows newest first with contributor names.
func (r *TreasuryRepository) ListByTeam(ctx context.Context, teamID uuid.UUID, limit int) ([]*domain.TreasuryTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT tt.id, tt.team_id, tt.user_id, tt.amount, tt.stage_name, COALESCE(tt.description, ''), tt.created_at,
			COALESCE(NULLIF(p.full_name, ''), p.username, '')
		FROM treasury_transactions tt
		LEFT JOIN profiles p ON p.id = tt.user_id
		WHERE tt.team_id = $1
		ORDER BY tt.created_at DESC
		LIMIT $2`, teamID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.TreasuryTransaction
	for rows.Next() {
		var t domain.TreasuryTransaction
		if err := rows.Scan(&t.ID, &t.TeamID, &t.UserID, &t.Amount, &t.StageName, &t.Description, &t.CreatedAt, &t.ContributorName); err != nil {
			return nil, err
		}
		if t.ContributorName == "" {
			t.ContributorName = domain.UnknownContributor
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}
