package repository

import (
	"context"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepository stores the points ledger.
type TransactionRepository struct {
	db db.Querier
}

func NewTransactionRepository(q db.Querier) *TransactionRepository {
	return &TransactionRepository{db: q}
}

// WithTx returns a copy bound to tx.
func (r *TransactionRepository) WithTx(tx pgx.Tx) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

// GetByUserID returns recent ledger rows for a user
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.PointTransaction, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, points, transaction_type, COALESCE(description, ''), created_by, created_at
		 FROM point_transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// Create inserts a new ledger row
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.PointTransaction) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO point_transactions (user_id, points, transaction_type, description, created_by)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 RETURNING id, created_at`,
		tx.UserID, tx.Points, tx.Type, tx.Description, tx.CreatedBy,
	).Scan(&tx.ID, &tx.CreatedAt))
}

func (r *TransactionRepository) scanRows(rows pgx.Rows) ([]*domain.PointTransaction, error) {
	var result []*domain.PointTransaction

	for rows.Next() {
		var tx domain.PointTransaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Points, &tx.Type, &tx.Description, &tx.CreatedBy, &tx.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &tx)
	}

	return result, rows.Err()
}
