package domain

import (
	"time"

	"github.com/google/uuid"
)

// PointTransactionType labels a change of a profile's points.
type PointTransactionType string

const (
	PointsStage         PointTransactionType = "этап"
	PointsStageReversal PointTransactionType = "отмена этапа"
	PointsBonus         PointTransactionType = "бонус"
	PointsPenalty       PointTransactionType = "штраф"
	PointsPurchase      PointTransactionType = "покупка"
	PointsTreasury      PointTransactionType = "казна"
)

// PointTransaction is one row of the append-only points ledger.
type PointTransaction struct {
	ID          uuid.UUID            `db:"id" json:"id"`
	UserID      uuid.UUID            `db:"user_id" json:"user_id"`
	Points      int64                `db:"points" json:"points"`
	Type        PointTransactionType `db:"transaction_type" json:"transaction_type"`
	Description string               `db:"description" json:"description"`
	CreatedBy   *uuid.UUID           `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
}

// AdjustKind is a leader's manual bonus or penalty.
type AdjustKind string

const (
	AdjustBonus   AdjustKind = "bonus"
	AdjustPenalty AdjustKind = "penalty"
)

func (k AdjustKind) Valid() bool {
	return k == AdjustBonus || k == AdjustPenalty
}

// TransactionType maps the adjustment to its ledger label.
func (k AdjustKind) TransactionType() PointTransactionType {
	if k == AdjustPenalty {
		return PointsPenalty
	}
	return PointsBonus
}
