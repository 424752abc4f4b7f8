package service

import (
	"context"

	"sales_arena/internal/domain"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// pointsChange describes one committed balance move, for post-commit announcements.
type pointsChange struct {
	UserID   uuid.UUID
	TeamID   *uuid.UUID
	Name     string
	Balance  int64
	OldRank  domain.RankTier
	NewRank  domain.RankTier
	Reversal bool
}

func (c pointsChange) RankChanged() bool {
	return c.OldRank.Level != c.NewRank.Level
}

func displayName(p *domain.Profile) string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}

// applyPoints moves the balance of a profile locked by the caller, recomputes its rank
// and appends the ledger row, all inside tx.
func applyPoints(ctx context.Context, tx pgx.Tx, p *domain.Profile, delta int64,
	typ domain.PointTransactionType, description string, by *uuid.UUID) (pointsChange, error) {
	profiles := repository.NewProfileRepository(tx)

	balance, err := profiles.AddPoints(ctx, p.ID, delta)
	if err != nil {
		return pointsChange{}, err
	}

	c := pointsChange{
		UserID:  p.ID,
		TeamID:  p.TeamID,
		Name:    displayName(p),
		Balance: balance,
		OldRank: domain.RankTier{Level: p.RankLevel, Title: p.RankTitle},
		NewRank: domain.RankFor(balance),
	}
	if c.RankChanged() {
		if err := profiles.SetRank(ctx, p.ID, c.NewRank); err != nil {
			return pointsChange{}, err
		}
	}

	err = repository.NewTransactionRepository(tx).Create(ctx, &domain.PointTransaction{
		UserID:      p.ID,
		Points:      delta,
		Type:        typ,
		Description: description,
		CreatedBy:   by,
	})
	if err != nil {
		return pointsChange{}, err
	}
	return c, nil
}
