package service

import (
	"context"
	"unicode/utf8"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/metrics"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ContributionResult reports both balances after a treasury contribution.
type ContributionResult struct {
	Transaction     domain.TreasuryTransaction `json:"transaction"`
	Points          int64                      `json:"points"`
	TreasuryBalance int64                      `json:"treasury_balance"`
}

type TreasuryService struct {
	db       db.DB
	profiles *repository.ProfileRepository
	teams    *repository.TeamRepository
	treasury *repository.TreasuryRepository
	notify   *NotificationService
}

func NewTreasuryService(d db.DB, notify *NotificationService) *TreasuryService {
	return &TreasuryService{
		db:       d,
		profiles: repository.NewProfileRepository(d),
		teams:    repository.NewTeamRepository(d),
		treasury: repository.NewTreasuryRepository(d),
		notify:   notify,
	}
}

// Contribute moves amount points from the caller into the team treasury.
func (s *TreasuryService) Contribute(ctx context.Context, caller, teamID uuid.UUID, amount int64, description string) (res *ContributionResult, err error) {
	defer func() { metrics.Observe("treasury_contribute", err) }()

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if utf8.RuneCountInString(description) > 500 {
		return nil, invalid(map[string]string{"description": "must be at most 500 characters"})
	}

	var change pointsChange
	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		profiles := s.profiles.WithTx(tx)
		teams := s.teams.WithTx(tx)

		if _, err := membershipOf(ctx, teams, teamID, caller); err != nil {
			return err
		}

		var (
			p   *domain.Profile
			err error
		)
		lockProfile := func() error {
			p, err = profiles.GetForUpdate(ctx, caller)
			return translate(err)
		}
		lockTeam := func() error {
			_, err := teams.GetForUpdate(ctx, teamID)
			return translate(err)
		}
		first, second := lockProfile, lockTeam
		if lo, _ := orderedIDs(caller, teamID); lo == teamID {
			first, second = lockTeam, lockProfile
		}
		if err := first(); err != nil {
			return err
		}
		if err := second(); err != nil {
			return err
		}

		if p.Points < amount {
			return ErrInsufficientFunds
		}

		res = &ContributionResult{Transaction: domain.TreasuryTransaction{
			TeamID:      teamID,
			UserID:      &caller,
			Amount:      amount,
			StageName:   domain.TreasuryContributionLabel,
			Description: description,
		}}
		if err := s.treasury.WithTx(tx).Create(ctx, &res.Transaction); err != nil {
			return translate(err)
		}

		change, err = applyPoints(ctx, tx, p, -amount, domain.PointsTreasury, domain.TreasuryContributionLabel, &caller)
		if err != nil {
			return err
		}
		res.Points = change.Balance
		res.Transaction.ContributorName = change.Name

		res.TreasuryBalance, err = teams.AddTreasury(ctx, teamID, amount)
		return translate(err)
	})
	if err != nil {
		return nil, err
	}

	s.notify.announcePoints(ctx, change)
	return res, nil
}

// History lists the team's inflows, newest first. Members only.
func (s *TreasuryService) History(ctx context.Context, viewer, teamID uuid.UUID, limit int) ([]*domain.TreasuryTransaction, error) {
	if _, err := membershipOf(ctx, s.teams, teamID, viewer); err != nil {
		return nil, err
	}
	return s.treasury.ListByTeam(ctx, teamID, limit)
}

func (s *TreasuryService) Balance(ctx context.Context, teamID uuid.UUID) (int64, error) {
	t, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return 0, translate(err)
	}
	return t.TreasuryBalance, nil
}
