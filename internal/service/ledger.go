package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"sales_arena/internal/config"
	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/metrics"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const maxStagePoints = 1_000_000

// StageInput is a stage recorded by a leader or admin for a team member.
type StageInput struct {
	UserID      uuid.UUID `json:"user_id"`
	StageName   string    `json:"stage_name"`
	Points      int64     `json:"points"`
	Description string    `json:"description"`
}

// SelfStageInput is a stage a player reports for themselves, optionally split with a teammate.
type SelfStageInput struct {
	StageName   string     `json:"stage_name"`
	Points      int64      `json:"points"`
	Description string     `json:"description"`
	ShareWith   *uuid.UUID `json:"share_with"`
	ShareSum    int64      `json:"share_sum"`
}

// AdjustInput is a manual bonus or penalty.
type AdjustInput struct {
	UserID      uuid.UUID         `json:"user_id"`
	Amount      int64             `json:"amount"`
	Kind        domain.AdjustKind `json:"kind"`
	Description string            `json:"description"`
}

// LedgerService owns the stage lifecycle and every points mutation tied to it.
type LedgerService struct {
	db          db.DB
	profiles    *repository.ProfileRepository
	stages      *repository.StageRepository
	teams       *repository.TeamRepository
	notify      *NotificationService
	audit       *AuditService
	removalMode string
}

func NewLedgerService(d db.DB, notify *NotificationService, audit *AuditService, removalMode string) *LedgerService {
	if removalMode != config.StageRemovalLegacy {
		removalMode = config.StageRemovalApplied
	}
	return &LedgerService{
		db:          d,
		profiles:    repository.NewProfileRepository(d),
		stages:      repository.NewStageRepository(d),
		teams:       repository.NewTeamRepository(d),
		notify:      notify,
		audit:       audit,
		removalMode: removalMode,
	}
}

func validateStage(name string, points int64, description string) error {
	fields := make(map[string]string)
	if n := utf8.RuneCountInString(name); n == 0 || n > 100 {
		fields["stage_name"] = "must be 1-100 characters"
	}
	if points == 0 || points > maxStagePoints || points < -maxStagePoints {
		fields["points"] = "must be non-zero and within limits"
	}
	if utf8.RuneCountInString(description) > 500 {
		fields["description"] = "must be at most 500 characters"
	}
	return invalid(fields)
}

// Vocabulary lists the stage kinds a role may record for itself.
func (s *LedgerService) Vocabulary(role domain.Role) []domain.StageKind {
	return domain.Vocabulary(role)
}

// AddStage records a verified stage for a member and applies its points at once.
func (s *LedgerService) AddStage(ctx context.Context, caller uuid.UUID, in StageInput) (stage *domain.Stage, err error) {
	defer func() { metrics.Observe("stage_add", err) }()

	in.StageName = strings.TrimSpace(in.StageName)
	if err := validateStage(in.StageName, in.Points, in.Description); err != nil {
		return nil, err
	}

	var change pointsChange
	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		p, err := s.profiles.WithTx(tx).GetForUpdate(ctx, in.UserID)
		if err != nil {
			return translate(err)
		}
		if !(caller == p.ID && p.Role == domain.RoleLeader) {
			if p.TeamID == nil {
				return ErrForbidden
			}
			if _, err := requireManager(ctx, s.teams.WithTx(tx), *p.TeamID, caller); err != nil {
				return err
			}
		}

		stage = &domain.Stage{
			UserID:        p.ID,
			AddedBy:       caller,
			TeamID:        p.TeamID,
			StageName:     in.StageName,
			Points:        in.Points,
			Description:   in.Description,
			Verified:      true,
			PointsApplied: true,
		}
		if err := s.stages.WithTx(tx).Create(ctx, stage); err != nil {
			return translate(err)
		}

		change, err = applyPoints(ctx, tx, p, in.Points, domain.PointsStage, in.StageName, &caller)
		if err != nil {
			return err
		}
		if in.Points > 0 {
			return s.profiles.WithTx(tx).IncrementDeals(ctx, p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterStageApplied(ctx, caller, stage, change, domain.AuditActionStageAdd)
	return stage, nil
}

// AddSelfStage records unverified stages for the caller. Balances do not move until approval.
func (s *LedgerService) AddSelfStage(ctx context.Context, caller uuid.UUID, in SelfStageInput) ([]*domain.Stage, error) {
	in.StageName = strings.TrimSpace(in.StageName)
	if err := validateStage(in.StageName, in.Points, in.Description); err != nil {
		return nil, err
	}
	if in.Points <= 0 {
		return nil, ErrInvalidAmount
	}

	p, err := s.profiles.GetByID(ctx, caller)
	if err != nil {
		return nil, translate(err)
	}
	if !domain.StageAllowed(p.Role, in.StageName) {
		return nil, ErrInvalidStage
	}

	if p.TeamID == nil {
		return nil, ErrNotInTeam
	}

	var share int64
	if in.ShareWith != nil {
		if !domain.CanShareStages(p.Role) {
			return nil, ErrForbidden
		}
		if *in.ShareWith == caller {
			return nil, ErrSelfAction
		}
		if _, err := membershipOf(ctx, s.teams, *p.TeamID, *in.ShareWith); err != nil {
			return nil, err
		}
		share = domain.ClampShare(in.ShareSum, in.Points)
	}

	// A share that clamps to zero is reported as a plain stage.
	if share == 0 {
		stage := &domain.Stage{
			UserID:      caller,
			AddedBy:     caller,
			TeamID:      p.TeamID,
			StageName:   in.StageName,
			Points:      in.Points,
			Description: in.Description,
		}
		if err := s.stages.Create(ctx, stage); err != nil {
			return nil, translate(err)
		}
		return []*domain.Stage{stage}, nil
	}

	mate := *in.ShareWith
	stages := []*domain.Stage{
		{UserID: mate, AddedBy: caller, TeamID: p.TeamID, StageName: in.StageName, Points: share, Description: in.Description},
		{UserID: caller, AddedBy: caller, TeamID: p.TeamID, StageName: in.StageName, Points: in.Points - share, Description: in.Description},
	}
	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		repo := s.stages.WithTx(tx)
		for _, st := range stages {
			if err := repo.Create(ctx, st); err != nil {
				return translate(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stages, nil
}

// ApproveStage verifies a pending stage and adds its points to the current balance.
func (s *LedgerService) ApproveStage(ctx context.Context, caller, stageID uuid.UUID) (stage *domain.Stage, err error) {
	defer func() { metrics.Observe("stage_approve", err) }()

	var change pointsChange
	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		stages := s.stages.WithTx(tx)
		stage, err = stages.GetForUpdate(ctx, stageID)
		if err != nil {
			return translate(err)
		}
		if stage.TeamID == nil {
			return ErrForbidden
		}
		if _, err := requireManager(ctx, s.teams.WithTx(tx), *stage.TeamID, caller); err != nil {
			return err
		}
		if stage.Verified {
			return ErrStageAlreadyVerified
		}

		p, err := s.profiles.WithTx(tx).GetForUpdate(ctx, stage.UserID)
		if err != nil {
			return translate(err)
		}
		if err := stages.MarkVerified(ctx, stage.ID); err != nil {
			return translate(err)
		}
		stage.Verified = true
		stage.PointsApplied = true

		change, err = applyPoints(ctx, tx, p, stage.Points, domain.PointsStage, stage.StageName, &caller)
		if err != nil {
			return err
		}
		if stage.Points > 0 {
			return s.profiles.WithTx(tx).IncrementDeals(ctx, p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterStageApplied(ctx, caller, stage, change, domain.AuditActionStageApprove)
	return stage, nil
}

// RemoveStage deletes a stage and reverses its points according to the removal mode.
func (s *LedgerService) RemoveStage(ctx context.Context, caller, stageID uuid.UUID) (err error) {
	defer func() { metrics.Observe("stage_remove", err) }()

	var (
		stage    *domain.Stage
		change   pointsChange
		reversed bool
	)
	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		stages := s.stages.WithTx(tx)
		stage, err = stages.GetForUpdate(ctx, stageID)
		if err != nil {
			return translate(err)
		}
		ownPending := stage.AddedBy == caller && !stage.Verified
		if !ownPending {
			if stage.TeamID == nil {
				return ErrForbidden
			}
			if _, err := requireManager(ctx, s.teams.WithTx(tx), *stage.TeamID, caller); err != nil {
				return err
			}
		}

		reversed = stage.PointsApplied || s.removalMode == config.StageRemovalLegacy
		if reversed {
			p, err := s.profiles.WithTx(tx).GetForUpdate(ctx, stage.UserID)
			if err != nil {
				return translate(err)
			}
			change, err = applyPoints(ctx, tx, p, -stage.Points, domain.PointsStageReversal, stage.StageName, &caller)
			if err != nil {
				return err
			}
		}
		return translate(stages.Delete(ctx, stage.ID))
	})
	if err != nil {
		return err
	}

	if reversed {
		s.notify.announcePoints(ctx, change)
	}
	s.audit.Log(ctx, caller, stage.TeamID, domain.AuditActionStageRemove, domain.AuditCategoryLedger, map[string]interface{}{
		"stage_id": stage.ID,
		"user_id":  stage.UserID,
		"points":   stage.Points,
		"reversed": reversed,
		"mode":     s.removalMode,
	})
	return nil
}

// AdjustPoints applies a manager's bonus or penalty. A penalty cannot take the balance below zero.
func (s *LedgerService) AdjustPoints(ctx context.Context, caller uuid.UUID, in AdjustInput) (balance int64, err error) {
	defer func() { metrics.Observe("points_adjust", err) }()

	if !in.Kind.Valid() {
		return 0, invalid(map[string]string{"kind": "must be bonus or penalty"})
	}
	if in.Amount <= 0 || in.Amount > maxStagePoints {
		return 0, ErrInvalidAmount
	}
	delta := in.Amount
	if in.Kind == domain.AdjustPenalty {
		delta = -in.Amount
	}

	var change pointsChange
	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		p, err := s.profiles.WithTx(tx).GetForUpdate(ctx, in.UserID)
		if err != nil {
			return translate(err)
		}
		if p.TeamID == nil {
			return ErrForbidden
		}
		if _, err := requireManager(ctx, s.teams.WithTx(tx), *p.TeamID, caller); err != nil {
			return err
		}
		if p.Points+delta < 0 {
			return ErrInsufficientFunds
		}
		change, err = applyPoints(ctx, tx, p, delta, in.Kind.TransactionType(), in.Description, &caller)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.notify.announcePoints(ctx, change)
	s.audit.Log(ctx, caller, change.TeamID, domain.AuditActionPointsAdjust, domain.AuditCategoryLedger, map[string]interface{}{
		"user_id":     in.UserID,
		"delta":       delta,
		"description": in.Description,
	})
	return change.Balance, nil
}

// ListStages returns a user's stages, newest first.
func (s *LedgerService) ListStages(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Stage, error) {
	return s.stages.ListByUser(ctx, userID, limit)
}

// ListPendingStages returns the team's unverified stages for its leaders and admins.
func (s *LedgerService) ListPendingStages(ctx context.Context, caller, teamID uuid.UUID) ([]*domain.Stage, error) {
	if _, err := requireManager(ctx, s.teams, teamID, caller); err != nil {
		return nil, err
	}
	return s.stages.ListPendingByTeam(ctx, teamID)
}

func (s *LedgerService) afterStageApplied(ctx context.Context, caller uuid.UUID, stage *domain.Stage, change pointsChange, action string) {
	s.notify.announcePoints(ctx, change)
	if stage.TeamID != nil {
		s.notify.Notify(ctx, *stage.TeamID, domain.NotifyStage,
			fmt.Sprintf("✅ %s: этап «%s» (%+d баллов)", change.Name, stage.StageName, stage.Points))
	}
	s.audit.Log(ctx, caller, stage.TeamID, action, domain.AuditCategoryLedger, map[string]interface{}{
		"stage_id": stage.ID,
		"user_id":  stage.UserID,
		"points":   stage.Points,
	})
}
