package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TeamService manages teams and their membership.
type TeamService struct {
	db       db.DB
	profiles *repository.ProfileRepository
	teams    *repository.TeamRepository
	notify   *NotificationService
	audit    *AuditService
}

func NewTeamService(d db.DB, notify *NotificationService, audit *AuditService) *TeamService {
	return &TeamService{
		db:       d,
		profiles: repository.NewProfileRepository(d),
		teams:    repository.NewTeamRepository(d),
		notify:   notify,
		audit:    audit,
	}
}

// CreateTeam founds a team led by the caller and moves the caller into it.
func (s *TeamService) CreateTeam(ctx context.Context, caller uuid.UUID, name, description string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	fields := make(map[string]string)
	if n := utf8.RuneCountInString(name); n == 0 || n > 100 {
		fields["name"] = "must be 1-100 characters"
	}
	if utf8.RuneCountInString(description) > 500 {
		fields["description"] = "must be at most 500 characters"
	}
	if err := invalid(fields); err != nil {
		return nil, err
	}

	team := &domain.Team{Name: name, Description: strings.TrimSpace(description), CreatedBy: caller}
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		profiles := s.profiles.WithTx(tx)
		teams := s.teams.WithTx(tx)

		p, err := profiles.GetForUpdate(ctx, caller)
		if err != nil {
			return translate(err)
		}
		if p.Role != domain.RoleLeader {
			return ErrForbidden
		}
		if err := teams.Create(ctx, team); err != nil {
			return translate(err)
		}
		if err := teams.AddMember(ctx, &domain.Membership{TeamID: team.ID, UserID: caller, Role: domain.TeamRoleLeader}); err != nil {
			return translate(err)
		}
		if _, err := teams.DeleteOtherMemberships(ctx, caller, team.ID); err != nil {
			return err
		}
		return translate(profiles.SetTeam(ctx, caller, &team.ID))
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// Invite moves user into the team. Only the team's creator may invite.
func (s *TeamService) Invite(ctx context.Context, caller, teamID, userID uuid.UUID) (*domain.Membership, error) {
	var (
		m       *domain.Membership
		invitee *domain.Profile
	)
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		profiles := s.profiles.WithTx(tx)
		teams := s.teams.WithTx(tx)

		team, err := teams.GetByID(ctx, teamID)
		if err != nil {
			return translate(err)
		}
		if team.CreatedBy != caller {
			return ErrForbidden
		}

		invitee, err = profiles.GetForUpdate(ctx, userID)
		if err != nil {
			return translate(err)
		}
		_, err = teams.GetMembership(ctx, teamID, userID)
		switch {
		case err == nil:
			return ErrAlreadyMember
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		m = &domain.Membership{TeamID: teamID, UserID: userID, Role: domain.TeamRoleMember}
		if err := teams.AddMember(ctx, m); err != nil {
			return translate(err)
		}
		if _, err := teams.DeleteOtherMemberships(ctx, userID, teamID); err != nil {
			return err
		}
		return translate(profiles.SetTeam(ctx, userID, &teamID))
	})
	if err != nil {
		return nil, err
	}

	s.notify.Notify(ctx, teamID, domain.NotifyNewMember, fmt.Sprintf("👋 %s присоединился к команде", displayName(invitee)))
	s.notify.publish(ctx, domain.Event{
		Type:    domain.EventProfileUpdated,
		UserIDs: []uuid.UUID{userID},
		TeamID:  &teamID,
		Payload: map[string]any{"team_id": teamID},
	})
	s.audit.Log(ctx, caller, &teamID, domain.AuditActionMemberInvite, domain.AuditCategoryTeam, map[string]interface{}{"user_id": userID})
	return m, nil
}

// RemoveMember expels a member. Only the creator may do it, and not to themselves.
func (s *TeamService) RemoveMember(ctx context.Context, caller, teamID, userID uuid.UUID) error {
	if caller == userID {
		return ErrSelfAction
	}
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		team, err := s.teams.WithTx(tx).GetByID(ctx, teamID)
		if err != nil {
			return translate(err)
		}
		if team.CreatedBy != caller {
			return ErrForbidden
		}
		return s.detach(ctx, tx, teamID, userID)
	})
	if err != nil {
		return err
	}
	s.audit.Log(ctx, caller, &teamID, domain.AuditActionMemberRemove, domain.AuditCategoryTeam, map[string]interface{}{"user_id": userID})
	return nil
}

// Leave removes the caller from a team they did not create.
func (s *TeamService) Leave(ctx context.Context, caller, teamID uuid.UUID) error {
	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		team, err := s.teams.WithTx(tx).GetByID(ctx, teamID)
		if err != nil {
			return translate(err)
		}
		if team.CreatedBy == caller {
			return ErrForbidden
		}
		return s.detach(ctx, tx, teamID, caller)
	})
}

// detach deletes the membership and clears the profile's team pointer when it points here.
func (s *TeamService) detach(ctx context.Context, tx pgx.Tx, teamID, userID uuid.UUID) error {
	profiles := s.profiles.WithTx(tx)
	p, err := profiles.GetForUpdate(ctx, userID)
	if err != nil {
		return translate(err)
	}
	if err := s.teams.WithTx(tx).DeleteMembership(ctx, teamID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotMember
		}
		return err
	}
	if p.TeamID != nil && *p.TeamID == teamID {
		return translate(profiles.SetTeam(ctx, userID, nil))
	}
	return nil
}

// UpdateRole promotes or demotes a member. Team leaders only; the creator's role is fixed.
func (s *TeamService) UpdateRole(ctx context.Context, caller, teamID, userID uuid.UUID, role domain.TeamRole) error {
	if role != domain.TeamRoleAdmin && role != domain.TeamRoleMember {
		return invalid(map[string]string{"role": "must be admin or member"})
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return translate(err)
	}
	m, err := membershipOf(ctx, s.teams, teamID, caller)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			return ErrForbidden
		}
		return err
	}
	if m.Role != domain.TeamRoleLeader {
		return ErrForbidden
	}
	if userID == team.CreatedBy {
		return ErrForbidden
	}
	if err := s.teams.UpdateMemberRole(ctx, teamID, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotMember
		}
		return err
	}
	s.audit.Log(ctx, caller, &teamID, domain.AuditActionRoleChange, domain.AuditCategoryTeam, map[string]interface{}{
		"user_id": userID,
		"role":    role,
	})
	return nil
}

// UpdateCustomRank sets the member's display rank. An empty rank falls back to the tier title.
func (s *TeamService) UpdateCustomRank(ctx context.Context, caller, teamID, userID uuid.UUID, rank string) error {
	rank = strings.TrimSpace(rank)
	if utf8.RuneCountInString(rank) > 50 {
		return invalid(map[string]string{"custom_rank": "must be at most 50 characters"})
	}
	if _, err := requireManager(ctx, s.teams, teamID, caller); err != nil {
		return err
	}
	if err := s.teams.UpdateCustomRank(ctx, teamID, userID, rank); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotMember
		}
		return err
	}
	s.audit.Log(ctx, caller, &teamID, domain.AuditActionRankChange, domain.AuditCategoryTeam, map[string]interface{}{
		"user_id":     userID,
		"custom_rank": rank,
	})
	return nil
}

// SetCrystals overwrites a member's crystal balance.
func (s *TeamService) SetCrystals(ctx context.Context, caller, teamID, userID uuid.UUID, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if _, err := requireManager(ctx, s.teams, teamID, caller); err != nil {
		return err
	}
	if _, err := membershipOf(ctx, s.teams, teamID, userID); err != nil {
		return err
	}
	if err := s.profiles.SetCrystals(ctx, userID, amount); err != nil {
		return translate(err)
	}

	s.notify.publish(ctx, domain.Event{
		Type:    domain.EventProfileUpdated,
		UserIDs: []uuid.UUID{userID},
		Payload: map[string]any{"crystalls": amount},
	})
	s.audit.Log(ctx, caller, &teamID, domain.AuditActionCrystalsSet, domain.AuditCategoryTeam, map[string]interface{}{
		"user_id":   userID,
		"crystalls": amount,
	})
	return nil
}

func (s *TeamService) Get(ctx context.Context, teamID uuid.UUID) (*domain.Team, error) {
	t, err := s.teams.GetByID(ctx, teamID)
	return t, translate(err)
}

func (s *TeamService) Members(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, translate(err)
	}
	return s.teams.Members(ctx, teamID)
}

func (s *TeamService) UserTeams(ctx context.Context, caller uuid.UUID) ([]domain.UserTeam, error) {
	return s.teams.UserTeams(ctx, caller)
}

func (s *TeamService) Rankings(ctx context.Context) ([]domain.TeamRanking, error) {
	return s.teams.Rankings(ctx)
}
