package service

import (
	"context"
	"errors"

	"sales_arena/internal/domain"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
)

// membershipOf returns the caller's membership or ErrNotMember.
func membershipOf(ctx context.Context, teams *repository.TeamRepository, teamID, userID uuid.UUID) (*domain.Membership, error) {
	m, err := teams.GetMembership(ctx, teamID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotMember
	}
	return m, err
}

// requireManager allows team leaders and admins.
func requireManager(ctx context.Context, teams *repository.TeamRepository, teamID, userID uuid.UUID) (*domain.Membership, error) {
	m, err := teams.GetMembership(ctx, teamID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if !m.Role.CanManage() {
		return nil, ErrForbidden
	}
	return m, nil
}

// orderedIDs returns a and b ascending so row locks are always taken in the same order.
func orderedIDs(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}
