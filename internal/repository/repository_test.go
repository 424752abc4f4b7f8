package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var profileCols = []string{
	"id", "username", "full_name", "avatar_id", "role", "points", "crystalls",
	"rank_level", "rank_title", "status", "team_id", "total_deals", "created_at", "updated_at",
}

func TestMapErr(t *testing.T) {
	assert.Nil(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapErr(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})), ErrDuplicate)

	other := errors.New("conn reset")
	assert.Equal(t, other, mapErr(other))
}

func TestProfileRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewProfileRepository(mock)

	id := uuid.New()
	teamID := uuid.New()
	now := time.Now()
	mock.ExpectQuery("FROM profiles WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(profileCols).AddRow(
			id, "ivan", "Иван", 3, domain.RoleCloser, int64(1500), int64(7),
			1, "СТАЖЕР", "", &teamID, 4, now, now,
		))

	p, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ivan", p.Username)
	assert.Equal(t, domain.RoleCloser, p.Role)
	assert.Equal(t, int64(1500), p.Points)
	require.NotNil(t, p.TeamID)
	assert.Equal(t, teamID, *p.TeamID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProfileRepository(mock)

	id := uuid.New()
	mock.ExpectQuery("FROM profiles WHERE id").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_AddPoints(t *testing.T) {
	mock := newMock(t)
	repo := NewProfileRepository(mock)

	id := uuid.New()
	mock.ExpectQuery("UPDATE profiles SET points = points").
		WithArgs(int64(-200), id).
		WillReturnRows(pgxmock.NewRows([]string{"points"}).AddRow(int64(800)))

	points, err := repo.AddPoints(context.Background(), id, -200)
	require.NoError(t, err)
	assert.Equal(t, int64(800), points)
}

func TestTeamRepository_DeleteMembershipMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewTeamRepository(mock)

	teamID, userID := uuid.New(), uuid.New()
	mock.ExpectExec("DELETE FROM team_members").
		WithArgs(teamID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteMembership(context.Background(), teamID, userID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTreasuryRepository_ListUnknownContributor(t *testing.T) {
	mock := newMock(t)
	repo := NewTreasuryRepository(mock)

	teamID, userID := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery("FROM treasury_transactions tt").
		WithArgs(teamID, 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "team_id", "user_id", "amount", "stage_name", "description", "created_at", "name"}).
			AddRow(uuid.New(), teamID, &userID, int64(300), domain.TreasuryContributionLabel, "", now, "Иван").
			AddRow(uuid.New(), teamID, (*uuid.UUID)(nil), int64(50), domain.TreasuryContributionLabel, "", now, ""))

	txs, err := repo.ListByTeam(context.Background(), teamID, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "Иван", txs[0].ContributorName)
	assert.Equal(t, domain.UnknownContributor, txs[1].ContributorName)
	assert.Nil(t, txs[1].UserID)
}

func TestChatRepository_RecentIsAscending(t *testing.T) {
	mock := newMock(t)
	repo := NewChatRepository(mock)

	userID := uuid.New()
	t0 := time.Now()
	mock.ExpectQuery("FROM chat_messages c").
		WithArgs((*uuid.UUID)(nil), 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "team_id", "message", "created_at", "username", "full_name"}).
			AddRow(uuid.New(), userID, (*uuid.UUID)(nil), "second", t0.Add(time.Minute), "ivan", "").
			AddRow(uuid.New(), userID, (*uuid.UUID)(nil), "first", t0, "ivan", ""))

	msgs, err := repo.Recent(context.Background(), nil, 100)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Message)
	assert.Equal(t, "second", msgs[1].Message)
}

func TestNotificationRepository_DefaultSettings(t *testing.T) {
	mock := newMock(t)
	repo := NewNotificationRepository(mock)

	teamID := uuid.New()
	mock.ExpectQuery("FROM team_notification_settings").
		WithArgs(teamID).
		WillReturnError(pgx.ErrNoRows)

	s, err := repo.GetSettings(context.Background(), teamID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultNotificationSettings(teamID), s)
}
