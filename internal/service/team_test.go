package service

import (
	"context"
	"testing"

	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTeam_LeaderOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectProfile(f.mock, testProfile(memberID, domain.RoleManager, 0, nil))
	f.mock.ExpectRollback()

	_, err := svc.CreateTeam(context.Background(), memberID, "Alpha", "")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateTeam_CreatorBecomesLeader(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectProfile(f.mock, testProfile(leaderID, domain.RoleLeader, 0, nil))
	f.mock.ExpectQuery("INSERT INTO teams").
		WithArgs("Alpha", "", leaderID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "treasury_balance", "created_at", "updated_at"}).
			AddRow(teamID, int64(0), fixedNow, fixedNow))
	f.mock.ExpectQuery("INSERT INTO team_members").
		WithArgs(teamID, leaderID, domain.TeamRoleLeader).
		WillReturnRows(pgxmock.NewRows([]string{"id", "joined_at"}).AddRow(uuid.New(), fixedNow))
	f.mock.ExpectExec("DELETE FROM team_members WHERE user_id").
		WithArgs(leaderID, teamID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	f.mock.ExpectExec("UPDATE profiles SET team_id").
		WithArgs(teamPtr(), leaderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	team, err := svc.CreateTeam(context.Background(), leaderID, "  Alpha ", "")
	require.NoError(t, err)
	assert.Equal(t, teamID, team.ID)
	assert.Equal(t, "Alpha", team.Name)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestInvite_MovesUserToTheTeam(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.mock, f.notify, f.audit)

	other := uuid.MustParse("66666666-6666-6666-6666-666666666666")

	f.mock.ExpectBegin()
	expectTeam(f.mock, testTeam(0))
	expectProfile(f.mock, testProfile(mateID, domain.RoleCloser, 0, &other))
	expectNoMembership(f.mock, teamID, mateID)
	f.mock.ExpectQuery("INSERT INTO team_members").
		WithArgs(teamID, mateID, domain.TeamRoleMember).
		WillReturnRows(pgxmock.NewRows([]string{"id", "joined_at"}).AddRow(uuid.New(), fixedNow))
	f.mock.ExpectExec("DELETE FROM team_members WHERE user_id").
		WithArgs(mateID, teamID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	f.mock.ExpectExec("UPDATE profiles SET team_id").
		WithArgs(teamPtr(), mateID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()
	expectNotify(f.mock, teamID, leaderID, mateID)
	expectAudit(f.mock)

	m, err := svc.Invite(context.Background(), leaderID, teamID, mateID)
	require.NoError(t, err)
	assert.Equal(t, domain.TeamRoleMember, m.Role)
	assert.Equal(t, []domain.EventType{domain.EventTeamNotification, domain.EventProfileUpdated}, f.pub.types())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestInvite_ExistingMemberChangesNothing(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectTeam(f.mock, testTeam(0))
	expectProfile(f.mock, testProfile(mateID, domain.RoleCloser, 0, teamPtr()))
	expectMembership(f.mock, teamID, mateID, domain.TeamRoleMember)
	f.mock.ExpectRollback()

	_, err := svc.Invite(context.Background(), leaderID, teamID, mateID)
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.Empty(t, f.pub.types())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestInvite_OnlyCreator(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectTeam(f.mock, testTeam(0))
	f.mock.ExpectRollback()

	_, err := svc.Invite(context.Background(), memberID, teamID, mateID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLeave_ClearsCurrentTeam(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectTeam(f.mock, testTeam(0))
	expectProfile(f.mock, testProfile(memberID, domain.RoleManager, 0, teamPtr()))
	f.mock.ExpectExec("DELETE FROM team_members WHERE team_id").
		WithArgs(teamID, memberID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	f.mock.ExpectExec("UPDATE profiles SET team_id").
		WithArgs((*uuid.UUID)(nil), memberID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	f.mock.ExpectCommit()

	require.NoError(t, svc.Leave(context.Background(), memberID, teamID))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLeave_CreatorCannotLeave(t *testing.T) {
	f := newFixture(t)
	svc := NewTeamService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectTeam(f.mock, testTeam(0))
	f.mock.ExpectRollback()

	assert.ErrorIs(t, svc.Leave(context.Background(), leaderID, teamID), ErrForbidden)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateRole(t *testing.T) {
	t.Run("rejects leader role", func(t *testing.T) {
		f := newFixture(t)
		err := NewTeamService(f.mock, f.notify, f.audit).UpdateRole(context.Background(), leaderID, teamID, memberID, domain.TeamRoleLeader)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("admins cannot promote", func(t *testing.T) {
		f := newFixture(t)
		expectTeam(f.mock, testTeam(0))
		expectMembership(f.mock, teamID, mateID, domain.TeamRoleAdmin)
		err := NewTeamService(f.mock, f.notify, f.audit).UpdateRole(context.Background(), mateID, teamID, memberID, domain.TeamRoleAdmin)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("leader promotes", func(t *testing.T) {
		f := newFixture(t)
		expectTeam(f.mock, testTeam(0))
		expectMembership(f.mock, teamID, leaderID, domain.TeamRoleLeader)
		f.mock.ExpectExec("UPDATE team_members SET role").
			WithArgs(domain.TeamRoleAdmin, teamID, memberID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		expectAudit(f.mock)
		err := NewTeamService(f.mock, f.notify, f.audit).UpdateRole(context.Background(), leaderID, teamID, memberID, domain.TeamRoleAdmin)
		require.NoError(t, err)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestRemoveMember(t *testing.T) {
	t.Run("creator cannot remove themselves", func(t *testing.T) {
		f := newFixture(t)
		err := NewTeamService(f.mock, f.notify, f.audit).RemoveMember(context.Background(), leaderID, teamID, leaderID)
		assert.ErrorIs(t, err, ErrSelfAction)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("only the creator", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		expectTeam(f.mock, testTeam(0))
		f.mock.ExpectRollback()
		err := NewTeamService(f.mock, f.notify, f.audit).RemoveMember(context.Background(), mateID, teamID, memberID)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("clears the current team", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		expectTeam(f.mock, testTeam(0))
		expectProfile(f.mock, testProfile(memberID, domain.RoleManager, 0, teamPtr()))
		f.mock.ExpectExec("DELETE FROM team_members WHERE team_id").
			WithArgs(teamID, memberID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		f.mock.ExpectExec("UPDATE profiles SET team_id").
			WithArgs((*uuid.UUID)(nil), memberID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		f.mock.ExpectCommit()
		expectAudit(f.mock)

		require.NoError(t, NewTeamService(f.mock, f.notify, f.audit).RemoveMember(context.Background(), leaderID, teamID, memberID))
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("keeps a team pointer set elsewhere", func(t *testing.T) {
		f := newFixture(t)
		other := uuid.MustParse("66666666-6666-6666-6666-666666666666")
		f.mock.ExpectBegin()
		expectTeam(f.mock, testTeam(0))
		expectProfile(f.mock, testProfile(memberID, domain.RoleManager, 0, &other))
		f.mock.ExpectExec("DELETE FROM team_members WHERE team_id").
			WithArgs(teamID, memberID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		f.mock.ExpectCommit()
		expectAudit(f.mock)

		require.NoError(t, NewTeamService(f.mock, f.notify, f.audit).RemoveMember(context.Background(), leaderID, teamID, memberID))
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("not a member", func(t *testing.T) {
		f := newFixture(t)
		f.mock.ExpectBegin()
		expectTeam(f.mock, testTeam(0))
		expectProfile(f.mock, testProfile(mateID, domain.RoleCloser, 0, nil))
		f.mock.ExpectExec("DELETE FROM team_members WHERE team_id").
			WithArgs(teamID, mateID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		f.mock.ExpectRollback()

		err := NewTeamService(f.mock, f.notify, f.audit).RemoveMember(context.Background(), leaderID, teamID, mateID)
		assert.ErrorIs(t, err, ErrNotMember)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}
