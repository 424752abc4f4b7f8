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

func TestTeamLogs_LeaderOnly(t *testing.T) {
	f := newFixture(t)

	expectMembership(f.mock, teamID, mateID, domain.TeamRoleAdmin)
	_, err := f.audit.TeamLogs(context.Background(), mateID, teamID, 10)
	assert.ErrorIs(t, err, ErrForbidden)

	expectNoMembership(f.mock, teamID, memberID)
	_, err = f.audit.TeamLogs(context.Background(), memberID, teamID, 10)
	assert.ErrorIs(t, err, ErrNotMember)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestTeamLogs_DecodesDetails(t *testing.T) {
	f := newFixture(t)
	actor, team := leaderID, teamID

	expectMembership(f.mock, teamID, leaderID, domain.TeamRoleLeader)
	f.mock.ExpectQuery("FROM audit_logs").
		WithArgs(teamID, 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "team_id", "action", "category", "details", "ip", "user_agent", "created_at"}).
			AddRow(uuid.New(), &actor, &team, domain.AuditActionCrystalsSet, domain.AuditCategoryTeam,
				[]byte(`{"crystalls":5}`), "10.0.0.1", "curl", fixedNow))

	logs, err := f.audit.TeamLogs(context.Background(), leaderID, teamID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, float64(5), logs[0].Details["crystalls"])
	assert.Equal(t, "10.0.0.1", logs[0].IP)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
