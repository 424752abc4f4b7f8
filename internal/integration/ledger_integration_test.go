package integration

import (
	"context"
	"testing"

	"sales_arena/internal/config"
	"sales_arena/internal/domain"
	"sales_arena/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_EndToEnd(t *testing.T) {
	pool := openDB(t)
	ctx := context.Background()

	notify := service.NewNotificationService(pool, nil)
	audit := service.NewAuditService(pool)
	teams := service.NewTeamService(pool, notify, audit)
	ledger := service.NewLedgerService(pool, notify, audit, config.StageRemovalApplied)
	treasury := service.NewTreasuryService(pool, notify)
	profiles := service.NewProfileService(pool, nil, 0, notify)

	leader := newProfile(t, pool, domain.RoleLeader)
	member := newProfile(t, pool, domain.RoleManager)

	team, err := teams.CreateTeam(ctx, leader.ID, "Team "+leader.Username, "")
	require.NoError(t, err)
	_, err = teams.Invite(ctx, leader.ID, team.ID, member.ID)
	require.NoError(t, err)

	stage, err := ledger.AddStage(ctx, leader.ID, service.StageInput{
		UserID:    member.ID,
		StageName: domain.StageDeposit,
		Points:    2500,
	})
	require.NoError(t, err)
	assert.True(t, stage.PointsApplied)

	p, err := profiles.Get(ctx, member.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2500, p.Points)
	assert.Equal(t, 2, p.RankLevel)

	res, err := treasury.Contribute(ctx, member.ID, team.ID, 500, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2000, res.Points)
	assert.EqualValues(t, 500, res.TreasuryBalance)

	_, err = treasury.Contribute(ctx, member.ID, team.ID, 5000, "")
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)

	balance, err := ledger.AdjustPoints(ctx, leader.ID, service.AdjustInput{
		UserID: member.ID,
		Amount: 100,
		Kind:   domain.AdjustPenalty,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1900, balance)

	history, err := profiles.PointHistory(ctx, member.ID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	// the ledger and the balance agree
	var sum int64
	for _, tx := range history {
		sum += tx.Points
	}
	assert.EqualValues(t, 1900, sum)

	require.NoError(t, ledger.RemoveStage(ctx, leader.ID, stage.ID))
	p, err = profiles.Get(ctx, member.ID)
	require.NoError(t, err)
	assert.EqualValues(t, -600, p.Points)
}
