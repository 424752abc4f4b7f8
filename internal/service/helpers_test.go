package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var (
	leaderID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	memberID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	mateID   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	teamID   = uuid.MustParse("44444444-4444-4444-4444-444444444444")
	fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
)

func teamPtr() *uuid.UUID {
	id := teamID
	return &id
}

func testProfile(id uuid.UUID, role domain.Role, points int64, team *uuid.UUID) domain.Profile {
	tier := domain.RankFor(points)
	return domain.Profile{
		ID:        id,
		Username:  "user_" + id.String()[:4],
		FullName:  "User " + id.String()[:4],
		AvatarID:  1,
		Role:      role,
		Points:    points,
		RankLevel: tier.Level,
		RankTitle: tier.Title,
		TeamID:    team,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
}

func profileRows(p domain.Profile) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "full_name", "avatar_id", "role", "points", "crystalls",
		"rank_level", "rank_title", "status", "team_id", "total_deals", "created_at", "updated_at",
	}).AddRow(
		p.ID, p.Username, p.FullName, p.AvatarID, p.Role, p.Points, p.Crystalls,
		p.RankLevel, p.RankTitle, p.Status, p.TeamID, p.TotalDeals, p.CreatedAt, p.UpdatedAt,
	)
}

func expectProfile(mock pgxmock.PgxPoolIface, p domain.Profile) {
	mock.ExpectQuery("FROM profiles WHERE id").WithArgs(p.ID).WillReturnRows(profileRows(p))
}

func expectMembership(mock pgxmock.PgxPoolIface, team, user uuid.UUID, role domain.TeamRole) {
	mock.ExpectQuery("SELECT id, team_id, user_id, role").
		WithArgs(team, user).
		WillReturnRows(pgxmock.NewRows([]string{"id", "team_id", "user_id", "role", "custom_rank", "joined_at"}).
			AddRow(uuid.New(), team, user, role, "", fixedNow))
}

func expectNoMembership(mock pgxmock.PgxPoolIface, team, user uuid.UUID) {
	mock.ExpectQuery("SELECT id, team_id, user_id, role").
		WithArgs(team, user).
		WillReturnError(pgx.ErrNoRows)
}

func expectTeam(mock pgxmock.PgxPoolIface, t domain.Team) {
	mock.ExpectQuery("FROM teams WHERE id").
		WithArgs(t.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "created_by", "treasury_balance", "created_at", "updated_at"}).
			AddRow(t.ID, t.Name, t.Description, t.CreatedBy, t.TreasuryBalance, fixedNow, fixedNow))
}

// expectApplyPoints mirrors applyPoints: balance update, optional rank update, ledger row.
func expectApplyPoints(mock pgxmock.PgxPoolIface, user uuid.UUID, delta, balance int64, newRank *domain.RankTier) {
	mock.ExpectQuery("UPDATE profiles SET points = points").
		WithArgs(delta, user).
		WillReturnRows(pgxmock.NewRows([]string{"points"}).AddRow(balance))
	if newRank != nil {
		mock.ExpectExec("UPDATE profiles SET rank_level").
			WithArgs(newRank.Level, newRank.Title, user).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	}
	mock.ExpectQuery("INSERT INTO point_transactions").
		WithArgs(user, delta, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), fixedNow))
}

// expectNotify mirrors NotificationService.Notify with default settings.
func expectNotify(mock pgxmock.PgxPoolIface, team uuid.UUID, members ...uuid.UUID) {
	mock.ExpectQuery("FROM team_notification_settings").WithArgs(team).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO team_notifications").
		WithArgs(team, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), fixedNow))
	rows := pgxmock.NewRows([]string{"user_id"})
	for _, m := range members {
		rows.AddRow(m)
	}
	mock.ExpectQuery("SELECT user_id FROM team_members").WithArgs(team).WillReturnRows(rows)
}

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func expectAudit(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(anyArgs(7)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func expectStageInsert(mock pgxmock.PgxPoolIface, user uuid.UUID, points int64) {
	mock.ExpectQuery("INSERT INTO player_stages").
		WithArgs(user, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), points,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "verified_at"}).AddRow(uuid.New(), fixedNow, (*time.Time)(nil)))
}

func stageRows(s domain.Stage) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "added_by", "team_id", "stage_name", "points", "description",
		"verified", "points_applied", "created_at", "verified_at",
	}).AddRow(
		s.ID, s.UserID, s.AddedBy, s.TeamID, s.StageName, s.Points, s.Description,
		s.Verified, s.PointsApplied, s.CreatedAt, s.VerifiedAt,
	)
}

type fixture struct {
	mock   pgxmock.PgxPoolIface
	pub    *recordingPublisher
	notify *NotificationService
	audit  *AuditService
}

func newFixture(t *testing.T) *fixture {
	mock := newMock(t)
	pub := &recordingPublisher{}
	return &fixture{
		mock:   mock,
		pub:    pub,
		notify: NewNotificationService(mock, pub),
		audit:  NewAuditService(mock),
	}
}
