package repository

import (
	"context"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const teamColumns = `id, name, COALESCE(description, ''), created_by, treasury_balance, created_at, updated_at`

type TeamRepository struct {
	db db.Querier
}

func NewTeamRepository(q db.Querier) *TeamRepository {
	return &TeamRepository{db: q}
}

// WithTx returns a copy bound to tx.
func (r *TeamRepository) WithTx(tx pgx.Tx) *TeamRepository {
	return &TeamRepository{db: tx}
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedBy, &t.TreasuryBalance, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *TeamRepository) Create(ctx context.Context, t *domain.Team) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO teams (name, description, created_by)
		 VALUES ($1, NULLIF($2, ''), $3)
		 RETURNING id, treasury_balance, created_at, updated_at`,
		t.Name, t.Description, t.CreatedBy,
	).Scan(&t.ID, &t.TreasuryBalance, &t.CreatedAt, &t.UpdatedAt))
}

func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	return scanTeam(r.db.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
}

// GetForUpdate locks the team row until the surrounding transaction ends.
func (r *TeamRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	return scanTeam(r.db.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1 FOR UPDATE`, id))
}

// AddTreasury changes the treasury by delta and returns the new balance.
func (r *TeamRepository) AddTreasury(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx,
		`UPDATE teams SET treasury_balance = treasury_balance + $1, updated_at = now() WHERE id = $2 RETURNING treasury_balance`,
		delta, id,
	).Scan(&balance)
	return balance, mapErr(err)
}

// Rankings aggregates member points per team.
func (r *TeamRepository) Rankings(ctx context.Context) ([]domain.TeamRanking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.name, COALESCE(SUM(p.points), 0)::bigint, COUNT(tm.user_id),
			COALESCE(AVG(p.points), 0)::float8, t.treasury_balance
		FROM teams t
		LEFT JOIN team_members tm ON tm.team_id = t.id
		LEFT JOIN profiles p ON p.id = tm.user_id
		GROUP BY t.id
		ORDER BY 3 DESC, t.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.TeamRanking
	for rows.Next() {
		var tr domain.TeamRanking
		if err := rows.Scan(&tr.TeamID, &tr.TeamName, &tr.TotalPoints, &tr.MemberCount, &tr.AvgPoints, &tr.TreasuryBalance); err != nil {
			return nil, err
		}
		res = append(res, tr)
	}
	return res, rows.Err()
}

// Membership

func (r *TeamRepository) AddMember(ctx context.Context, m *domain.Membership) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO team_members (team_id, user_id, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, joined_at`,
		m.TeamID, m.UserID, m.Role,
	).Scan(&m.ID, &m.JoinedAt))
}

func (r *TeamRepository) GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.QueryRow(ctx,
		`SELECT id, team_id, user_id, role, COALESCE(custom_rank, ''), joined_at
		 FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID,
	).Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CustomRank, &m.JoinedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (r *TeamRepository) DeleteMembership(ctx context.Context, teamID, userID uuid.UUID) error {
	return expectOne(r.db.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID))
}

// DeleteOtherMemberships removes userID from every team except keep.
func (r *TeamRepository) DeleteOtherMemberships(ctx context.Context, userID, keep uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM team_members WHERE user_id = $1 AND team_id <> $2`, userID, keep)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *TeamRepository) UpdateMemberRole(ctx context.Context, teamID, userID uuid.UUID, role domain.TeamRole) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE team_members SET role = $1 WHERE team_id = $2 AND user_id = $3`, role, teamID, userID))
}

func (r *TeamRepository) UpdateCustomRank(ctx context.Context, teamID, userID uuid.UUID, rank string) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE team_members SET custom_rank = NULLIF($1, '') WHERE team_id = $2 AND user_id = $3`, rank, teamID, userID))
}

// Members lists a team with profile fields and verified stage counts.
func (r *TeamRepository) Members(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tm.id, tm.team_id, tm.user_id, tm.role, COALESCE(tm.custom_rank, ''), tm.joined_at,
			p.username, COALESCE(p.full_name, ''), p.points, p.rank_title, p.total_deals, p.role, p.crystalls,
			(SELECT COUNT(*) FROM player_stages s WHERE s.user_id = tm.user_id AND s.verified)
		FROM team_members tm
		JOIN profiles p ON p.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY p.points DESC, tm.joined_at ASC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(
			&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CustomRank, &m.JoinedAt,
			&m.Username, &m.FullName, &m.Points, &m.RankTitle, &m.TotalDeals, &m.UserRole, &m.Crystalls,
			&m.StageCount,
		); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// MemberIDs returns the user ids of a team, for fan-out.
func (r *TeamRepository) MemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM team_members WHERE team_id = $1`, teamID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

// UserTeams lists the caller's memberships joined with their teams.
func (r *TeamRepository) UserTeams(ctx context.Context, userID uuid.UUID) ([]domain.UserTeam, error) {
	rows, err := r.db.Query(ctx, `
		SELECT tm.id, tm.team_id, tm.user_id, tm.role, COALESCE(tm.custom_rank, ''), tm.joined_at,
			t.id, t.name, COALESCE(t.description, ''), t.created_by, t.treasury_balance, t.created_at, t.updated_at
		FROM team_members tm
		JOIN teams t ON t.id = tm.team_id
		WHERE tm.user_id = $1
		ORDER BY tm.joined_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.UserTeam
	for rows.Next() {
		var ut domain.UserTeam
		t := &ut.Team
		if err := rows.Scan(
			&ut.ID, &ut.TeamID, &ut.UserID, &ut.Role, &ut.CustomRank, &ut.JoinedAt,
			&t.ID, &t.Name, &t.Description, &t.CreatedBy, &t.TreasuryBalance, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		res = append(res, ut)
	}
	return res, rows.Err()
}
