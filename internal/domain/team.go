package domain

import (
	"time"

	"github.com/google/uuid"
)

// TeamRole is a member's role inside one team.
type TeamRole string

const (
	TeamRoleLeader TeamRole = "leader"
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleMember TeamRole = "member"
)

// CanManage reports whether the role may manage stages, ranks and crystals.
func (r TeamRole) CanManage() bool {
	return r == TeamRoleLeader || r == TeamRoleAdmin
}

type Team struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	CreatedBy       uuid.UUID `db:"created_by" json:"created_by"`
	TreasuryBalance int64     `db:"treasury_balance" json:"treasury_balance"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type Membership struct {
	ID         uuid.UUID `db:"id" json:"id"`
	TeamID     uuid.UUID `db:"team_id" json:"team_id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Role       TeamRole  `db:"role" json:"role"`
	CustomRank string    `db:"custom_rank" json:"custom_rank"`
	JoinedAt   time.Time `db:"joined_at" json:"joined_at"`
}

// UserTeam is a membership joined with its team.
type UserTeam struct {
	Membership
	Team Team `json:"team"`
}

// TeamMember is a membership joined with the member's profile fields.
type TeamMember struct {
	Membership
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Points     int64  `json:"points"`
	RankTitle  string `json:"rank_title"`
	TotalDeals int    `json:"total_deals"`
	UserRole   Role   `json:"user_role"`
	Crystalls  int64  `json:"crystalls"`
	StageCount int    `json:"stage_count"`
}

// DisplayRank is the custom rank, else the tier title, else the default.
func (m TeamMember) DisplayRank() string {
	if m.CustomRank != "" {
		return m.CustomRank
	}
	if m.RankTitle != "" {
		return m.RankTitle
	}
	return DefaultRankTitle
}

type TeamRanking struct {
	TeamID          uuid.UUID `json:"team_id"`
	TeamName        string    `json:"team_name"`
	TotalPoints     int64     `json:"total_points"`
	MemberCount     int       `json:"member_count"`
	AvgPoints       float64   `json:"avg_points"`
	TreasuryBalance int64     `json:"treasury_balance"`
}
