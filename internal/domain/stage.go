package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stage names the sales vocabulary is built from.
const (
	StageDeposit    = "Залог"
	StageMailFees   = "Почтовые сборы"
	StageMail       = "Почта"
	StageMilestone  = "Этап"
	DefaultStagePts = int64(100)
)

// StageKind is a stage name with its pre-filled reward.
type StageKind struct {
	Name          string `json:"name"`
	DefaultPoints int64  `json:"default_points"`
}

var stageKinds = []StageKind{
	{Name: StageDeposit, DefaultPoints: 500},
	{Name: StageMailFees, DefaultPoints: 200},
	{Name: StageMail, DefaultPoints: 300},
	{Name: StageMilestone, DefaultPoints: 1000},
}

// roleStages maps a role to the stage names it may record for itself.
// A nil entry means any name.
var roleStages = map[Role][]string{
	RoleManager: {StageDeposit, StageMailFees},
	RoleCloser:  {StageDeposit, StageMailFees, StageMail, StageMilestone},
	RoleLeader:  nil,
}

// DefaultPoints is the suggested reward for a stage name.
func DefaultPoints(name string) int64 {
	for _, k := range stageKinds {
		if k.Name == name {
			return k.DefaultPoints
		}
	}
	return DefaultStagePts
}

// Vocabulary lists the stage kinds a role may record. Leaders get the full table.
func Vocabulary(role Role) []StageKind {
	names, ok := roleStages[role]
	if !ok {
		return nil
	}
	if names == nil {
		return append([]StageKind(nil), stageKinds...)
	}
	out := make([]StageKind, 0, len(names))
	for _, n := range names {
		out = append(out, StageKind{Name: n, DefaultPoints: DefaultPoints(n)})
	}
	return out
}

// StageAllowed reports whether role may record a stage called name.
func StageAllowed(role Role, name string) bool {
	names, ok := roleStages[role]
	if !ok {
		return false
	}
	if names == nil {
		return name != ""
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// CanShareStages reports whether role may split a self-reported stage with a teammate.
func CanShareStages(role Role) bool {
	return role == RoleCloser
}

// ClampShare bounds a teammate's share to [0, total-1].
func ClampShare(share, total int64) int64 {
	if share <= 0 || total <= 1 {
		return 0
	}
	if share > total-1 {
		return total - 1
	}
	return share
}

type Stage struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	AddedBy       uuid.UUID  `db:"added_by" json:"added_by"`
	TeamID        *uuid.UUID `db:"team_id" json:"team_id"`
	StageName     string     `db:"stage_name" json:"stage_name"`
	Points        int64      `db:"points" json:"points"`
	Description   string     `db:"description" json:"description"`
	Verified      bool       `db:"verified" json:"verified"`
	PointsApplied bool       `db:"points_applied" json:"points_applied"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	VerifiedAt    *time.Time `db:"verified_at" json:"verified_at,omitempty"`
}
