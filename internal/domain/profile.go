package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Role is the global account role chosen at sign-up.
type Role string

const (
	RoleManager Role = "manager"
	RoleCloser  Role = "closer"
	RoleLeader  Role = "leader"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleCloser, RoleLeader:
		return true
	}
	return false
}

const (
	MinAvatarID = 1
	MaxAvatarID = 12
)

type Profile struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Username   string     `db:"username" json:"username"`
	FullName   string     `db:"full_name" json:"full_name"`
	AvatarID   int        `db:"avatar_id" json:"avatar_id"`
	Role       Role       `db:"role" json:"role"`
	Points     int64      `db:"points" json:"points"`
	Crystalls  int64      `db:"crystalls" json:"crystalls"`
	RankLevel  int        `db:"rank_level" json:"rank_level"`
	RankTitle  string     `db:"rank_title" json:"rank_title"`
	Status     string     `db:"status" json:"status"`
	TeamID     *uuid.UUID `db:"team_id" json:"team_id"`
	TotalDeals int        `db:"total_deals" json:"total_deals"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// ProfilePatch is a partial update of the caller's own profile. Nil fields are left untouched.
type ProfilePatch struct {
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Status   *string `json:"status"`
	AvatarID *int    `json:"avatar_id"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Username == nil && p.FullName == nil && p.Status == nil && p.AvatarID == nil
}

// Validate returns field -> message for every rule the patch breaks.
func (p ProfilePatch) Validate() map[string]string {
	errs := make(map[string]string)
	if p.Username != nil {
		if n := utf8.RuneCountInString(*p.Username); n < 1 || n > 50 {
			errs["username"] = "must be 1-50 characters"
		}
	}
	if p.FullName != nil && utf8.RuneCountInString(*p.FullName) > 100 {
		errs["full_name"] = "must be at most 100 characters"
	}
	if p.Status != nil && utf8.RuneCountInString(*p.Status) > 200 {
		errs["status"] = "must be at most 200 characters"
	}
	if p.AvatarID != nil && (*p.AvatarID < MinAvatarID || *p.AvatarID > MaxAvatarID) {
		errs["avatar_id"] = "must be between 1 and 12"
	}
	return errs
}

// UserRef is the lightweight identity returned by username lookup.
type UserRef struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

// RankingEntry is one row of the global player ranking.
type RankingEntry struct {
	Position   int     `json:"position"`
	Profile    Profile `json:"profile"`
	StageCount int     `json:"stage_count"`
}
