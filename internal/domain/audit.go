package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents an audit log entry for tracking privileged actions
type AuditLog struct {
	ID        uuid.UUID              `db:"id" json:"id"`
	UserID    *uuid.UUID             `db:"user_id" json:"user_id"`
	TeamID    *uuid.UUID             `db:"team_id" json:"team_id,omitempty"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth   = "auth"
	AuditCategoryLedger = "ledger"
	AuditCategoryTeam   = "team"
	AuditCategoryShop   = "shop"
)

// Audit actions
const (
	AuditActionSignOut = "sign_out"

	AuditActionStageAdd     = "stage_add"
	AuditActionStageApprove = "stage_approve"
	AuditActionStageRemove  = "stage_remove"
	AuditActionPointsAdjust = "points_adjust"

	AuditActionMemberInvite = "member_invite"
	AuditActionMemberRemove = "member_remove"
	AuditActionRoleChange   = "member_role_change"
	AuditActionRankChange   = "member_rank_change"
	AuditActionCrystalsSet  = "member_crystals_set"

	AuditActionItemCreate = "item_create"
	AuditActionItemUpdate = "item_update"
	AuditActionItemDelete = "item_delete"
)

// RequestMeta carries the caller's network identity into audit rows.
type RequestMeta struct {
	IP        string
	UserAgent string
}
