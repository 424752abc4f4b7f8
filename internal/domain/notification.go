package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType tags team notifications.
type NotificationType string

const (
	NotifyStage     NotificationType = "stage"
	NotifyPurchase  NotificationType = "purchase"
	NotifyShop      NotificationType = "shop"
	NotifyNewMember NotificationType = "new_member"
	NotifyRank      NotificationType = "rank"
)

type TeamNotificationSettings struct {
	TeamID                uuid.UUID `db:"team_id" json:"team_id"`
	NotifyStageCompletion bool      `db:"notify_stage_completion" json:"notify_stage_completion"`
	NotifyPurchases       bool      `db:"notify_purchases" json:"notify_purchases"`
	NotifyNewMembers      bool      `db:"notify_new_members" json:"notify_new_members"`
	NotifyRankChanges     bool      `db:"notify_rank_changes" json:"notify_rank_changes"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultNotificationSettings has every flag on.
func DefaultNotificationSettings(teamID uuid.UUID) TeamNotificationSettings {
	return TeamNotificationSettings{
		TeamID:                teamID,
		NotifyStageCompletion: true,
		NotifyPurchases:       true,
		NotifyNewMembers:      true,
		NotifyRankChanges:     true,
	}
}

// Enabled reports whether notifications of type t are switched on.
// Unknown types are always delivered.
func (s TeamNotificationSettings) Enabled(t NotificationType) bool {
	switch t {
	case NotifyStage:
		return s.NotifyStageCompletion
	case NotifyPurchase, NotifyShop:
		return s.NotifyPurchases
	case NotifyNewMember:
		return s.NotifyNewMembers
	case NotifyRank:
		return s.NotifyRankChanges
	}
	return true
}

// NotificationSettingsPatch is a partial settings update.
type NotificationSettingsPatch struct {
	NotifyStageCompletion *bool `json:"notify_stage_completion"`
	NotifyPurchases       *bool `json:"notify_purchases"`
	NotifyNewMembers      *bool `json:"notify_new_members"`
	NotifyRankChanges     *bool `json:"notify_rank_changes"`
}

// Apply returns s with every non-nil field of p set.
func (p NotificationSettingsPatch) Apply(s TeamNotificationSettings) TeamNotificationSettings {
	if p.NotifyStageCompletion != nil {
		s.NotifyStageCompletion = *p.NotifyStageCompletion
	}
	if p.NotifyPurchases != nil {
		s.NotifyPurchases = *p.NotifyPurchases
	}
	if p.NotifyNewMembers != nil {
		s.NotifyNewMembers = *p.NotifyNewMembers
	}
	if p.NotifyRankChanges != nil {
		s.NotifyRankChanges = *p.NotifyRankChanges
	}
	return s
}

type TeamNotification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	TeamID    uuid.UUID        `db:"team_id" json:"team_id"`
	Type      NotificationType `db:"type" json:"type"`
	Message   string           `db:"message" json:"message"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// EventType tags realtime events pushed to connected clients.
type EventType string

const (
	EventPrivateMessage   EventType = "private_message"
	EventRankChanged      EventType = "rank_changed"
	EventProfileUpdated   EventType = "profile_updated"
	EventChatMessage      EventType = "chat_message"
	EventTeamNotification EventType = "team_notification"
)

// Event is delivered to UserIDs, or to every connected user when Broadcast is set.
type Event struct {
	Type      EventType   `json:"type"`
	UserIDs   []uuid.UUID `json:"user_ids,omitempty"`
	Broadcast bool        `json:"broadcast,omitempty"`
	TeamID    *uuid.UUID  `json:"team_id,omitempty"`
	Payload   any         `json:"payload,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
