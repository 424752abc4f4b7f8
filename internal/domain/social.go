package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship is a directed edge: user_id asked, friend_id answers.
type Friendship struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    uuid.UUID        `db:"user_id" json:"user_id"`
	FriendID  uuid.UUID        `db:"friend_id" json:"friend_id"`
	Status    FriendshipStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// Involves reports whether userID is either side of the edge.
func (f Friendship) Involves(userID uuid.UUID) bool {
	return f.UserID == userID || f.FriendID == userID
}

// Other returns the side that is not viewer.
func (f Friendship) Other(viewer uuid.UUID) uuid.UUID {
	if f.UserID == viewer {
		return f.FriendID
	}
	return f.UserID
}

// FriendSummary is the profile card shown in friend lists.
type FriendSummary struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarID  int       `json:"avatar_id"`
	RankTitle string    `json:"rank_title"`
	Points    int64     `json:"points"`
}

// FriendEntry pairs an edge with the other side's card.
type FriendEntry struct {
	Friendship Friendship    `json:"friendship"`
	Friend     FriendSummary `json:"friend"`
}

type PrivateMessage struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SenderID    uuid.UUID `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID `db:"recipient_id" json:"recipient_id"`
	Subject     string    `db:"subject" json:"subject"`
	Message     string    `db:"message" json:"message"`
	IsRead      bool      `db:"is_read" json:"is_read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Conversation struct {
	PartnerID   uuid.UUID      `json:"partner_id"`
	LastMessage PrivateMessage `json:"last_message"`
	UnreadCount int            `json:"unread_count"`
}

// BuildConversations groups messages by partner. Unread counts only messages addressed to viewer.
// The result is ordered by the last message, newest first.
func BuildConversations(viewer uuid.UUID, msgs []PrivateMessage) []Conversation {
	byPartner := make(map[uuid.UUID]*Conversation)
	for _, m := range msgs {
		partner := m.SenderID
		if m.SenderID == viewer {
			partner = m.RecipientID
		}
		conv, ok := byPartner[partner]
		if !ok {
			conv = &Conversation{PartnerID: partner, LastMessage: m}
			byPartner[partner] = conv
		} else if m.CreatedAt.After(conv.LastMessage.CreatedAt) {
			conv.LastMessage = m
		}
		if m.RecipientID == viewer && !m.IsRead {
			conv.UnreadCount++
		}
	}

	out := make([]Conversation, 0, len(byPartner))
	for _, c := range byPartner {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.CreatedAt.After(out[j].LastMessage.CreatedAt)
	})
	return out
}
