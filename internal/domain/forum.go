package domain

import (
	"time"

	"github.com/google/uuid"
)

type ForumTopic struct {
	ID         uuid.UUID `db:"id" json:"id"`
	TeamID     uuid.UUID `db:"team_id" json:"team_id"`
	CreatedBy  uuid.UUID `db:"created_by" json:"created_by"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	AuthorName string    `json:"author_name"`
	ReplyCount int       `json:"reply_count"`
}

type ForumReply struct {
	ID         uuid.UUID `db:"id" json:"id"`
	TopicID    uuid.UUID `db:"topic_id" json:"topic_id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	AuthorName string    `json:"author_name"`
}

type ChatMessage struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	TeamID    *uuid.UUID `db:"team_id" json:"team_id"`
	Message   string     `db:"message" json:"message"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name"`
}
