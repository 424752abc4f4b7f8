package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
)

// ChatService serves the global room and per-team rooms.
type ChatService struct {
	chat   *repository.ChatRepository
	teams  *repository.TeamRepository
	notify *NotificationService
	limit  int
}

func NewChatService(q db.Querier, notify *NotificationService, historyLimit int) *ChatService {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &ChatService{
		chat:   repository.NewChatRepository(q),
		teams:  repository.NewTeamRepository(q),
		notify: notify,
		limit:  historyLimit,
	}
}

// History returns the latest messages in ascending order. A nil team means the global room.
func (s *ChatService) History(ctx context.Context, viewer uuid.UUID, teamID *uuid.UUID) ([]domain.ChatMessage, error) {
	if teamID != nil {
		if _, err := membershipOf(ctx, s.teams, *teamID, viewer); err != nil {
			return nil, err
		}
	}
	return s.chat.Recent(ctx, teamID, s.limit)
}

func (s *ChatService) Send(ctx context.Context, caller uuid.UUID, teamID *uuid.UUID, message string) (*domain.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if n := utf8.RuneCountInString(message); n == 0 || n > 1000 {
		return nil, invalid(map[string]string{"message": "must be 1-1000 characters"})
	}

	ev := domain.Event{Type: domain.EventChatMessage, TeamID: teamID}
	if teamID != nil {
		if _, err := membershipOf(ctx, s.teams, *teamID, caller); err != nil {
			return nil, err
		}
		members, err := s.teams.MemberIDs(ctx, *teamID)
		if err != nil {
			return nil, err
		}
		ev.UserIDs = members
	} else {
		ev.Broadcast = true
	}

	m := &domain.ChatMessage{UserID: caller, TeamID: teamID, Message: message}
	if err := s.chat.Create(ctx, m); err != nil {
		return nil, translate(err)
	}
	ev.Payload = m
	ev.CreatedAt = m.CreatedAt
	s.notify.publish(ctx, ev)
	return m, nil
}
