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

// SocialService covers friendships and private messages.
type SocialService struct {
	profiles    *repository.ProfileRepository
	friendships *repository.FriendshipRepository
	messages    *repository.MessageRepository
	notify      *NotificationService
}

func NewSocialService(q db.Querier, notify *NotificationService) *SocialService {
	return &SocialService{
		profiles:    repository.NewProfileRepository(q),
		friendships: repository.NewFriendshipRepository(q),
		messages:    repository.NewMessageRepository(q),
		notify:      notify,
	}
}

// SendRequest opens a pending friendship from caller to friend.
func (s *SocialService) SendRequest(ctx context.Context, caller, friend uuid.UUID) (*domain.Friendship, error) {
	if caller == friend {
		return nil, ErrSelfAction
	}
	if _, err := s.profiles.GetByID(ctx, friend); err != nil {
		return nil, translate(err)
	}
	exists, err := s.friendships.ExistsBetween(ctx, caller, friend)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicate
	}
	f := &domain.Friendship{UserID: caller, FriendID: friend, Status: domain.FriendshipPending}
	if err := s.friendships.Create(ctx, f); err != nil {
		return nil, translate(err)
	}
	return f, nil
}

// Accept turns a pending request addressed to caller into a friendship.
func (s *SocialService) Accept(ctx context.Context, caller, id uuid.UUID) error {
	f, err := s.friendships.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if f.FriendID != caller {
		return ErrForbidden
	}
	if f.Status != domain.FriendshipPending {
		return ErrDuplicate
	}
	return translate(s.friendships.Accept(ctx, id, caller))
}

// Remove deletes the edge. It serves both rejecting a request and unfriending.
func (s *SocialService) Remove(ctx context.Context, caller, id uuid.UUID) error {
	f, err := s.friendships.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if !f.Involves(caller) {
		return ErrForbidden
	}
	return translate(s.friendships.Delete(ctx, id))
}

// Reject declines a request. The row is deleted, leaving no tombstone.
func (s *SocialService) Reject(ctx context.Context, caller, id uuid.UUID) error {
	return s.Remove(ctx, caller, id)
}

// Friends returns accepted friendships of any user.
func (s *SocialService) Friends(ctx context.Context, userID uuid.UUID) ([]domain.FriendEntry, error) {
	return s.friendships.ListAccepted(ctx, userID)
}

func (s *SocialService) Incoming(ctx context.Context, viewer uuid.UUID) ([]domain.FriendEntry, error) {
	return s.friendships.ListIncoming(ctx, viewer)
}

// SendMessage stores a private message and pings the recipient.
func (s *SocialService) SendMessage(ctx context.Context, caller, recipient uuid.UUID, subject, message string) (*domain.PrivateMessage, error) {
	message = strings.TrimSpace(message)
	subject = strings.TrimSpace(subject)
	fields := make(map[string]string)
	if n := utf8.RuneCountInString(message); n == 0 || n > 2000 {
		fields["message"] = "must be 1-2000 characters"
	}
	if utf8.RuneCountInString(subject) > 200 {
		fields["subject"] = "must be at most 200 characters"
	}
	if err := invalid(fields); err != nil {
		return nil, err
	}
	if caller == recipient {
		return nil, ErrSelfAction
	}
	if _, err := s.profiles.GetByID(ctx, recipient); err != nil {
		return nil, translate(err)
	}

	m := &domain.PrivateMessage{SenderID: caller, RecipientID: recipient, Subject: subject, Message: message}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, translate(err)
	}
	s.notify.publish(ctx, domain.Event{
		Type:      domain.EventPrivateMessage,
		UserIDs:   []uuid.UUID{recipient},
		Payload:   m,
		CreatedAt: m.CreatedAt,
	})
	return m, nil
}

func (s *SocialService) Messages(ctx context.Context, viewer uuid.UUID) ([]domain.PrivateMessage, error) {
	return s.messages.ListForUser(ctx, viewer, 0)
}

func (s *SocialService) Conversations(ctx context.Context, viewer uuid.UUID) ([]domain.Conversation, error) {
	msgs, err := s.messages.ListForUser(ctx, viewer, 0)
	if err != nil {
		return nil, err
	}
	return domain.BuildConversations(viewer, msgs), nil
}

// MarkRead flags the viewer's received messages as read and returns how many changed.
func (s *SocialService) MarkRead(ctx context.Context, viewer uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.messages.MarkRead(ctx, viewer, ids)
}

func (s *SocialService) UnreadCount(ctx context.Context, viewer uuid.UUID) (int, error) {
	return s.messages.UnreadCount(ctx, viewer)
}
