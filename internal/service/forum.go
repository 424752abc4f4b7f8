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

type ForumService struct {
	forum *repository.ForumRepository
	teams *repository.TeamRepository
}

func NewForumService(q db.Querier) *ForumService {
	return &ForumService{
		forum: repository.NewForumRepository(q),
		teams: repository.NewTeamRepository(q),
	}
}

func validateTopic(title, content string) error {
	fields := make(map[string]string)
	if n := utf8.RuneCountInString(title); n == 0 || n > 200 {
		fields["title"] = "must be 1-200 characters"
	}
	if n := utf8.RuneCountInString(content); n == 0 || n > 5000 {
		fields["content"] = "must be 1-5000 characters"
	}
	return invalid(fields)
}

func validateReply(content string) error {
	if n := utf8.RuneCountInString(content); n == 0 || n > 5000 {
		return invalid(map[string]string{"content": "must be 1-5000 characters"})
	}
	return nil
}

// canModerate reports whether caller authored the post or manages its team.
func (s *ForumService) canModerate(ctx context.Context, teamID, author, caller uuid.UUID) error {
	if author == caller {
		return nil
	}
	_, err := requireManager(ctx, s.teams, teamID, caller)
	return err
}

func (s *ForumService) CreateTopic(ctx context.Context, caller, teamID uuid.UUID, title, content string) (*domain.ForumTopic, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if err := validateTopic(title, content); err != nil {
		return nil, err
	}
	if _, err := requireManager(ctx, s.teams, teamID, caller); err != nil {
		return nil, err
	}
	t := &domain.ForumTopic{TeamID: teamID, CreatedBy: caller, Title: title, Content: content}
	if err := s.forum.CreateTopic(ctx, t); err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (s *ForumService) ListTopics(ctx context.Context, viewer, teamID uuid.UUID) ([]domain.ForumTopic, error) {
	if _, err := membershipOf(ctx, s.teams, teamID, viewer); err != nil {
		return nil, err
	}
	return s.forum.ListTopics(ctx, teamID)
}

func (s *ForumService) GetTopic(ctx context.Context, viewer, id uuid.UUID) (*domain.ForumTopic, error) {
	t, err := s.forum.GetTopic(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if _, err := membershipOf(ctx, s.teams, t.TeamID, viewer); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ForumService) UpdateTopic(ctx context.Context, caller, id uuid.UUID, title, content string) (*domain.ForumTopic, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if err := validateTopic(title, content); err != nil {
		return nil, err
	}
	t, err := s.forum.GetTopic(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.canModerate(ctx, t.TeamID, t.CreatedBy, caller); err != nil {
		return nil, err
	}
	if err := s.forum.UpdateTopic(ctx, id, title, content); err != nil {
		return nil, translate(err)
	}
	t.Title, t.Content = title, content
	return t, nil
}

func (s *ForumService) DeleteTopic(ctx context.Context, caller, id uuid.UUID) error {
	t, err := s.forum.GetTopic(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err := s.canModerate(ctx, t.TeamID, t.CreatedBy, caller); err != nil {
		return err
	}
	return translate(s.forum.DeleteTopic(ctx, id))
}

func (s *ForumService) Reply(ctx context.Context, caller, topicID uuid.UUID, content string) (*domain.ForumReply, error) {
	content = strings.TrimSpace(content)
	if err := validateReply(content); err != nil {
		return nil, err
	}
	t, err := s.forum.GetTopic(ctx, topicID)
	if err != nil {
		return nil, translate(err)
	}
	if _, err := membershipOf(ctx, s.teams, t.TeamID, caller); err != nil {
		return nil, err
	}
	r := &domain.ForumReply{TopicID: topicID, UserID: caller, Content: content}
	if err := s.forum.CreateReply(ctx, r); err != nil {
		return nil, translate(err)
	}
	return r, nil
}

func (s *ForumService) ListReplies(ctx context.Context, viewer, topicID uuid.UUID) ([]domain.ForumReply, error) {
	if _, err := s.GetTopic(ctx, viewer, topicID); err != nil {
		return nil, err
	}
	return s.forum.ListReplies(ctx, topicID)
}

// replyWithTeam loads a reply and the team its topic belongs to.
func (s *ForumService) replyWithTeam(ctx context.Context, id uuid.UUID) (*domain.ForumReply, uuid.UUID, error) {
	r, err := s.forum.GetReply(ctx, id)
	if err != nil {
		return nil, uuid.Nil, translate(err)
	}
	t, err := s.forum.GetTopic(ctx, r.TopicID)
	if err != nil {
		return nil, uuid.Nil, translate(err)
	}
	return r, t.TeamID, nil
}

func (s *ForumService) UpdateReply(ctx context.Context, caller, id uuid.UUID, content string) (*domain.ForumReply, error) {
	content = strings.TrimSpace(content)
	if err := validateReply(content); err != nil {
		return nil, err
	}
	r, teamID, err := s.replyWithTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canModerate(ctx, teamID, r.UserID, caller); err != nil {
		return nil, err
	}
	if err := s.forum.UpdateReply(ctx, id, content); err != nil {
		return nil, translate(err)
	}
	r.Content = content
	return r, nil
}

func (s *ForumService) DeleteReply(ctx context.Context, caller, id uuid.UUID) error {
	r, teamID, err := s.replyWithTeam(ctx, id)
	if err != nil {
		return err
	}
	if err := s.canModerate(ctx, teamID, r.UserID, caller); err != nil {
		return err
	}
	return translate(s.forum.DeleteReply(ctx, id))
}
