package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/movie-platform/internal/apperror"
	"github.com/sakif/movie-platform/internal/model"
	"github.com/sakif/movie-platform/internal/repository"
)

const MaxCommentLength = 2000

type CommentService struct {
	repo   repository.CommentRepository
	logger *slog.Logger
}

func NewCommentService(repo repository.CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{repo: repo, logger: logger}
}

// Add posts a comment as userID.
func (s *CommentService) Add(ctx context.Context, userID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or fewer", MaxCommentLength))
	}

	comment := &model.Comment{UserID: userID, Content: content}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/comment: creating: %w", err)
	}
	return comment, nil
}

// List returns every comment, newest first.
func (s *CommentService) List(ctx context.Context) ([]model.Comment, error) {
	comments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/comment: listing: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}
