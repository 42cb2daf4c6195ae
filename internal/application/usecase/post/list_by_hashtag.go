package post

import (
	"context"
	"fmt"
	"strings"

	"github.com/khoahotran/social-api/internal/domain/post"
	"github.com/khoahotran/social-api/pkg/apperror"
)

type ListByHashtagUseCase struct {
	postRepo post.Repository
}

func NewListByHashtagUseCase(pRepo post.Repository) *ListByHashtagUseCase {
	return &ListByHashtagUseCase{postRepo: pRepo}
}

type ListByHashtagInput struct {
	Tag   string
	Page  int
	Limit int
}

type ListByHashtagOutput struct {
	Posts []*post.Post
}

// Execute matches the literal substring "#"+Tag, so "rust" also finds
// "#rustlang". Follows do not restrict the result.
func (uc *ListByHashtagUseCase) Execute(ctx context.Context, input ListByHashtagInput) (*ListByHashtagOutput, error) {
	tag := strings.TrimPrefix(input.Tag, "#")
	if tag == "" {
		return nil, apperror.NewInvalidInput("hashtag may not be blank", nil)
	}

	limit, offset := pagination(input.Page, input.Limit)
	posts, err := uc.postRepo.ListByHashtag(ctx, tag, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts by hashtag failed: %w", err)
	}
	return &ListByHashtagOutput{Posts: posts}, nil
}
