package post

import (
	"context"

	"github.com/google/uuid"

	"github.com/khoahotran/social-api/internal/domain/post"
)

type GetPostUseCase struct {
	postRepo post.Repository
}

func NewGetPostUseCase(pRepo post.Repository) *GetPostUseCase {
	return &GetPostUseCase{postRepo: pRepo}
}

type GetPostInput struct {
	Viewer uuid.NullUUID
	PostID uuid.UUID
}

type GetPostOutput struct {
	Post *post.Post
}

// Execute only finds posts that would be listed in the viewer's feed.
func (uc *GetPostUseCase) Execute(ctx context.Context, input GetPostInput) (*GetPostOutput, error) {
	p, err := uc.postRepo.FindInFeed(ctx, input.PostID, input.Viewer)
	if err != nil {
		return nil, err
	}
	return &GetPostOutput{Post: p}, nil
}
