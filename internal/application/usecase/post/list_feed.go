package post

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/khoahotran/social-api/internal/domain/post"
)

type ListFeedUseCase struct {
	postRepo post.Repository
}

func NewListFeedUseCase(pRepo post.Repository) *ListFeedUseCase {
	return &ListFeedUseCase{postRepo: pRepo}
}

type ListFeedInput struct {
	Viewer uuid.NullUUID
	Search string
	Page   int
	Limit  int
}

type ListFeedOutput struct {
	Posts []*post.Post
}

// Execute lists published posts, newest first. Anonymous viewers see every
// author; signed-in viewers see themselves and the users they follow.
func (uc *ListFeedUseCase) Execute(ctx context.Context, input ListFeedInput) (*ListFeedOutput, error) {
	ctx, span := tracer.Start(ctx, "ListFeed", trace.WithAttributes(
		attribute.Bool("authenticated", input.Viewer.Valid),
		attribute.Int("page", input.Page),
	))
	defer span.End()

	limit, offset := pagination(input.Page, input.Limit)
	posts, err := uc.postRepo.ListFeed(ctx, post.FeedQuery{
		Viewer: input.Viewer,
		Search: input.Search,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list feed failed: %w", err)
	}
	return &ListFeedOutput{Posts: posts}, nil
}
