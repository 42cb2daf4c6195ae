package post

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/domain/post"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

type DeletePostUseCase struct {
	postRepo  post.Repository
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewDeletePostUseCase(pRepo post.Repository, publisher service.EventPublisher, log logger.Logger) *DeletePostUseCase {
	return &DeletePostUseCase{
		postRepo:  pRepo,
		publisher: publisher,
		logger:    log,
	}
}

type DeletePostInput struct {
	PostID   uuid.UUID
	AuthorID uuid.UUID
}

func (uc *DeletePostUseCase) Execute(ctx context.Context, input DeletePostInput) error {
	ctx, span := tracer.Start(ctx, "DeletePost")
	defer span.End()

	existingPost, err := uc.postRepo.FindByID(ctx, input.PostID)
	if err != nil {
		return err
	}
	if !existingPost.IsAuthoredBy(input.AuthorID) {
		return apperror.NewPermissionDenied("You can only delete your own posts.")
	}

	if err := uc.postRepo.Delete(ctx, existingPost.ID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete post failed: %w", err)
	}

	publishPostEvent(ctx, uc.publisher, uc.logger, service.PostEventTypeDeleted, existingPost)
	return nil
}
