package post

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/domain/post"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

type UpdatePostUseCase struct {
	postRepo  post.Repository
	publisher service.EventPublisher
	uploader  service.Uploader
	logger    logger.Logger
}

func NewUpdatePostUseCase(pRepo post.Repository, publisher service.EventPublisher, uploader service.Uploader, log logger.Logger) *UpdatePostUseCase {
	return &UpdatePostUseCase{
		postRepo:  pRepo,
		publisher: publisher,
		uploader:  uploader,
		logger:    log,
	}
}

type UpdatePostInput struct {
	PostID   uuid.UUID
	AuthorID uuid.UUID
	// Partial keeps fields that were not supplied (PATCH).
	Partial          bool
	Content          *string
	ScheduledTime    *time.Time
	ScheduledTimeSet bool
	Image            *service.UploadFile
}

type UpdatePostOutput struct {
	Post *post.Post
}

// Execute edits content, scheduled time and image. IsPublished and CreatedAt
// are never touched.
func (uc *UpdatePostUseCase) Execute(ctx context.Context, input UpdatePostInput) (*UpdatePostOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdatePost")
	defer span.End()
	span.SetAttributes(attribute.String("post_id", input.PostID.String()))

	existingPost, err := uc.postRepo.FindByID(ctx, input.PostID)
	if err != nil {
		return nil, err
	}
	if !existingPost.IsAuthoredBy(input.AuthorID) {
		uc.logger.Warn("Rejected post update by non-author",
			zap.String("post_id", existingPost.ID.String()), zap.String("user_id", input.AuthorID.String()))
		return nil, apperror.NewPermissionDenied("You can only edit your own posts.")
	}

	switch {
	case input.Content != nil:
		existingPost.Content = *input.Content
	case !input.Partial:
		existingPost.Content = ""
	}
	if input.ScheduledTimeSet || !input.Partial {
		existingPost.ScheduledTime = input.ScheduledTime
	}

	if err := existingPost.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	var uploadedPath string
	if input.Image != nil {
		uploadedPath, err = storeImage(ctx, uc.uploader, existingPost, input.Image)
		if err != nil {
			return nil, err
		}
	}

	if err := uc.postRepo.Update(ctx, existingPost); err != nil {
		span.RecordError(err)
		if uploadedPath != "" {
			discardUpload(ctx, uc.uploader, uc.logger, uploadedPath)
		}
		return nil, err
	}

	publishPostEvent(ctx, uc.publisher, uc.logger, service.PostEventTypeUpdated, existingPost)
	return &UpdatePostOutput{Post: existingPost}, nil
}
