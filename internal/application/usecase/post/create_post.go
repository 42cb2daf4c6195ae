package post

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/domain/post"
	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

type CreatePostUseCase struct {
	postRepo  post.Repository
	userRepo  user.Repository
	publisher service.EventPublisher
	uploader  service.Uploader
	logger    logger.Logger
	now       func() time.Time
}

func NewCreatePostUseCase(pRepo post.Repository, uRepo user.Repository, publisher service.EventPublisher, uploader service.Uploader, log logger.Logger) *CreatePostUseCase {
	return &CreatePostUseCase{
		postRepo:  pRepo,
		userRepo:  uRepo,
		publisher: publisher,
		uploader:  uploader,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CreatePostInput struct {
	AuthorID      uuid.UUID
	Content       string
	ScheduledTime *time.Time
	Image         *service.UploadFile
}

type CreatePostOutput struct {
	Post *post.Post
}

func (uc *CreatePostUseCase) Execute(ctx context.Context, input CreatePostInput) (*CreatePostOutput, error) {
	ctx, span := tracer.Start(ctx, "CreatePost")
	defer span.End()
	span.SetAttributes(attribute.String("author_id", input.AuthorID.String()))

	author, err := uc.userRepo.FindByID(ctx, input.AuthorID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find post author failed: %w", err)
	}

	newPost := post.New(author.ID, input.Content, input.ScheduledTime, uc.now())
	newPost.Author = *author
	if err := newPost.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	var uploadedPath string
	if input.Image != nil {
		uploadedPath, err = storeImage(ctx, uc.uploader, newPost, input.Image)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	if err := uc.postRepo.Save(ctx, newPost); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save post failed")
		if uploadedPath != "" {
			discardUpload(ctx, uc.uploader, uc.logger, uploadedPath)
		}
		return nil, err
	}

	eventType := service.PostEventTypeCreated
	if !newPost.IsPublished {
		eventType = service.PostEventTypeScheduled
	}
	publishPostEvent(ctx, uc.publisher, uc.logger, eventType, newPost)

	uc.logger.Info("Post created",
		zap.String("post_id", newPost.ID.String()),
		zap.Bool("is_published", newPost.IsPublished))
	return &CreatePostOutput{Post: newPost}, nil
}
