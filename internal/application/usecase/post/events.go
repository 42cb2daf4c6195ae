package post

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/domain/media"
	"github.com/khoahotran/social-api/internal/domain/post"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

var tracer = otel.Tracer("post_usecase")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func pagination(page, limit int) (int, int) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// publishPostEvent runs after the write has committed. A broker failure is
// logged and swallowed.
func publishPostEvent(ctx context.Context, publisher service.EventPublisher, log logger.Logger, eventType service.PostEventType, p *post.Post) {
	err := publisher.PublishPostEvent(ctx, service.PostEventPayload{
		EventType:     eventType,
		PostID:        p.ID,
		AuthorID:      p.AuthorID,
		IsPublished:   p.IsPublished,
		ScheduledTime: p.ScheduledTime,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Error("Failed to publish post event", err,
			zap.String("event_type", string(eventType)),
			zap.String("post_id", p.ID.String()))
	}
}

func storeImage(ctx context.Context, uploader service.Uploader, p *post.Post, file *service.UploadFile) (string, error) {
	if !media.IsImage(file.Filename) {
		return "", apperror.NewInvalidInput(media.InvalidImageMessage, nil)
	}
	path := media.UploadPath(media.KindPost, p.Author.Identity(), file.Filename, uuid.New())
	url, err := uploader.Upload(ctx, file.Body, path)
	if err != nil {
		return "", apperror.NewInternal("failed to upload post image", err)
	}
	p.ImageURL = &url
	return path, nil
}

func discardUpload(ctx context.Context, uploader service.Uploader, log logger.Logger, path string) {
	if err := uploader.Delete(ctx, path); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("Failed to discard orphaned upload", zap.String("path", path), zap.Error(err))
	}
}
