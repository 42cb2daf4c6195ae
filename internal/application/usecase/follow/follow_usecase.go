package follow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/domain/follow"
	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

var tracer = otel.Tracer("follow_usecase")

type FollowUseCase struct {
	followRepo follow.Repository
	userRepo   user.Repository
	publisher  service.EventPublisher
	logger     logger.Logger
}

func NewFollowUseCase(fRepo follow.Repository, uRepo user.Repository, publisher service.EventPublisher, log logger.Logger) *FollowUseCase {
	return &FollowUseCase{
		followRepo: fRepo,
		userRepo:   uRepo,
		publisher:  publisher,
		logger:     log,
	}
}

type FollowInput struct {
	FollowerID uuid.UUID
	TargetID   uuid.UUID
}

type FollowOutput struct {
	Detail  string
	Created bool
}

// ExecuteFollow is idempotent: following someone twice keeps one edge and
// returns the same message.
func (uc *FollowUseCase) ExecuteFollow(ctx context.Context, input FollowInput) (*FollowOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteFollow")
	defer span.End()
	span.SetAttributes(
		attribute.String("follower_id", input.FollowerID.String()),
		attribute.String("target_id", input.TargetID.String()),
	)

	if input.FollowerID == input.TargetID {
		return nil, apperror.NewInvalidOperation("You cannot follow yourself.")
	}

	target, err := uc.findTarget(ctx, input.TargetID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "target lookup failed")
		return nil, err
	}

	_, created, err := uc.followRepo.GetOrCreate(ctx, input.FollowerID, target.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get or create follow failed")
		return nil, fmt.Errorf("follow failed: %w", err)
	}

	if created {
		uc.publish(ctx, service.FollowEventTypeFollowed, input.FollowerID, target.ID)
	}

	return &FollowOutput{
		Detail:  fmt.Sprintf("You are now following %s.", target.Email),
		Created: created,
	}, nil
}

type UnfollowOutput struct {
	Detail string
}

func (uc *FollowUseCase) ExecuteUnfollow(ctx context.Context, input FollowInput) (*UnfollowOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteUnfollow")
	defer span.End()

	target, err := uc.findTarget(ctx, input.TargetID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	removed, err := uc.followRepo.Delete(ctx, input.FollowerID, target.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete follow failed")
		return nil, fmt.Errorf("unfollow failed: %w", err)
	}
	if !removed {
		return nil, apperror.NewInvalidOperation(fmt.Sprintf("You are not following %s.", target.Email))
	}

	uc.publish(ctx, service.FollowEventTypeUnfollowed, input.FollowerID, target.ID)
	return &UnfollowOutput{Detail: fmt.Sprintf("You have unfollowed %s.", target.Email)}, nil
}

func (uc *FollowUseCase) ExecuteListFollows(ctx context.Context, userID uuid.UUID) ([]*follow.Follow, error) {
	follows, err := uc.followRepo.ListByFollower(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list follows failed: %w", err)
	}
	return follows, nil
}

func (uc *FollowUseCase) ExecuteListFollowers(ctx context.Context, userID uuid.UUID) ([]user.User, error) {
	users, err := uc.followRepo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list followers failed: %w", err)
	}
	return users, nil
}

func (uc *FollowUseCase) ExecuteListFollowing(ctx context.Context, userID uuid.UUID) ([]user.User, error) {
	users, err := uc.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list following failed: %w", err)
	}
	return users, nil
}

func (uc *FollowUseCase) findTarget(ctx context.Context, id uuid.UUID) (*user.User, error) {
	target, err := uc.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewAppError(apperror.ErrNotFound, "User not found.", id.String(), err)
		}
		return nil, fmt.Errorf("find user failed: %w", err)
	}
	return target, nil
}

func (uc *FollowUseCase) publish(ctx context.Context, eventType service.FollowEventType, followerID, followingID uuid.UUID) {
	err := uc.publisher.PublishFollowEvent(ctx, service.FollowEventPayload{
		EventType:   eventType,
		FollowerID:  followerID,
		FollowingID: followingID,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Error("Failed to publish follow event", err,
			zap.String("event_type", string(eventType)),
			zap.String("follower_id", followerID.String()),
			zap.String("following_id", followingID.String()))
	}
}
