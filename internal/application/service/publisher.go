package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PostEventType string

const (
	PostEventTypeCreated   PostEventType = "post.created"
	PostEventTypeScheduled PostEventType = "post.scheduled"
	PostEventTypeUpdated   PostEventType = "post.updated"
	PostEventTypeDeleted   PostEventType = "post.deleted"
)

// PostEventPayload goes to the post.events topic. post.scheduled is the hook
// for an external scheduler: nothing in this service flips IsPublished.
type PostEventPayload struct {
	EventType     PostEventType `json:"event_type"`
	PostID        uuid.UUID     `json:"post_id"`
	AuthorID      uuid.UUID     `json:"author_id"`
	IsPublished   bool          `json:"is_published"`
	ScheduledTime *time.Time    `json:"scheduled_time,omitempty"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

type FollowEventType string

const (
	FollowEventTypeFollowed   FollowEventType = "follow.created"
	FollowEventTypeUnfollowed FollowEventType = "follow.deleted"
)

type FollowEventPayload struct {
	EventType   FollowEventType `json:"event_type"`
	FollowerID  uuid.UUID       `json:"follower_id"`
	FollowingID uuid.UUID       `json:"following_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

type EventPublisher interface {
	PublishPostEvent(ctx context.Context, payload PostEventPayload) error
	PublishFollowEvent(ctx context.Context, payload FollowEventPayload) error
}
