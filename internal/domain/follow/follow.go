package follow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/social-api/internal/domain/user"
)

// Follow is a directed edge: Follower receives Following's posts in the feed.
// The (FollowerID, FollowingID) pair is unique.
type Follow struct {
	ID          uuid.UUID `json:"id"`
	FollowerID  uuid.UUID `json:"follower_id"`
	FollowingID uuid.UUID `json:"following_id"`
	Follower    user.User `json:"follower"`
	Following   user.User `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository interface {
	// GetOrCreate inserts the edge unless it already exists and reports
	// whether a new row was written.
	GetOrCreate(ctx context.Context, followerID, followingID uuid.UUID) (*Follow, bool, error)
	// Delete removes the edge and reports whether one existed.
	Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	ListByFollower(ctx context.Context, followerID uuid.UUID) ([]*Follow, error)
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]user.User, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]user.User, error)
}
