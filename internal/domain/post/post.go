package post

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/social-api/internal/domain/user"
)

var (
	ErrEmptyContent = errors.New("content may not be blank")
)

type Post struct {
	ID            uuid.UUID  `json:"id"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Author        user.User  `json:"author"`
	Content       string     `json:"content"`
	ImageURL      *string    `json:"image"`
	CreatedAt     time.Time  `json:"created_at"`
	ScheduledTime *time.Time `json:"scheduled_time"`
	IsPublished   bool       `json:"is_published"`
	LikesCount    int        `json:"likes_count"`
}

// New builds a post created at now. A scheduled time strictly after now
// leaves the post unpublished; nothing in this service publishes it later.
func New(authorID uuid.UUID, content string, scheduledTime *time.Time, now time.Time) *Post {
	p := &Post{
		ID:            uuid.New(),
		AuthorID:      authorID,
		Content:       content,
		CreatedAt:     now,
		ScheduledTime: scheduledTime,
		IsPublished:   true,
	}
	if scheduledTime != nil && scheduledTime.After(now) {
		p.IsPublished = false
	}
	return p
}

func (p *Post) Validate() error {
	if strings.TrimSpace(p.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

func (p *Post) IsAuthoredBy(userID uuid.UUID) bool {
	return p.AuthorID == userID
}

// Hashtags returns the whitespace-delimited tokens of content that start
// with "#", without the leading "#", in order of appearance.
func (p *Post) Hashtags() []string {
	return ExtractHashtags(p.Content)
}

func ExtractHashtags(content string) []string {
	tags := make([]string, 0)
	for _, token := range strings.Fields(content) {
		if !strings.HasPrefix(token, "#") {
			continue
		}
		if tag := token[1:]; tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// FeedQuery selects published posts. With a valid Viewer only posts by the
// viewer or by users the viewer follows are returned.
type FeedQuery struct {
	Viewer uuid.NullUUID
	Search string
	Limit  int
	Offset int
}

type Repository interface {
	Save(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)
	// FindInFeed returns the post only if it would appear in viewer's feed.
	FindInFeed(ctx context.Context, id uuid.UUID, viewer uuid.NullUUID) (*Post, error)
	ListFeed(ctx context.Context, q FeedQuery) ([]*Post, error)
	ListByHashtag(ctx context.Context, tag string, limit, offset int) ([]*Post, error)
}
