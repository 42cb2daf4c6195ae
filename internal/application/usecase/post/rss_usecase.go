package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/internal/domain/post"
	"github.com/khoahotran/social-api/pkg/logger"
)

const (
	rssItemLimit = 20
	rssTitleLen  = 60
)

type RSSUseCase struct {
	postRepo post.Repository
	baseURL  string
	logger   logger.Logger
}

func NewRSSUseCase(pRepo post.Repository, baseURL string, log logger.Logger) *RSSUseCase {
	return &RSSUseCase{
		postRepo: pRepo,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   log,
	}
}

// Execute renders the newest posts of the anonymous feed.
func (uc *RSSUseCase) Execute(ctx context.Context) (*feeds.Feed, error) {
	uc.logger.Debug("Generating RSS feed...")

	feed := &feeds.Feed{
		Title:       "Social API - Latest posts",
		Link:        &feeds.Link{Href: uc.baseURL + "/api/posts/"},
		Description: "Latest published posts.",
		Created:     time.Now(),
	}

	posts, err := uc.postRepo.ListFeed(ctx, post.FeedQuery{Viewer: uuid.NullUUID{}, Limit: rssItemLimit})
	if err != nil {
		uc.logger.Error("Failed to list feed for RSS", err)
		return nil, err
	}

	feed.Items = make([]*feeds.Item, 0, len(posts))
	for _, p := range posts {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          p.ID.String(),
			Title:       itemTitle(p.Content),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/api/posts/%s/", uc.baseURL, p.ID)},
			Author:      &feeds.Author{Name: p.Author.Identity(), Email: p.Author.Email},
			Description: p.Content,
			Created:     p.CreatedAt,
		})
	}

	uc.logger.Info("RSS feed generated", zap.Int("item_count", len(feed.Items)))
	return feed, nil
}

func itemTitle(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	runes := []rune(line)
	if len(runes) <= rssTitleLen {
		return line
	}
	return string(runes[:rssTitleLen]) + "..."
}
