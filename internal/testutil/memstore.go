// Package testutil holds in-memory implementations of the domain
// repositories and service ports. They mirror the Postgres adapters closely
// enough for use case and handler tests; the SQL itself is covered by the
// persistence integration tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/social-api/internal/domain/follow"
	"github.com/khoahotran/social-api/internal/domain/post"
	"github.com/khoahotran/social-api/internal/domain/profile"
	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/pkg/apperror"
)

type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]user.User
	profiles map[uuid.UUID]profile.Profile
	follows  []follow.Follow
	posts    map[uuid.UUID]post.Post
	likes    map[uuid.UUID]int
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]user.User),
		profiles: make(map[uuid.UUID]profile.Profile),
		posts:    make(map[uuid.UUID]post.Post),
		likes:    make(map[uuid.UUID]int),
	}
}

// AddUser plays the identity provider.
func (s *Store) AddUser(email, username string) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user.User{ID: uuid.New(), Email: email, Username: username}
	s.users[u.ID] = u
	return u
}

// SetLikes fakes the likes relation nothing in the API writes.
func (s *Store) SetLikes(postID uuid.UUID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes[postID] = n
}

func (s *Store) FollowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.follows)
}

func (s *Store) ProfileCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

func (s *Store) Users() user.Repository       { return userRepo{s} }
func (s *Store) Profiles() profile.Repository { return profileRepo{s} }
func (s *Store) Follows() follow.Repository   { return followRepo{s} }
func (s *Store) Posts() post.Repository       { return postRepo{s} }

func (s *Store) isFollowing(followerID, followingID uuid.UUID) bool {
	for _, f := range s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return true
		}
	}
	return false
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// users

type userRepo struct{ s *Store }

func (r userRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.NewNotFound("User", id.String())
	}
	return &u, nil
}

// profiles

type profileRepo struct{ s *Store }

func (r profileRepo) Create(_ context.Context, p *profile.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.profiles {
		if existing.UserID == p.UserID {
			return apperror.NewConflict("Profile", "user", p.UserID.String())
		}
	}
	p.User = r.s.users[p.UserID]
	r.s.profiles[p.ID] = *p
	return nil
}

func (r profileRepo) Update(_ context.Context, p *profile.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; !ok {
		return apperror.NewNotFound("Profile", p.ID.String())
	}
	r.s.profiles[p.ID] = *p
	return nil
}

func (r profileRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[id]; !ok {
		return apperror.NewNotFound("Profile", id.String())
	}
	delete(r.s.profiles, id)
	return nil
}

func (r profileRepo) FindByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, apperror.NewNotFound("Profile", id.String())
	}
	p.User = r.s.users[p.UserID]
	return &p, nil
}

func (r profileRepo) List(_ context.Context, q profile.ListQuery) ([]*profile.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*profile.Profile, 0)
	for _, p := range r.s.profiles {
		p.User = r.s.users[p.UserID]
		if q.Search != "" && !containsFold(p.User.Email, q.Search) &&
			!containsFold(p.Bio, q.Search) && !containsFold(p.Location, q.Search) {
			continue
		}
		cp := p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.Email < out[j].User.Email })
	return page(out, q.Limit, q.Offset), nil
}

// follows

type followRepo struct{ s *Store }

func (r followRepo) GetOrCreate(_ context.Context, followerID, followingID uuid.UUID) (*follow.Follow, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			cp := f
			return &cp, false, nil
		}
	}
	f := follow.Follow{
		ID:          uuid.New(),
		FollowerID:  followerID,
		FollowingID: followingID,
		Follower:    r.s.users[followerID],
		Following:   r.s.users[followingID],
		CreatedAt:   time.Now().UTC(),
	}
	r.s.follows = append(r.s.follows, f)
	return &f, true, nil
}

func (r followRepo) Delete(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, f := range r.s.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			r.s.follows = append(r.s.follows[:i], r.s.follows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r followRepo) ListByFollower(_ context.Context, followerID uuid.UUID) ([]*follow.Follow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*follow.Follow, 0)
	for i := len(r.s.follows) - 1; i >= 0; i-- {
		if f := r.s.follows[i]; f.FollowerID == followerID {
			out = append(out, &f)
		}
	}
	return out, nil
}

func (r followRepo) ListFollowers(_ context.Context, userID uuid.UUID) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]user.User, 0)
	for _, f := range r.s.follows {
		if f.FollowingID == userID {
			out = append(out, r.s.users[f.FollowerID])
		}
	}
	return out, nil
}

func (r followRepo) ListFollowing(_ context.Context, userID uuid.UUID) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]user.User, 0)
	for _, f := range r.s.follows {
		if f.FollowerID == userID {
			out = append(out, r.s.users[f.FollowingID])
		}
	}
	return out, nil
}

// posts

type postRepo struct{ s *Store }

func (r postRepo) hydrate(p post.Post) *post.Post {
	p.Author = r.s.users[p.AuthorID]
	p.LikesCount = r.s.likes[p.ID]
	return &p
}

func (r postRepo) visible(p post.Post, viewer uuid.NullUUID) bool {
	if !p.IsPublished {
		return false
	}
	if !viewer.Valid {
		return true
	}
	return p.AuthorID == viewer.UUID || r.s.isFollowing(viewer.UUID, p.AuthorID)
}

func (r postRepo) sorted(keep func(post.Post) bool) []*post.Post {
	out := make([]*post.Post, 0)
	for _, p := range r.s.posts {
		if keep(p) {
			out = append(out, r.hydrate(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r postRepo) Save(_ context.Context, p *post.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.posts[p.ID] = *p
	return nil
}

func (r postRepo) Update(_ context.Context, p *post.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[p.ID]; !ok {
		return apperror.NewNotFound("Post", p.ID.String())
	}
	r.s.posts[p.ID] = *p
	return nil
}

func (r postRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return apperror.NewNotFound("Post", id.String())
	}
	delete(r.s.posts, id)
	return nil
}

func (r postRepo) FindByID(_ context.Context, id uuid.UUID) (*post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, apperror.NewNotFound("Post", id.String())
	}
	return r.hydrate(p), nil
}

func (r postRepo) FindInFeed(_ context.Context, id uuid.UUID, viewer uuid.NullUUID) (*post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok || !r.visible(p, viewer) {
		return nil, apperror.NewNotFound("Post", id.String())
	}
	return r.hydrate(p), nil
}

func (r postRepo) ListFeed(_ context.Context, q post.FeedQuery) ([]*post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.sorted(func(p post.Post) bool {
		return r.visible(p, q.Viewer) && (q.Search == "" || containsFold(p.Content, q.Search))
	})
	return page(out, q.Limit, q.Offset), nil
}

func (r postRepo) ListByHashtag(_ context.Context, tag string, limit, offset int) ([]*post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.sorted(func(p post.Post) bool {
		return p.IsPublished && strings.Contains(p.Content, "#"+tag)
	})
	return page(out, limit, offset), nil
}
