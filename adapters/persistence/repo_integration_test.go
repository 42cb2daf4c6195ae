package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/khoahotran/social-api/internal/domain/follow"
	"github.com/khoahotran/social-api/internal/domain/post"
	"github.com/khoahotran/social-api/internal/domain/profile"
	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

type RepoIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	testLogger  logger.Logger

	userRepo    user.Repository
	profileRepo profile.Repository
	followRepo  follow.Repository
	postRepo    post.Repository

	alice user.User
	bob   user.User
	carol user.User
}

func TestRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RepoIntegrationTestSuite))
}

func (s *RepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.testLogger = logger.NewNopLogger()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	if err := RunMigrations("file://../../migrations", dsn, s.testLogger); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.userRepo = NewPostgresUserRepo(pool)
	s.profileRepo = NewPostgresProfileRepo(pool, s.testLogger)
	s.followRepo = NewPostgresFollowRepo(pool)
	s.postRepo = NewPostgresPostRepo(pool)
}

func (s *RepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func (s *RepoIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.dbPool.Exec(ctx, `TRUNCATE likes, posts, follows, profiles, users CASCADE`)
	s.Require().NoError(err)

	s.alice = s.seedUser("alice@example.com", "alice")
	s.bob = s.seedUser("bob@example.com", "bob")
	s.carol = s.seedUser("carol@example.com", "")
}

func (s *RepoIntegrationTestSuite) seedUser(email, username string) user.User {
	u := user.User{ID: uuid.New(), Email: email, Username: username}
	_, err := s.dbPool.Exec(context.Background(),
		`INSERT INTO users (id, email, username) VALUES ($1, $2, $3)`, u.ID, u.Email, u.Username)
	s.Require().NoError(err)
	return u
}

func (s *RepoIntegrationTestSuite) savePost(author user.User, content string, createdAt time.Time, published bool) *post.Post {
	p := &post.Post{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Content:     content,
		CreatedAt:   createdAt,
		IsPublished: published,
	}
	s.Require().NoError(s.postRepo.Save(context.Background(), p))
	return p
}

func viewerOf(u user.User) uuid.NullUUID {
	return uuid.NullUUID{UUID: u.ID, Valid: true}
}

func postContents(posts []*post.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Content
	}
	return out
}

func (s *RepoIntegrationTestSuite) TestUserFindByID() {
	ctx := context.Background()
	got, err := s.userRepo.FindByID(ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal(s.alice, *got)

	_, err = s.userRepo.FindByID(ctx, uuid.New())
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *RepoIntegrationTestSuite) TestProfileLifecycle() {
	ctx := context.Background()
	birth := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	p := &profile.Profile{ID: uuid.New(), UserID: s.alice.ID, Bio: "Gopher", Location: "Hanoi", BirthDate: &birth}
	s.Require().NoError(s.profileRepo.Create(ctx, p))

	dup := &profile.Profile{ID: uuid.New(), UserID: s.alice.ID}
	s.ErrorIs(s.profileRepo.Create(ctx, dup), apperror.ErrConflict)

	got, err := s.profileRepo.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("alice@example.com", got.User.Email)
	s.Require().NotNil(got.BirthDate)
	s.True(birth.Equal(got.BirthDate.UTC()))

	url := "https://media.test/uploads/profiles/alice-x.png"
	got.PictureURL = &url
	got.Location = ""
	s.Require().NoError(s.profileRepo.Update(ctx, got))

	got, err = s.profileRepo.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(&url, got.PictureURL)
	s.Empty(got.Location)

	s.Require().NoError(s.profileRepo.Delete(ctx, p.ID))
	_, err = s.profileRepo.FindByID(ctx, p.ID)
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *RepoIntegrationTestSuite) TestProfileConflictIsLogged() {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	repo := NewPostgresProfileRepo(s.dbPool, logger.FromZap(zap.New(core)))

	s.Require().NoError(repo.Create(ctx, &profile.Profile{ID: uuid.New(), UserID: s.bob.ID}))
	err := repo.Create(ctx, &profile.Profile{ID: uuid.New(), UserID: s.bob.ID})
	s.ErrorIs(err, apperror.ErrConflict)

	entries := logs.FilterField(zap.String("user_id", s.bob.ID.String())).All()
	s.Require().Len(entries, 1)
	s.Equal(zapcore.WarnLevel, entries[0].Level)
}

func (s *RepoIntegrationTestSuite) TestProfileListSearch() {
	ctx := context.Background()
	s.Require().NoError(s.profileRepo.Create(ctx, &profile.Profile{ID: uuid.New(), UserID: s.alice.ID, Bio: "100% Go"}))
	s.Require().NoError(s.profileRepo.Create(ctx, &profile.Profile{ID: uuid.New(), UserID: s.bob.ID, Location: "Berlin"}))

	all, err := s.profileRepo.List(ctx, profile.ListQuery{Limit: 10})
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal("alice@example.com", all[0].User.Email)

	for search, want := range map[string]string{
		"BERLIN":  "bob@example.com",
		"100%":    "alice@example.com",
		"alice@e": "alice@example.com",
	} {
		got, err := s.profileRepo.List(ctx, profile.ListQuery{Search: search, Limit: 10})
		s.Require().NoError(err)
		s.Require().Len(got, 1, search)
		s.Equal(want, got[0].User.Email)
	}

	none, err := s.profileRepo.List(ctx, profile.ListQuery{Search: "_%", Limit: 10})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *RepoIntegrationTestSuite) TestFollowGetOrCreateAndDelete() {
	ctx := context.Background()

	f, created, err := s.followRepo.GetOrCreate(ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.True(created)
	s.Equal("bob@example.com", f.Following.Email)

	again, created, err := s.followRepo.GetOrCreate(ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.False(created)
	s.Equal(f.ID, again.ID)

	var count int
	s.Require().NoError(s.dbPool.QueryRow(ctx, `SELECT COUNT(*) FROM follows`).Scan(&count))
	s.Equal(1, count)

	removed, err := s.followRepo.Delete(ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.followRepo.Delete(ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.False(removed)
}

// A BEFORE INSERT trigger removes the existing edge and skips the insert,
// which is what an unfollow landing between the insert and the re-select
// looks like.
func (s *RepoIntegrationTestSuite) TestFollowGetOrCreateSurvivesConcurrentUnfollow() {
	ctx := context.Background()
	_, _, err := s.followRepo.GetOrCreate(ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)

	_, err = s.dbPool.Exec(ctx, `
		CREATE FUNCTION drop_follow_before_insert() RETURNS trigger AS $$
		BEGIN
			DELETE FROM follows WHERE follower_id = NEW.follower_id AND following_id = NEW.following_id;
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql
	`)
	s.Require().NoError(err)
	_, err = s.dbPool.Exec(ctx, `
		CREATE TRIGGER drop_follow_before_insert BEFORE INSERT ON follows
			FOR EACH ROW EXECUTE FUNCTION drop_follow_before_insert()
	`)
	s.Require().NoError(err)
	defer func() {
		_, err := s.dbPool.Exec(ctx, `DROP TRIGGER drop_follow_before_insert ON follows`)
		s.Require().NoError(err)
		_, err = s.dbPool.Exec(ctx, `DROP FUNCTION drop_follow_before_insert()`)
		s.Require().NoError(err)
	}()

	f, created, err := s.followRepo.GetOrCreate(ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	s.False(created)
	s.Equal(s.alice.ID, f.FollowerID)
	s.Equal(s.bob.ID, f.FollowingID)
}

func (s *RepoIntegrationTestSuite) TestFollowListings() {
	ctx := context.Background()
	_, _, err := s.followRepo.GetOrCreate(ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)
	_, _, err = s.followRepo.GetOrCreate(ctx, s.carol.ID, s.bob.ID)
	s.Require().NoError(err)

	followers, err := s.followRepo.ListFollowers(ctx, s.bob.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]uuid.UUID{s.alice.ID, s.carol.ID}, []uuid.UUID{followers[0].ID, followers[1].ID})

	following, err := s.followRepo.ListFollowing(ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Require().Len(following, 1)
	s.Equal(s.bob.ID, following[0].ID)

	none, err := s.followRepo.ListFollowing(ctx, s.bob.ID)
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)

	edges, err := s.followRepo.ListByFollower(ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Require().Len(edges, 1)
	s.Equal("alice@example.com", edges[0].Follower.Email)
}

func (s *RepoIntegrationTestSuite) TestFeedVisibilityAndOrder() {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.savePost(s.alice, "alice old", base, true)
	s.savePost(s.bob, "bob new", base.Add(2*time.Hour), true)
	s.savePost(s.carol, "carol", base.Add(time.Hour), true)
	hidden := s.savePost(s.bob, "bob scheduled", base.Add(3*time.Hour), false)
	_, _, err := s.followRepo.GetOrCreate(ctx, s.alice.ID, s.bob.ID)
	s.Require().NoError(err)

	anon, err := s.postRepo.ListFeed(ctx, post.FeedQuery{Limit: 10})
	s.Require().NoError(err)
	s.Equal([]string{"bob new", "carol", "alice old"}, postContents(anon))

	mine, err := s.postRepo.ListFeed(ctx, post.FeedQuery{Viewer: viewerOf(s.alice), Limit: 10})
	s.Require().NoError(err)
	s.Equal([]string{"bob new", "alice old"}, postContents(mine))

	_, err = s.postRepo.FindInFeed(ctx, hidden.ID, viewerOf(s.bob))
	s.ErrorIs(err, apperror.ErrNotFound)

	found, err := s.postRepo.FindByID(ctx, hidden.ID)
	s.Require().NoError(err)
	s.False(found.IsPublished)

	searched, err := s.postRepo.ListFeed(ctx, post.FeedQuery{Search: "BOB", Limit: 10})
	s.Require().NoError(err)
	s.Equal([]string{"bob new"}, postContents(searched))

	paged, err := s.postRepo.ListFeed(ctx, post.FeedQuery{Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Equal([]string{"carol"}, postContents(paged))
}

func (s *RepoIntegrationTestSuite) TestListByHashtag() {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.savePost(s.alice, "I love #rustlang", base, true)
	s.savePost(s.bob, "#Rust is loud", base.Add(time.Minute), true)
	s.savePost(s.carol, "#rust_ish", base.Add(2*time.Minute), true)
	s.savePost(s.carol, "#rustXish", base.Add(3*time.Minute), true)

	got, err := s.postRepo.ListByHashtag(ctx, "rust", 10, 0)
	s.Require().NoError(err)
	s.Equal([]string{"#rustXish", "#rust_ish", "I love #rustlang"}, postContents(got))

	underscore, err := s.postRepo.ListByHashtag(ctx, "rust_", 10, 0)
	s.Require().NoError(err)
	s.Equal([]string{"#rust_ish"}, postContents(underscore))
}

func (s *RepoIntegrationTestSuite) TestLikesCountAndUpdate() {
	ctx := context.Background()
	p := s.savePost(s.alice, "like me", time.Now().UTC(), true)
	for _, u := range []user.User{s.bob, s.carol} {
		_, err := s.dbPool.Exec(ctx,
			`INSERT INTO likes (id, user_id, post_id) VALUES ($1, $2, $3)`, uuid.New(), u.ID, p.ID)
		s.Require().NoError(err)
	}

	got, err := s.postRepo.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(2, got.LikesCount)

	got.Content = "edited"
	got.IsPublished = false
	s.Require().NoError(s.postRepo.Update(ctx, got))

	got, err = s.postRepo.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("edited", got.Content)
	s.True(got.IsPublished)

	s.Require().NoError(s.postRepo.Delete(ctx, p.ID))
	s.ErrorIs(s.postRepo.Delete(ctx, p.ID), apperror.ErrNotFound)
}
