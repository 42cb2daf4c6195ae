package follow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/internal/testutil"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

type FollowUseCaseSuite struct {
	suite.Suite
	store     *testutil.Store
	publisher *testutil.FakePublisher
	uc        *FollowUseCase
	alice     user.User
	bob       user.User
	ctx       context.Context
}

func (s *FollowUseCaseSuite) SetupTest() {
	s.store = testutil.NewStore()
	s.publisher = &testutil.FakePublisher{}
	s.uc = NewFollowUseCase(s.store.Follows(), s.store.Users(), s.publisher, logger.NewNopLogger())
	s.alice = s.store.AddUser("alice@example.com", "alice")
	s.bob = s.store.AddUser("bob@example.com", "bob")
	s.ctx = context.Background()
}

func TestFollowUseCaseSuite(t *testing.T) {
	suite.Run(t, new(FollowUseCaseSuite))
}

func (s *FollowUseCaseSuite) TestFollowIsIdempotent() {
	in := FollowInput{FollowerID: s.alice.ID, TargetID: s.bob.ID}

	first, err := s.uc.ExecuteFollow(s.ctx, in)
	s.Require().NoError(err)
	s.Equal("You are now following bob@example.com.", first.Detail)
	s.True(first.Created)

	second, err := s.uc.ExecuteFollow(s.ctx, in)
	s.Require().NoError(err)
	s.Equal(first.Detail, second.Detail)
	s.False(second.Created)

	s.Equal(1, s.store.FollowCount())
	s.Require().Len(s.publisher.FollowEvents, 1)
	s.Equal(service.FollowEventTypeFollowed, s.publisher.FollowEvents[0].EventType)
}

func (s *FollowUseCaseSuite) TestCannotFollowYourself() {
	_, err := s.uc.ExecuteFollow(s.ctx, FollowInput{FollowerID: s.alice.ID, TargetID: s.alice.ID})
	s.ErrorIs(err, apperror.ErrInvalidOperation)
	s.Zero(s.store.FollowCount())
}

func (s *FollowUseCaseSuite) TestSelfFollowCheckedBeforeExistence() {
	ghost := uuid.New()
	_, err := s.uc.ExecuteFollow(s.ctx, FollowInput{FollowerID: ghost, TargetID: ghost})
	s.ErrorIs(err, apperror.ErrInvalidOperation)
}

func (s *FollowUseCaseSuite) TestFollowUnknownUser() {
	_, err := s.uc.ExecuteFollow(s.ctx, FollowInput{FollowerID: s.alice.ID, TargetID: uuid.New()})
	s.Require().ErrorIs(err, apperror.ErrNotFound)

	var appErr *apperror.AppError
	s.Require().ErrorAs(err, &appErr)
	s.Equal("User not found.", appErr.Message)
}

func (s *FollowUseCaseSuite) TestUnfollow() {
	in := FollowInput{FollowerID: s.alice.ID, TargetID: s.bob.ID}
	_, err := s.uc.ExecuteFollow(s.ctx, in)
	s.Require().NoError(err)

	out, err := s.uc.ExecuteUnfollow(s.ctx, in)
	s.Require().NoError(err)
	s.Equal("You have unfollowed bob@example.com.", out.Detail)
	s.Zero(s.store.FollowCount())

	_, err = s.uc.ExecuteUnfollow(s.ctx, in)
	s.Require().ErrorIs(err, apperror.ErrInvalidOperation)
	var appErr *apperror.AppError
	s.Require().ErrorAs(err, &appErr)
	s.Equal("You are not following bob@example.com.", appErr.Message)

	s.Require().Len(s.publisher.FollowEvents, 2)
	s.Equal(service.FollowEventTypeUnfollowed, s.publisher.FollowEvents[1].EventType)
}

func (s *FollowUseCaseSuite) TestUnfollowUnknownUser() {
	_, err := s.uc.ExecuteUnfollow(s.ctx, FollowInput{FollowerID: s.alice.ID, TargetID: uuid.New()})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *FollowUseCaseSuite) TestListings() {
	carol := s.store.AddUser("carol@example.com", "carol")
	_, err := s.uc.ExecuteFollow(s.ctx, FollowInput{FollowerID: s.alice.ID, TargetID: s.bob.ID})
	s.Require().NoError(err)
	_, err = s.uc.ExecuteFollow(s.ctx, FollowInput{FollowerID: s.alice.ID, TargetID: carol.ID})
	s.Require().NoError(err)
	_, err = s.uc.ExecuteFollow(s.ctx, FollowInput{FollowerID: carol.ID, TargetID: s.alice.ID})
	s.Require().NoError(err)

	follows, err := s.uc.ExecuteListFollows(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Require().Len(follows, 2)
	s.Equal(carol.ID, follows[0].FollowingID)

	following, err := s.uc.ExecuteListFollowing(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"bob@example.com", "carol@example.com"}, emails(following))

	followers, err := s.uc.ExecuteListFollowers(s.ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Equal([]string{"carol@example.com"}, emails(followers))

	followers, err = s.uc.ExecuteListFollowers(s.ctx, s.bob.ID)
	s.Require().NoError(err)
	s.Equal([]string{"alice@example.com"}, emails(followers))
}

func emails(users []user.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Email
	}
	return out
}

func TestFollowSucceedsWhenBrokerIsDown(t *testing.T) {
	store := testutil.NewStore()
	publisher := &testutil.FakePublisher{Err: testutil.ErrBrokerDown}
	uc := NewFollowUseCase(store.Follows(), store.Users(), publisher, logger.NewNopLogger())
	alice := store.AddUser("alice@example.com", "")
	bob := store.AddUser("bob@example.com", "")

	out, err := uc.ExecuteFollow(context.Background(), FollowInput{FollowerID: alice.ID, TargetID: bob.ID})
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, 1, store.FollowCount())
}
