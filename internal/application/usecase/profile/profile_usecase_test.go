package profile

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/internal/testutil"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

type fixture struct {
	store    *testutil.Store
	uploader *testutil.FakeUploader
	uc       *ProfileUseCase
	alice    user.User
	bob      user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	uploader := &testutil.FakeUploader{}
	return &fixture{
		store:    store,
		uploader: uploader,
		uc:       NewProfileUseCase(store.Profiles(), store.Users(), uploader, logger.NewNopLogger()),
		alice:    store.AddUser("alice@example.com", "alice"),
		bob:      store.AddUser("bob@example.com", ""),
	}
}

func viewer(u user.User) uuid.NullUUID {
	return uuid.NullUUID{UUID: u.ID, Valid: true}
}

func strPtr(s string) *string { return &s }

func TestCreateProfile_AtMostOnePerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.ExecuteCreateProfile(ctx, CreateProfileInput{UserID: f.alice.ID, Bio: "hi"})
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, out.Profile.UserID)
	assert.Equal(t, "alice@example.com", out.Profile.User.Email)

	_, err = f.uc.ExecuteCreateProfile(ctx, CreateProfileInput{UserID: f.alice.ID, Bio: "again"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, 1, f.store.ProfileCount())
}

func TestCreateProfile_RejectsLongLocation(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.ExecuteCreateProfile(context.Background(), CreateProfileInput{
		UserID:   f.alice.ID,
		Location: strings.Repeat("x", 101),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Zero(t, f.store.ProfileCount())
}

func TestCreateProfile_StoresPictureUnderSluggedPath(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.ExecuteCreateProfile(context.Background(), CreateProfileInput{
		UserID:  f.bob.ID,
		Picture: &service.UploadFile{Body: bytes.NewBufferString("png"), Filename: "Me.PNG"},
	})
	require.NoError(t, err)

	require.Len(t, f.uploader.Uploads, 1)
	path := f.uploader.Uploads[0].Path
	assert.True(t, strings.HasPrefix(path, "uploads/profiles/bobexamplecom-"), path)
	assert.True(t, strings.HasSuffix(path, ".PNG"), path)
	require.NotNil(t, out.Profile.PictureURL)
	assert.Equal(t, "https://media.test/"+path, *out.Profile.PictureURL)
}

func TestCreateProfile_DiscardsUploadWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.ExecuteCreateProfile(ctx, CreateProfileInput{UserID: f.alice.ID})
	require.NoError(t, err)

	_, err = f.uc.ExecuteCreateProfile(ctx, CreateProfileInput{
		UserID:  f.alice.ID,
		Picture: &service.UploadFile{Body: bytes.NewBufferString("x"), Filename: "a.jpg"},
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	require.Len(t, f.uploader.Deleted, 1)
	assert.Equal(t, f.uploader.Uploads[0].Path, f.uploader.Deleted[0])
}

func TestUpdateProfile_OnlyOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.uc.ExecuteCreateProfile(ctx, CreateProfileInput{UserID: f.alice.ID, Bio: "old"})
	require.NoError(t, err)

	_, err = f.uc.ExecuteUpdateProfile(ctx, UpdateProfileInput{
		UserID: f.bob.ID, ProfileID: created.Profile.ID, Bio: strPtr("hijacked"),
	})
	assert.ErrorIs(t, err, apperror.ErrPermission)

	out, err := f.uc.ExecuteUpdateProfile(ctx, UpdateProfileInput{
		UserID: f.alice.ID, ProfileID: created.Profile.ID, Bio: strPtr("new"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new", out.Profile.Bio)
}

func TestUpdateProfile_PartialKeepsMissingFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	birth := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	created, err := f.uc.ExecuteCreateProfile(ctx, CreateProfileInput{
		UserID: f.alice.ID, Bio: "bio", Location: "Hanoi", BirthDate: &birth,
	})
	require.NoError(t, err)

	out, err := f.uc.ExecuteUpdateProfile(ctx, UpdateProfileInput{
		UserID: f.alice.ID, ProfileID: created.Profile.ID, Partial: true, Location: strPtr("Saigon"),
	})
	require.NoError(t, err)
	assert.Equal(t, "bio", out.Profile.Bio)
	assert.Equal(t, "Saigon", out.Profile.Location)
	assert.Equal(t, &birth, out.Profile.BirthDate)

	out, err = f.uc.ExecuteUpdateProfile(ctx, UpdateProfileInput{
		UserID: f.alice.ID, ProfileID: created.Profile.ID, Bio: strPtr("only bio"),
	})
	require.NoError(t, err)
	assert.Equal(t, "only bio", out.Profile.Bio)
	assert.Empty(t, out.Profile.Location)
	assert.Nil(t, out.Profile.BirthDate)
}

func TestGetAndListProfiles_AnonymousSeesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.uc.ExecuteCreateProfile(ctx, CreateProfileInput{UserID: f.alice.ID, Bio: "gopher"})
	require.NoError(t, err)

	list, err := f.uc.ExecuteListProfiles(ctx, ListProfilesInput{})
	require.NoError(t, err)
	assert.Empty(t, list.Profiles)

	_, err = f.uc.ExecuteGetProfile(ctx, GetProfileInput{ProfileID: created.Profile.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	list, err = f.uc.ExecuteListProfiles(ctx, ListProfilesInput{Viewer: viewer(f.bob)})
	require.NoError(t, err)
	assert.Len(t, list.Profiles, 1)

	got, err := f.uc.ExecuteGetProfile(ctx, GetProfileInput{Viewer: viewer(f.bob), ProfileID: created.Profile.ID})
	require.NoError(t, err)
	assert.Equal(t, "gopher", got.Profile.Bio)
}

func TestListProfiles_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.ExecuteCreateProfile(ctx, CreateProfileInput{UserID: f.alice.ID, Bio: "Loves Go"})
	require.NoError(t, err)
	_, err = f.uc.ExecuteCreateProfile(ctx, CreateProfileInput{UserID: f.bob.ID, Location: "Berlin"})
	require.NoError(t, err)

	for search, wantEmail := range map[string]string{
		"loves":   "alice@example.com",
		"berl":    "bob@example.com",
		"BOB@EXA": "bob@example.com",
	} {
		out, err := f.uc.ExecuteListProfiles(ctx, ListProfilesInput{Viewer: viewer(f.alice), Search: search})
		require.NoError(t, err)
		require.Len(t, out.Profiles, 1, search)
		assert.Equal(t, wantEmail, out.Profiles[0].User.Email)
	}
}

func TestDeleteProfile_OnlyOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.uc.ExecuteCreateProfile(ctx, CreateProfileInput{UserID: f.alice.ID})
	require.NoError(t, err)

	err = f.uc.ExecuteDeleteProfile(ctx, DeleteProfileInput{UserID: f.bob.ID, ProfileID: created.Profile.ID})
	assert.ErrorIs(t, err, apperror.ErrPermission)

	require.NoError(t, f.uc.ExecuteDeleteProfile(ctx, DeleteProfileInput{UserID: f.alice.ID, ProfileID: created.Profile.ID}))
	assert.Zero(t, f.store.ProfileCount())
}
