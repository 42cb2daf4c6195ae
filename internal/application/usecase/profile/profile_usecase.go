package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/domain/media"
	"github.com/khoahotran/social-api/internal/domain/profile"
	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/pkg/apperror"
	"github.com/khoahotran/social-api/pkg/logger"
)

type ProfileUseCase struct {
	profileRepo profile.Repository
	userRepo    user.Repository
	uploader    service.Uploader
	logger      logger.Logger
}

func NewProfileUseCase(pRepo profile.Repository, uRepo user.Repository, uploader service.Uploader, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: pRepo,
		userRepo:    uRepo,
		uploader:    uploader,
		logger:      log,
	}
}

type ListProfilesInput struct {
	Viewer uuid.NullUUID
	Search string
	Page   int
	Limit  int
}

type ListProfilesOutput struct {
	Profiles []*profile.Profile
}

// ExecuteListProfiles shows every profile to authenticated callers and
// nothing to anonymous ones.
func (uc *ProfileUseCase) ExecuteListProfiles(ctx context.Context, input ListProfilesInput) (*ListProfilesOutput, error) {
	if !input.Viewer.Valid {
		return &ListProfilesOutput{Profiles: []*profile.Profile{}}, nil
	}

	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}
	if input.Page <= 0 {
		input.Page = 1
	}

	profiles, err := uc.profileRepo.List(ctx, profile.ListQuery{
		Search: input.Search,
		Limit:  input.Limit,
		Offset: (input.Page - 1) * input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles failed: %w", err)
	}
	return &ListProfilesOutput{Profiles: profiles}, nil
}

type GetProfileInput struct {
	Viewer    uuid.NullUUID
	ProfileID uuid.UUID
}

type GetProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context, input GetProfileInput) (*GetProfileOutput, error) {
	if !input.Viewer.Valid {
		return nil, apperror.NewNotFound("Profile", input.ProfileID.String())
	}
	p, err := uc.profileRepo.FindByID(ctx, input.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &GetProfileOutput{Profile: p}, nil
}

type CreateProfileInput struct {
	UserID    uuid.UUID
	Bio       string
	Location  string
	BirthDate *time.Time
	Picture   *service.UploadFile
}

type CreateProfileOutput struct {
	Profile *profile.Profile
}

// ExecuteCreateProfile always creates the profile for input.UserID, the
// authenticated caller. A second profile for the same user is a conflict.
func (uc *ProfileUseCase) ExecuteCreateProfile(ctx context.Context, input CreateProfileInput) (*CreateProfileOutput, error) {
	owner, err := uc.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("find profile owner failed: %w", err)
	}

	p := &profile.Profile{
		ID:        uuid.New(),
		UserID:    owner.ID,
		User:      *owner,
		Bio:       input.Bio,
		Location:  input.Location,
		BirthDate: input.BirthDate,
	}
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	var uploadedPath string
	if input.Picture != nil {
		uploadedPath, err = uc.storePicture(ctx, p, input.Picture)
		if err != nil {
			return nil, err
		}
	}

	if err := uc.profileRepo.Create(ctx, p); err != nil {
		if uploadedPath != "" {
			uc.discardUpload(ctx, uploadedPath)
		}
		return nil, err
	}

	uc.logger.Info("Profile created", zap.String("profile_id", p.ID.String()), zap.String("user_id", p.UserID.String()))
	return &CreateProfileOutput{Profile: p}, nil
}

type UpdateProfileInput struct {
	UserID    uuid.UUID
	ProfileID uuid.UUID
	// Partial keeps fields that were not supplied (PATCH). Otherwise missing
	// fields are reset (PUT).
	Partial      bool
	Bio          *string
	Location     *string
	BirthDate    *time.Time
	BirthDateSet bool
	Picture      *service.UploadFile
}

type UpdateProfileOutput struct {
	Profile *profile.Profile
}

func (uc *ProfileUseCase) ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput) (*UpdateProfileOutput, error) {
	p, err := uc.profileRepo.FindByID(ctx, input.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("update profile failed: %w", err)
	}
	if !p.IsOwnedBy(input.UserID) {
		uc.logger.Warn("Rejected profile update by non-owner",
			zap.String("profile_id", p.ID.String()), zap.String("user_id", input.UserID.String()))
		return nil, apperror.NewPermissionDenied("You can only update your own profile.")
	}

	switch {
	case input.Bio != nil:
		p.Bio = *input.Bio
	case !input.Partial:
		p.Bio = ""
	}
	switch {
	case input.Location != nil:
		p.Location = *input.Location
	case !input.Partial:
		p.Location = ""
	}
	if input.BirthDateSet || !input.Partial {
		p.BirthDate = input.BirthDate
	}

	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	var uploadedPath string
	if input.Picture != nil {
		uploadedPath, err = uc.storePicture(ctx, p, input.Picture)
		if err != nil {
			return nil, err
		}
	}

	if err := uc.profileRepo.Update(ctx, p); err != nil {
		if uploadedPath != "" {
			uc.discardUpload(ctx, uploadedPath)
		}
		return nil, fmt.Errorf("update profile failed: %w", err)
	}

	return &UpdateProfileOutput{Profile: p}, nil
}

type DeleteProfileInput struct {
	UserID    uuid.UUID
	ProfileID uuid.UUID
}

func (uc *ProfileUseCase) ExecuteDeleteProfile(ctx context.Context, input DeleteProfileInput) error {
	p, err := uc.profileRepo.FindByID(ctx, input.ProfileID)
	if err != nil {
		return fmt.Errorf("delete profile failed: %w", err)
	}
	if !p.IsOwnedBy(input.UserID) {
		return apperror.NewPermissionDenied("You can only delete your own profile.")
	}
	if err := uc.profileRepo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete profile failed: %w", err)
	}
	return nil
}

func (uc *ProfileUseCase) storePicture(ctx context.Context, p *profile.Profile, file *service.UploadFile) (string, error) {
	if !media.IsImage(file.Filename) {
		return "", apperror.NewInvalidInput(media.InvalidImageMessage, nil)
	}
	path := media.UploadPath(media.KindProfile, p.User.Identity(), file.Filename, uuid.New())
	url, err := uc.uploader.Upload(ctx, file.Body, path)
	if err != nil {
		return "", apperror.NewInternal("failed to upload profile picture", err)
	}
	p.PictureURL = &url
	return path, nil
}

func (uc *ProfileUseCase) discardUpload(ctx context.Context, path string) {
	if err := uc.uploader.Delete(ctx, path); err != nil && !errors.Is(err, context.Canceled) {
		uc.logger.Warn("Failed to discard orphaned upload", zap.String("path", path), zap.Error(err))
	}
}
