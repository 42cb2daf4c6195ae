package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/social-api/internal/application/usecase/profile"
	"github.com/khoahotran/social-api/pkg/logger"
)

var profileFields = []string{"bio", "location", "birth_date"}

type ProfileHandler struct {
	profileUseCase *profileUC.ProfileUseCase
	logger         logger.Logger
}

func NewProfileHandler(uc *profileUC.ProfileUseCase, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{profileUseCase: uc, logger: log}
}

func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	page, limit := pageParams(c)
	output, err := h.profileUseCase.ExecuteListProfiles(c.Request.Context(), profileUC.ListProfilesInput{
		Viewer: viewerFromGinContext(c),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTOs(output.Profiles))
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, err := parseIDParam(c, "Profile")
	if err != nil {
		_ = c.Error(err)
		return
	}

	output, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context(), profileUC.GetProfileInput{
		Viewer:    viewerFromGinContext(c),
		ProfileID: id,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(output.Profile))
}

func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		_ = c.Error(errCredentialsMissing)
		return
	}

	fields, err := readFields(c, profileFields...)
	if err != nil {
		_ = c.Error(err)
		return
	}
	birthDate, err := parseOptionalTime("birth_date", birthDateLayout, fields["birth_date"])
	if err != nil {
		_ = c.Error(err)
		return
	}
	picture, file, err := openUpload(c, "profile_picture")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	output, err := h.profileUseCase.ExecuteCreateProfile(c.Request.Context(), profileUC.CreateProfileInput{
		UserID:    userID,
		Bio:       fields["bio"].String(),
		Location:  fields["location"].String(),
		BirthDate: birthDate,
		Picture:   picture,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	ProfilesCreated.Inc()
	c.JSON(http.StatusCreated, ToProfileDTO(output.Profile))
}

// UpdateProfile serves both PUT and PATCH.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		_ = c.Error(errCredentialsMissing)
		return
	}
	id, err := parseIDParam(c, "Profile")
	if err != nil {
		_ = c.Error(err)
		return
	}

	fields, err := readFields(c, profileFields...)
	if err != nil {
		_ = c.Error(err)
		return
	}
	birthDate, err := parseOptionalTime("birth_date", birthDateLayout, fields["birth_date"])
	if err != nil {
		_ = c.Error(err)
		return
	}
	picture, file, err := openUpload(c, "profile_picture")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	input := profileUC.UpdateProfileInput{
		UserID:       userID,
		ProfileID:    id,
		Partial:      c.Request.Method == http.MethodPatch,
		BirthDate:    birthDate,
		BirthDateSet: fields["birth_date"].Set,
		Picture:      picture,
	}
	if f := fields["bio"]; f.Set {
		bio := f.String()
		input.Bio = &bio
	}
	if f := fields["location"]; f.Set {
		location := f.String()
		input.Location = &location
	}

	output, err := h.profileUseCase.ExecuteUpdateProfile(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(output.Profile))
}

func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		_ = c.Error(errCredentialsMissing)
		return
	}
	id, err := parseIDParam(c, "Profile")
	if err != nil {
		_ = c.Error(err)
		return
	}

	err = h.profileUseCase.ExecuteDeleteProfile(c.Request.Context(), profileUC.DeleteProfileInput{
		UserID:    userID,
		ProfileID: id,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
