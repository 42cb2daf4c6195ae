package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	followUC "github.com/khoahotran/social-api/internal/application/usecase/follow"
	"github.com/khoahotran/social-api/pkg/apperror"
)

type FollowHandler struct {
	followUseCase *followUC.FollowUseCase
}

func NewFollowHandler(uc *followUC.FollowUseCase) *FollowHandler {
	return &FollowHandler{followUseCase: uc}
}

// followInput reads {"user_id": "..."}. An id that is not a UUID cannot
// name an existing user.
func followInput(c *gin.Context, followerID uuid.UUID) (followUC.FollowInput, error) {
	var req FollowRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		return followUC.FollowInput{}, apperror.NewInvalidInput("user_id is required.", err)
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		return followUC.FollowInput{}, apperror.NewAppError(apperror.ErrNotFound, "User not found.", req.UserID, err)
	}
	return followUC.FollowInput{FollowerID: followerID, TargetID: targetID}, nil
}

func (h *FollowHandler) ListFollows(c *gin.Context) {
	userID, _ := GetUserIDFromGinContext(c)
	follows, err := h.followUseCase.ExecuteListFollows(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToFollowDTOs(follows))
}

func (h *FollowHandler) Follow(c *gin.Context) {
	userID, _ := GetUserIDFromGinContext(c)
	input, err := followInput(c, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	output, err := h.followUseCase.ExecuteFollow(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if output.Created {
		FollowActions.WithLabelValues("follow").Inc()
	}
	c.JSON(http.StatusOK, DetailResponse{Detail: output.Detail})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	userID, _ := GetUserIDFromGinContext(c)
	input, err := followInput(c, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	output, err := h.followUseCase.ExecuteUnfollow(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	FollowActions.WithLabelValues("unfollow").Inc()
	c.JSON(http.StatusOK, DetailResponse{Detail: output.Detail})
}

func (h *FollowHandler) ListFollowers(c *gin.Context) {
	userID, _ := GetUserIDFromGinContext(c)
	users, err := h.followUseCase.ExecuteListFollowers(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserDTOs(users))
}

func (h *FollowHandler) ListFollowing(c *gin.Context) {
	userID, _ := GetUserIDFromGinContext(c)
	users, err := h.followUseCase.ExecuteListFollowing(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserDTOs(users))
}
