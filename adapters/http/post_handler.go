package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	postUC "github.com/khoahotran/social-api/internal/application/usecase/post"
)

var postFields = []string{"content", "scheduled_time"}

type PostHandler struct {
	createPostUseCase    *postUC.CreatePostUseCase
	listFeedUseCase      *postUC.ListFeedUseCase
	getPostUseCase       *postUC.GetPostUseCase
	updatePostUseCase    *postUC.UpdatePostUseCase
	deletePostUseCase    *postUC.DeletePostUseCase
	listByHashtagUseCase *postUC.ListByHashtagUseCase
}

func NewPostHandler(
	createUC *postUC.CreatePostUseCase,
	listUC *postUC.ListFeedUseCase,
	getUC *postUC.GetPostUseCase,
	updateUC *postUC.UpdatePostUseCase,
	deleteUC *postUC.DeletePostUseCase,
	byHashtagUC *postUC.ListByHashtagUseCase,
) *PostHandler {
	return &PostHandler{
		createPostUseCase:    createUC,
		listFeedUseCase:      listUC,
		getPostUseCase:       getUC,
		updatePostUseCase:    updateUC,
		deletePostUseCase:    deleteUC,
		listByHashtagUseCase: byHashtagUC,
	}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		_ = c.Error(errCredentialsMissing)
		return
	}

	fields, err := readFields(c, postFields...)
	if err != nil {
		_ = c.Error(err)
		return
	}
	scheduledTime, err := parseOptionalTime("scheduled_time", time.RFC3339, fields["scheduled_time"])
	if err != nil {
		_ = c.Error(err)
		return
	}
	image, file, err := openUpload(c, "image")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	output, err := h.createPostUseCase.Execute(c.Request.Context(), postUC.CreatePostInput{
		AuthorID:      userID,
		Content:       fields["content"].String(),
		ScheduledTime: scheduledTime,
		Image:         image,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	PostsCreated.WithLabelValues(strconv.FormatBool(output.Post.IsPublished)).Inc()
	c.JSON(http.StatusCreated, ToPostDTO(output.Post))
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	page, limit := pageParams(c)
	output, err := h.listFeedUseCase.Execute(c.Request.Context(), postUC.ListFeedInput{
		Viewer: viewerFromGinContext(c),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToPostDTOs(output.Posts))
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := parseIDParam(c, "Post")
	if err != nil {
		_ = c.Error(err)
		return
	}

	output, err := h.getPostUseCase.Execute(c.Request.Context(), postUC.GetPostInput{
		Viewer: viewerFromGinContext(c),
		PostID: id,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToPostDTO(output.Post))
}

// UpdatePost serves both PUT and PATCH.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		_ = c.Error(errCredentialsMissing)
		return
	}
	id, err := parseIDParam(c, "Post")
	if err != nil {
		_ = c.Error(err)
		return
	}

	fields, err := readFields(c, postFields...)
	if err != nil {
		_ = c.Error(err)
		return
	}
	scheduledTime, err := parseOptionalTime("scheduled_time", time.RFC3339, fields["scheduled_time"])
	if err != nil {
		_ = c.Error(err)
		return
	}
	image, file, err := openUpload(c, "image")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	input := postUC.UpdatePostInput{
		PostID:           id,
		AuthorID:         userID,
		Partial:          c.Request.Method == http.MethodPatch,
		ScheduledTime:    scheduledTime,
		ScheduledTimeSet: fields["scheduled_time"].Set,
		Image:            image,
	}
	if f := fields["content"]; f.Set {
		content := f.String()
		input.Content = &content
	}

	output, err := h.updatePostUseCase.Execute(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToPostDTO(output.Post))
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		_ = c.Error(errCredentialsMissing)
		return
	}
	id, err := parseIDParam(c, "Post")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.deletePostUseCase.Execute(c.Request.Context(), postUC.DeletePostInput{
		PostID:   id,
		AuthorID: userID,
	}); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) ListByHashtag(c *gin.Context) {
	page, limit := pageParams(c)
	output, err := h.listByHashtagUseCase.Execute(c.Request.Context(), postUC.ListByHashtagInput{
		Tag:   c.Param("tag"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToPostDTOs(output.Posts))
}
