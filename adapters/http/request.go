package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/pkg/apperror"
)

// field is one optional scalar of a JSON or multipart body. Set reports
// whether the key was sent at all; Value is nil for an explicit null.
type field struct {
	Set   bool
	Value *string
}

func (f field) String() string {
	if f.Value == nil {
		return ""
	}
	return *f.Value
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readFields collects the named fields from a multipart form or a JSON
// object. Anything else in the body is ignored, which is how read-only
// fields such as is_published are dropped.
func readFields(c *gin.Context, names ...string) (map[string]field, error) {
	fields := make(map[string]field, len(names))

	if isMultipart(c) {
		for _, name := range names {
			if v, ok := c.GetPostForm(name); ok {
				fields[name] = field{Set: true, Value: &v}
			}
		}
		return fields, nil
	}

	body, err := c.GetRawData()
	if err != nil {
		return nil, apperror.NewInvalidInput("could not read request body", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return fields, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperror.NewInvalidInput("JSON parse error.", err)
	}
	for _, name := range names {
		msg, ok := raw[name]
		if !ok {
			continue
		}
		if string(msg) == "null" {
			fields[name] = field{Set: true}
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("%s: Not a valid string.", name), err)
		}
		fields[name] = field{Set: true, Value: &s}
	}
	return fields, nil
}

// openUpload returns nil when the form carries no file under name. The
// caller closes the returned file.
func openUpload(c *gin.Context, name string) (*service.UploadFile, multipart.File, error) {
	if !isMultipart(c) {
		return nil, nil, nil
	}
	header, err := c.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, apperror.NewInvalidInput(fmt.Sprintf("%s: The submitted data was not a file.", name), err)
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, apperror.NewInternal("file cannot open", err)
	}
	return &service.UploadFile{Body: file, Filename: header.Filename}, file, nil
}

func parseOptionalTime(name, layout string, f field) (*time.Time, error) {
	if f.Value == nil || *f.Value == "" {
		return nil, nil
	}
	t, err := time.Parse(layout, *f.Value)
	if err != nil {
		return nil, apperror.NewInvalidInput(fmt.Sprintf("%s: Invalid format.", name), err)
	}
	return &t, nil
}

func parseIDParam(c *gin.Context, resource string) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.NewNotFound(resource, raw)
	}
	return id, nil
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
