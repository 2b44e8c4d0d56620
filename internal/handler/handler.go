// Package handler adapts HTTP requests to the services. Every response is a
// JSON object with a success flag; failures are attached with c.Error and
// rendered by middleware.Errors.
package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"Social_Hub/internal/errs"
	"Social_Hub/internal/middleware"
	"Social_Hub/internal/model"
	"Social_Hub/internal/service"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(status, body)
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, errs.Invalid("invalid params"))
		return false
	}
	return true
}

// sessionUser is only called behind the auth middleware.
func sessionUser(c *gin.Context) (*model.User, bool) {
	u, found := middleware.CurrentUser(c)
	if !found {
		fail(c, errs.Unauthorized("unauthorized"))
	}
	return u, found
}

// formUpload opens an optional multipart file. The caller closes the
// returned file when it is non-nil.
func formUpload(c *gin.Context, field string) (*service.Upload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errs.Invalid("invalid multipart form")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, errs.Internal(err)
	}
	return &service.Upload{Name: fh.Filename, Size: fh.Size, Body: f}, f, nil
}

func userJSON(u *model.User) gin.H {
	return gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "image": u.Image}
}
