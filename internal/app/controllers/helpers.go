package controllers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nitn/phd-admission/internal/app/models/dto"
	"github.com/nitn/phd-admission/internal/middleware"
	"github.com/nitn/phd-admission/internal/pkg/apperrors"
	"github.com/nitn/phd-admission/internal/pkg/filestorage"
)

// currentUserID writes the error response itself when no user is attached
func currentUserID(ctx *gin.Context) (int64, bool) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return userID, true
}

// formFile returns nil when the field is absent so the upload pipeline reports it
func formFile(ctx *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.NewBadRequestError("Invalid multipart form")
	}
	return fh, nil
}

type uploadFunc func(ctx context.Context, userID int64, fh *multipart.FileHeader) (*filestorage.StoredObject, error)

// handleUpload runs an upload for the multipart field and answers with the stored URL
func handleUpload(ctx *gin.Context, field, message string, upload uploadFunc) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	fh, err := formFile(ctx, field)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	obj, err := upload(ctx.Request.Context(), userID, fh)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(message, dto.UploadResponse{URL: obj.URL, PublicID: obj.PublicID}))
}

// formOperations is the create/get/update surface shared by the form services
type formOperations[P any] interface {
	Create(ctx context.Context, userID int64, doc P) (P, error)
	Get(ctx context.Context, userID int64) (P, error)
	Update(ctx context.Context, userID int64, body []byte) (P, error)
}

// formMessages are the success messages of one form
type formMessages struct {
	created string
	fetched string
	updated string
}

// formHandlers implements the handlers every form resource shares
type formHandlers[T any, P interface{ *T }] struct {
	ops      formOperations[P]
	messages formMessages
}

func (h formHandlers[T, P]) create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	doc := P(new(T))
	if err := middleware.DecodeJSON(ctx, doc); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	saved, err := h.ops.Create(ctx.Request.Context(), userID, doc)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(h.messages.created, saved))
}

func (h formHandlers[T, P]) get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	doc, err := h.ops.Get(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(h.messages.fetched, doc))
}

func (h formHandlers[T, P]) update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	body, err := middleware.ReadJSONObject(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	saved, err := h.ops.Update(ctx.Request.Context(), userID, body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(h.messages.updated, saved))
}
