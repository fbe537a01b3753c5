package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shb-modernhill/confirmation-form-api/internal/dto"
	appErrors "github.com/shb-modernhill/confirmation-form-api/pkg/errors"
	"github.com/shb-modernhill/confirmation-form-api/pkg/response"
)

type submissionService interface {
	Submit(ctx context.Context, req dto.SubmissionRequest) (*dto.SubmissionResponse, error)
}

// SubmissionHandler exposes the public form endpoint.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler builds a new handler.
func NewSubmissionHandler(service submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Submit accepts a confirmation form, stores it and triggers the email
// pipeline. When the store write succeeded but a later step failed, the
// response still carries the stored id next to the error.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}

	res, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		if res != nil {
			appErr := appErrors.FromError(err)
			c.JSON(appErr.Status, response.Envelope{Data: res, Error: appErr})
			return
		}
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}
