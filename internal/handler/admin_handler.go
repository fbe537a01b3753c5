package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shb-modernhill/confirmation-form-api/internal/dto"
	"github.com/shb-modernhill/confirmation-form-api/internal/middleware"
	"github.com/shb-modernhill/confirmation-form-api/internal/models"
	appErrors "github.com/shb-modernhill/confirmation-form-api/pkg/errors"
	"github.com/shb-modernhill/confirmation-form-api/pkg/response"
)

type adminService interface {
	Login(req dto.AdminLoginRequest) (*dto.AdminLoginResponse, error)
	Logout(claims *models.AdminClaims)
	List(ctx context.Context) ([]dto.SubmissionItem, error)
	Export(ctx context.Context, format string) (*dto.ExportFile, error)
	Update(ctx context.Context, id int64, req dto.UpdateSubmissionRequest) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// AdminHandler exposes the console endpoints.
type AdminHandler struct {
	service adminService
}

// NewAdminHandler builds a new handler.
func NewAdminHandler(service adminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Login exchanges the static credential pair for a session token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout revokes the current session token.
func (h *AdminHandler) Logout(c *gin.Context) {
	claims, ok := c.Get(middleware.ContextAdminKey)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.service.Logout(claims.(*models.AdminClaims))
	response.NoContent(c)
}

// List returns every stored submission, oldest first.
func (h *AdminHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// Export streams all submissions as a downloadable spreadsheet. The format
// query selects "xlsx" (default) or "csv".
func (h *AdminHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// Update overwrites the editable fields of one submission.
func (h *AdminHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission id"))
		return
	}

	var req dto.UpdateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	matched, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"id": id}, map[string]interface{}{"matched": matched})
}

// Delete removes one submission. Deleting an absent id succeeds with
// matched=false.
func (h *AdminHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission id"))
		return
	}

	matched, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"id": id}, map[string]interface{}{"matched": matched})
}
