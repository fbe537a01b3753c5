package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shb-modernhill/confirmation-form-api/internal/dto"
	"github.com/shb-modernhill/confirmation-form-api/internal/middleware"
	"github.com/shb-modernhill/confirmation-form-api/internal/models"
	appErrors "github.com/shb-modernhill/confirmation-form-api/pkg/errors"
)

type adminServiceMock struct {
	loginResp  *dto.AdminLoginResponse
	loginErr   error
	loggedOut  []*models.AdminClaims
	listResp   []dto.SubmissionItem
	exportResp *dto.ExportFile
	exportErr  error
	matched    bool
	updateID   int64
	deleteID   int64
}

func (m *adminServiceMock) Login(req dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *adminServiceMock) Logout(claims *models.AdminClaims) {
	m.loggedOut = append(m.loggedOut, claims)
}

func (m *adminServiceMock) List(ctx context.Context) ([]dto.SubmissionItem, error) {
	return m.listResp, nil
}

func (m *adminServiceMock) Export(ctx context.Context, format string) (*dto.ExportFile, error) {
	return m.exportResp, m.exportErr
}

func (m *adminServiceMock) Update(ctx context.Context, id int64, req dto.UpdateSubmissionRequest) (bool, error) {
	m.updateID = id
	return m.matched, nil
}

func (m *adminServiceMock) Delete(ctx context.Context, id int64) (bool, error) {
	m.deleteID = id
	return m.matched, nil
}

func TestAdminHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &adminServiceMock{loginResp: &dto.AdminLoginResponse{AccessToken: "token", ExpiresIn: 3600}}
	h := NewAdminHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.AdminLoginRequest{Username: "admin", Password: "letmein"})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"token"`)
}

func TestAdminHandlerLoginRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(&adminServiceMock{loginErr: appErrors.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.AdminLoginRequest{Username: "admin", Password: "wrong"})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestAdminHandlerLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &adminServiceMock{}
	h := NewAdminHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/logout", nil)
	c.Request = req
	c.Set(middleware.ContextAdminKey, &models.AdminClaims{Username: "admin"})

	h.Logout(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, mock.loggedOut, 1)
	assert.Equal(t, "admin", mock.loggedOut[0].Username)
}

func TestAdminHandlerLogoutWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(&adminServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/logout", nil)
	c.Request = req

	h.Logout(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &adminServiceMock{listResp: []dto.SubmissionItem{
		{ID: 1, Grade: "Grade 9A", StudentName: "Jane Doe", CreatedAt: time.Now()},
		{ID: 2, Grade: "Grade 10", StudentName: "Budi Santoso", HasSignature: true, CreatedAt: time.Now()},
	}}
	h := NewAdminHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/submissions", nil)
	c.Request = req

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
	assert.Contains(t, w.Body.String(), "Budi Santoso")
}

func TestAdminHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &adminServiceMock{exportResp: &dto.ExportFile{
		Filename:    "form_responses.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     []byte{0x50, 0x4b},
	}}
	h := NewAdminHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/submissions/export", nil)
	c.Request = req

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="form_responses.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte{0x50, 0x4b}, w.Body.Bytes())
}

func TestAdminHandlerExportUnsupportedFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(&adminServiceMock{exportErr: appErrors.ErrValidation})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/submissions/export?format=pdf", nil)
	c.Request = req

	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandlerUpdate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &adminServiceMock{matched: true}
	h := NewAdminHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.UpdateSubmissionRequest{
		Grade: "Grade 11", StudentName: "Jane Doe", ParentName: "John Doe",
		Phone: "+628123456789", Email: "john@example.com",
	})
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/admin/submissions/7", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	h.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), mock.updateID)
	assert.Contains(t, w.Body.String(), `"matched":true`)
}

func TestAdminHandlerUpdateMissingIDNotAnError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(&adminServiceMock{matched: false})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.UpdateSubmissionRequest{
		Grade: "Grade 11", StudentName: "x", ParentName: "y", Phone: "1", Email: "a@b.c",
	})
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/admin/submissions/999", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	h.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"matched":false`)
}

func TestAdminHandlerUpdateBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(&adminServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/api/v1/admin/submissions/abc", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Update(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &adminServiceMock{matched: true}
	h := NewAdminHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/admin/submissions/3", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "3"}}

	h.Delete(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), mock.deleteID)
	assert.Contains(t, w.Body.String(), `"matched":true`)
}

func TestAdminHandlerDeleteMissingIDNotAnError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(&adminServiceMock{matched: false})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/admin/submissions/999", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	h.Delete(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"matched":false`)
}
