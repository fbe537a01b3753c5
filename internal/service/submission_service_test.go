package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shb-modernhill/confirmation-form-api/internal/dto"
	"github.com/shb-modernhill/confirmation-form-api/internal/models"
	appErrors "github.com/shb-modernhill/confirmation-form-api/pkg/errors"
)

type submissionRepoStub struct {
	inserted []models.Submission
	nextID   int64
	err      error
}

func (s *submissionRepoStub) Insert(ctx context.Context, sub *models.Submission) error {
	if s.err != nil {
		return s.err
	}
	s.nextID++
	sub.ID = s.nextID
	sub.CreatedAt = time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
	s.inserted = append(s.inserted, *sub)
	return nil
}

type rendererStub struct {
	out []byte
	err error
}

func (r *rendererStub) Render(template []byte, sub models.Submission, renderedAt time.Time) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.out != nil {
		return r.out, nil
	}
	return []byte("%PDF stub " + sub.StudentName), nil
}

type mailerStub struct {
	sentTo       string
	sentFilename string
	sentDoc      []byte
	calls        int
	err          error
}

func (m *mailerStub) Send(to, subject, body, filename string, attachment []byte) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.sentTo = to
	m.sentFilename = filename
	m.sentDoc = attachment
	return nil
}

func writeTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "konfirmasi.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 template"), 0o644))
	return path
}

func validRequest() dto.SubmissionRequest {
	return dto.SubmissionRequest{
		Grade:       "Grade 9A",
		StudentName: "Jane Doe",
		ParentName:  "John Doe",
		Phone:       "+628123456789",
		Email:       "john@example.com",
	}
}

func newSubmissionService(repo *submissionRepoStub, renderer *rendererStub, mailer *mailerStub, templatePath string) *SubmissionService {
	return NewSubmissionService(repo, renderer, mailer, nil, nil, nil, templatePath)
}

func TestSubmissionServiceSubmitHappyPath(t *testing.T) {
	repo := &submissionRepoStub{}
	mailer := &mailerStub{}
	svc := newSubmissionService(repo, &rendererStub{}, mailer, writeTemplate(t))

	resp, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, int64(1), resp.ID)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "Jane Doe", repo.inserted[0].StudentName)
	assert.Empty(t, repo.inserted[0].Signature)
	assert.Equal(t, "john@example.com", mailer.sentTo)
	assert.Equal(t, "Jane Doe_form.pdf", mailer.sentFilename)
	assert.NotEmpty(t, mailer.sentDoc)
}

func TestSubmissionServiceIDsIncrease(t *testing.T) {
	repo := &submissionRepoStub{}
	svc := newSubmissionService(repo, &rendererStub{}, &mailerStub{}, writeTemplate(t))

	first, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestSubmissionServiceMissingFieldRejected(t *testing.T) {
	cases := map[string]func(*dto.SubmissionRequest){
		"student name": func(r *dto.SubmissionRequest) { r.StudentName = "" },
		"parent name":  func(r *dto.SubmissionRequest) { r.ParentName = "" },
		"phone":        func(r *dto.SubmissionRequest) { r.Phone = "" },
		"email":        func(r *dto.SubmissionRequest) { r.Email = "" },
		"blank name":   func(r *dto.SubmissionRequest) { r.StudentName = "   " },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &submissionRepoStub{}
			mailer := &mailerStub{}
			svc := newSubmissionService(repo, &rendererStub{}, mailer, writeTemplate(t))

			req := validRequest()
			mutate(&req)
			_, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrMissingField))
			assert.Empty(t, repo.inserted)
			assert.Zero(t, mailer.calls)
		})
	}
}

func TestSubmissionServicePhoneValidation(t *testing.T) {
	svc := newSubmissionService(&submissionRepoStub{}, &rendererStub{}, &mailerStub{}, writeTemplate(t))

	req := validRequest()
	req.Phone = "+6281234567890"
	_, err := svc.Submit(context.Background(), req)
	assert.NoError(t, err)

	req.Phone = "abc123"
	_, err = svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidPhone))
}

func TestSubmissionServiceEmailValidation(t *testing.T) {
	svc := newSubmissionService(&submissionRepoStub{}, &rendererStub{}, &mailerStub{}, writeTemplate(t))

	req := validRequest()
	req.Email = "parent@example.com"
	_, err := svc.Submit(context.Background(), req)
	assert.NoError(t, err)

	req.Email = "parent@@example"
	_, err = svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidEmail))
}

func TestSubmissionServiceUnknownGradeRejected(t *testing.T) {
	repo := &submissionRepoStub{}
	svc := newSubmissionService(repo, &rendererStub{}, &mailerStub{}, writeTemplate(t))

	req := validRequest()
	req.Grade = "Grade 13"
	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidGrade))
	assert.Empty(t, repo.inserted)
}

func TestSubmissionServiceTemplateMissingKeepsRow(t *testing.T) {
	repo := &submissionRepoStub{}
	mailer := &mailerStub{}
	svc := newSubmissionService(repo, &rendererStub{}, mailer, filepath.Join(t.TempDir(), "absent.pdf"))

	resp, err := svc.Submit(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTemplateMissing))
	require.NotNil(t, resp)
	assert.Equal(t, int64(1), resp.ID)
	require.Len(t, repo.inserted, 1)
	assert.Zero(t, mailer.calls)
}

func TestSubmissionServiceRenderFailureKeepsRow(t *testing.T) {
	repo := &submissionRepoStub{}
	mailer := &mailerStub{}
	svc := newSubmissionService(repo, &rendererStub{err: errors.New("corrupt signature")}, mailer, writeTemplate(t))

	req := validRequest()
	req.SignatureImage = []byte("not a png")
	resp, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrRender))
	require.NotNil(t, resp)
	require.Len(t, repo.inserted, 1)
	assert.Zero(t, mailer.calls)
}

func TestSubmissionServiceSendFailureKeepsRow(t *testing.T) {
	repo := &submissionRepoStub{}
	mailer := &mailerStub{err: errors.New("relay unreachable")}
	svc := newSubmissionService(repo, &rendererStub{}, mailer, writeTemplate(t))

	resp, err := svc.Submit(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSend))
	require.NotNil(t, resp)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, 1, mailer.calls)
}

func TestSubmissionServiceStoresSignatureBlob(t *testing.T) {
	repo := &submissionRepoStub{}
	svc := newSubmissionService(repo, &rendererStub{}, &mailerStub{}, writeTemplate(t))

	req := validRequest()
	req.SignatureImage = []byte{0x89, 0x50, 0x4e, 0x47}
	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, req.SignatureImage, repo.inserted[0].Signature)
}
