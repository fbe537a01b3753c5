package service

import (
	"context"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shb-modernhill/confirmation-form-api/internal/dto"
	"github.com/shb-modernhill/confirmation-form-api/internal/models"
	"github.com/shb-modernhill/confirmation-form-api/internal/render"
	appErrors "github.com/shb-modernhill/confirmation-form-api/pkg/errors"
)

type submissionRepository interface {
	Insert(ctx context.Context, sub *models.Submission) error
}

type documentRenderer interface {
	Render(template []byte, sub models.Submission, renderedAt time.Time) ([]byte, error)
}

type confirmationMailer interface {
	Send(to, subject, body, filename string, attachment []byte) error
}

const (
	confirmationSubject = "Form Email and WA Number Submission Confirmation"
	confirmationBody    = "Dear Parent/Guardian, here is your confirmation email and Whatsapp number, respectively. Thanks. Please find the attached PDF for your form submission."

	submittedMessage = "Form submitted successfully! Please kindly check your email. Thanks"
)

var (
	phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
)

// SubmissionService runs the submission pipeline: validate, persist, render
// the confirmation document, email it. The store write commits before render
// and send are attempted, so a late failure still leaves a durable record.
type SubmissionService struct {
	repo         submissionRepository
	renderer     documentRenderer
	mailer       confirmationMailer
	validator    *validator.Validate
	metrics      *MetricsService
	logger       *zap.Logger
	templatePath string
	now          func() time.Time
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(repo submissionRepository, renderer documentRenderer, mailer confirmationMailer, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, templatePath string) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		repo:         repo,
		renderer:     renderer,
		mailer:       mailer,
		validator:    validate,
		metrics:      metrics,
		logger:       logger,
		templatePath: templatePath,
		now:          time.Now,
	}
}

// Submit validates and stores the form, then renders and emails the
// confirmation document. When a step after the store write fails, the
// returned response still carries the stored id alongside the error.
func (s *SubmissionService) Submit(ctx context.Context, req dto.SubmissionRequest) (*dto.SubmissionResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	sub := &models.Submission{
		Grade:       req.Grade,
		StudentName: req.StudentName,
		ParentName:  req.ParentName,
		Phone:       req.Phone,
		Email:       req.Email,
		Signature:   req.SignatureImage,
	}
	if err := s.repo.Insert(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}
	s.metrics.SubmissionStored()
	s.logger.Info("submission stored",
		zap.Int64("id", sub.ID),
		zap.String("grade", sub.Grade),
		zap.Bool("has_signature", len(sub.Signature) > 0),
	)

	resp := &dto.SubmissionResponse{ID: sub.ID, CreatedAt: sub.CreatedAt, Message: submittedMessage}

	template, err := os.ReadFile(s.templatePath)
	if err != nil {
		return resp, appErrors.Wrap(err, appErrors.ErrTemplateMissing.Code, appErrors.ErrTemplateMissing.Status, appErrors.ErrTemplateMissing.Message)
	}

	doc, err := s.renderer.Render(template, *sub, s.now())
	if err != nil {
		return resp, appErrors.Wrap(err, appErrors.ErrRender.Code, appErrors.ErrRender.Status, appErrors.ErrRender.Message)
	}
	s.metrics.DocumentRendered()

	filename := render.DocumentFilename(sub.StudentName)
	if err := s.mailer.Send(sub.Email, confirmationSubject, confirmationBody, filename, doc); err != nil {
		s.metrics.EmailFailed()
		return resp, appErrors.Wrap(err, appErrors.ErrSend.Code, appErrors.ErrSend.Status, appErrors.ErrSend.Message)
	}
	s.metrics.EmailSent()

	s.logger.Info("confirmation delivered", zap.Int64("id", sub.ID), zap.String("attachment", filename))
	return resp, nil
}

// validate enforces required-field presence and the phone/email formats.
// Values are passed through unchanged on success; nothing is trimmed or
// normalised.
func (s *SubmissionService) validate(req dto.SubmissionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrMissingField.Code, appErrors.ErrMissingField.Status, appErrors.ErrMissingField.Message)
	}

	for _, value := range []string{req.StudentName, req.ParentName, req.Phone, req.Email} {
		if strings.TrimSpace(value) == "" {
			return appErrors.ErrMissingField
		}
	}
	if !models.ValidGrade(req.Grade) {
		return appErrors.ErrInvalidGrade
	}
	if !phonePattern.MatchString(req.Phone) {
		return appErrors.ErrInvalidPhone
	}
	if !emailPattern.MatchString(req.Email) {
		return appErrors.ErrInvalidEmail
	}
	return nil
}
