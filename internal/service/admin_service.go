package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shb-modernhill/confirmation-form-api/internal/dto"
	"github.com/shb-modernhill/confirmation-form-api/internal/models"
	appErrors "github.com/shb-modernhill/confirmation-form-api/pkg/errors"
	"github.com/shb-modernhill/confirmation-form-api/pkg/export"
)

type adminSubmissionRepository interface {
	ListAll(ctx context.Context) ([]models.Submission, error)
	Update(ctx context.Context, id int64, fields models.SubmissionUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// Spreadsheet layout for the admin export; the signature blob is excluded.
var exportHeaders = []string{"ID", "Grade", "Student Name", "Parent Name", "Phone", "Email", "Timestamp"}

const (
	exportBaseName   = "form_responses"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType   = "text/csv"
	exportTimeLayout = "2006-01-02 15:04:05"
)

// AdminConfig holds the static console credential pair and token settings.
type AdminConfig struct {
	Username    string
	Password    string
	TokenSecret string
	TokenExpiry time.Duration
}

// AdminService implements the console: a static-credential login that issues
// a session token, listing, spreadsheet export, and trusted edit/delete of
// stored submissions. Logout revokes the token id, so the session flag lives
// only in process memory.
type AdminService struct {
	repo   adminSubmissionRepository
	xlsx   datasetRenderer
	csv    datasetRenderer
	logger *zap.Logger
	cfg    AdminConfig
	loc    *time.Location

	mu      sync.Mutex
	revoked map[string]time.Time

	now func() time.Time
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo adminSubmissionRepository, cfg AdminConfig, loc *time.Location, logger *zap.Logger, xlsx, csv datasetRenderer) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if cfg.TokenExpiry <= 0 {
		cfg.TokenExpiry = 12 * time.Hour
	}
	return &AdminService{
		repo:    repo,
		xlsx:    xlsx,
		csv:     csv,
		logger:  logger,
		cfg:     cfg,
		loc:     loc,
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Login checks the static credential pair and issues a session token. A
// failed check leaves no session behind and is freely retryable.
func (s *AdminService) Login(req dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "admin console is not configured")
	}
	if req.Username != s.cfg.Username || req.Password != s.cfg.Password {
		s.logger.Warn("admin login rejected", zap.String("username", req.Username))
		return nil, appErrors.ErrInvalidCredentials
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.cfg.TokenExpiry)
	claims := &models.AdminClaims{
		Username: req.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   req.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.TokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session token")
	}

	s.logger.Info("admin logged in", zap.String("username", req.Username))
	return &dto.AdminLoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.cfg.TokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
	}, nil
}

// Logout revokes the session token until its natural expiry.
func (s *AdminService) Logout(claims *models.AdminClaims) {
	if claims == nil || claims.ID == "" {
		return
	}
	expiry := s.now().Add(s.cfg.TokenExpiry)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = expiry

	s.logger.Info("admin logged out", zap.String("username", claims.Username))
}

// ValidateToken parses a session token and rejects revoked or forged ones.
func (s *AdminService) ValidateToken(tokenString string) (*models.AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session claims")
	}

	s.mu.Lock()
	_, isRevoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if isRevoked {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session has been logged out")
	}

	return claims, nil
}

// List returns every stored submission, oldest first.
func (s *AdminService) List(ctx context.Context) ([]dto.SubmissionItem, error) {
	subs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	items := make([]dto.SubmissionItem, 0, len(subs))
	for _, sub := range subs {
		items = append(items, dto.SubmissionItem{
			ID:           sub.ID,
			Grade:        sub.Grade,
			StudentName:  sub.StudentName,
			ParentName:   sub.ParentName,
			Phone:        sub.Phone,
			Email:        sub.Email,
			HasSignature: len(sub.Signature) > 0,
			CreatedAt:    sub.CreatedAt,
		})
	}
	return items, nil
}

// Export renders all submissions into a downloadable spreadsheet. Format is
// "xlsx" (default) or "csv".
func (s *AdminService) Export(ctx context.Context, format string) (*dto.ExportFile, error) {
	subs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions for export")
	}

	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", sub.ID),
			sub.Grade,
			sub.StudentName,
			sub.ParentName,
			sub.Phone,
			sub.Email,
			sub.CreatedAt.In(s.loc).Format(exportTimeLayout),
		})
	}
	dataset := export.Dataset{Headers: exportHeaders, Rows: rows}

	switch format {
	case "", "xlsx":
		payload, err := s.xlsx.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx export")
		}
		return &dto.ExportFile{Filename: exportBaseName + ".xlsx", ContentType: xlsxContentType, Content: payload}, nil
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &dto.ExportFile{Filename: exportBaseName + ".csv", ContentType: csvContentType, Content: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// Update overwrites the five editable fields of a submission. Administrator
// edits are trusted: no format re-validation is applied, and id/created_at
// stay untouched. A missing id is reported as matched=false, not an error.
func (s *AdminService) Update(ctx context.Context, id int64, req dto.UpdateSubmissionRequest) (bool, error) {
	matched, err := s.repo.Update(ctx, id, models.SubmissionUpdate{
		Grade:       req.Grade,
		StudentName: req.StudentName,
		ParentName:  req.ParentName,
		Phone:       req.Phone,
		Email:       req.Email,
	})
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update submission")
	}
	if matched {
		s.logger.Info("submission updated", zap.Int64("id", id))
	}
	return matched, nil
}

// Delete removes a submission. Deleting an absent id is a no-op.
func (s *AdminService) Delete(ctx context.Context, id int64) (bool, error) {
	matched, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submission")
	}
	if matched {
		s.logger.Info("submission deleted", zap.Int64("id", id))
	}
	return matched, nil
}
