package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shb-modernhill/confirmation-form-api/internal/models"
)

const schemaDDL = `CREATE TABLE IF NOT EXISTS responses (
    id BIGSERIAL PRIMARY KEY,
    grade TEXT NOT NULL,
    student_name TEXT NOT NULL,
    parent_name TEXT NOT NULL,
    phone TEXT NOT NULL,
    email TEXT NOT NULL,
    signature BYTEA,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// SubmissionRepository manages persistence for confirmation form responses.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// EnsureSchema creates the responses table when it does not exist yet.
func (r *SubmissionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure responses table: %w", err)
	}
	return nil
}

// Insert appends a new response. The store assigns id and created_at; both
// are written back into the passed submission.
func (r *SubmissionRepository) Insert(ctx context.Context, sub *models.Submission) error {
	const query = `INSERT INTO responses (grade, student_name, parent_name, phone, email, signature)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, sub.Grade, sub.StudentName, sub.ParentName, sub.Phone, sub.Email, sub.Signature)
	if err := row.Scan(&sub.ID, &sub.CreatedAt); err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// ListAll returns every response, oldest first by id.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	const query = `SELECT id, grade, student_name, parent_name, phone, email, signature, created_at
        FROM responses ORDER BY id ASC`
	var subs []models.Submission
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return subs, nil
}

// FindByID fetches a single response.
func (r *SubmissionRepository) FindByID(ctx context.Context, id int64) (*models.Submission, error) {
	const query = `SELECT id, grade, student_name, parent_name, phone, email, signature, created_at
        FROM responses WHERE id = $1`
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Update overwrites the editable fields of a response. It reports whether a
// row matched; a missing id is not an error.
func (r *SubmissionRepository) Update(ctx context.Context, id int64, fields models.SubmissionUpdate) (bool, error) {
	const query = `UPDATE responses SET grade = $2, student_name = $3, parent_name = $4, phone = $5, email = $6 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, fields.Grade, fields.StudentName, fields.ParentName, fields.Phone, fields.Email)
	if err != nil {
		return false, fmt.Errorf("update response: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update response: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a response. It reports whether a row matched; deleting a
// missing id is a no-op.
func (r *SubmissionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM responses WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete response: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete response: %w", err)
	}
	return affected > 0, nil
}
