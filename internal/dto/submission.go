package dto

import "time"

// SubmissionRequest is the public form payload. The signature image arrives
// base64 encoded from the drawing surface and may be absent when no strokes
// were drawn.
type SubmissionRequest struct {
	Grade          string `json:"grade" validate:"required"`
	StudentName    string `json:"student_name" validate:"required"`
	ParentName     string `json:"parent_name" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	Email          string `json:"email" validate:"required"`
	SignatureImage []byte `json:"signature_image,omitempty"`
}

// SubmissionResponse confirms a stored submission.
type SubmissionResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Message   string    `json:"message"`
}

// SubmissionItem is the admin listing row. The signature blob is excluded;
// only its presence is reported.
type SubmissionItem struct {
	ID           int64     `json:"id"`
	Grade        string    `json:"grade"`
	StudentName  string    `json:"student_name"`
	ParentName   string    `json:"parent_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	HasSignature bool      `json:"has_signature"`
	CreatedAt    time.Time `json:"created_at"`
}

// UpdateSubmissionRequest overwrites the five editable fields. Administrator
// edits are trusted and are applied without format re-validation.
type UpdateSubmissionRequest struct {
	Grade       string `json:"grade" binding:"required"`
	StudentName string `json:"student_name" binding:"required"`
	ParentName  string `json:"parent_name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"required"`
}
