package dto

import "time"

// AdminLoginRequest carries the static console credential pair.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse returns the issued session token.
type AdminLoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

// ExportFile is a rendered spreadsheet ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
