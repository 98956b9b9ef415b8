package domain

import "time"

// PresignRequest asks for an image upload destination.
type PresignRequest struct {
	ContentType string `json:"contentType" binding:"required,oneof=image/jpeg image/png image/webp"`
}

// PresignResponse carries a short-lived PUT URL and the public URL the
// image will have once uploaded.
type PresignResponse struct {
	UploadURL string    `json:"uploadUrl"`
	FileURL   string    `json:"fileUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}
