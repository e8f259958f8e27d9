package transport

import "github.com/google/uuid"

// UploadResponse is returned by the upload endpoint.
type UploadResponse struct {
	URL           string    `json:"url"`
	ID            string    `json:"id"`
	DocumentID    uuid.UUID `json:"documentId"`
	StorageFileID string    `json:"storageFileId"`
}

type DeleteRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AudioFileResponse backs the share page.
type AudioFileResponse struct {
	ID            string `json:"id"`
	FileName      string `json:"fileName"`
	OriginalName  string `json:"originalName"`
	FileSize      int64  `json:"fileSize"`
	MimeType      string `json:"mimeType"`
	DownloadCount int    `json:"downloadCount"`
	CreatedAt     string `json:"createdAt"`
	AudioURL      string `json:"audioUrl"`
	ShareURL      string `json:"shareUrl"`
}

type DownloadResponse struct {
	DownloadCount int    `json:"downloadCount"`
	DownloadURL   string `json:"downloadUrl"`
	FileName      string `json:"fileName"`
	ExpiresAt     string `json:"expiresAt"`
}

type FileStatsResponse struct {
	TotalFiles     int64  `json:"totalFiles"`
	TotalSize      int64  `json:"totalSize"`
	TotalSizeMB    string `json:"totalSizeMB"`
	OldFiles       int64  `json:"oldFiles"`
	OldFilesSize   int64  `json:"oldFilesSize"`
	OldFilesSizeMB string `json:"oldFilesSizeMB"`
	MaxAgeHours    int    `json:"maxAgeHours"`
}

type CleanupResponse struct {
	Success          bool   `json:"success"`
	DeletedCount     int64  `json:"deletedCount"`
	TotalSizeDeleted int64  `json:"totalSizeDeleted"`
	Message          string `json:"message"`
}

// AudioIDParam binds the :id path segment.
type AudioIDParam struct {
	ID string `uri:"id" validate:"required,shareid"`
}
