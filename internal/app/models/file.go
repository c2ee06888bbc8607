package models

import "time"

// File holds metadata for an uploaded attachment. The bytes themselves live
// behind the filestorage.FileStorage interface.
type File struct {
	ID         int64     `json:"id" db:"id" example:"1"`
	FileName   string    `json:"fileName" db:"file_name" example:"transcript.pdf"`
	FilePath   string    `json:"-" db:"file_path"`
	FileURL    string    `json:"fileUrl" db:"file_url"`
	FileSize   int64     `json:"fileSize" db:"file_size" example:"1048576"`
	FileType   string    `json:"fileType" db:"file_type" example:"application/pdf"`
	UploadedBy int64     `json:"uploadedBy" db:"uploaded_by" example:"42"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
