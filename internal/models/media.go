package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaFile описывает загруженный файл: результат работы, прикладываемый к сдаче.
type MediaFile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	SizeBytes int64     `db:"size_bytes" json:"size_bytes"`
	Path      string    `db:"path" json:"path"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
