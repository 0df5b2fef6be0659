package models

import "gorm.io/gorm"

// Attachment represents an uploaded file or image backing a message
type Attachment struct {
	gorm.Model
	TeamID     uint `gorm:"not null;index" json:"team_id"`
	UploaderID uint `gorm:"not null;index" json:"uploader_id"`

	StorageKey  string `gorm:"not null;uniqueIndex" json:"-"`
	URL         string `gorm:"not null" json:"url"`
	FileName    string `gorm:"not null" json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`

	// Relations
	Team     Team `json:"-"`
	Uploader User `json:"-"`
}
