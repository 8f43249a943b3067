package models

import "time"

// Backup tracks a ledger snapshot file on disk.
type Backup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	FilePath  string    `gorm:"size:512;not null" json:"-"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
