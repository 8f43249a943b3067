package models

import "time"

// AuditLog records mutating API calls for later inspection.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Path      string    `gorm:"size:255" json:"path"`
	Method    string    `gorm:"size:16" json:"method"`
	Action    string    `gorm:"size:2048" json:"action"` // method + path + body excerpt
	IP        string    `gorm:"size:64" json:"ip"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
