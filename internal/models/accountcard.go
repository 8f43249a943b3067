package models

import "time"

// AccountCard is a payment instrument. Informational only: statement posting
// never mutates its amount.
type AccountCard struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null" json:"name"`
	CardType    int       `json:"card_type"`
	Amount      int64     `gorm:"default:0" json:"amount"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
