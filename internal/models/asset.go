package models

import "time"

// Asset is a balance-bearing store of value (cash, bank account).
// Amount is mutated by the balance engine whenever a statement referencing
// this asset is created, updated or deleted.
type Asset struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null" json:"name"`
	AssetType   int       `json:"asset_type"`
	Amount      int64     `gorm:"default:0" json:"amount"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssetHistory is an append-only net worth snapshot:
// sum(Asset.amount) - sum(Loan.amount) at Timestamp.
// Rows are never updated or deleted by normal flow.
type AssetHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Amount    int64     `gorm:"default:0" json:"amount"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}
