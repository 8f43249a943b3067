package models

import "time"

// Category types. Wire values are fixed, clients depend on them.
const (
	TypeIncome  = 1
	TypeExpense = 2
	TypeSaving  = 3
)

// MainCategory is a top-level classification with a type and an optional
// weekly spending ceiling. AssetID links the category to the asset its
// spending draws from.
type MainCategory struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CategoryType int    `gorm:"index;not null" json:"category_type"`
	WeeklyLimit  *int64 `json:"weekly_limit"`
	AssetID      *uint  `gorm:"index" json:"asset_id"`

	Asset *Asset `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
