package models

import "time"

// Statement is one dated ledger entry. Amount is signed: negative = outflow,
// positive = inflow. Expense/saving statements are stored with amount <= 0,
// the API coerces positive input on create/update. Discount and Saving are
// non-negative magnitudes.
type Statement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	CategoryID    uint      `gorm:"index;not null" json:"category_id"`
	AccountCardID *uint     `gorm:"index" json:"account_card_id"`
	AssetID       *uint     `gorm:"index" json:"asset_id"`
	LoanID        *uint     `gorm:"index" json:"loan_id"`
	Amount        int64     `gorm:"default:0" json:"amount"`
	Discount      int64     `gorm:"default:0" json:"discount"`
	Saving        int64     `gorm:"default:0" json:"saving"`
	Date          time.Time `gorm:"index;not null" json:"date"`
	IsFixed       bool      `gorm:"default:false" json:"is_fixed"`
	Description   string    `gorm:"type:text" json:"description"`

	Category    Category     `json:"category"`
	AccountCard *AccountCard `json:"account_card"`
	Asset       *Asset       `json:"-"`
	Loan        *Loan        `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryType resolves the statement's effective type through
// Category -> MainCategory. Both relations must be loaded; returns 0 when
// they are not.
func (s *Statement) CategoryType() int {
	if s.CategoryID == 0 {
		return 0
	}
	return s.Category.MainCategory.CategoryType
}
