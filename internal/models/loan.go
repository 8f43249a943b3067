package models

import "time"

// Loan is a balance-bearing liability with scheduled payments.
// Amount is the outstanding balance; it decreases by PaymentAmount on each
// scheduled payment, or by a statement's saving routed to principal.
type Loan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:50;not null" json:"name"`
	Principal    int64     `gorm:"default:0" json:"principal"`
	InterestRate float64   `gorm:"default:0" json:"interest_rate"`
	TotalMonths  int       `gorm:"default:0" json:"total_months"`
	CurrentMonth int       `gorm:"default:0" json:"current_month"`
	PaymentAmount int64    `gorm:"default:0" json:"payment_amount"` // scheduled monthly payment
	Amount       int64     `gorm:"default:0" json:"amount"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
