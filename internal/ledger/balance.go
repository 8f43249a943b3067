package ledger

import (
	"fmt"
	"time"

	"github.com/onaries/account-book/internal/models"

	"gorm.io/gorm"
)

// Engine applies statement lifecycle side effects onto asset and loan
// balances and snapshots net worth. All mutating methods expect to run
// inside the caller's transaction, and the snapshot must be taken in the
// same transaction, strictly after the balance writes.
type Engine struct {
	DB *gorm.DB

	// LegacyLoanReversal keeps the historical delete law for loans
	// (loan.amount -= statement.amount). When false, deletion undoes the
	// create law symmetrically (loan.amount += statement.saving).
	LegacyLoanReversal bool
}

func NewEngine(db *gorm.DB, legacyLoanReversal bool) *Engine {
	return &Engine{DB: db, LegacyLoanReversal: legacyLoanReversal}
}

// NormalizeSign coerces a positive amount negative for non-income types.
// Income amounts are stored as given.
func NormalizeSign(categoryType int, amount int64) int64 {
	if categoryType != models.TypeIncome && amount > 0 {
		return -amount
	}
	return amount
}

// Contribution is how far a statement moves its linked asset: the stored
// signed amount plus the discount flowing back into the asset.
func Contribution(st *models.Statement) int64 {
	return st.Amount + st.Discount
}

// ApplyCreate posts a statement's side effects: the linked asset moves by
// the contribution, the linked loan's balance drops by the saving routed to
// principal. Reports whether any balance changed, so the caller knows a
// snapshot is due.
func (e *Engine) ApplyCreate(tx *gorm.DB, st *models.Statement) (bool, error) {
	changed := false

	if st.AssetID != nil {
		var asset models.Asset
		if err := tx.First(&asset, *st.AssetID).Error; err != nil {
			return false, fmt.Errorf("load asset %d: %w", *st.AssetID, err)
		}
		asset.Amount += Contribution(st)
		if err := tx.Save(&asset).Error; err != nil {
			return false, fmt.Errorf("update asset %d: %w", asset.ID, err)
		}
		changed = true
	}

	if st.LoanID != nil {
		var loan models.Loan
		if err := tx.First(&loan, *st.LoanID).Error; err != nil {
			return false, fmt.Errorf("load loan %d: %w", *st.LoanID, err)
		}
		loan.Amount -= st.Saving
		if err := tx.Save(&loan).Error; err != nil {
			return false, fmt.Errorf("update loan %d: %w", loan.ID, err)
		}
		changed = true
	}

	return changed, nil
}

// ApplyDelete reverses a previously posted statement. The asset always moves
// by the exact negation of the original contribution. The loan follows the
// configured reversal law.
func (e *Engine) ApplyDelete(tx *gorm.DB, st *models.Statement) (bool, error) {
	changed := false

	if st.AssetID != nil {
		var asset models.Asset
		if err := tx.First(&asset, *st.AssetID).Error; err != nil {
			return false, fmt.Errorf("load asset %d: %w", *st.AssetID, err)
		}
		asset.Amount -= Contribution(st)
		if err := tx.Save(&asset).Error; err != nil {
			return false, fmt.Errorf("update asset %d: %w", asset.ID, err)
		}
		changed = true
	}

	if st.LoanID != nil {
		var loan models.Loan
		if err := tx.First(&loan, *st.LoanID).Error; err != nil {
			return false, fmt.Errorf("load loan %d: %w", *st.LoanID, err)
		}
		if e.LegacyLoanReversal {
			loan.Amount -= st.Amount
		} else {
			loan.Amount += st.Saving
		}
		if err := tx.Save(&loan).Error; err != nil {
			return false, fmt.Errorf("update loan %d: %w", loan.ID, err)
		}
		changed = true
	}

	return changed, nil
}

// ApplyLoanPayment advances a loan by one scheduled payment.
func (e *Engine) ApplyLoanPayment(tx *gorm.DB, loan *models.Loan) error {
	loan.CurrentMonth += 1
	loan.Amount -= loan.PaymentAmount
	if err := tx.Save(loan).Error; err != nil {
		return fmt.Errorf("update loan %d: %w", loan.ID, err)
	}
	return nil
}

// Snapshot appends one AssetHistory row with the current net worth
// (sum of assets minus sum of loans, empty sums counting as zero).
func (e *Engine) Snapshot(tx *gorm.DB) error {
	var assetSum, loanSum int64

	if err := tx.Model(&models.Asset{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&assetSum).Error; err != nil {
		return fmt.Errorf("sum assets: %w", err)
	}
	if err := tx.Model(&models.Loan{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&loanSum).Error; err != nil {
		return fmt.Errorf("sum loans: %w", err)
	}

	history := models.AssetHistory{
		Amount:    assetSum - loanSum,
		Timestamp: time.Now(),
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("create asset history: %w", err)
	}
	return nil
}
