package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/onaries/account-book/internal/models"
)

// Formatter renders a statement event as a human-readable message for
// external delivery. The statement must arrive fully hydrated: its
// Category -> MainCategory chain and, when present, AccountCard, Asset
// relations loaded, plus the main category's linked asset.
type Formatter struct {
	Agg *Aggregator
}

func NewFormatter(agg *Aggregator) *Formatter {
	return &Formatter{Agg: agg}
}

const noCardName = "없음"

// comma formats n with thousands separators.
func comma(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func cardName(st *models.Statement) string {
	if st.AccountCard != nil && st.AccountCard.Name != "" {
		return st.AccountCard.Name
	}
	return noCardName
}

// Message renders the notification text for a statement, branching on the
// resolved category type.
func (f *Formatter) Message(st *models.Statement) (string, error) {
	switch st.CategoryType() {
	case models.TypeIncome:
		return f.incomeMessage(st)
	case models.TypeExpense:
		return f.expenseMessage(st)
	case models.TypeSaving:
		return f.savingMessage(st)
	}
	return "", fmt.Errorf("statement %d has unresolved category type", st.ID)
}

func (f *Formatter) incomeMessage(st *models.Statement) (string, error) {
	monthTotal, err := f.Agg.MonthTypeTotal(st.Date, models.TypeIncome)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[수입] %s\n", st.Name)
	fmt.Fprintf(&b, "금액: %s원\n", comma(abs(st.Amount)))
	fmt.Fprintf(&b, "결제수단: %s\n", cardName(st))
	fmt.Fprintf(&b, "날짜: %s\n", st.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "이번달 수입: %s원", comma(abs(monthTotal)))
	return b.String(), nil
}

func (f *Formatter) expenseMessage(st *models.Statement) (string, error) {
	monthTotal, err := f.Agg.MonthTypeTotal(st.Date, models.TypeExpense)
	if err != nil {
		return "", err
	}

	// amount is negative, so the factor of -100 yields a positive percentage
	var discountPct float64
	if st.Amount != 0 {
		discountPct = float64(st.Discount) / float64(st.Amount) * -100
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[지출] %s\n", st.Name)
	fmt.Fprintf(&b, "금액: %s원\n", comma(abs(st.Amount)))
	fmt.Fprintf(&b, "할인: %s원 (%.1f%%)\n", comma(st.Discount), discountPct)
	fmt.Fprintf(&b, "결제수단: %s\n", cardName(st))
	fmt.Fprintf(&b, "날짜: %s\n", st.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "이번달 지출: %s원", comma(abs(monthTotal)))

	mc := &st.Category.MainCategory
	if mc.WeeklyLimit != nil {
		remaining, err := f.Agg.WeeklyLimitRemaining(mc, st.Date)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\n이번주 남은 예산: %s원", comma(remaining))
	}
	if mc.AssetID != nil {
		var asset models.Asset
		if err := f.Agg.DB.First(&asset, *mc.AssetID).Error; err != nil {
			return "", fmt.Errorf("load linked asset %d: %w", *mc.AssetID, err)
		}
		fmt.Fprintf(&b, "\n%s: %s원", asset.Name, comma(asset.Amount))
	}
	return b.String(), nil
}

func (f *Formatter) savingMessage(st *models.Statement) (string, error) {
	monthTotal, err := f.Agg.MonthTypeTotal(st.Date, models.TypeSaving)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[저축] %s\n", st.Name)
	fmt.Fprintf(&b, "금액: %s원\n", comma(abs(st.Amount)))
	fmt.Fprintf(&b, "결제수단: %s\n", cardName(st))
	fmt.Fprintf(&b, "날짜: %s\n", st.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "이번달 저축: %s원", comma(abs(monthTotal)))

	if st.AssetID != nil {
		var asset models.Asset
		if err := f.Agg.DB.First(&asset, *st.AssetID).Error; err != nil {
			return "", fmt.Errorf("load asset %d: %w", *st.AssetID, err)
		}
		fmt.Fprintf(&b, "\n%s 잔액: %s원", asset.Name, comma(asset.Amount))
	}
	return b.String(), nil
}
