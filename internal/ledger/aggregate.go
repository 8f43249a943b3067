package ledger

import (
	"fmt"
	"time"

	"github.com/onaries/account-book/internal/models"

	"gorm.io/gorm"
)

// TotalRowName labels the synthetic trailing row of category breakdowns.
const TotalRowName = "합계"

// Aggregator answers read-only summary queries over the ledger. It never
// mutates state; empty result sets always read as zero.
type Aggregator struct {
	DB *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{DB: db}
}

// HistoryPoint is one (day, amount) pair of collapsed asset history.
type HistoryPoint struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// CategoryAmount is one row of a category breakdown.
type CategoryAmount struct {
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Discount int64  `json:"discount"`
}

// SubcategoryAmount is one row of a per-subcategory breakdown.
type SubcategoryAmount struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// NetWorth is the current net worth plus this week's accumulated delta.
type NetWorth struct {
	TotalAsset int64 `json:"total_asset"`
	DiffAsset  int64 `json:"diff_asset"`
}

// CategoryTotals is the per-type monthly rollup.
type CategoryTotals struct {
	Income          int64 `json:"income"`
	Expense         int64 `json:"expense"`
	ExpenseSaving   int64 `json:"expense_saving"`
	Saving          int64 `json:"saving"`
	Discount        int64 `json:"discount"`
	Total           int64 `json:"total"`
	TotalNoDiscount int64 `json:"total_no_discount"`
}

// CalendarCell is one (day of month, category type) sum of the spending
// calendar.
type CalendarCell struct {
	Day          int   `json:"day"`
	CategoryType int   `json:"category_type"`
	Amount       int64 `json:"amount"`
}

// WeeklyAssetHistory collapses this week's history rows to one value per
// calendar day, the later row winning.
func (a *Aggregator) WeeklyAssetHistory(date time.Time) ([]HistoryPoint, error) {
	start := HistoryWeekStart(date)
	end := midnight(date).AddDate(0, 0, 1)
	return a.historyWindow(start, end)
}

// MonthlyAssetHistory collapses the month's history rows to one value per
// calendar day.
func (a *Aggregator) MonthlyAssetHistory(date time.Time) ([]HistoryPoint, error) {
	return a.historyWindow(MonthStart(date), MonthEnd(date))
}

func (a *Aggregator) historyWindow(start, end time.Time) ([]HistoryPoint, error) {
	var rows []models.AssetHistory
	if err := a.DB.
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query asset history: %w", err)
	}
	return collapseByDay(rows), nil
}

// collapseByDay keeps the last amount per day, preserving the day order of
// first appearance (rows arrive in timestamp order).
func collapseByDay(rows []models.AssetHistory) []HistoryPoint {
	byDay := make(map[string]int64, len(rows))
	order := make([]string, 0, len(rows))
	for i := range rows {
		day := rows[i].Timestamp.Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			order = append(order, day)
		}
		byDay[day] = rows[i].Amount
	}
	points := make([]HistoryPoint, 0, len(order))
	for _, day := range order {
		points = append(points, HistoryPoint{Name: day, Value: byDay[day]})
	}
	return points
}

// NetWorthDelta reports the current net worth and the accumulated pairwise
// differences over this week's history window. Windows with zero or one row
// yield a zero delta.
func (a *Aggregator) NetWorthDelta(now time.Time) (NetWorth, error) {
	var out NetWorth

	var assetSum, loanSum int64
	if err := a.DB.Model(&models.Asset{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&assetSum).Error; err != nil {
		return out, fmt.Errorf("sum assets: %w", err)
	}
	if err := a.DB.Model(&models.Loan{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&loanSum).Error; err != nil {
		return out, fmt.Errorf("sum loans: %w", err)
	}
	out.TotalAsset = assetSum - loanSum

	start := HistoryWeekStart(now)
	end := midnight(now).AddDate(0, 0, 1)

	var rows []models.AssetHistory
	if err := a.DB.
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp ASC").
		Find(&rows).Error; err != nil {
		return out, fmt.Errorf("query asset history: %w", err)
	}

	if len(rows) > 1 {
		prev := rows[0].Amount
		for i := 1; i < len(rows); i++ {
			out.DiffAsset += rows[i].Amount - prev
			prev = rows[i].Amount
		}
	}
	return out, nil
}

// groupSum carries one grouped statement sum keyed by category id.
type groupSum struct {
	ID       uint
	Amount   int64
	Discount int64
}

// CategoryBreakdown groups statement sums of one category type.
// Mode 1 covers the Sunday-start week containing date (grouped by Category
// when sub is set, else by MainCategory); mode 2 covers the calendar month,
// always grouped by MainCategory. Every category of the requested type
// appears, even with no statements, and a synthetic total row is appended.
// Negative expense sums are flipped positive for display.
func (a *Aggregator) CategoryBreakdown(mode int, date time.Time, categoryType int, sub bool) ([]CategoryAmount, error) {
	var start, end time.Time
	switch mode {
	case 1:
		start = SundayStart(date)
		end = start.AddDate(0, 0, 7)
	case 2:
		start = MonthStart(date)
		end = MonthEnd(date).AddDate(0, 0, 1)
		sub = false
	default:
		return nil, fmt.Errorf("unsupported breakdown mode %d", mode)
	}

	type namedID struct {
		ID   uint
		Name string
	}
	var groups []namedID
	var sums []groupSum

	if sub {
		if err := a.DB.Model(&models.Category{}).
			Select("categories.id AS id, categories.name AS name").
			Joins("JOIN main_categories ON main_categories.id = categories.main_category_id").
			Where("main_categories.category_type = ?", categoryType).
			Scan(&groups).Error; err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}

		if err := a.DB.Model(&models.Statement{}).
			Select("categories.id AS id, SUM(statements.amount) AS amount, SUM(statements.discount) AS discount").
			Joins("JOIN categories ON categories.id = statements.category_id").
			Joins("JOIN main_categories ON main_categories.id = categories.main_category_id").
			Where("statements.date >= ? AND statements.date < ?", start, end).
			Where("main_categories.category_type = ?", categoryType).
			Group("categories.id").
			Scan(&sums).Error; err != nil {
			return nil, fmt.Errorf("sum statements by category: %w", err)
		}
	} else {
		if err := a.DB.Model(&models.MainCategory{}).
			Select("id, name").
			Where("category_type = ?", categoryType).
			Scan(&groups).Error; err != nil {
			return nil, fmt.Errorf("list main categories: %w", err)
		}

		q := a.DB.Model(&models.Statement{}).
			Select("main_categories.id AS id, SUM(statements.amount) AS amount, SUM(statements.discount) AS discount").
			Joins("JOIN categories ON categories.id = statements.category_id").
			Joins("JOIN main_categories ON main_categories.id = categories.main_category_id").
			Where("main_categories.category_type = ?", categoryType).
			Where("statements.date >= ? AND statements.date < ?", start, end).
			Group("main_categories.id")
		if err := q.Scan(&sums).Error; err != nil {
			return nil, fmt.Errorf("sum statements by main category: %w", err)
		}
	}

	sumByID := make(map[uint]groupSum, len(sums))
	for _, s := range sums {
		sumByID[s.ID] = s
	}

	data := make([]CategoryAmount, 0, len(groups)+1)
	var totalAmount, totalDiscount int64
	for _, g := range groups {
		row := CategoryAmount{Name: g.Name}
		if s, ok := sumByID[g.ID]; ok {
			row.Amount = s.Amount
			if categoryType == models.TypeExpense && s.Amount < 0 {
				row.Amount = -s.Amount
			}
			row.Discount = s.Discount
		}
		totalAmount += row.Amount
		totalDiscount += row.Discount
		data = append(data, row)
	}
	data = append(data, CategoryAmount{Name: TotalRowName, Amount: totalAmount, Discount: totalDiscount})
	return data, nil
}

// SubcategoryBreakdown sums the week's statements per subcategory of one
// main category.
func (a *Aggregator) SubcategoryBreakdown(date time.Time, mainCategoryID uint) ([]SubcategoryAmount, error) {
	start := SundayStart(date)
	end := start.AddDate(0, 0, 7)

	var mc models.MainCategory
	if err := a.DB.First(&mc, mainCategoryID).Error; err != nil {
		return nil, fmt.Errorf("load main category %d: %w", mainCategoryID, err)
	}

	var categories []models.Category
	if err := a.DB.
		Where("main_category_id = ?", mainCategoryID).
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	var sums []groupSum
	if err := a.DB.Model(&models.Statement{}).
		Select("categories.id AS id, SUM(statements.amount) AS amount").
		Joins("JOIN categories ON categories.id = statements.category_id").
		Where("categories.main_category_id = ?", mainCategoryID).
		Where("statements.date >= ? AND statements.date < ?", start, end).
		Group("categories.id").
		Scan(&sums).Error; err != nil {
		return nil, fmt.Errorf("sum statements by subcategory: %w", err)
	}

	sumByID := make(map[uint]groupSum, len(sums))
	for _, s := range sums {
		sumByID[s.ID] = s
	}

	data := make([]SubcategoryAmount, 0, len(categories))
	for i := range categories {
		row := SubcategoryAmount{Name: categories[i].Name}
		if s, ok := sumByID[categories[i].ID]; ok {
			row.Amount = s.Amount
			if mc.CategoryType == models.TypeExpense && s.Amount < 0 {
				row.Amount = -s.Amount
			}
		}
		data = append(data, row)
	}
	return data, nil
}

// CategoryTotals rolls the month of date up per category type and derives
// the grand totals. Expense and saving sums arrive negative, so plain
// addition nets correctly.
func (a *Aggregator) CategoryTotals(date time.Time) (CategoryTotals, error) {
	var out CategoryTotals

	type typeSum struct {
		CategoryType int
		Amount       int64
		Saving       int64
	}
	var sums []typeSum
	if err := a.DB.Model(&models.Statement{}).
		Select("main_categories.category_type AS category_type, SUM(statements.amount) AS amount, SUM(statements.saving) AS saving").
		Joins("JOIN categories ON categories.id = statements.category_id").
		Joins("JOIN main_categories ON main_categories.id = categories.main_category_id").
		Where("CAST(strftime('%m', statements.date) AS INTEGER) = ?", int(date.Month())).
		Group("main_categories.category_type").
		Scan(&sums).Error; err != nil {
		return out, fmt.Errorf("sum statements by type: %w", err)
	}

	for _, s := range sums {
		switch s.CategoryType {
		case models.TypeIncome:
			out.Income = s.Amount
		case models.TypeExpense:
			out.Expense = s.Amount
			out.ExpenseSaving = s.Saving
		case models.TypeSaving:
			out.Saving = s.Amount
		}
	}

	if err := a.DB.Model(&models.Statement{}).
		Select("COALESCE(SUM(discount), 0)").
		Where("CAST(strftime('%m', date) AS INTEGER) = ?", int(date.Month())).
		Scan(&out.Discount).Error; err != nil {
		return out, fmt.Errorf("sum discounts: %w", err)
	}

	out.Total = out.Income + out.Expense + out.Saving + out.Discount
	out.TotalNoDiscount = out.Income + out.Expense + out.Saving
	return out, nil
}

// CalendarRollup sums statement amounts per day of month and category type
// for the month containing date.
func (a *Aggregator) CalendarRollup(date time.Time) ([]CalendarCell, error) {
	var cells []CalendarCell
	if err := a.DB.Model(&models.Statement{}).
		Select("CAST(strftime('%d', statements.date) AS INTEGER) AS day, main_categories.category_type AS category_type, SUM(statements.amount) AS amount").
		Joins("JOIN categories ON categories.id = statements.category_id").
		Joins("JOIN main_categories ON main_categories.id = categories.main_category_id").
		Where("CAST(strftime('%Y', statements.date) AS INTEGER) = ?", date.Year()).
		Where("CAST(strftime('%m', statements.date) AS INTEGER) = ?", int(date.Month())).
		Group("day, main_categories.category_type").
		Order("day ASC").
		Scan(&cells).Error; err != nil {
		return nil, fmt.Errorf("calendar rollup: %w", err)
	}
	return cells, nil
}

// NameSuggestions lists distinct statement names matching a case-insensitive
// substring.
func (a *Aggregator) NameSuggestions(q string) ([]string, error) {
	var names []string
	if err := a.DB.Model(&models.Statement{}).
		Where("LOWER(name) LIKE LOWER(?)", "%"+q+"%").
		Distinct("name").
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("query statement names: %w", err)
	}
	return names, nil
}

// MonthTypeTotal sums the amounts of one category type within the month
// containing date.
func (a *Aggregator) MonthTypeTotal(date time.Time, categoryType int) (int64, error) {
	start := MonthStart(date)
	end := start.AddDate(0, 1, 0)

	var total int64
	if err := a.DB.Model(&models.Statement{}).
		Select("COALESCE(SUM(statements.amount), 0)").
		Joins("JOIN categories ON categories.id = statements.category_id").
		Joins("JOIN main_categories ON main_categories.id = categories.main_category_id").
		Where("main_categories.category_type = ?", categoryType).
		Where("statements.date >= ? AND statements.date < ?", start, end).
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum month total: %w", err)
	}
	return total, nil
}

// WeeklyLimitRemaining computes the budget left in the statement's week for
// a main category: limit plus the (negative) amount sum plus the discount
// sum over the category's statements.
func (a *Aggregator) WeeklyLimitRemaining(mc *models.MainCategory, date time.Time) (int64, error) {
	if mc.WeeklyLimit == nil {
		return 0, nil
	}
	start := SundayStart(date)
	end := start.AddDate(0, 0, 7)

	type weekSum struct {
		Amount   int64
		Discount int64
	}
	var s weekSum
	if err := a.DB.Model(&models.Statement{}).
		Select("COALESCE(SUM(statements.amount), 0) AS amount, COALESCE(SUM(statements.discount), 0) AS discount").
		Joins("JOIN categories ON categories.id = statements.category_id").
		Where("categories.main_category_id = ?", mc.ID).
		Where("statements.date >= ? AND statements.date < ?", start, end).
		Scan(&s).Error; err != nil {
		return 0, fmt.Errorf("sum weekly spending: %w", err)
	}
	return *mc.WeeklyLimit + s.Amount + s.Discount, nil
}
