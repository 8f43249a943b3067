package ledger

import (
	"testing"
	"time"

	"github.com/onaries/account-book/internal/models"

	"gorm.io/gorm"
)

func seedHistory(t *testing.T, db *gorm.DB, amount int64, at time.Time) {
	t.Helper()
	if err := db.Create(&models.AssetHistory{Amount: amount, Timestamp: at}).Error; err != nil {
		t.Fatalf("seed history: %v", err)
	}
}

func seedStatement(t *testing.T, db *gorm.DB, cat *models.Category, amount, discount, saving int64, date time.Time) *models.Statement {
	t.Helper()
	st := models.Statement{
		Name:       "test",
		CategoryID: cat.ID,
		Amount:     amount,
		Discount:   discount,
		Saving:     saving,
		Date:       date,
	}
	if err := db.Create(&st).Error; err != nil {
		t.Fatalf("seed statement: %v", err)
	}
	return &st
}

func TestCollapseByDayLastWins(t *testing.T) {
	rows := []models.AssetHistory{
		{Amount: 100, Timestamp: time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC)},
		{Amount: 150, Timestamp: time.Date(2024, time.March, 11, 18, 0, 0, 0, time.UTC)},
		{Amount: 200, Timestamp: time.Date(2024, time.March, 12, 12, 0, 0, 0, time.UTC)},
	}
	points := collapseByDay(rows)
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Name != "2024-03-11" || points[0].Value != 150 {
		t.Errorf("day 1 = %+v, want 2024-03-11/150", points[0])
	}
	if points[1].Name != "2024-03-12" || points[1].Value != 200 {
		t.Errorf("day 2 = %+v, want 2024-03-12/200", points[1])
	}
}

func TestNetWorthDeltaSparseWindows(t *testing.T) {
	db := testDB(t)
	agg := NewAggregator(db)
	now := day(2024, time.March, 13)

	// no rows
	nw, err := agg.NetWorthDelta(now)
	if err != nil {
		t.Fatalf("NetWorthDelta: %v", err)
	}
	if nw.DiffAsset != 0 {
		t.Errorf("empty window delta = %d, want 0", nw.DiffAsset)
	}

	// one row
	seedHistory(t, db, 100000, day(2024, time.March, 11))
	nw, err = agg.NetWorthDelta(now)
	if err != nil {
		t.Fatalf("NetWorthDelta: %v", err)
	}
	if nw.DiffAsset != 0 {
		t.Errorf("single-row window delta = %d, want 0", nw.DiffAsset)
	}
}

func TestNetWorthDeltaAccumulates(t *testing.T) {
	db := testDB(t)
	agg := NewAggregator(db)
	seedAsset(t, db, "통장", 90000)

	seedHistory(t, db, 100000, day(2024, time.March, 11))
	seedHistory(t, db, 120000, day(2024, time.March, 12))
	seedHistory(t, db, 90000, day(2024, time.March, 13))

	nw, err := agg.NetWorthDelta(day(2024, time.March, 13))
	if err != nil {
		t.Fatalf("NetWorthDelta: %v", err)
	}
	if nw.TotalAsset != 90000 {
		t.Errorf("total = %d, want 90000", nw.TotalAsset)
	}
	// (120000-100000) + (90000-120000)
	if nw.DiffAsset != -10000 {
		t.Errorf("delta = %d, want -10000", nw.DiffAsset)
	}
}

func TestWeeklyAssetHistoryWindow(t *testing.T) {
	db := testDB(t)
	agg := NewAggregator(db)

	// previous window, must be excluded
	seedHistory(t, db, 1, day(2024, time.March, 8))
	seedHistory(t, db, 100, day(2024, time.March, 11))
	seedHistory(t, db, 200, day(2024, time.March, 12))

	points, err := agg.WeeklyAssetHistory(day(2024, time.March, 13))
	if err != nil {
		t.Fatalf("WeeklyAssetHistory: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Value != 100 || points[1].Value != 200 {
		t.Errorf("points = %+v", points)
	}
}

// Every main category of the type shows up even with no statements, expense
// sums flip positive, and the trailing total row sums the lot.
func TestCategoryBreakdownWeekly(t *testing.T) {
	db := testDB(t)
	agg := NewAggregator(db)

	food := seedCategory(t, db, "식비", "외식", models.TypeExpense)
	mc2 := models.MainCategory{Name: "교통", CategoryType: models.TypeExpense}
	if err := db.Create(&mc2).Error; err != nil {
		t.Fatalf("seed main category: %v", err)
	}

	seedStatement(t, db, food, -12000, 2000, 0, day(2024, time.March, 11))
	seedStatement(t, db, food, -8000, 0, 0, day(2024, time.March, 12))
	// outside the week
	seedStatement(t, db, food, -99999, 0, 0, day(2024, time.March, 3))

	data, err := agg.CategoryBreakdown(1, day(2024, time.March, 13), models.TypeExpense, false)
	if err != nil {
		t.Fatalf("CategoryBreakdown: %v", err)
	}
	if len(data) != 3 {
		t.Fatalf("got %d rows, want 2 categories + total", len(data))
	}

	byName := map[string]CategoryAmount{}
	for _, row := range data {
		byName[row.Name] = row
	}
	if row := byName["식비"]; row.Amount != 20000 || row.Discount != 2000 {
		t.Errorf("식비 = %+v, want amount 20000 discount 2000", row)
	}
	if row := byName["교통"]; row.Amount != 0 {
		t.Errorf("empty category amount = %d, want 0", row.Amount)
	}
	if data[len(data)-1].Name != TotalRowName {
		t.Errorf("last row = %q, want %q", data[len(data)-1].Name, TotalRowName)
	}
	if total := byName[TotalRowName]; total.Amount != 20000 || total.Discount != 2000 {
		t.Errorf("total row = %+v", total)
	}
}

func TestCategoryBreakdownRejectsUnknownMode(t *testing.T) {
	db := testDB(t)
	agg := NewAggregator(db)
	if _, err := agg.CategoryBreakdown(9, day(2024, time.March, 13), models.TypeExpense, false); err == nil {
		t.Fatal("mode 9 accepted")
	}
}

func TestSubcategoryBreakdown(t *testing.T) {
	db := testDB(t)
	agg := NewAggregator(db)

	food := seedCategory(t, db, "식비", "외식", models.TypeExpense)
	grocery := models.Category{Name: "장보기", MainCategoryID: food.MainCategoryID}
	if err := db.Create(&grocery).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	seedStatement(t, db, food, -15000, 0, 0, day(2024, time.March, 11))

	data, err := agg.SubcategoryBreakdown(day(2024, time.March, 13), food.MainCategoryID)
	if err != nil {
		t.Fatalf("SubcategoryBreakdown: %v", err)
	}
	if len(data) != 2 {
		t.Fatalf("got %d rows, want 2", len(data))
	}
	byName := map[string]int64{}
	for _, row := range data {
		byName[row.Name] = row.Amount
	}
	if byName["외식"] != 15000 {
		t.Errorf("외식 = %d, want 15000 (flipped)", byName["외식"])
	}
	if byName["장보기"] != 0 {
		t.Errorf("장보기 = %d, want 0", byName["장보기"])
	}
}

func TestCategoryTotals(t *testing.T) {
	db := testDB(t)
	agg := NewAggregator(db)

	salary := seedCategory(t, db, "월급", "본봉", models.TypeIncome)
	food := seedCategory(t, db, "식비", "외식", models.TypeExpense)
	deposit := seedCategory(t, db, "적금", "정기", models.TypeSaving)

	seedStatement(t, db, salary, 300000, 0, 0, day(2024, time.March, 1))
	seedStatement(t, db, food, -50000, 5000, 10000, day(2024, time.March, 5))
	seedStatement(t, db, deposit, -100000, 0, 0, day(2024, time.March, 10))
	// different month, excluded
	seedStatement(t, db, food, -99999, 0, 0, day(2024, time.April, 5))

	totals, err := agg.CategoryTotals(day(2024, time.March, 15))
	if err != nil {
		t.Fatalf("CategoryTotals: %v", err)
	}
	if totals.Income != 300000 {
		t.Errorf("income = %d", totals.Income)
	}
	if totals.Expense != -50000 {
		t.Errorf("expense = %d", totals.Expense)
	}
	if totals.ExpenseSaving != 10000 {
		t.Errorf("expense saving = %d", totals.ExpenseSaving)
	}
	if totals.Saving != -100000 {
		t.Errorf("saving = %d", totals.Saving)
	}
	if totals.Discount != 5000 {
		t.Errorf("discount = %d", totals.Discount)
	}
	if totals.Total != 155000 {
		t.Errorf("total = %d, want 155000", totals.Total)
	}
	if totals.TotalNoDiscount != 150000 {
		t.Errorf("total without discount = %d, want 150000", totals.TotalNoDiscount)
	}
}

func TestCalendarRollup(t *testing.T) {
	db := testDB(t)
	agg := NewAggregator(db)

	food := seedCategory(t, db, "식비", "외식", models.TypeExpense)
	seedStatement(t, db, food, -10000, 0, 0, day(2024, time.March, 5))
	seedStatement(t, db, food, -7000, 0, 0, day(2024, time.March, 5))
	seedStatement(t, db, food, -3000, 0, 0, day(2024, time.March, 9))
	// same day a year earlier must not leak in
	seedStatement(t, db, food, -50000, 0, 0, day(2023, time.March, 5))

	cells, err := agg.CalendarRollup(day(2024, time.March, 1))
	if err != nil {
		t.Fatalf("CalendarRollup: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	if cells[0].Day != 5 || cells[0].Amount != -17000 {
		t.Errorf("day 5 cell = %+v", cells[0])
	}
	if cells[1].Day != 9 || cells[1].Amount != -3000 {
		t.Errorf("day 9 cell = %+v", cells[1])
	}
}

func TestNameSuggestions(t *testing.T) {
	db := testDB(t)
	agg := NewAggregator(db)

	food := seedCategory(t, db, "식비", "외식", models.TypeExpense)
	for _, name := range []string{"Starbucks", "starbucks reserve", "김밥천국", "Starbucks"} {
		st := seedStatement(t, db, food, -5000, 0, 0, day(2024, time.March, 11))
		st.Name = name
		if err := db.Save(st).Error; err != nil {
			t.Fatalf("rename statement: %v", err)
		}
	}

	names, err := agg.NameSuggestions("STAR")
	if err != nil {
		t.Fatalf("NameSuggestions: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %v, want 2 distinct matches", names)
	}
}

func TestWeeklyLimitRemaining(t *testing.T) {
	db := testDB(t)
	agg := NewAggregator(db)

	food := seedCategory(t, db, "식비", "외식", models.TypeExpense)
	limit := int64(50000)
	if err := db.Model(&models.MainCategory{}).
		Where("id = ?", food.MainCategoryID).
		Update("weekly_limit", limit).Error; err != nil {
		t.Fatalf("set weekly limit: %v", err)
	}

	seedStatement(t, db, food, -12000, 2000, 0, day(2024, time.March, 11))

	var mc models.MainCategory
	if err := db.First(&mc, food.MainCategoryID).Error; err != nil {
		t.Fatalf("load main category: %v", err)
	}
	remaining, err := agg.WeeklyLimitRemaining(&mc, day(2024, time.March, 12))
	if err != nil {
		t.Fatalf("WeeklyLimitRemaining: %v", err)
	}
	// 50000 - 12000 + 2000
	if remaining != 40000 {
		t.Errorf("remaining = %d, want 40000", remaining)
	}
}
