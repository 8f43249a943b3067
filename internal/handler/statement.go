package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/onaries/account-book/internal/ledger"
	"github.com/onaries/account-book/internal/models"
	"github.com/onaries/account-book/internal/notify"
	"github.com/onaries/account-book/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatementHandler orchestrates the statement lifecycle: create/update/delete
// with their balance side effects and snapshot, plus the summary queries.
// Each mutation and its side effects run inside one transaction; snapshots
// are taken strictly after the balance writes. Notification delivery is
// fire-and-forget and never fails a mutation.
type StatementHandler struct {
	DB        *gorm.DB
	Engine    *ledger.Engine
	Agg       *ledger.Aggregator
	Formatter *ledger.Formatter
	Notifier  notify.Sender
	PageSize  int
}

func NewStatementHandler(db *gorm.DB, engine *ledger.Engine, agg *ledger.Aggregator, formatter *ledger.Formatter, notifier notify.Sender, pageSize int) *StatementHandler {
	return &StatementHandler{
		DB:        db,
		Engine:    engine,
		Agg:       agg,
		Formatter: formatter,
		Notifier:  notifier,
		PageSize:  pageSize,
	}
}

type statementIn struct {
	Name          string `json:"name" binding:"required,max=255"`
	CategoryID    uint   `json:"category_id" binding:"required"`
	Amount        int64  `json:"amount"`
	Date          string `json:"date" binding:"required"`
	Discount      int64  `json:"discount"`
	Saving        int64  `json:"saving"`
	Description   string `json:"description"`
	AccountCardID *uint  `json:"account_card_id"`
	AssetID       *uint  `json:"asset_id"`
	LoanID        *uint  `json:"loan_id"`
	IsAlert       bool   `json:"is_alert"`
	IsFixed       bool   `json:"is_fixed"`
}

// statementResp carries the fields derived through the category chain.
type statementResp struct {
	models.Statement
	CategoryType     int    `json:"category_type"`
	MainCategoryName string `json:"main_category_name"`
}

func toStatementResp(st models.Statement) statementResp {
	return statementResp{
		Statement:        st,
		CategoryType:     st.CategoryType(),
		MainCategoryName: st.Category.MainCategoryName(),
	}
}

var statementSort = map[string]string{
	"id":         "statements.id",
	"name":       "statements.name",
	"date":       "statements.date",
	"amount":     "statements.amount",
	"created_at": "statements.created_at",
}

// checkRefs validates every referenced entity before any mutation, so a
// missing id surfaces as an explicit 404 with no partial balance update.
func (h *StatementHandler) checkRefs(c *gin.Context, in *statementIn) (*models.Category, bool) {
	var category models.Category
	if err := h.DB.Preload("MainCategory").First(&category, in.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return nil, false
	}

	if in.AccountCardID != nil {
		var card models.AccountCard
		if err := h.DB.First(&card, *in.AccountCardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "account card not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
			}
			return nil, false
		}
	}
	if in.AssetID != nil {
		var asset models.Asset
		if err := h.DB.First(&asset, *in.AssetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "asset not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
			}
			return nil, false
		}
	}
	if in.LoanID != nil {
		var loan models.Loan
		if err := h.DB.First(&loan, *in.LoanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "loan not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
			}
			return nil, false
		}
	}
	return &category, true
}

func (h *StatementHandler) bindIn(c *gin.Context) (*statementIn, time.Time, bool) {
	var in statementIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return nil, time.Time{}, false
	}
	if err := util.ValidateMagnitude("discount", in.Discount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return nil, time.Time{}, false
	}
	if err := util.ValidateMagnitude("saving", in.Saving); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return nil, time.Time{}, false
	}
	date, err := util.ParseDate(in.Date)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return nil, time.Time{}, false
	}
	return &in, date, true
}

// hydrate reloads a statement with every relation the formatter needs.
func (h *StatementHandler) hydrate(id uint) (*models.Statement, error) {
	var st models.Statement
	err := h.DB.
		Preload("Category.MainCategory").
		Preload("AccountCard").
		First(&st, id).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (h *StatementHandler) alert(st *models.Statement) {
	text, err := h.Formatter.Message(st)
	if err != nil {
		log.Printf("notify: message rendering failed: %v", err)
		return
	}
	go notify.Deliver(context.Background(), h.Notifier, text)
}

func (h *StatementHandler) Create(c *gin.Context) {
	in, date, ok := h.bindIn(c)
	if !ok {
		return
	}
	category, ok := h.checkRefs(c, in)
	if !ok {
		return
	}

	st := models.Statement{
		Name:          in.Name,
		CategoryID:    in.CategoryID,
		Amount:        ledger.NormalizeSign(category.Type(), in.Amount),
		Discount:      in.Discount,
		Saving:        in.Saving,
		Date:          date,
		Description:   in.Description,
		AccountCardID: in.AccountCardID,
		AssetID:       in.AssetID,
		LoanID:        in.LoanID,
		IsFixed:       in.IsFixed,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&st).Error; err != nil {
			return err
		}
		changed, err := h.Engine.ApplyCreate(tx, &st)
		if err != nil {
			return err
		}
		if changed {
			return h.Engine.Snapshot(tx)
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	full, err := h.hydrate(st.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	if in.IsAlert {
		h.alert(full)
	}
	util.Success(c, util.Response{"statement": toStatementResp(*full)})
}

// Update rewrites a statement in two phases: the old linkage is reversed
// with the delete law, then the new values are applied with the create law,
// with a single snapshot at the end. This keeps asset and loan balances
// consistent under repeated edits.
func (h *StatementHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}
	in, date, ok := h.bindIn(c)
	if !ok {
		return
	}

	var st models.Statement
	if err := h.DB.First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "statement not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	category, ok := h.checkRefs(c, in)
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		old := st
		reversed, err := h.Engine.ApplyDelete(tx, &old)
		if err != nil {
			return err
		}

		st.Name = in.Name
		st.CategoryID = in.CategoryID
		st.Amount = ledger.NormalizeSign(category.Type(), in.Amount)
		st.Discount = in.Discount
		st.Saving = in.Saving
		st.Date = date
		st.Description = in.Description
		st.AccountCardID = in.AccountCardID
		st.AssetID = in.AssetID
		st.LoanID = in.LoanID
		st.IsFixed = in.IsFixed
		if err := tx.Save(&st).Error; err != nil {
			return err
		}

		applied, err := h.Engine.ApplyCreate(tx, &st)
		if err != nil {
			return err
		}
		if reversed || applied {
			return h.Engine.Snapshot(tx)
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}

	full, err := h.hydrate(st.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"statement": toStatementResp(*full)})
}

func (h *StatementHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var st models.Statement
	if err := h.DB.First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "statement not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		changed, err := h.Engine.ApplyDelete(tx, &st)
		if err != nil {
			return err
		}
		if err := tx.Delete(&st).Error; err != nil {
			return err
		}
		if changed {
			return h.Engine.Snapshot(tx)
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "statement deleted"})
}

func (h *StatementHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	st, err := h.hydrate(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "statement not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}
	util.Success(c, util.Response{"statement": toStatementResp(*st)})
}

// filtered builds the list/summary base query from the shared filter params.
func (h *StatementHandler) filtered(c *gin.Context) (*gorm.DB, bool) {
	base := h.DB.Model(&models.Statement{}).
		Joins("JOIN categories ON categories.id = statements.category_id").
		Joins("JOIN main_categories ON main_categories.id = categories.main_category_id")

	if v := c.Query("date_lte"); v != "" {
		d, err := util.ParseDay(v)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date_lte must be YYYY-MM-DD")
			return nil, false
		}
		base = base.Where("statements.date < ?", d.AddDate(0, 0, 1))
	}
	if v := c.Query("date_gte"); v != "" {
		d, err := util.ParseDay(v)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date_gte must be YYYY-MM-DD")
			return nil, false
		}
		base = base.Where("statements.date >= ?", d)
	}
	if v := c.Query("type"); v != "" {
		t, err := strconv.Atoi(v)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "type must be an integer")
			return nil, false
		}
		base = base.Where("main_categories.category_type = ?", t)
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category_id must be an integer")
			return nil, false
		}
		base = base.Where("statements.category_id = ?", id)
	}
	if v := c.Query("main_category_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "main_category_id must be an integer")
			return nil, false
		}
		base = base.Where("categories.main_category_id = ?", id)
	}
	if v := c.Query("is_fixed"); v != "" {
		fixed, err := strconv.ParseBool(v)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "is_fixed must be a boolean")
			return nil, false
		}
		base = base.Where("statements.is_fixed = ?", fixed)
	}
	return base, true
}

func (h *StatementHandler) List(c *gin.Context) {
	base, ok := h.filtered(c)
	if !ok {
		return
	}
	page, size, offset := pageParams(c, h.PageSize)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var statements []models.Statement
	if err := base.Session(&gorm.Session{}).
		Preload("Category.MainCategory").
		Preload("AccountCard").
		Order(orderClause(c, statementSort)).
		Limit(size).
		Offset(offset).
		Find(&statements).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]statementResp, 0, len(statements))
	for i := range statements {
		items = append(items, toStatementResp(statements[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// Summary reports amount/discount/saving sums for the current page and the
// whole filtered result set.
func (h *StatementHandler) Summary(c *gin.Context) {
	base, ok := h.filtered(c)
	if !ok {
		return
	}
	_, size, offset := pageParams(c, h.PageSize)

	type sums struct {
		Amount   int64
		Discount int64
		Saving   int64
	}
	const sumSelect = "COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(discount), 0) AS discount, COALESCE(SUM(saving), 0) AS saving"

	var totalSums sums
	if err := base.Session(&gorm.Session{}).
		Select(sumSelect).
		Scan(&totalSums).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	pageQuery := base.Session(&gorm.Session{}).
		Select("statements.amount, statements.discount, statements.saving").
		Order(orderClause(c, statementSort)).
		Limit(size).
		Offset(offset)

	var pageSums sums
	if err := h.DB.Table("(?) AS page", pageQuery).
		Select(sumSelect).
		Scan(&pageSums).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	util.Success(c, util.Response{
		"page_amount":    pageSums.Amount,
		"page_discount":  pageSums.Discount,
		"page_saving":    pageSums.Saving,
		"total_amount":   totalSums.Amount,
		"total_discount": totalSums.Discount,
		"total_saving":   totalSums.Saving,
	})
}

// Category serves the weekly/monthly breakdown grouped by (main) category.
func (h *StatementHandler) Category(c *gin.Context) {
	mode, err := strconv.Atoi(c.Query("mode"))
	if err != nil || (mode != 1 && mode != 2) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "mode must be 1 or 2")
		return
	}
	date, err := util.ParseDay(c.Query("date"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}
	categoryType, err := strconv.Atoi(c.Query("category_type"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category_type must be an integer")
		return
	}
	sub, _ := strconv.ParseBool(c.DefaultQuery("sub", "false"))

	data, err := h.Agg.CategoryBreakdown(mode, date, categoryType, sub)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": data})
}

// Subcategory serves the weekly per-subcategory breakdown of one main
// category.
func (h *StatementHandler) Subcategory(c *gin.Context) {
	date, err := util.ParseDay(c.Query("date"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}
	mainCategoryID, err := strconv.Atoi(c.Query("main_category"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "main_category must be an integer")
		return
	}

	data, err := h.Agg.SubcategoryBreakdown(date, uint(mainCategoryID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "main category not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": data})
}

// Total serves per-type monthly totals. Only mode 3 is meaningful.
func (h *StatementHandler) Total(c *gin.Context) {
	mode, err := strconv.Atoi(c.Query("mode"))
	if err != nil || mode != 3 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "mode must be 3")
		return
	}
	date, err := util.ParseDay(c.Query("date"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}

	totals, err := h.Agg.CategoryTotals(date)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{
		"income":            totals.Income,
		"expense":           totals.Expense,
		"expense_saving":    totals.ExpenseSaving,
		"saving":            totals.Saving,
		"discount":          totals.Discount,
		"total":             totals.Total,
		"total_no_discount": totals.TotalNoDiscount,
	})
}

// Calendar serves the per-day, per-type sums used by the spending calendar.
func (h *StatementHandler) Calendar(c *gin.Context) {
	date, err := util.ParseDay(c.Query("date"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}

	cells, err := h.Agg.CalendarRollup(date)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": cells})
}

// NameList serves distinct statement names for autocomplete.
func (h *StatementHandler) NameList(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "q is required")
		return
	}

	names, err := h.Agg.NameSuggestions(q)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]gin.H, 0, len(names))
	for _, name := range names {
		items = append(items, gin.H{"name": name})
	}
	util.Success(c, util.Response{"items": items})
}

// Message renders the notification text without sending it.
func (h *StatementHandler) Message(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	st, err := h.hydrate(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "statement not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	text, err := h.Formatter.Message(st)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "message rendering failed")
		return
	}
	util.Success(c, util.Response{"message": text})
}

// Alert renders and delivers the notification for a statement.
func (h *StatementHandler) Alert(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	st, err := h.hydrate(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "statement not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	h.alert(st)
	util.Success(c, util.Response{"message": "alert sent"})
}
