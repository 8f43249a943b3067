package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/onaries/account-book/internal/models"
	"github.com/onaries/account-book/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams statements as CSV or XLSX, optionally restricted to
// one month.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeaders = []string{"날짜", "이름", "대분류", "분류", "금액", "할인", "저축", "결제수단", "설명"}

// monthFiltered loads statements ordered by date, limited to the month of
// the optional date query param.
func (h *ExportHandler) monthFiltered(c *gin.Context) ([]models.Statement, bool) {
	q := h.DB.
		Preload("Category.MainCategory").
		Preload("AccountCard").
		Order("date ASC, id ASC")

	if v := c.Query("date"); v != "" {
		d, err := util.ParseDay(v)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
			return nil, false
		}
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		q = q.Where("date >= ? AND date < ?", start, start.AddDate(0, 1, 0))
	}

	var statements []models.Statement
	if err := q.Find(&statements).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return nil, false
	}
	return statements, true
}

func exportRow(st *models.Statement) []string {
	card := ""
	if st.AccountCard != nil {
		card = st.AccountCard.Name
	}
	return []string{
		st.Date.Format("2006-01-02"),
		st.Name,
		st.Category.MainCategoryName(),
		st.Category.Name,
		strconv.FormatInt(st.Amount, 10),
		strconv.FormatInt(st.Discount, 10),
		strconv.FormatInt(st.Saving, 10),
		card,
		st.Description,
	}
}

func (h *ExportHandler) CSV(c *gin.Context) {
	statements, ok := h.monthFiltered(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"statements_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps pick up the Korean headers
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range statements {
		writer.Write(exportRow(&statements[i]))
	}
}

func (h *ExportHandler) XLSX(c *gin.Context) {
	statements, ok := h.monthFiltered(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "내역"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "sheet creation failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx := range statements {
		row := idx + 2
		for i, value := range exportRow(&statements[idx]) {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "D", 14)
	f.SetColWidth(sheetName, "E", "G", 12)
	f.SetColWidth(sheetName, "H", "H", 14)
	f.SetColWidth(sheetName, "I", "I", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"statements_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
	}
}
