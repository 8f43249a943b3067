package handler

import (
	"errors"
	"net/http"

	"github.com/onaries/account-book/internal/ledger"
	"github.com/onaries/account-book/internal/models"
	"github.com/onaries/account-book/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LoanHandler serves loan CRUD and scheduled payments. Like assets, every
// balance-affecting mutation snapshots net worth in the same transaction.
type LoanHandler struct {
	DB       *gorm.DB
	Engine   *ledger.Engine
	PageSize int
}

func NewLoanHandler(db *gorm.DB, engine *ledger.Engine, pageSize int) *LoanHandler {
	return &LoanHandler{DB: db, Engine: engine, PageSize: pageSize}
}

type loanIn struct {
	Name          string  `json:"name" binding:"required,max=50"`
	Principal     int64   `json:"principal" binding:"required"`
	InterestRate  float64 `json:"interest_rate"`
	TotalMonths   int     `json:"total_months"`
	CurrentMonth  int     `json:"current_month"`
	PaymentAmount int64   `json:"payment_amount"`
	Amount        int64   `json:"amount"`
	Description   string  `json:"description"`
}

var loanSort = map[string]string{
	"id":         "id",
	"name":       "name",
	"principal":  "principal",
	"amount":     "amount",
	"created_at": "created_at",
}

func (h *LoanHandler) List(c *gin.Context) {
	page, size, offset := pageParams(c, h.PageSize)

	var total int64
	if err := h.DB.Model(&models.Loan{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var items []models.Loan
	if err := h.DB.
		Order(orderClause(c, loanSort)).
		Limit(size).
		Offset(offset).
		Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

func (h *LoanHandler) ListAll(c *gin.Context) {
	var items []models.Loan
	if err := h.DB.Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *LoanHandler) Total(c *gin.Context) {
	var total int64
	if err := h.DB.Model(&models.Loan{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"total": total})
}

func (h *LoanHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var loan models.Loan
	if err := h.DB.First(&loan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "loan not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}
	util.Success(c, util.Response{"loan": loan})
}

func (h *LoanHandler) Create(c *gin.Context) {
	var in loanIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	loan := models.Loan{
		Name:          in.Name,
		Principal:     in.Principal,
		InterestRate:  in.InterestRate,
		TotalMonths:   in.TotalMonths,
		CurrentMonth:  in.CurrentMonth,
		PaymentAmount: in.PaymentAmount,
		Amount:        in.Amount,
		Description:   in.Description,
	}
	// a fresh loan starts with the full principal outstanding
	if loan.Amount == 0 {
		loan.Amount = loan.Principal
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&loan).Error; err != nil {
			return err
		}
		return h.Engine.Snapshot(tx)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"loan": loan})
}

// Payment advances the loan by one scheduled installment.
func (h *LoanHandler) Payment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var loan models.Loan
	if err := h.DB.First(&loan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "loan not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := h.Engine.ApplyLoanPayment(tx, &loan); err != nil {
			return err
		}
		return h.Engine.Snapshot(tx)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"loan": loan})
}

func (h *LoanHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var in loanIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var loan models.Loan
	if err := h.DB.First(&loan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "loan not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	loan.Name = in.Name
	loan.Principal = in.Principal
	loan.InterestRate = in.InterestRate
	loan.TotalMonths = in.TotalMonths
	loan.CurrentMonth = in.CurrentMonth
	loan.PaymentAmount = in.PaymentAmount
	loan.Amount = in.Amount
	loan.Description = in.Description

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&loan).Error; err != nil {
			return err
		}
		return h.Engine.Snapshot(tx)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"loan": loan})
}

func (h *LoanHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var loan models.Loan
	if err := h.DB.First(&loan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "loan not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&loan).Error; err != nil {
			return err
		}
		return h.Engine.Snapshot(tx)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "loan deleted"})
}
