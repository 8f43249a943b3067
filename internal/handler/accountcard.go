package handler

import (
	"errors"
	"net/http"

	"github.com/onaries/account-book/internal/models"
	"github.com/onaries/account-book/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AccountCardHandler serves payment instrument CRUD. Cards are
// informational, statement posting never touches their amount, so no
// snapshots here.
type AccountCardHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewAccountCardHandler(db *gorm.DB, pageSize int) *AccountCardHandler {
	return &AccountCardHandler{DB: db, PageSize: pageSize}
}

type accountCardIn struct {
	Name        string `json:"name" binding:"required,max=50"`
	CardType    int    `json:"card_type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

var accountCardSort = map[string]string{
	"id":         "id",
	"name":       "name",
	"card_type":  "card_type",
	"created_at": "created_at",
}

func (h *AccountCardHandler) List(c *gin.Context) {
	page, size, offset := pageParams(c, h.PageSize)

	var total int64
	if err := h.DB.Model(&models.AccountCard{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var items []models.AccountCard
	if err := h.DB.
		Order(orderClause(c, accountCardSort)).
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

func (h *AccountCardHandler) ListAll(c *gin.Context) {
	var items []models.AccountCard
	if err := h.DB.Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *AccountCardHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var card models.AccountCard
	if err := h.DB.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account card not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}
	util.Success(c, util.Response{"account_card": card})
}

func (h *AccountCardHandler) Create(c *gin.Context) {
	var in accountCardIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	card := models.AccountCard{
		Name:        in.Name,
		CardType:    in.CardType,
		Amount:      in.Amount,
		Description: in.Description,
	}
	if err := h.DB.Create(&card).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"account_card": card})
}

func (h *AccountCardHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var in accountCardIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var card models.AccountCard
	if err := h.DB.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account card not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	card.Name = in.Name
	card.CardType = in.CardType
	card.Amount = in.Amount
	card.Description = in.Description
	if err := h.DB.Save(&card).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"account_card": card})
}

func (h *AccountCardHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var card models.AccountCard
	if err := h.DB.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account card not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	if err := h.DB.Delete(&card).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "account card deleted"})
}
