package handler

import (
	"errors"
	"net/http"

	"github.com/onaries/account-book/internal/models"
	"github.com/onaries/account-book/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MainCategoryHandler serves top-level category CRUD.
type MainCategoryHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewMainCategoryHandler(db *gorm.DB, pageSize int) *MainCategoryHandler {
	return &MainCategoryHandler{DB: db, PageSize: pageSize}
}

type mainCategoryIn struct {
	Name         string `json:"name" binding:"required,max=50"`
	CategoryType int    `json:"category_type" binding:"required,oneof=1 2 3"`
	WeeklyLimit  *int64 `json:"weekly_limit"`
	AssetID      *uint  `json:"asset_id"`
}

var mainCategorySort = map[string]string{
	"id":            "id",
	"name":          "name",
	"category_type": "category_type",
	"weekly_limit":  "weekly_limit",
	"created_at":    "created_at",
}

func (h *MainCategoryHandler) List(c *gin.Context) {
	page, size, offset := pageParams(c, h.PageSize)

	var total int64
	if err := h.DB.Model(&models.MainCategory{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var items []models.MainCategory
	if err := h.DB.
		Order(orderClause(c, mainCategorySort)).
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

func (h *MainCategoryHandler) ListAll(c *gin.Context) {
	var items []models.MainCategory
	if err := h.DB.Order("category_type ASC").Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *MainCategoryHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var mc models.MainCategory
	if err := h.DB.First(&mc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "main category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}
	util.Success(c, util.Response{"main_category": mc})
}

func (h *MainCategoryHandler) Create(c *gin.Context) {
	var in mainCategoryIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	mc := models.MainCategory{
		Name:         in.Name,
		CategoryType: in.CategoryType,
		WeeklyLimit:  in.WeeklyLimit,
		AssetID:      in.AssetID,
	}
	if err := h.DB.Create(&mc).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"main_category": mc})
}

func (h *MainCategoryHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var in mainCategoryIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var mc models.MainCategory
	if err := h.DB.First(&mc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "main category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	mc.Name = in.Name
	mc.CategoryType = in.CategoryType
	mc.WeeklyLimit = in.WeeklyLimit
	mc.AssetID = in.AssetID
	if err := h.DB.Save(&mc).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"main_category": mc})
}

func (h *MainCategoryHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var mc models.MainCategory
	if err := h.DB.First(&mc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "main category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	if err := h.DB.Delete(&mc).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "main category deleted"})
}
