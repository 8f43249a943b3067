package handler

import (
	"errors"
	"net/http"

	"github.com/onaries/account-book/internal/models"
	"github.com/onaries/account-book/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves subcategory CRUD.
type CategoryHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewCategoryHandler(db *gorm.DB, pageSize int) *CategoryHandler {
	return &CategoryHandler{DB: db, PageSize: pageSize}
}

type categoryIn struct {
	Name           string `json:"name" binding:"required,max=50"`
	MainCategoryID uint   `json:"main_category_id" binding:"required"`
}

// categoryResp carries the derived fields resolved through the main
// category on the read path.
type categoryResp struct {
	models.Category
	MainCategoryName string `json:"main_category_name"`
	Type             int    `json:"type"`
}

func toCategoryResp(cat models.Category) categoryResp {
	return categoryResp{
		Category:         cat,
		MainCategoryName: cat.MainCategoryName(),
		Type:             cat.Type(),
	}
}

var categorySort = map[string]string{
	"id":               "id",
	"name":             "name",
	"main_category_id": "main_category_id",
	"created_at":       "created_at",
}

func (h *CategoryHandler) List(c *gin.Context) {
	page, size, offset := pageParams(c, h.PageSize)

	var total int64
	if err := h.DB.Model(&models.Category{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var categories []models.Category
	if err := h.DB.
		Preload("MainCategory").
		Order(orderClause(c, categorySort)).
		Limit(size).
		Offset(offset).
		Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]categoryResp, 0, len(categories))
	for i := range categories {
		items = append(items, toCategoryResp(categories[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

func (h *CategoryHandler) ListAll(c *gin.Context) {
	var categories []models.Category
	if err := h.DB.
		Preload("MainCategory").
		Order("main_category_id ASC").
		Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]categoryResp, 0, len(categories))
	for i := range categories {
		items = append(items, toCategoryResp(categories[i]))
	}
	util.Success(c, util.Response{"items": items})
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var cat models.Category
	if err := h.DB.Preload("MainCategory").First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}
	util.Success(c, util.Response{"category": toCategoryResp(cat)})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var in categoryIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	// owning main category must exist before the insert
	var mc models.MainCategory
	if err := h.DB.First(&mc, in.MainCategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "main category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	cat := models.Category{Name: in.Name, MainCategoryID: in.MainCategoryID}
	if err := h.DB.Create(&cat).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	cat.MainCategory = mc
	util.Success(c, util.Response{"category": toCategoryResp(cat)})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var in categoryIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	var mc models.MainCategory
	if err := h.DB.First(&mc, in.MainCategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "main category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	cat.Name = in.Name
	cat.MainCategoryID = in.MainCategoryID
	if err := h.DB.Save(&cat).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	cat.MainCategory = mc
	util.Success(c, util.Response{"category": toCategoryResp(cat)})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var cat models.Category
	if err := h.DB.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	if err := h.DB.Delete(&cat).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "category deleted"})
}
