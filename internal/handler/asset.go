package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/onaries/account-book/internal/ledger"
	"github.com/onaries/account-book/internal/models"
	"github.com/onaries/account-book/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AssetHandler serves asset CRUD plus the net-worth history queries.
// Every balance-affecting mutation appends one AssetHistory snapshot in the
// same transaction.
type AssetHandler struct {
	DB       *gorm.DB
	Engine   *ledger.Engine
	Agg      *ledger.Aggregator
	PageSize int
}

func NewAssetHandler(db *gorm.DB, engine *ledger.Engine, agg *ledger.Aggregator, pageSize int) *AssetHandler {
	return &AssetHandler{DB: db, Engine: engine, Agg: agg, PageSize: pageSize}
}

type assetIn struct {
	Name        string `json:"name" binding:"required,max=50"`
	AssetType   int    `json:"asset_type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

var assetSort = map[string]string{
	"id":         "id",
	"name":       "name",
	"asset_type": "asset_type",
	"amount":     "amount",
	"created_at": "created_at",
}

func (h *AssetHandler) List(c *gin.Context) {
	page, size, offset := pageParams(c, h.PageSize)

	var total int64
	if err := h.DB.Model(&models.Asset{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	var items []models.Asset
	if err := h.DB.
		Order(orderClause(c, assetSort)).
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

func (h *AssetHandler) ListAll(c *gin.Context) {
	var items []models.Asset
	if err := h.DB.Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": items})
}

func (h *AssetHandler) Total(c *gin.Context) {
	var total int64
	if err := h.DB.Model(&models.Asset{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"total": total})
}

// History serves the collapsed per-day asset history: mode 1 is the weekly
// window, mode 2 the calendar month.
func (h *AssetHandler) History(c *gin.Context) {
	date, err := util.ParseDay(c.Query("date"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}
	mode, _ := strconv.Atoi(c.DefaultQuery("mode", "1"))

	var points []ledger.HistoryPoint
	switch mode {
	case 1:
		points, err = h.Agg.WeeklyAssetHistory(date)
	case 2:
		points, err = h.Agg.MonthlyAssetHistory(date)
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "mode must be 1 or 2")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": points})
}

func (h *AssetHandler) HistoryAll(c *gin.Context) {
	var items []models.AssetHistory
	if err := h.DB.Order("timestamp ASC").Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": items})
}

// Prev serves the current net worth and this week's accumulated delta.
func (h *AssetHandler) Prev(c *gin.Context) {
	nw, err := h.Agg.NetWorthDelta(time.Now())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{
		"total_asset": nw.TotalAsset,
		"diff_asset":  nw.DiffAsset,
	})
}

func (h *AssetHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var asset models.Asset
	if err := h.DB.First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "asset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}
	util.Success(c, util.Response{"asset": asset})
}

func (h *AssetHandler) Create(c *gin.Context) {
	var in assetIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	asset := models.Asset{
		Name:        in.Name,
		AssetType:   in.AssetType,
		Amount:      in.Amount,
		Description: in.Description,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&asset).Error; err != nil {
			return err
		}
		return h.Engine.Snapshot(tx)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"asset": asset})
}

func (h *AssetHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var in assetIn
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var asset models.Asset
	if err := h.DB.First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "asset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	asset.Name = in.Name
	asset.AssetType = in.AssetType
	asset.Amount = in.Amount
	asset.Description = in.Description

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&asset).Error; err != nil {
			return err
		}
		return h.Engine.Snapshot(tx)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"asset": asset})
}

func (h *AssetHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return
	}

	var asset models.Asset
	if err := h.DB.First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "asset not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&asset).Error; err != nil {
			return err
		}
		return h.Engine.Snapshot(tx)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "asset deleted"})
}
