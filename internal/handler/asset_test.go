package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/onaries/account-book/internal/ledger"
	"github.com/onaries/account-book/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func assetRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	engine := ledger.NewEngine(db, true)
	agg := ledger.NewAggregator(db)
	h := NewAssetHandler(db, engine, agg, 50)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/asset", h.List)
	api.GET("/asset/total", h.Total)
	api.GET("/asset/history", h.History)
	api.GET("/asset/prev", h.Prev)
	api.GET("/asset/:id", h.Get)
	api.POST("/asset", h.Create)
	api.PUT("/asset/:id", h.Update)
	api.DELETE("/asset/:id", h.Delete)
	return r
}

func TestAssetCreateSnapshots(t *testing.T) {
	db := testDB(t)
	r := assetRouter(t, db)

	w := doJSON(t, r, http.MethodPost, "/api/asset", gin.H{
		"name":   "통장",
		"amount": 100000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	if got := historyCount(t, db); got != 1 {
		t.Errorf("history rows = %d, want 1", got)
	}
	var row models.AssetHistory
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if row.Amount != 100000 {
		t.Errorf("snapshot = %d, want 100000", row.Amount)
	}
}

func TestAssetUpdateResnapshots(t *testing.T) {
	db := testDB(t)
	r := assetRouter(t, db)
	asset := seedAsset(t, db, "통장", 100000)

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/asset/%d", asset.ID), gin.H{
		"name":   "통장",
		"amount": 80000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := assetAmount(t, db, asset.ID); got != 80000 {
		t.Errorf("asset = %d, want 80000", got)
	}
	if got := historyCount(t, db); got != 1 {
		t.Errorf("history rows = %d, want 1", got)
	}
}

func TestAssetDeleteSnapshotsRemainder(t *testing.T) {
	db := testDB(t)
	r := assetRouter(t, db)
	a := seedAsset(t, db, "통장", 100000)
	seedAsset(t, db, "현금", 30000)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/asset/%d", a.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var row models.AssetHistory
	if err := db.Order("id DESC").First(&row).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if row.Amount != 30000 {
		t.Errorf("snapshot after delete = %d, want 30000", row.Amount)
	}
}

func TestAssetTotal(t *testing.T) {
	db := testDB(t)
	r := assetRouter(t, db)
	seedAsset(t, db, "통장", 100000)
	seedAsset(t, db, "현금", 25000)

	w := doJSON(t, r, http.MethodGet, "/api/asset/total", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := decodeData(t, w)
	if got := data["total"].(float64); got != 125000 {
		t.Errorf("total = %v, want 125000", got)
	}
}

func TestAssetHistoryModes(t *testing.T) {
	db := testDB(t)
	r := assetRouter(t, db)

	for i, amount := range []int64{100, 200, 300} {
		row := models.AssetHistory{
			Amount:    amount,
			Timestamp: time.Date(2024, time.March, 11+i, 12, 0, 0, 0, time.UTC),
		}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/asset/history?mode=1&date=2024-03-13", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := decodeData(t, w)
	if items := data["items"].([]interface{}); len(items) != 3 {
		t.Errorf("weekly items = %d, want 3", len(items))
	}

	w = doJSON(t, r, http.MethodGet, "/api/asset/history?mode=7&date=2024-03-13", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad mode status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/asset/history?mode=1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing date status = %d, want 400", w.Code)
	}
}

func TestAssetPrevEmptyLedger(t *testing.T) {
	db := testDB(t)
	r := assetRouter(t, db)

	w := doJSON(t, r, http.MethodGet, "/api/asset/prev", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := decodeData(t, w)
	if got := data["total_asset"].(float64); got != 0 {
		t.Errorf("total_asset = %v, want 0", got)
	}
	if got := data["diff_asset"].(float64); got != 0 {
		t.Errorf("diff_asset = %v, want 0", got)
	}
}

func TestAssetGetNotFound(t *testing.T) {
	db := testDB(t)
	r := assetRouter(t, db)

	w := doJSON(t, r, http.MethodGet, "/api/asset/99", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
