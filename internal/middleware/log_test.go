package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/onaries/account-book/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func auditRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(AuditMiddleware(db))
	r.GET("/api/memo", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/memo", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/fail", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	return r
}

func logCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.AuditLog{}).Count(&n).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	return n
}

func TestAuditMiddlewareRecordsMutation(t *testing.T) {
	db := testDB(t)
	r := auditRouter(db)

	req := httptest.NewRequest(http.MethodPost, "/api/memo", strings.NewReader(`{"title":"x"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := logCount(t, db); got != 1 {
		t.Fatalf("log rows = %d, want 1", got)
	}
	var entry models.AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.Method != http.MethodPost || entry.Path != "/api/memo" {
		t.Errorf("entry = %+v", entry)
	}
	if !strings.Contains(entry.Action, `{"title":"x"}`) {
		t.Errorf("action missing body excerpt: %q", entry.Action)
	}
}

func TestAuditMiddlewareSkipsReads(t *testing.T) {
	db := testDB(t)
	r := auditRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/api/memo", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got := logCount(t, db); got != 0 {
		t.Errorf("log rows = %d, want 0", got)
	}
}

func TestAuditMiddlewareSkipsFailedRequests(t *testing.T) {
	db := testDB(t)
	r := auditRouter(db)

	req := httptest.NewRequest(http.MethodPost, "/api/fail", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got := logCount(t, db); got != 0 {
		t.Errorf("log rows = %d, want 0", got)
	}
}
