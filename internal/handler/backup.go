package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/onaries/account-book/internal/models"
	"github.com/onaries/account-book/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BackupHandler snapshots the whole ledger to a JSON file and restores it.
// Restore is destructive: it replaces every table's contents with the
// snapshot, preserving original ids so statements keep their links.
type BackupHandler struct {
	DB  *gorm.DB
	Dir string
}

func NewBackupHandler(db *gorm.DB, dir string) *BackupHandler {
	return &BackupHandler{DB: db, Dir: dir}
}

// ledgerDump is the on-disk snapshot format.
type ledgerDump struct {
	Version        int                   `json:"version"`
	CreatedAt      time.Time             `json:"created_at"`
	MainCategories []models.MainCategory `json:"main_categories"`
	Categories     []models.Category     `json:"categories"`
	Assets         []models.Asset        `json:"assets"`
	AssetHistories []models.AssetHistory `json:"asset_histories"`
	Loans          []models.Loan         `json:"loans"`
	AccountCards   []models.AccountCard  `json:"account_cards"`
	Statements     []models.Statement    `json:"statements"`
	Memos          []models.Memo         `json:"memos"`
}

func (h *BackupHandler) dump() (*ledgerDump, error) {
	d := &ledgerDump{Version: 1, CreatedAt: time.Now()}
	steps := []struct {
		dest interface{}
	}{
		{&d.MainCategories},
		{&d.Categories},
		{&d.Assets},
		{&d.AssetHistories},
		{&d.Loans},
		{&d.AccountCards},
		{&d.Statements},
		{&d.Memos},
	}
	for _, s := range steps {
		if err := h.DB.Order("id ASC").Find(s.dest).Error; err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (h *BackupHandler) Create(c *gin.Context) {
	d, err := h.dump()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "backup dir unavailable")
		return
	}

	name := fmt.Sprintf("ledger_%s_%s.json",
		time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(h.Dir, name)

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "encode failed")
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "write failed")
		return
	}

	backup := models.Backup{
		FileName: name,
		FilePath: path,
		Size:     int64(len(data)),
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		os.Remove(path)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save failed")
		return
	}
	util.Success(c, util.Response{"backup": backup})
}

func (h *BackupHandler) List(c *gin.Context) {
	var backups []models.Backup
	if err := h.DB.Order("id DESC").Find(&backups).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": backups})
}

func (h *BackupHandler) find(c *gin.Context) (*models.Backup, bool) {
	id, ok := idParam(c)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return nil, false
	}
	var backup models.Backup
	if err := h.DB.First(&backup, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return nil, false
	}
	return &backup, true
}

func (h *BackupHandler) Download(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}
	c.FileAttachment(backup.FilePath, backup.FileName)
}

// Restore replaces the ledger with a snapshot's contents inside one
// transaction. Ids are preserved; the backup table itself is untouched.
func (h *BackupHandler) Restore(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}

	data, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "backup file unreadable")
		return
	}
	var d ledgerDump
	if err := json.Unmarshal(data, &d); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "backup file corrupt")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		wipe := []interface{}{
			&models.Statement{},
			&models.AssetHistory{},
			&models.Memo{},
			&models.AccountCard{},
			&models.Loan{},
			&models.Category{},
			&models.MainCategory{},
			&models.Asset{},
		}
		for _, m := range wipe {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}

		insert := func(value interface{}, n int) error {
			if n == 0 {
				return nil
			}
			return tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{UpdateAll: true}).
				Create(value).Error
		}
		if err := insert(&d.Assets, len(d.Assets)); err != nil {
			return err
		}
		if err := insert(&d.MainCategories, len(d.MainCategories)); err != nil {
			return err
		}
		if err := insert(&d.Categories, len(d.Categories)); err != nil {
			return err
		}
		if err := insert(&d.Loans, len(d.Loans)); err != nil {
			return err
		}
		if err := insert(&d.AccountCards, len(d.AccountCards)); err != nil {
			return err
		}
		if err := insert(&d.Statements, len(d.Statements)); err != nil {
			return err
		}
		if err := insert(&d.AssetHistories, len(d.AssetHistories)); err != nil {
			return err
		}
		return insert(&d.Memos, len(d.Memos))
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "restore failed")
		return
	}
	util.Success(c, util.Response{"message": "ledger restored"})
}

func (h *BackupHandler) Delete(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}

	if err := h.DB.Delete(backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	if err := os.Remove(backup.FilePath); err != nil && !os.IsNotExist(err) {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "file removal failed")
		return
	}
	util.Success(c, util.Response{"message": "backup deleted"})
}
