package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/utils"
	"github.com/google/uuid"
)

// BmsImport is the durable audit row for one ingestion attempt. It is created
// with status processing before any entity work begins, finalized exactly
// once, and never deleted.
type BmsImport struct {
	ID               string          `gorm:"primary_key;size:36" json:"id"`
	ShopId           string          `gorm:"index;not null" json:"shop_id" binding:"required"`
	UserId           int             `gorm:"not null" json:"user_id" binding:"required"`
	FileName         string          `gorm:"size:255" json:"file_name"`
	OriginalFileName string          `gorm:"size:255" json:"original_file_name"`
	FileSize         int64           `json:"file_size"`
	Format           string          `gorm:"size:10" json:"format"`
	Status           BmsImportStatus `gorm:"type:enum('pending','processing','success','partial','failed');default:'pending';index" json:"status"`
	DocumentCount    int             `gorm:"default:0" json:"document_count"`
	CustomerCount    int             `gorm:"default:0" json:"customer_count"`
	VehicleCount     int             `gorm:"default:0" json:"vehicle_count"`
	ClaimCount       int             `gorm:"default:0" json:"claim_count"`
	RepairOrderCount int             `gorm:"default:0" json:"repair_order_count"`
	PartLineCount    int             `gorm:"default:0" json:"part_line_count"`
	Errors           string          `gorm:"type:text" json:"errors"`
	Warnings         string          `gorm:"type:text" json:"warnings"`
	ProcessingTimeMs int64           `gorm:"default:0" json:"processing_time_ms"`
	Summary          string          `gorm:"type:text" json:"summary"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func CreateBmsImport(ctx context.Context, entry *BmsImport) error {
	if entry.ShopId == "" {
		return errors.New("shop id is required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Status = BmsImportStatusProcessing

	db := config.GetDB()
	return db.WithContext(ctx).Create(entry).Error
}

// Finalize writes the terminal status, counts, errors/warnings and duration
// back onto the same row. The summary is recomputed from the counts here and
// nowhere else, so it can't drift from the authoritative numbers.
func (entry *BmsImport) Finalize(ctx context.Context, status BmsImportStatus, errs []string, warnings []string, duration time.Duration) error {
	errJSON, err := utils.MarshalToJSON(errs)
	if err != nil {
		return err
	}
	warnJSON, err := utils.MarshalToJSON(warnings)
	if err != nil {
		return err
	}

	entry.Status = status
	entry.Errors = errJSON
	entry.Warnings = warnJSON
	entry.ProcessingTimeMs = duration.Milliseconds()
	entry.Summary = entry.BuildSummary(len(errs), len(warnings))

	db := config.GetDB()
	return db.WithContext(ctx).Model(&BmsImport{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"status":             entry.Status,
			"document_count":     entry.DocumentCount,
			"customer_count":     entry.CustomerCount,
			"vehicle_count":      entry.VehicleCount,
			"claim_count":        entry.ClaimCount,
			"repair_order_count": entry.RepairOrderCount,
			"part_line_count":    entry.PartLineCount,
			"errors":             entry.Errors,
			"warnings":           entry.Warnings,
			"processing_time_ms": entry.ProcessingTimeMs,
			"summary":            entry.Summary,
		}).Error
}

// BuildSummary derives the free-text run summary from the structured counts.
// It is a projection, never an independently edited field.
func (entry *BmsImport) BuildSummary(errorCount int, warningCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "import %s: %d document(s), %d customer(s), %d vehicle(s), %d claim(s), %d repair order(s), %d part line(s)",
		entry.Status,
		entry.DocumentCount,
		entry.CustomerCount,
		entry.VehicleCount,
		entry.ClaimCount,
		entry.RepairOrderCount,
		entry.PartLineCount,
	)
	if errorCount > 0 {
		fmt.Fprintf(&b, "; %d error(s)", errorCount)
	}
	if warningCount > 0 {
		fmt.Fprintf(&b, "; %d warning(s)", warningCount)
	}
	return b.String()
}

// DecodedErrors returns the errors column as the list it was stored from.
func (entry *BmsImport) DecodedErrors() []string {
	var out []string
	if entry.Errors != "" {
		_ = utils.UnmarshalFromJSON([]byte(entry.Errors), &out)
	}
	return out
}

// DecodedWarnings returns the warnings column as the list it was stored from.
func (entry *BmsImport) DecodedWarnings() []string {
	var out []string
	if entry.Warnings != "" {
		_ = utils.UnmarshalFromJSON([]byte(entry.Warnings), &out)
	}
	return out
}

func GetBmsImport(ctx context.Context, shopId string, id string) (*BmsImport, error) {
	db := config.GetDB()
	var entry BmsImport
	err := db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopId, id).
		First(&entry).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &entry, nil
}

func GetBmsImports(ctx context.Context, shopId string, status *BmsImportStatus) ([]*BmsImport, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("shop_id = ?", shopId)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var entries []*BmsImport
	if err := dbCtx.Order("created_at DESC").Limit(100).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
