package models

import (
	"context"
	"time"

	"github.com/collisionworks/bodyshop_backend/config"
)

// BmsDocument is the provenance row for one ingested estimate file:
// which source system produced it, which dialect matched, and the document
// identifier the file (or the run) assigned. Immutable once created.
type BmsDocument struct {
	ID           int       `gorm:"primary_key" json:"id"`
	ShopId       string    `gorm:"index;not null" json:"shop_id" binding:"required"`
	BmsImportId  string    `gorm:"index;size:36;not null" json:"bms_import_id"`
	DocumentId   string    `gorm:"size:100" json:"document_id"`
	DocumentType string    `gorm:"size:50" json:"document_type"`
	Dialect      string    `gorm:"size:50" json:"dialect"`
	SourceSystem string    `gorm:"size:100" json:"source_system"`
	Version      string    `gorm:"size:50" json:"version"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func CreateBmsDocument(ctx context.Context, doc *BmsDocument) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(doc).Error
}
