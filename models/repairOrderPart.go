package models

import (
	"context"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/shopspring/decimal"
)

// RepairOrderPart is one estimate line item. RepairOrderId is nullable:
// lines are kept even when the import did not create a repair order, tagged
// with the shop and the originating import run.
type RepairOrderPart struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ShopId        string          `gorm:"index;not null" json:"shop_id" binding:"required"`
	RepairOrderId *int            `gorm:"index" json:"repair_order_id"`
	BmsImportId   string          `gorm:"index;size:36" json:"bms_import_id"`
	LineNo        int             `json:"line_no"`
	PartNumber    string          `gorm:"size:100" json:"part_number"`
	Description   string          `gorm:"size:255" json:"description"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_cost"`
	VendorName    string          `gorm:"size:191" json:"vendor_name"`
	LaborHours    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"labor_hours"`
	OperationType string          `gorm:"size:50" json:"operation_type"`
}

func CreateRepairOrderPart(ctx context.Context, part *RepairOrderPart) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(part).Error
}

func GetRepairOrderParts(ctx context.Context, shopId string, orderId int) ([]*RepairOrderPart, error) {
	db := config.GetDB()
	var parts []*RepairOrderPart
	err := db.WithContext(ctx).
		Where("shop_id = ? AND repair_order_id = ?", shopId, orderId).
		Order("line_no").
		Find(&parts).Error
	if err != nil {
		return nil, err
	}
	return parts, nil
}
