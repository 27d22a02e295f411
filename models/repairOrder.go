package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/utils"
	"github.com/shopspring/decimal"
)

type RepairOrder struct {
	ID                int               `gorm:"primary_key" json:"id"`
	ShopId            string            `gorm:"uniqueIndex:idx_ro_shop_number;not null" json:"shop_id" binding:"required"`
	OrderNumber       string            `gorm:"uniqueIndex:idx_ro_shop_number;size:50;not null" json:"order_number" binding:"required"`
	ClaimId           int               `gorm:"index" json:"claim_id"`
	CustomerId        int               `gorm:"index" json:"customer_id"`
	VehicleId         int               `gorm:"index" json:"vehicle_id"`
	Status            RepairOrderStatus `gorm:"type:enum('Estimate','Approved','InProgress','Completed','Delivered');default:'Estimate'" json:"status"`
	Deductible        decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"deductible"`
	PartsTotal        decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"parts_total"`
	LaborTotal        decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"labor_total"`
	GrandTotal        decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	DamageDescription string            `gorm:"type:text" json:"damage_description"`
	CreatedBy         int               `json:"created_by"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func CreateRepairOrder(ctx context.Context, order *RepairOrder) error {
	if strings.TrimSpace(order.OrderNumber) == "" {
		return errors.New("order number is required")
	}
	if order.Status == "" {
		order.Status = RepairOrderStatusEstimate
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Create(order).Error
	if isDuplicateEntry(err) {
		return utils.ErrorDuplicateKey
	}
	return err
}

func GetRepairOrder(ctx context.Context, shopId string, id int) (*RepairOrder, error) {
	return utils.FetchModel[RepairOrder](ctx, shopId, id)
}
