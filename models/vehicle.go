package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/utils"
	"gorm.io/gorm"
)

const VinLength = 17

type Vehicle struct {
	ID           int          `gorm:"primary_key" json:"id"`
	ShopId       string       `gorm:"index;not null" json:"shop_id" binding:"required"`
	CustomerId   int          `gorm:"index" json:"customer_id"`
	Vin          string       `gorm:"column:vin;size:17;uniqueIndex;not null" json:"vin" binding:"required"`
	Year         int          `json:"year"`
	Make         string       `gorm:"size:100" json:"make"`
	Model        string       `gorm:"size:100" json:"model"`
	Trim         string       `gorm:"size:100" json:"trim"`
	Color        string       `gorm:"size:50" json:"color"`
	PaintCode    string       `gorm:"size:50" json:"paint_code"`
	Plate        string       `gorm:"size:20" json:"plate"`
	Odometer     int          `json:"odometer"`
	OdometerUnit OdometerUnit `gorm:"type:enum('mi','km');default:'mi'" json:"odometer_unit"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// FindVehicleByVin resolves a VIN. The VIN is globally unique, so the lookup
// deliberately bypasses tenant scoping: a vehicle previously serviced at a
// sister shop must still dedup.
// Returns (nil, nil) when no row matches.
func FindVehicleByVin(ctx context.Context, vin string) (*Vehicle, error) {
	db := config.GetDB()
	var vehicle Vehicle
	lookupCtx := utils.SkipTenantScope(ctx)
	err := db.WithContext(lookupCtx).
		Where("vin = ?", strings.ToUpper(strings.TrimSpace(vin))).
		First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func CreateVehicle(ctx context.Context, vehicle *Vehicle) error {
	vehicle.Vin = strings.ToUpper(strings.TrimSpace(vehicle.Vin))
	if len(vehicle.Vin) != VinLength {
		return errors.New("vin must be 17 characters")
	}
	if vehicle.OdometerUnit == "" {
		vehicle.OdometerUnit = OdometerUnitMiles
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Create(vehicle).Error
	if isDuplicateEntry(err) {
		return utils.ErrorDuplicateKey
	}
	return err
}

// Description is the human-readable "2019 Honda Civic" form used in run summaries.
func (v *Vehicle) Description() string {
	parts := make([]string, 0, 3)
	if v.Year > 0 {
		parts = append(parts, strconv.Itoa(v.Year))
	}
	if v.Make != "" {
		parts = append(parts, v.Make)
	}
	if v.Model != "" {
		parts = append(parts, v.Model)
	}
	return strings.Join(parts, " ")
}
