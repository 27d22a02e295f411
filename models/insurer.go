package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/utils"
	"gorm.io/gorm"
)

// Insurer is a lookup table maintained by shop staff. The import pipeline
// resolves insurers by name but never creates them; an unknown insurer on an
// estimate is a record-level error, not a silent insert.
type Insurer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	ShopId    string    `gorm:"uniqueIndex:idx_insurer_shop_name;not null" json:"shop_id" binding:"required"`
	Name      string    `gorm:"uniqueIndex:idx_insurer_shop_name;size:191;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Email     string    `gorm:"size:255" json:"email"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type cachedInsurer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FindInsurerByName resolves an insurer by (shop, name), case-insensitively,
// with a redis fast path. Returns (nil, nil) when no row matches.
func FindInsurerByName(ctx context.Context, shopId string, name string) (*Insurer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	cacheKey := "Insurer:" + shopId + ":" + strings.ToLower(name)
	var cached cachedInsurer
	if ok, err := config.GetRedisObject(cacheKey, &cached); err == nil && ok {
		return &Insurer{ID: cached.ID, ShopId: shopId, Name: cached.Name}, nil
	}

	db := config.GetDB()
	var insurer Insurer
	err := db.WithContext(ctx).
		Where("shop_id = ? AND LOWER(name) = ?", shopId, strings.ToLower(name)).
		First(&insurer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	_ = config.SetRedisObject(cacheKey, cachedInsurer{ID: insurer.ID, Name: insurer.Name}, time.Hour)
	return &insurer, nil
}

func CreateInsurer(ctx context.Context, insurer *Insurer) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(insurer).Error
}

// GetInsurers lists the shop's insurer lookup table, so staff can see which
// names an estimate's insurer field will resolve against.
func GetInsurers(ctx context.Context, shopId string) ([]*Insurer, error) {
	return utils.FetchAllModels[Insurer](ctx, shopId)
}
