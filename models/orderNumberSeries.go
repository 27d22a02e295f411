package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/collisionworks/bodyshop_backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderNumberSeries is the shop-scoped repair order number sequence.
// The row is the durable counter; NextOrderNumber increments it under a row
// lock so two concurrent imports cannot mint the same number.
type OrderNumberSeries struct {
	ID         int    `gorm:"primary_key" json:"id"`
	ShopId     string `gorm:"uniqueIndex;not null" json:"shop_id" binding:"required"`
	Prefix     string `gorm:"size:10" json:"prefix"`
	Padding    int    `gorm:"default:5" json:"padding"`
	NextNumber int64  `gorm:"not null;default:1" json:"next_number"`
}

func NextOrderNumber(ctx context.Context, shopId string) (string, error) {
	db := config.GetDB()

	var number string
	err := db.Transaction(func(tx *gorm.DB) error {
		var series OrderNumberSeries
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("shop_id = ?", shopId).
			First(&series).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Shops created before the series existed get one lazily.
			series = OrderNumberSeries{ShopId: shopId, Prefix: "RO-", Padding: 5, NextNumber: 1}
			if err := tx.WithContext(ctx).Create(&series).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		padding := series.Padding
		if padding <= 0 {
			padding = 5
		}
		number = fmt.Sprintf("%s%0*d", series.Prefix, padding, series.NextNumber)

		return tx.WithContext(ctx).
			Model(&OrderNumberSeries{}).
			Where("id = ?", series.ID).
			Update("next_number", series.NextNumber+1).Error
	})
	if err != nil {
		return "", err
	}
	return number, nil
}
