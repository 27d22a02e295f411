package models

import (
	"context"
	"time"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/google/uuid"
)

type Shop struct {
	ID        uuid.UUID `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	City      string    `gorm:"size:100" json:"city"`
	State     string    `gorm:"size:100" json:"state"`
	Zip       string    `gorm:"size:20" json:"zip"`
	Timezone  string    `gorm:"size:50" json:"timezone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewShop struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// When creating a shop, seed the repair order number series so the first
// import can generate an order number without extra setup.
func CreateShop(ctx context.Context, input *NewShop) (*Shop, error) {
	db := config.GetDB()

	tx := db.Begin()

	shopId := uuid.New()
	shop := Shop{
		ID:      shopId,
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
		City:    input.City,
		State:   input.State,
		Zip:     input.Zip,
	}
	if err := tx.WithContext(ctx).Create(&shop).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	series := OrderNumberSeries{
		ShopId:     shopId.String(),
		Prefix:     "RO-",
		Padding:    5,
		NextNumber: 1,
	}
	if err := tx.WithContext(ctx).Create(&series).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func GetShop(ctx context.Context, id string) (*Shop, error) {
	db := config.GetDB()
	var shop Shop
	if err := db.WithContext(ctx).Where("id = ?", id).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}
