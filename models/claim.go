package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Claim struct {
	ID              int             `gorm:"primary_key" json:"id"`
	ShopId          string          `gorm:"uniqueIndex:idx_claim_shop_number;not null" json:"shop_id" binding:"required"`
	ClaimNumber     string          `gorm:"uniqueIndex:idx_claim_shop_number;size:100;not null" json:"claim_number" binding:"required"`
	PolicyNumber    string          `gorm:"size:100" json:"policy_number"`
	InsurerId       int             `gorm:"index" json:"insurer_id"`
	CustomerId      int             `gorm:"index" json:"customer_id"`
	VehicleId       int             `gorm:"index" json:"vehicle_id"`
	Deductible      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"deductible"`
	AdjusterName    string          `gorm:"size:191" json:"adjuster_name"`
	AdjusterPhone   string          `gorm:"size:30" json:"adjuster_phone"`
	AdjusterEmail   string          `gorm:"size:255" json:"adjuster_email"`
	LossDate        *time.Time      `json:"loss_date"`
	LossDescription string          `gorm:"type:text" json:"loss_description"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// FindClaimByNumber resolves the natural key (shop, claim number).
// Returns (nil, nil) when no row matches.
func FindClaimByNumber(ctx context.Context, shopId string, claimNumber string) (*Claim, error) {
	db := config.GetDB()
	var claim Claim
	err := db.WithContext(ctx).
		Where("shop_id = ? AND claim_number = ?", shopId, strings.TrimSpace(claimNumber)).
		First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func CreateClaim(ctx context.Context, claim *Claim) error {
	if strings.TrimSpace(claim.ClaimNumber) == "" {
		return errors.New("claim number is required")
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Create(claim).Error
	if isDuplicateEntry(err) {
		return utils.ErrorDuplicateKey
	}
	return err
}
