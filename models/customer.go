package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/utils"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type Customer struct {
	ID           int          `gorm:"primary_key" json:"id"`
	ShopId       string       `gorm:"uniqueIndex:idx_customer_shop_name;not null" json:"shop_id" binding:"required"`
	DisplayName  string       `gorm:"uniqueIndex:idx_customer_shop_name;size:191;not null" json:"display_name" binding:"required"`
	FirstName    string       `gorm:"size:100" json:"first_name"`
	LastName     string       `gorm:"size:100" json:"last_name"`
	CompanyName  string       `gorm:"size:191" json:"company_name"`
	CustomerType CustomerType `gorm:"type:enum('Individual','Business');default:'Individual'" json:"customer_type"`
	Phone        string       `gorm:"size:30" json:"phone"`
	Mobile       string       `gorm:"size:30" json:"mobile"`
	Email        string       `gorm:"size:255" json:"email"`
	Address      string       `gorm:"size:255" json:"address"`
	City         string       `gorm:"size:100" json:"city"`
	State        string       `gorm:"size:100" json:"state"`
	Zip          string       `gorm:"size:20" json:"zip"`
	Notes        string       `gorm:"type:text" json:"notes"`
	IsActive     *bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// FindCustomerByName resolves the natural key (shop, display name).
// Returns (nil, nil) when no row matches.
func FindCustomerByName(ctx context.Context, shopId string, displayName string) (*Customer, error) {
	db := config.GetDB()
	var customer Customer
	err := db.WithContext(ctx).
		Where("shop_id = ? AND display_name = ?", shopId, strings.TrimSpace(displayName)).
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func CreateCustomer(ctx context.Context, customer *Customer) error {
	if strings.TrimSpace(customer.DisplayName) == "" {
		return errors.New("customer display name is required")
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Create(customer).Error
	if isDuplicateEntry(err) {
		return utils.ErrorDuplicateKey
	}
	return err
}

func GetCustomer(ctx context.Context, shopId string, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, shopId, id)
}

// ER_DUP_ENTRY. The unique index is the correctness backstop for concurrent
// imports racing on the same natural key.
func isDuplicateEntry(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
