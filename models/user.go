package models

import (
	"context"
	"errors"
	"time"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/utils"
)

type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	ShopId       string    `gorm:"index;not null" json:"shop_id" binding:"required"`
	Username     string    `gorm:"size:100;not null" json:"username" binding:"required"`
	Name         string    `gorm:"size:100" json:"name"`
	Email        string    `gorm:"size:255" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:50;default:'Estimator'" json:"role"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

func CreateUser(ctx context.Context, shopId string, input *NewUser) (*User, error) {
	if err := utils.ValidateUnique[User](ctx, shopId, "username", input.Username, 0); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = "Estimator"
	}

	user := User{
		ShopId:       shopId,
		Username:     input.Username,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches one user by id; the tenant guard scopes the lookup to the
// caller's shop.
func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchSingleModel[User](ctx, id)
}

// Authenticate checks username/password and returns the user on success.
// Login happens before a shop context exists, so the lookup is unscoped.
func Authenticate(ctx context.Context, username string, password string) (*User, error) {
	db := config.GetDB()
	var user User
	lookupCtx := utils.SkipTenantScope(ctx)
	if err := db.WithContext(lookupCtx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, errors.New("invalid credentials")
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, errors.New("user is inactive")
	}
	if err := utils.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, errors.New("invalid credentials")
	}
	return &user, nil
}
