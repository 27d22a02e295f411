// Command seed-shop bootstraps a shop with its first user and, optionally,
// the insurers the shop works with. Run once per tenant:
//
//	go run ./cmd/seed-shop -name "Main St Collision" -username admin -password <pw> -insurers "State Farm,GEICO"
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/collisionworks/bodyshop_backend/config"
	"github.com/collisionworks/bodyshop_backend/models"
	"github.com/collisionworks/bodyshop_backend/utils"
)

func main() {
	name := flag.String("name", "", "shop name (required)")
	email := flag.String("email", "", "shop email")
	phone := flag.String("phone", "", "shop phone")
	username := flag.String("username", "", "first user's username (required)")
	password := flag.String("password", "", "first user's password (required)")
	role := flag.String("role", "Admin", "first user's role")
	insurers := flag.String("insurers", "", "comma-separated insurer names to seed")
	flag.Parse()

	if *name == "" || *username == "" || *password == "" {
		log.Fatal("usage: seed-shop -name <shop> -username <user> -password <password>")
	}
	if *phone != "" {
		if err := utils.ValidatePhoneNumber(*phone, utils.CountryCode); err != nil {
			log.Fatalf("invalid shop phone %q: %v", *phone, err)
		}
	}

	_ = godotenv.Load()
	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	ctx := context.Background()

	shop, err := models.CreateShop(ctx, &models.NewShop{
		Name:  *name,
		Email: *email,
		Phone: *phone,
	})
	utils.ErrorPanic(err)

	shopCtx := utils.SetShopIdInContext(ctx, shop.ID.String())

	user, err := models.CreateUser(shopCtx, shop.ID.String(), &models.NewUser{
		Username: *username,
		Password: *password,
		Role:     *role,
	})
	utils.ErrorPanic(err)

	for _, insurerName := range strings.Split(*insurers, ",") {
		insurerName = strings.TrimSpace(insurerName)
		if insurerName == "" {
			continue
		}
		utils.ErrorPanic(models.CreateInsurer(shopCtx, &models.Insurer{
			ShopId: shop.ID.String(),
			Name:   insurerName,
		}))
	}

	log.Printf("shop %s created (id %s), user %s (id %d)", shop.Name, shop.ID, user.Username, user.ID)
}
