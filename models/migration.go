package models

import (
	"log"

	"github.com/collisionworks/bodyshop_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Shop{}, &User{},
		&Customer{}, &Vehicle{}, &Insurer{},
		&Claim{}, &RepairOrder{}, &RepairOrderPart{},
		&OrderNumberSeries{},
		&BmsImport{}, &BmsDocument{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
