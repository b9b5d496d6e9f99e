package models

import (
	"log"

	"github.com/buildsmart/erp_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Project{},
		&Invoice{},
		&Transaction{},
		&AuditLog{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
