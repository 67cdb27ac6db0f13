package main

import (
	"ColorWinApi/cmd/db"
	"ColorWinApi/internal/models"
	"ColorWinApi/pkg/logger"
)

func main() {
	db.Connect()

	// dropTables()
	createTables()

	logger.Info("Migrated.")
}

func dropTables() {
	db.DB.Migrator().DropTable(
		&models.User{},
		&models.WalletBalance{},
		&models.Bet{},
		&models.GameResult{},
		&models.Winning{},
	)
}

func createTables() {
	err := db.DB.AutoMigrate(
		&models.User{},
		&models.WalletBalance{},
		&models.Bet{},
		&models.GameResult{},
		&models.Winning{},
	)
	if err != nil {
		logger.Fatal("%v", err)
	}
}
