package main

import (
	"log"
	"os"

	"notebook-markdown-be/internal/model"
	"notebook-markdown-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Extensions and AutoMigrate
	log.Println("Running AutoMigrate for notebooks...")
	if err := database.Migrate(db, &model.Notebook{}); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}

	log.Println("✅ Success: Database schema is up to date")
}
