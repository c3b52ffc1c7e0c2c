package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bhanu100141/StudyBuddy/internal/config"
	"github.com/bhanu100141/StudyBuddy/internal/models"
)

// InitDB initializes the PostgreSQL connection and migrates the schema.
func InitDB(config *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(config.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	return db
}

// Migrate runs the schema auto-migration for all entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Message{},
		&models.Material{},
		&models.Course{},
		&models.Schedule{},
		&models.Assignment{},
		&models.Doubt{},
		&models.MeetingRequest{},
	)
}
