package database

import (
	"fmt"
	"log"
	"time"

	"github.com/Sunbridger/lixiaona/config"
	"github.com/Sunbridger/lixiaona/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	host := config.GetEnv("DB_HOST", "localhost")
	user := config.GetEnv("DB_USER", "postgres")
	password := config.GetEnv("DB_PASSWORD", "password")
	dbname := config.GetEnv("DB_NAME", "lixiaona")
	port := config.GetEnv("DB_PORT", "5432")
	sslmode := config.GetEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	log.Println("Database connection established")

	log.Println("Running migrations...")
	err = DB.AutoMigrate(
		&models.Profile{},
		&models.DailyLog{},
		&models.DailyTip{},
		&models.Conversation{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}
	log.Println("Migrations completed")

	seedProfile()
}

// seedProfile creates the single user profile on first boot so the app is
// usable before the profile screen has ever been saved.
func seedProfile() {
	var count int64
	if err := DB.Model(&models.Profile{}).Count(&count).Error; err != nil {
		log.Fatal("Failed to check profile table: ", err)
	}
	if count > 0 {
		return
	}

	height := 165.0
	profile := models.Profile{
		Name:         config.GetEnv("DEFAULT_USER_NAME", "李小娜"),
		StartWeight:  50.8,
		TargetWeight: 46.8,
		StartDate:    time.Now(),
		Height:       &height,
	}
	if err := DB.Create(&profile).Error; err != nil {
		log.Fatal("Failed to seed default profile: ", err)
	}
	log.Println("Seeded default profile")
}
