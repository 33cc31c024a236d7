package Models

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	dbFile := os.Getenv("DB_FILE")
	if dbFile == "" {
		dbFile = "database.db"
	}

	connection, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	DB = connection

	// 1. Base tables with no dependencies
	DB.AutoMigrate(
		&User{},
		&Supplier{},
		&CarouselEntry{},
		&FCMToken{},
	)

	// 2. Tables that reference users
	DB.AutoMigrate(
		&Quotation{},
		&Notification{},
		&ActivityLog{},
	)

	// 3. Workflow tables, in dependency order
	DB.AutoMigrate(
		&Project{},
		&ProjectMilestone{},
		&Payment{},
		&PurchaseOrder{},
		&PurchaseOrderItem{},
		&PurchaseOrderPayment{},
	)

	seedSuperAdmin()
}

// seedSuperAdmin makes sure a first login exists on a fresh database.
func seedSuperAdmin() {
	var count int64
	DB.Model(&User{}).Count(&count)
	if count > 0 {
		return
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("No users and no ADMIN_EMAIL/ADMIN_PASSWORD set, skipping admin seed")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := User{
		Name:       "Administrator",
		Email:      email,
		Password:   hashed,
		Permission: PermissionSuperAdmin,
		IsApproved: 1,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return
	}
	log.Printf("Seeded admin user %s", email)
}
