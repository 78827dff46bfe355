package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/config"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/database"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/models"
	"github.com/truexpanse1/massive-action-tracker-stable-sub002/internal/services"
)

// seed creates a development company with an owner for local testing.
func main() {
	email := flag.String("email", "owner@example.com", "owner email")
	password := flag.String("password", "changeme123", "owner password")
	name := flag.String("name", "Demo Owner", "owner name")
	company := flag.String("company", "Demo Company", "company name")
	plan := flag.String("plan", "team", "plan tier (solo, team, elite)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fail("failed to load config: %v", err)
	}

	gormDB, err := database.Connect(&cfg.Database)
	if err != nil {
		fail("failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		fail("failed to migrate: %v", err)
	}
	db := database.NewGormAdapter(gormDB)

	tier := models.PlanTier(*plan)
	if !tier.Valid() {
		fail("invalid plan %q", *plan)
	}

	encryption := services.NewEncryptionService(cfg.Security.EncryptionKey)
	hash, err := encryption.HashPassword(*password)
	if err != nil {
		fail("failed to hash password: %v", err)
	}

	ownerID := uuid.New().String()
	companyRecord := &models.Company{
		Name:             *company,
		OwnerID:          ownerID,
		Plan:             tier,
		MaxUsers:         tier.MaxUsers(),
		SubscriptionType: "paid",
		AccountStatus:    models.AccountStatusActive,
	}
	if err := db.Create(companyRecord); err != nil {
		fail("failed to create company: %v", err)
	}

	owner := &models.User{
		ID:           ownerID,
		CompanyID:    companyRecord.ID,
		Email:        *email,
		Name:         *name,
		Role:         models.RoleOwner,
		Status:       models.UserStatusActive,
		PasswordHash: hash,
	}
	if err := db.Create(owner); err != nil {
		fail("failed to create owner: %v", err)
	}

	fmt.Printf("seeded company %d with owner %s (%s)\n", companyRecord.ID, owner.ID, owner.Email)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
