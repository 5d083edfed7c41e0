// Package main provides admin management utilities for MarketLink.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/abdanbarkaath/marketlink/internal/config"
	"github.com/abdanbarkaath/marketlink/internal/database"
	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/repository"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <user_id>   - Promote user to admin")
		fmt.Println("  go run ./cmd/admin demote <user_id>    - Demote user from admin")
		fmt.Println("  go run ./cmd/admin list-admins         - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "promote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin promote <user_id>")
			os.Exit(1)
		}
		setRole(db, os.Args[2], models.UserRoleAdmin)

	case "demote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin demote <user_id>")
			os.Exit(1)
		}
		setRole(db, os.Args[2], models.UserRoleProvider)

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func setRole(db *gorm.DB, userID string, role models.UserRole) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Email, user.ID, role)
		return
	}

	user.Role = role
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	if err := repository.NewSessionRepository(db).DeleteForUser(context.Background(), user.ID); err != nil {
		log.Fatalf("Failed to revoke sessions: %v", err)
	}
	fmt.Printf("User %s (ID: %d) is now %s; existing sessions revoked\n", user.Email, user.ID, role)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", string(models.UserRoleAdmin)).Find(&admins).Error; err != nil {
		log.Fatalf("Database error: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}
	fmt.Println("Admins:")
	for _, admin := range admins {
		fmt.Printf("  %d\t%s\t%s\n", admin.ID, admin.Email, admin.Name)
	}
}
