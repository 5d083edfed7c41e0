// Command main runs the database seeder for MarketLink.
package main

import (
	"flag"
	"log"

	"github.com/abdanbarkaath/marketlink/internal/config"
	"github.com/abdanbarkaath/marketlink/internal/database"
	"github.com/abdanbarkaath/marketlink/internal/seed"
)

func main() {
	numProviders := flag.Int("providers", 40, "Number of random providers to create")
	inquiries := flag.Int("inquiries", 3, "Number of inquiries per provider")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d providers, %d inquiries each, clean=%v\n", *numProviders, *inquiries, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumProviders:         *numProviders,
		InquiriesPerProvider: *inquiries,
		ShouldClean:          *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
