package seed

import (
	"fmt"
	"log"

	"github.com/abdanbarkaath/marketlink/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumProviders         int
	InquiriesPerProvider int
	ShouldClean          bool
}

// Run populates the database with curated fixtures plus randomized demo
// providers and inquiries.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumProviders <= 0 {
		opts.NumProviders = 40
	}
	if opts.InquiriesPerProvider < 0 {
		opts.InquiriesPerProvider = 0
	}

	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return err
		}
	}

	if err := Fixtures(db); err != nil {
		return err
	}

	f := NewFactory(db)
	for i := 0; i < opts.NumProviders; i++ {
		owner, err := f.CreateUser()
		if err != nil {
			return err
		}
		provider, err := f.CreateProvider(func(p *models.Provider) {
			p.OwnerUserID = &owner.ID
		})
		if err != nil {
			return err
		}
		for j := 0; j < opts.InquiriesPerProvider; j++ {
			if _, err := f.CreateInquiry(provider); err != nil {
				return err
			}
		}
	}

	log.Printf("seeded %d providers (plus curated fixtures)", opts.NumProviders)
	return nil
}

// Clean removes seeded demo data. Order matters for foreign keys.
func Clean(db *gorm.DB) error {
	tables := []any{
		&models.Inquiry{},
		&models.AdminAction{},
		&models.ProviderService{},
		&models.Session{},
		&models.Provider{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}
	return nil
}
