package seed

import (
	_ "embed"
	"fmt"

	"github.com/abdanbarkaath/marketlink/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// ProviderFixture is one curated demo provider from fixtures.yaml.
type ProviderFixture struct {
	Slug         string   `yaml:"slug"`
	Email        string   `yaml:"email"`
	BusinessName string   `yaml:"business_name"`
	Tagline      string   `yaml:"tagline"`
	City         string   `yaml:"city"`
	State        string   `yaml:"state"`
	Zip          string   `yaml:"zip"`
	Status       string   `yaml:"status"`
	Verified     bool     `yaml:"verified"`
	Rating       float64  `yaml:"rating"`
	Services     []string `yaml:"services"`
}

// LoadFixtures parses the embedded curated provider set.
func LoadFixtures() ([]ProviderFixture, error) {
	var doc struct {
		Providers []ProviderFixture `yaml:"providers"`
	}
	if err := yaml.Unmarshal(fixturesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return doc.Providers, nil
}

// Fixtures upserts the curated demo providers by slug. Re-running is safe;
// existing rows are refreshed rather than duplicated.
func Fixtures(db *gorm.DB) error {
	fixtures, err := LoadFixtures()
	if err != nil {
		return err
	}

	for _, fx := range fixtures {
		fx := fx
		err := db.Transaction(func(tx *gorm.DB) error {
			provider := models.Provider{
				Slug:         fx.Slug,
				Email:        fx.Email,
				BusinessName: fx.BusinessName,
				Tagline:      fx.Tagline,
				City:         fx.City,
				State:        fx.State,
				Zip:          fx.Zip,
				Status:       models.ProviderStatus(fx.Status),
				Verified:     fx.Verified,
				Rating:       fx.Rating,
			}

			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"email", "business_name", "tagline", "city", "state", "zip",
					"status", "verified", "rating", "updated_at",
				}),
			}).Create(&provider).Error; err != nil {
				return err
			}

			if provider.ID == 0 {
				if err := tx.Where("slug = ?", fx.Slug).First(&provider).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("provider_id = ?", provider.ID).Delete(&models.ProviderService{}).Error; err != nil {
				return err
			}
			for _, tag := range fx.Services {
				svc := models.ProviderService{ProviderID: provider.ID, Name: tag}
				if err := tx.Create(&svc).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed fixture %q: %w", fx.Slug, err)
		}
	}
	return nil
}
