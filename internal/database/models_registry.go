package database

import "github.com/abdanbarkaath/marketlink/internal/models"

// AllModels returns the authoritative set of schema-managed GORM models.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Session{},
		&models.Provider{},
		&models.ProviderService{},
		&models.Inquiry{},
		&models.AdminAction{},
	}
}
