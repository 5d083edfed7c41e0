// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// serviceTags is the pool of service tags demo providers draw from.
var serviceTags = []string{
	"plumbing", "electrical", "hvac", "roofing", "landscaping",
	"cleaning", "painting", "carpentry", "flooring", "moving",
	"pest-control", "appliance-repair", "handyman", "locksmith",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!seed"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    gofakeit.Email(),
		Name:     gofakeit.Name(),
		Password: string(hashed),
		Role:     models.UserRoleProvider,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// CreateProvider constructs and persists a sample provider with a handful of
// service tags. Roughly sixty percent come out active so listings look
// populated out of the box.
func (f *Factory) CreateProvider(overrides ...func(*models.Provider)) (*models.Provider, error) {
	name := gofakeit.Company()
	status := models.ProviderStatusActive
	switch f.r.Intn(10) {
	case 0, 1, 2:
		status = models.ProviderStatusPending
	case 3:
		status = models.ProviderStatusDisabled
	}

	provider := &models.Provider{
		Slug:         fmt.Sprintf("%s-%d", validation.Slugify(name), gofakeit.Number(100, 9999)),
		Email:        gofakeit.Email(),
		BusinessName: name,
		Tagline:      gofakeit.Slogan(),
		City:         gofakeit.City(),
		State:        gofakeit.StateAbr(),
		Zip:          gofakeit.Zip(),
		Logo:         fmt.Sprintf("https://picsum.photos/seed/%s/256/256", gofakeit.UUID()),
		Status:       status,
		Verified:     f.r.Intn(4) == 0,
		Rating:       float64(f.r.Intn(41)+10) / 10, // 1.0 .. 5.0
		CreatedAt:    f.spreadCreatedAt(),
	}
	if status == models.ProviderStatusDisabled {
		reason := "Seeded takedown: " + strings.ToLower(gofakeit.HackerPhrase())
		provider.DisabledReason = &reason
	}
	for _, override := range overrides {
		override(provider)
	}

	if err := f.db.Create(provider).Error; err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	for _, tag := range f.pickServiceTags() {
		svc := models.ProviderService{ProviderID: provider.ID, Name: tag}
		if err := f.db.Create(&svc).Error; err != nil {
			return nil, fmt.Errorf("create provider service: %w", err)
		}
	}
	return provider, nil
}

// CreateInquiry constructs and persists a visitor inquiry for the provider.
func (f *Factory) CreateInquiry(provider *models.Provider, overrides ...func(*models.Inquiry)) (*models.Inquiry, error) {
	statuses := []models.InquiryStatus{
		models.InquiryStatusNew, models.InquiryStatusNew,
		models.InquiryStatusRead, models.InquiryStatusArchived,
	}
	inquiry := &models.Inquiry{
		ProviderID: provider.ID,
		Name:       gofakeit.Name(),
		Email:      gofakeit.Email(),
		Phone:      gofakeit.Phone(),
		Message:    gofakeit.Paragraph(1, 2, 8, " "),
		Status:     statuses[f.r.Intn(len(statuses))],
		CreatedAt:  f.spreadCreatedAt(),
	}
	for _, override := range overrides {
		override(inquiry)
	}
	if err := f.db.Create(inquiry).Error; err != nil {
		return nil, fmt.Errorf("create inquiry: %w", err)
	}
	return inquiry, nil
}

func (f *Factory) pickServiceTags() []string {
	count := f.r.Intn(3) + 1
	picked := make(map[string]struct{}, count)
	out := make([]string, 0, count)
	for len(out) < count {
		tag := serviceTags[f.r.Intn(len(serviceTags))]
		if _, ok := picked[tag]; ok {
			continue
		}
		picked[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// spreadCreatedAt spreads timestamps over the last 90 days so sorted
// listings look realistic.
func (f *Factory) spreadCreatedAt() time.Time {
	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	minsBack := f.r.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}
